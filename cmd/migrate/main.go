// migrate applies the embedded schema; run with go run ./cmd/migrate -direction up.
package main

import (
	"flag"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "postgres:// URL (defaults to DATABASE_URL, then DB_* config)")
	flag.Parse()

	url := *databaseURL
	if url == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(1)
		}
		url = cfg.PostgresURL()
	}

	if err := migrate.Run(url, *direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

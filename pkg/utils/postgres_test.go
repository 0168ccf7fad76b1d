package utils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestOpenPostgres_EmptyDSN(t *testing.T) {
	db, err := OpenPostgres(context.Background(), "", PostgresPoolConfig{})
	if err == nil || db != nil {
		t.Fatalf("expected error and nil db for empty dsn")
	}
}

func TestWithTx_NilDB(t *testing.T) {
	called := false
	err := WithTx(context.Background(), nil, nil, func(ctx context.Context, tx *sql.Tx) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("expected error without running fn")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(wrapped) {
		t.Fatalf("expected unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) || IsUniqueViolation(errors.New("x")) {
		t.Fatalf("expected non unique errors to be rejected")
	}
}

func TestPoolDefaults(t *testing.T) {
	p := PostgresPoolConfig{MaxOpenConns: 5}.withDefaults()
	if p.MaxIdleConns != 5 || p.PingTimeout <= 0 || p.ConnMaxLifetime <= 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

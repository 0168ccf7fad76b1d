// Package cli implements the storefront command-line client.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"storefront/internal/client"
	"storefront/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultServer = "http://localhost:8080"
	envPrefix     = "STOREFRONT"
)

// app holds per-invocation state shared by all commands.
type app struct {
	v      *viper.Viper
	log    *slog.Logger
	api    *client.API
	store  client.Store
	guard  client.Guard
	stdin  *bufio.Reader
	errOut io.Writer
}

// NewRootCmd creates the root cobra command for the storefront CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(os.Stdin)
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	a := &app{v: viper.New(), stdin: bufio.NewReader(stdin)}

	var (
		cfgFile   string
		debug     bool
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront account client",
		Long:  "storefront signs in to the storefront API and runs account and admin operations with the cached session.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cfgFile); err != nil {
				return err
			}
			if debug {
				logLevel = "debug"
			}
			a.errOut = cmd.ErrOrStderr()
			a.log = logger.NewWithWriter(a.errOut, logger.ParseLevel(logLevel), logFormat)

			credPath := a.v.GetString("credentials")
			if credPath == "" {
				p, err := client.DefaultCredentialsPath()
				if err != nil {
					return err
				}
				credPath = p
			}
			a.store = client.NewFileStore(credPath)

			loginPath := a.v.GetString("login_path")
			nav := client.NavigatorFunc(a.redirectToLogin)
			a.api = client.NewAPI(a.v.GetString("server"), &client.Transport{
				Store:     a.store,
				Navigator: nav,
				LoginPath: loginPath,
			}, a.log)
			a.guard = client.Guard{Store: a.store, Navigator: nav, LoginPath: loginPath}
			return nil
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ~/.storefront/config.yaml)")
	pf.String("server", defaultServer, "Storefront API URL (or STOREFRONT_SERVER env)")
	pf.String("credentials", "", "Session file (default ~/.storefront/credentials.json)")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")
	pf.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	_ = a.v.BindPFlag("server", pf.Lookup("server"))
	_ = a.v.BindPFlag("credentials", pf.Lookup("credentials"))

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newAdminCmd(a),
	)

	return root
}

// loadConfig reads the optional YAML config, then STOREFRONT_* env; flags win.
func (a *app) loadConfig(cfgFile string) error {
	a.v.SetDefault("server", defaultServer)
	a.v.SetDefault("login_path", client.LoginPath)

	a.v.SetEnvPrefix(envPrefix)
	a.v.AutomaticEnv()

	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(filepath.Join(home, ".storefront"))
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// redirectToLogin is the CLI's version of sending the user to the login screen.
func (a *app) redirectToLogin(path string) {
	a.log.Debug("session ended", "redirect", path)
	fmt.Fprintln(a.errOut, "Not signed in. Run 'storefront login' to continue.")
}

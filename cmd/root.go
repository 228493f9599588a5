// Package cmd wires the horoscope command-line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"horoscope-api/config"
	"horoscope-api/logger"
)

// All linker flags are set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli carries the state shared by one command tree.
type cli struct {
	v *viper.Viper
}

// load resolves configuration from flags, env and .env.
func (c *cli) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFromEnv(c.v)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// NewRootCmd builds the command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	serveCmd := newServeCmd(c)
	rootCmd := &cobra.Command{
		Use:           "horoscope",
		Short:         "Serve daily, weekly and monthly horoscope forecasts over HTTP.",
		Long:          `Horoscope reads forecasts from per-sign CSV files or a SQL database and serves them as JSON.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          serveCmd.RunE,
	}

	flags := rootCmd.PersistentFlags()
	flags.Int("port", 0, "HTTP port (default 5000)")
	flags.String("backend", "", "Data backend: csv or db (default csv)")
	flags.String("data-dir", "", "Directory holding forecast CSV files (default ./data)")
	flags.String("db-driver", "", "Database driver: sqlite or postgres or mysql (default sqlite)")
	flags.String("db-path", "", "SQLite database file (default ./data/horoscope.db)")
	flags.String("db-dsn", "", "Connection string for postgres/mysql")
	flags.String("redis-host", "", "Redis host for the response cache (empty disables)")
	flags.String("log-level", "", "Log level: debug or info or warn or error (default info)")
	if err := c.v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("bind root flags: %v", err))
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCmd(c))
	rootCmd.AddCommand(newAvailabilityCmd(c))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"horoscope-api/app"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server (default command).",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := c.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			log.Info("starting horoscope api",
				zap.String("version", version),
				zap.String("backend", cfg.Backend),
				zap.Int("port", cfg.Port))
			return app.New(cfg, log).Start()
		},
	}
}

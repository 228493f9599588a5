package cmd

import (
	"github.com/spf13/cobra"

	"horoscope-api/database"
)

func newMigrateCmd(c *cli) *cobra.Command {
	var target int
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the forecast schema to the configured database",
		Long: `Apply the embedded schema migrations for the configured driver.

Target version:
- negative (default) migrates all the way up
- 0 rolls every migration back
- N migrates to exactly version N`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := c.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if err := cfg.Database.Validate(); err != nil {
				return err
			}
			if err := database.Migrate(cfg.Database, target, log); err != nil {
				return err
			}
			cmd.Printf("Migrations applied for %s.\n", cfg.Database.Driver)
			return nil
		},
	}
	migrateCmd.Flags().IntVar(&target, "target-version", -1, "Schema version to migrate to")
	return migrateCmd
}

package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"horoscope-api/database"
	"horoscope-api/forecast"
)

func newAvailabilityCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "availability",
		Short: "Print which months hold forecasts for each sign",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := c.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.Connect(cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			avail, err := database.NewForecastRepository(db).Availability(context.Background())
			if err != nil {
				return err
			}
			return printAvailability(cmd, avail)
		},
	}
}

func printAvailability(cmd *cobra.Command, avail forecast.Availability) error {
	if len(avail) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No forecasts found.")
		return err
	}

	signs := make([]string, 0, len(avail))
	for sign := range avail {
		signs = append(signs, sign)
	}
	sort.Strings(signs)

	var data [][]string
	for _, sign := range signs {
		m := avail[sign]
		data = append(data, []string{
			sign,
			strings.Join(m.Daily, " "),
			strings.Join(m.Weekly, " "),
			strings.Join(m.Monthly, " "),
		})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header([]string{"Sign", "Daily", "Weekly", "Monthly"})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

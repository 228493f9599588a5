package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// newVersionCmd shows the verbose version for diagnostic purposes.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of horoscope.",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("horoscope\n")
			cmd.Printf("  Version: %s\n", version)
			cmd.Printf("  Commit:  %s\n", commit)
			cmd.Printf("  Built:   %s\n", date)
			cmd.Printf("  Runtime: %s\n", runtime.Version())
		},
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the inbox-agent version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("inbox-agent", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

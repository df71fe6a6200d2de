package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   string
	BuildTime string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "saleprobe version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "version:", Version)
		fmt.Fprintln(cmd.OutOrStdout(), "build time:", BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCommand)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devpack-ai/devpack/pkg/presenter"
	"github.com/devpack-ai/devpack/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		short, _ := cmd.Flags().GetBool("short")
		info := version.Get()

		if short {
			fmt.Println(info.Version)
			return
		}

		output, err := info.JSON()
		if err != nil {
			presenter.Error(err, "Failed to encode version information")
			os.Exit(1)
		}
		fmt.Println(output)
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)
}

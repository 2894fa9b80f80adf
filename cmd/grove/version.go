package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.1"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of grove",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("grove version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

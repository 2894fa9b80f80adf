package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "grove",
	Short: "Grove is a functional parameter-management library for neural networks",
	Long: `Grove separates network structure from parameters: modules declare weights
through scopes, and training operates on explicit parameter trees.

The CLI trains small models from YAML experiment files and inspects the
.grove checkpoints they produce.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

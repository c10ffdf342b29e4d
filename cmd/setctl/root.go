package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "setctl",
	Short:        "Run SetForge batches and maintenance from the command line",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newRunCmd(aggregateKind))
	rootCmd.AddCommand(newRunCmd(importKind))
	rootCmd.AddCommand(migrateCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level in console format")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

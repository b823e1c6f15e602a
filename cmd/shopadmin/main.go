package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "shopadmin",
		Short:         "Orders and products admin backend",
		Long:          `shopadmin serves the orders and products catalog API backed by the cache and search service, and exports catalog views from the command line.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "path to a YAML config file")
	root.PersistentFlags().String("log-level", "", "override log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("offline", false, "skip the cache and use sample data")

	root.AddCommand(newServeCommand())
	root.AddCommand(newExportCommand())
	root.AddCommand(newSampleCommand())
	root.AddCommand(newRefreshCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/remoteconfig/cmd/remoteconfig/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &commands.Options{}

	rootCmd := &cobra.Command{
		Use:   "remoteconfig",
		Short: "Load application configuration from SSM Parameter Store and Secrets Manager",
		Long: `remoteconfig fetches hierarchical configuration from AWS SSM Parameter
Store and named secrets from AWS Secrets Manager, and prints the merged
key-value view with sensitive values masked.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "Settings file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&opts.Region, "region", "", "AWS region (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&opts.Path, "path", "", "Base parameter path (overrides settings)")
	rootCmd.PersistentFlags().BoolVar(&opts.Verbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewDumpCommand(opts),
		commands.NewCheckCommand(opts),
	)

	return rootCmd.Execute()
}

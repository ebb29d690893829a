// Package config implements configuration management subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Inspect hubd configuration files.

Use 'hubd init' to create a new configuration file.`,
}

func init() {
	Cmd.AddCommand(showCmd)
}

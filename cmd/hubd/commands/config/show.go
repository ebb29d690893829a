package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/marmos91/hubd/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Load and display the effective hubd configuration (file + environment
overrides + defaults applied).

Examples:
  # Show default config as YAML
  hubd config show

  # Show as JSON
  hubd config show --output json

  # Show a specific config file
  hubd config show --config /etc/hubd/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	return encodeConfig(cfg, os.Stdout, showOutput)
}

// encodeConfig writes cfg to w in the requested format, split out from
// runConfigShow so the encoding itself can be tested without depending on
// MustLoad's config-file discovery.
func encodeConfig(cfg *config.Config, w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
}

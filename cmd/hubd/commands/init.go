package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/marmos91/hubd/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample hubd configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/hubd/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  hubd init

  # Initialize with custom path
  hubd init --config /etc/hubd/config.yaml

  # Force overwrite existing config
  hubd init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if !initForce {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", configPath)
		}
	}

	secret, err := randomSecret(32)
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = secret

	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to set your object_store.bucket and database settings")
	fmt.Printf("  2. Start the server with: hubd serve --config %s\n", configPath)
	fmt.Println("\nSecurity note:")
	fmt.Println("  A random JWT signing secret has been generated and written into the config file.")
	fmt.Println("  For production, prefer overriding it via an environment variable instead:")
	fmt.Println("    export HUBD_AUTH_SECRET=$(openssl rand -hex 32)")

	return nil
}

// randomSecret returns n bytes of crypto/rand entropy, hex-encoded.
func randomSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

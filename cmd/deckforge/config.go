package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		Long: `Init writes a default configuration to ~/.config/deckforge/config.yaml
unless one already exists. Edit it to pick the provider, model and rate
limits; API keys come from the environment, never the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.NewLoader(slog.Default()).EnsureUserConfig(); err != nil {
				return fmt.Errorf("initialize user config: %w", err)
			}
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			fmt.Printf("User config ready at %s\n",
				filepath.Join(home, config.UserConfigDir, config.UserConfigFile))
			return nil
		},
	})

	return cmd
}

package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/ui"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the lattice config file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Run: func(cmd *cobra.Command, args []string) {
				if cfgFile != "" {
					fmt.Println(cfgFile)
					return
				}
				fmt.Println(config.Path())
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as TOML",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return toml.NewEncoder(os.Stdout).Encode(cfg)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default config if none exists",
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := os.Stat(config.Path()); err == nil {
					fmt.Printf("  Config already exists at %s\n", config.Path())
					return nil
				}
				if err := config.EnsureExists(); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				ui.Good.Printf("  %s Wrote %s\n", ui.StatusIcon(true), config.Path())
				return nil
			},
		},
	)
	return cmd
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/makifarslan/Mini-Farm/internal/infrastructure/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minifarm",
		Short: "Mini-Farm - a real-time production chain simulator",
		Long: `Mini-Farm simulates a hay field, mill and bakery that keep producing
in real time and catch up on the time elapsed since the last save.

Examples:
  minifarm run --for 2m
  minifarm status
  minifarm order --factory 2 --count 3
  minifarm collect --factory 1 --open
  minifarm resources
  minifarm config show`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: search ., ./configs, /etc/minifarm)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewOrderCommand())
	rootCmd.AddCommand(NewCancelCommand())
	rootCmd.AddCommand(NewCollectCommand())
	rootCmd.AddCommand(NewResourcesCommand())
	rootCmd.AddCommand(NewSaveCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// loadConfig reads configuration honouring the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

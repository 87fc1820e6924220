package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/makifarslan/Mini-Farm/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect Mini-Farm configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (MF_* prefix)
2. Config file (config.yaml)
3. Default values

Example:
  minifarm config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.NewDefaultConfig()
			}

			fmt.Fprintln(out, "Mini-Farm Configuration")
			fmt.Fprintln(out, "=======================")

			fmt.Fprintln(out, "Save:")
			fmt.Fprintf(out, "  Backend:          %s\n", cfg.Save.Backend)
			if cfg.Save.Backend == "file" {
				fmt.Fprintf(out, "  Path:             %s\n", cfg.Save.Path)
				fmt.Fprintf(out, "  Compress:         %t\n", cfg.Save.Compress)
			} else {
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Type)
				if cfg.Database.URL != "" {
					fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
				} else if cfg.Database.Type == "sqlite" {
					fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
				} else {
					fmt.Fprintf(out, "  Host:             %s:%d\n", cfg.Database.Host, cfg.Database.Port)
				}
				fmt.Fprintf(out, "  Retain:           %d\n", cfg.Save.Retain)
			}

			fmt.Fprintln(out, "\nSimulation:")
			fmt.Fprintf(out, "  Tick Interval:    %s\n", cfg.Simulation.TickInterval)
			if cfg.Simulation.AutosaveInterval > 0 {
				fmt.Fprintf(out, "  Autosave:         every %s\n", cfg.Simulation.AutosaveInterval)
			} else {
				fmt.Fprintln(out, "  Autosave:         off")
			}
			fmt.Fprintf(out, "  Save On Quit:     %t\n", cfg.Simulation.SaveOnQuit)
			fmt.Fprintf(out, "  PID File:         %s\n", cfg.Simulation.PIDFile)
			fmt.Fprintf(out, "  Socket:           %s\n", cfg.Simulation.SocketPath)

			fmt.Fprintln(out, "\nFactories:")
			for _, f := range cfg.Factories {
				input := "-"
				if f.Requires != "" {
					input = fmt.Sprintf("%d %s", f.RequiredAmount, f.Requires)
				}
				fmt.Fprintf(out, "  %d %-12s %-10s in=%-8s out=%-6s cap=%d cycle=%s\n",
					f.ID, f.Name, f.Variant, input, f.Produces, f.Capacity, f.CycleDuration)
			}

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

			fmt.Fprintln(out, "\nMetrics:")
			if cfg.Metrics.Enabled {
				fmt.Fprintf(out, "  Endpoint:         http://%s%s\n", cfg.Metrics.Address(), cfg.Metrics.Path)
			} else {
				fmt.Fprintln(out, "  Endpoint:         disabled")
			}

			return nil
		},
	}
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}

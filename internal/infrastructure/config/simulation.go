package config

import "time"

// SimulationConfig holds the real-time loop configuration
type SimulationConfig struct {
	// Interval between scheduler ticks
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"required"`

	// Interval between autosaves while running, 0 disables
	AutosaveInterval time.Duration `mapstructure:"autosave_interval" validate:"min=0"`

	// Save when the simulation is stopped
	SaveOnQuit bool `mapstructure:"save_on_quit"`

	// PID file guarding against two simulators writing the same save
	PIDFile string `mapstructure:"pid_file"`

	// Unix socket the running farm serves commands on
	SocketPath string `mapstructure:"socket_path"`
}

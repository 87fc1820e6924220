package config

import "fmt"

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	// Enabled exposes production metrics while the simulation runs
	Enabled bool `mapstructure:"enabled"`

	Port int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Host string `mapstructure:"host"`
	Path string `mapstructure:"path" validate:"omitempty,startswith=/"`
}

// Address returns host:port for the HTTP listener
func (m MetricsConfig) Address() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

package config

import (
	"strings"
	"time"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults. postgres needs an explicit url or host.
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	switch cfg.Database.Type {
	case "sqlite":
		if cfg.Database.Path == "" {
			cfg.Database.Path = "minifarm.db"
		}
	case "postgres":
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
		if cfg.Database.User == "" {
			cfg.Database.User = "minifarm"
		}
		if cfg.Database.Name == "" {
			cfg.Database.Name = "minifarm"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 5
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Save defaults
	if cfg.Save.Backend == "" {
		cfg.Save.Backend = "file"
	}
	if cfg.Save.Path == "" {
		cfg.Save.Path = "minifarm-save.json"
	}
	if cfg.Save.Retain == 0 {
		cfg.Save.Retain = 10
	}

	// Simulation defaults
	if cfg.Simulation.TickInterval == 0 {
		cfg.Simulation.TickInterval = 50 * time.Millisecond
	}
	if cfg.Simulation.PIDFile == "" {
		cfg.Simulation.PIDFile = "/tmp/minifarm.pid"
	}
	if cfg.Simulation.SocketPath == "" {
		cfg.Simulation.SocketPath = "/tmp/minifarm.sock"
	}

	// Factory defaults
	if len(cfg.Factories) == 0 {
		cfg.Factories = DefaultFactories()
	}
	for i := range cfg.Factories {
		f := &cfg.Factories[i]
		f.Variant = strings.ToLower(strings.TrimSpace(f.Variant))
		if f.Variant == "" {
			f.Variant = "queued"
		}
		if f.Variant == "queued" && f.RequiredAmount == 0 {
			f.RequiredAmount = 1
		}
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9464
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

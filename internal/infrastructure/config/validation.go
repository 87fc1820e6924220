package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with custom validation rules
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterStructValidation(uniqueFactoryIDs, Config{})
	v.RegisterStructValidation(databaseTarget, DatabaseConfig{})

	return &Validator{
		validate: v,
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Namespace(),
				e.Tag(),
				e.Value(),
			))
		}
		return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
	}
	return err
}

// uniqueFactoryIDs rejects two factories sharing a save id
func uniqueFactoryIDs(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	seen := make(map[int]bool, len(cfg.Factories))
	for i, f := range cfg.Factories {
		if seen[f.ID] {
			sl.ReportError(f.ID, fmt.Sprintf("Factories[%d].ID", i), "ID", "unique", "")
		}
		seen[f.ID] = true
	}
}

// databaseTarget requires a path for sqlite and a url or host for postgres
func databaseTarget(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(DatabaseConfig)
	switch cfg.Type {
	case "sqlite":
		if cfg.Path == "" {
			sl.ReportError(cfg.Path, "Path", "Path", "required_for_sqlite", "")
		}
	case "postgres":
		if cfg.URL == "" && cfg.Host == "" {
			sl.ReportError(cfg.Host, "Host", "Host", "url_or_host_for_postgres", "")
		}
	}
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	return v.Validate(cfg)
}

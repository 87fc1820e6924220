package logging

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
)

// ApplicationLogger adapts zerolog.Logger to the application Logger interface
type ApplicationLogger struct {
	logger zerolog.Logger
}

// NewApplicationLogger wraps a zerolog.Logger
func NewApplicationLogger(logger zerolog.Logger) *ApplicationLogger {
	return &ApplicationLogger{logger: logger}
}

// Log writes message at level with metadata as structured fields
func (l *ApplicationLogger) Log(level, message string, metadata map[string]interface{}) {
	l.logger.WithLevel(ParseLevel(strings.ToUpper(level))).Fields(metadata).Msg(message)
}

// FactoryEventLogger returns a listener that writes factory events at debug
// level. Progress events are skipped.
func FactoryEventLogger(logger zerolog.Logger) production.Listener {
	return func(e production.Event) {
		if e.Type == production.EventProgress {
			return
		}
		ev := logger.Debug().
			Int("factory_id", int(e.FactoryID)).
			Str("event", string(e.Type))
		if e.Resource != "" {
			ev = ev.Str("resource", string(e.Resource)).Int("amount", e.Amount)
		}
		if e.Reason != "" {
			ev = ev.Str("reason", string(e.Reason))
		}
		ev.Msg("factory event")
	}
}

// ResourceChangeLogger returns a store subscriber that writes quantity
// changes at debug level
func ResourceChangeLogger(logger zerolog.Logger) func(resource.Change) {
	return func(c resource.Change) {
		logger.Debug().
			Str("resource", string(c.Kind)).
			Int("previous", c.Previous).
			Int("current", c.Current).
			Msg("resource changed")
	}
}

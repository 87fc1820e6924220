package production

import (
	"fmt"
	"strings"

	"github.com/makifarslan/Mini-Farm/internal/domain/shared"
)

// Variant selects how a factory decides whether it has work
type Variant string

const (
	// VariantQueued produces one unit per paid order
	VariantQueued Variant = "QUEUED"

	// VariantContinuous produces for free while below capacity
	VariantContinuous Variant = "CONTINUOUS"
)

// IdlePollInterval is how often an idle continuous factory re-checks its
// capacity, in seconds.
const IdlePollInterval = 0.5

// ParseVariant accepts "queued" or "continuous" in any case
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToUpper(strings.TrimSpace(s))) {
	case VariantQueued:
		return VariantQueued, nil
	case VariantContinuous:
		return VariantContinuous, nil
	default:
		return "", shared.NewValidationError("variant", fmt.Sprintf("unknown factory variant %q", s))
	}
}

// behavior is the variant specific part of a factory
type behavior interface {
	acceptsOrders() bool
	hasWork(f *Factory) bool
	completeCycle(f *Factory)
	idlesWhenBlocked() bool
}

func behaviorFor(v Variant) behavior {
	if v == VariantContinuous {
		return continuousProduction{}
	}
	return queuedProduction{}
}

type queuedProduction struct{}

func (queuedProduction) acceptsOrders() bool { return true }

func (queuedProduction) hasWork(f *Factory) bool { return f.queueLength > 0 }

func (queuedProduction) completeCycle(f *Factory) {
	f.queueLength--
	f.currentStored = min(f.currentStored+1, f.def.Capacity)
}

func (queuedProduction) idlesWhenBlocked() bool { return false }

type continuousProduction struct{}

func (continuousProduction) acceptsOrders() bool { return false }

func (continuousProduction) hasWork(f *Factory) bool { return f.currentStored < f.def.Capacity }

func (continuousProduction) completeCycle(f *Factory) {
	if f.currentStored < f.def.Capacity {
		f.currentStored++
	}
}

func (continuousProduction) idlesWhenBlocked() bool { return true }

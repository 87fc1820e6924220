package resource

import (
	"strings"

	"github.com/makifarslan/Mini-Farm/internal/domain/shared"
)

// Kind identifies a resource held in the store
type Kind string

const (
	// KindWheat is the raw input harvested by the hay field
	KindWheat Kind = "WHEAT"

	// KindFlour is the intermediate good milled from wheat
	KindFlour Kind = "FLOUR"

	// KindBread is the finished good baked from flour
	KindBread Kind = "BREAD"
)

var builtinKinds = []Kind{KindWheat, KindFlour, KindBread}

// AllKinds returns the built-in resource kinds in production-chain order
func AllKinds() []Kind {
	kinds := make([]Kind, len(builtinKinds))
	copy(kinds, builtinKinds)
	return kinds
}

// ParseKind normalizes a kind name. Any non-empty name is accepted so the
// set can be extended through configuration.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return "", shared.NewValidationError("kind", "must not be empty")
	}
	return Kind(normalized), nil
}

// IsBuiltin reports whether k is one of the kinds seeded in every store
func (k Kind) IsBuiltin() bool {
	for _, b := range builtinKinds {
		if b == k {
			return true
		}
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

package oracle

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/types"
)

// Comparator compares opaque load handles without revealing them.
// Implementations must be deterministic: the same pair always yields the
// same answer, on every replica.
type Comparator interface {
	// GreaterThan reports whether the load behind a is strictly greater than b
	GreaterThan(a, b types.LoadHandle) bool

	// Validate rejects handles the comparator cannot interpret
	Validate(h types.LoadHandle) error
}

// Mode selects a comparator implementation
type Mode string

const (
	ModeNumeric Mode = "numeric"
	ModeSealed  Mode = "sealed"
)

// New builds the comparator for mode. key is required for ModeSealed.
func New(mode Mode, key []byte) (Comparator, error) {
	switch mode {
	case ModeNumeric, "":
		return Numeric{}, nil
	case ModeSealed:
		return NewSealed(key)
	default:
		return nil, fmt.Errorf("unknown oracle mode: %s", mode)
	}
}

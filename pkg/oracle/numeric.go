package oracle

import (
	"encoding/binary"
	"fmt"

	"github.com/cuemby/burrow/pkg/types"
)

// numericHandleSize is the length of a cleartext handle (big-endian uint64)
const numericHandleSize = 8

// Numeric compares cleartext handles. It is meant for deployments where load
// is not confidential, and for tests.
type Numeric struct{}

// NumericHandle encodes load as a cleartext handle
func NumericHandle(load uint64) types.LoadHandle {
	h := make([]byte, numericHandleSize)
	binary.BigEndian.PutUint64(h, load)
	return h
}

// GreaterThan compares the decoded values of a and b
func (Numeric) GreaterThan(a, b types.LoadHandle) bool {
	if len(a) != numericHandleSize || len(b) != numericHandleSize {
		return false
	}
	return binary.BigEndian.Uint64(a) > binary.BigEndian.Uint64(b)
}

// Validate checks the handle length
func (Numeric) Validate(h types.LoadHandle) error {
	if len(h) != numericHandleSize {
		return fmt.Errorf("numeric load handle must be %d bytes, got %d", numericHandleSize, len(h))
	}
	return nil
}

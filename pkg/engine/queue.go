package engine

import (
	"github.com/cuemby/burrow/pkg/types"
)

// DrainOne makes exactly one placement attempt for the first active image,
// in registration order, that still has pending replicas. It does nothing
// when no replica is pending. Callers needing a full drain invoke it again
// on later events.
func (e *Engine) DrainOne(caller types.Principal) error {
	return e.mutate("drain", caller, func() error {
		e.drainOne()
		return nil
	})
}

// HasPending reports whether any active image has queued replicas, that is
// whether DrainOne would do anything
func (e *Engine) HasPending() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.nextPendingImage()
	return ok
}

func (e *Engine) drainOne() {
	if name, ok := e.nextPendingImage(); ok {
		e.deployNextContainer(name)
	}
}

// nextPendingImage returns the first active image with queued replicas
func (e *Engine) nextPendingImage() (string, bool) {
	for _, name := range e.imageOrder {
		if e.images[name].Active && e.pending[name] > 0 {
			return name, true
		}
	}
	return "", false
}

package scheduler

import (
	"errors"
	"sync"
	"time"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/manager"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/rs/zerolog"
)

// Target is the part of the manager the kicker drives
type Target interface {
	IsLeader() bool
	HasPending() bool
	Operator() types.Principal
	Drain(caller types.Principal) error
}

// Kicker periodically submits a queue drain on the leader so queued
// replicas are retried without waiting for a node event
type Kicker struct {
	target   Target
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewKicker creates a kicker. An interval of 0 disables it; Start is then a
// no-op.
func NewKicker(target Target, interval time.Duration) *Kicker {
	return &Kicker{
		target:   target,
		interval: interval,
		logger:   log.WithComponent("kicker"),
	}
}

// Start begins the kicker loop
func (k *Kicker) Start() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.interval <= 0 || k.running {
		return
	}
	k.stopCh = make(chan struct{})
	k.doneCh = make(chan struct{})
	k.running = true
	go k.run(k.stopCh, k.doneCh)

	k.logger.Info().Dur("interval", k.interval).Msg("Drain kicker started")
}

// Stop stops the loop and waits for an in-flight drain to return
func (k *Kicker) Stop() {
	k.mu.Lock()
	if !k.running {
		k.mu.Unlock()
		return
	}
	close(k.stopCh)
	done := k.doneCh
	k.running = false
	k.mu.Unlock()

	<-done
}

func (k *Kicker) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			k.kick()
		case <-stopCh:
			return
		}
	}
}

// kick performs one drain attempt when this manager leads and a replica is
// queued. An idle tick appends nothing to the raft log.
func (k *Kicker) kick() {
	if !k.target.IsLeader() || !k.target.HasPending() {
		return
	}

	err := k.target.Drain(k.target.Operator())
	switch {
	case err == nil:
	case errors.Is(err, manager.ErrNotLeader):
		k.logger.Debug().Msg("Lost leadership before drain committed")
	default:
		k.logger.Error().Err(err).Msg("Drain failed")
	}
}

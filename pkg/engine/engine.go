package engine

import (
	"sync"
	"time"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/rs/zerolog"
)

// Emitter receives notifications after the operation that produced them
// has been applied. Emit runs while the engine holds its emit lock, and a
// concurrent mutation may hold the state lock while waiting for it, so Emit
// must not call back into the Engine and must not block. Hand the
// notification off (events.Broker queues it) and return.
type Emitter interface {
	Emit(n types.Notification)
}

// EmitterFunc adapts a function to Emitter
type EmitterFunc func(n types.Notification)

// Emit calls f(n)
func (f EmitterFunc) Emit(n types.Notification) {
	f(n)
}

// Config holds configuration for creating an Engine
type Config struct {
	// Operator is the only principal allowed to mutate state
	Operator types.Principal

	// Oracle compares confidential load handles. Defaults to oracle.Numeric.
	Oracle oracle.Comparator

	// Emitter receives notifications. Optional.
	Emitter Emitter

	// Clock stamps records. Defaults to time.Now; replicated deployments pass
	// the log entry time so every replica records the same timestamps.
	Clock func() time.Time
}

// node is the registry record for a worker
type node struct {
	id           string
	active       bool
	load         types.LoadHandle
	slots        slotTable
	lastAssigned string
	seq          uint64
	joinedAt     time.Time
	updatedAt    time.Time
}

// Engine is the placement state machine. It owns the node registry, the
// image catalog and the pending-deployment queue. Mutations are serialized
// by a single write lock and are all-or-nothing; queries share a read lock.
type Engine struct {
	mu     sync.RWMutex
	emitMu sync.Mutex

	operator types.Principal
	oracle   oracle.Comparator
	emitter  Emitter
	now      func() time.Time
	logger   zerolog.Logger

	nodes      map[string]*node
	nodeOrder  []string
	images     map[string]*types.Image
	imageOrder []string
	pending    map[string]uint32
	seq        uint64

	// outbox buffers notifications of the operation in progress
	outbox []types.Notification
}

// New creates an empty Engine
func New(cfg Config) *Engine {
	cmp := cfg.Oracle
	if cmp == nil {
		cmp = oracle.Numeric{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Engine{
		operator: cfg.Operator,
		oracle:   cmp,
		emitter:  cfg.Emitter,
		now:      clock,
		logger:   log.WithComponent("engine"),
		nodes:    make(map[string]*node),
		images:   make(map[string]*types.Image),
		pending:  make(map[string]uint32),
	}
}

// mutate runs fn under the write lock after checking authorization. fn must
// validate every precondition before changing state. Notifications queued by
// fn are delivered in order after the lock is released; emitMu is taken
// before the write lock is dropped so concurrent operations cannot reorder
// their notifications.
func (e *Engine) mutate(op string, caller types.Principal, fn func() error) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.OperationDuration, op)

	e.mu.Lock()
	if caller != e.operator || e.operator == "" {
		e.mu.Unlock()
		metrics.OperationsTotal.WithLabelValues(op, "unauthorized").Inc()
		e.logger.Warn().Str("operation", op).Str("caller", string(caller)).Msg("Rejected unauthorized mutation")
		return ErrUnauthorized
	}

	err := fn()
	out := e.outbox
	e.outbox = nil
	if err != nil {
		e.mu.Unlock()
		metrics.OperationsTotal.WithLabelValues(op, "rejected").Inc()
		return err
	}

	e.emitMu.Lock()
	e.mu.Unlock()
	defer e.emitMu.Unlock()

	metrics.OperationsTotal.WithLabelValues(op, "ok").Inc()
	if e.emitter != nil {
		for _, n := range out {
			e.emitter.Emit(n)
		}
	}
	return nil
}

func (e *Engine) emit(n types.Notification) {
	e.outbox = append(e.outbox, n)
}

func (e *Engine) nextSeq() uint64 {
	e.seq++
	return e.seq
}

// decrementDeployed lowers an image's deployed count, clamping at zero
func (e *Engine) decrementDeployed(img *types.Image) {
	if img.Deployed == 0 {
		e.logger.Warn().Str("image", img.Name).Msg("Deployed count already zero, clamping")
		return
	}
	img.Deployed--
}

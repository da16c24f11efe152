package manager

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cuemby/burrow/pkg/engine"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/hashicorp/raft"
	"github.com/rs/zerolog"
)

// Command operations
const (
	OpRegisterNode   = "register_node"
	OpDeregisterNode = "deregister_node"
	OpSetNodeLoad    = "set_node_load"
	OpAddImage       = "add_image"
	OpRemoveImage    = "remove_image"
	OpSetImagePorts  = "set_image_ports"
	OpDrain          = "drain"
)

// Command represents a state change operation in the Raft log
type Command struct {
	Op     string          `json:"op"`
	Caller types.Principal `json:"caller"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// NodePayload carries the arguments of node operations
type NodePayload struct {
	ID   string           `json:"id"`
	Load types.LoadHandle `json:"load,omitempty"`
}

// ImagePayload carries the arguments of image operations
type ImagePayload struct {
	Name     string              `json:"name"`
	Replicas uint32              `json:"replicas,omitempty"`
	Ports    []types.PortMapping `json:"ports,omitempty"`
}

// FSMConfig holds configuration for creating a SchedulerFSM
type FSMConfig struct {
	Operator types.Principal
	Oracle   oracle.Comparator
	Emitter  engine.Emitter

	// Store receives the engine state after every applied command. Optional.
	Store storage.Store
}

// SchedulerFSM implements the Raft Finite State Machine over the placement
// engine. It applies log entries to the engine and handles snapshots.
type SchedulerFSM struct {
	mu     sync.Mutex
	engine *engine.Engine
	store  storage.Store
	logger zerolog.Logger

	// applyTime is the append time of the entry being applied; every
	// replica stamps records with it
	applyTime time.Time

	// lastIndex is the index of the last entry applied
	lastIndex uint64

	// storeErr is the last write-through failure, cleared on success
	storeErr error
}

// NewSchedulerFSM creates a new FSM instance
func NewSchedulerFSM(cfg FSMConfig) *SchedulerFSM {
	f := &SchedulerFSM{
		store:  cfg.Store,
		logger: log.WithComponent("fsm"),
	}
	f.engine = engine.New(engine.Config{
		Operator: cfg.Operator,
		Oracle:   cfg.Oracle,
		Emitter:  cfg.Emitter,
		Clock:    f.now,
	})
	return f
}

// Engine returns the engine for queries. Mutations must go through the log.
func (f *SchedulerFSM) Engine() *engine.Engine {
	return f.engine
}

// StoreError returns the last write-through failure, if any
func (f *SchedulerFSM) StoreError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.storeErr
}

func (f *SchedulerFSM) now() time.Time {
	if f.applyTime.IsZero() {
		return time.Now()
	}
	return f.applyTime
}

// Apply applies a Raft log entry to the FSM
// This is called by Raft when a log entry is committed
func (f *SchedulerFSM) Apply(l *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(l.Data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal command: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastIndex = l.Index
	f.applyTime = l.AppendedAt
	defer func() { f.applyTime = time.Time{} }()

	if err := f.dispatch(cmd); err != nil {
		f.logger.Debug().Err(err).Str("op", cmd.Op).Uint64("index", l.Index).Msg("Command rejected")
		return err
	}

	f.persist(l.Index)
	return nil
}

func (f *SchedulerFSM) dispatch(cmd Command) error {
	e := f.engine

	switch cmd.Op {
	// Node operations
	case OpRegisterNode:
		var p NodePayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return err
		}
		return e.RegisterNode(cmd.Caller, p.ID, p.Load)

	case OpDeregisterNode:
		var p NodePayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return err
		}
		return e.DeregisterNode(cmd.Caller, p.ID)

	case OpSetNodeLoad:
		var p NodePayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return err
		}
		return e.SetNodeLoad(cmd.Caller, p.ID, p.Load)

	// Image operations
	case OpAddImage:
		var p ImagePayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return err
		}
		return e.AddImage(cmd.Caller, p.Name, p.Replicas)

	case OpRemoveImage:
		var p ImagePayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return err
		}
		return e.RemoveImage(cmd.Caller, p.Name)

	case OpSetImagePorts:
		var p ImagePayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return err
		}
		return e.SetImagePorts(cmd.Caller, p.Name, p.Ports)

	// Queue operations
	case OpDrain:
		return e.DrainOne(cmd.Caller)

	default:
		return fmt.Errorf("unknown command: %s", cmd.Op)
	}
}

// persist writes the engine state through to the store. A failure does not
// undo the command: the log stays authoritative and the next successful
// write catches the tables up.
func (f *SchedulerFSM) persist(index uint64) {
	if f.store == nil {
		return
	}
	if err := f.store.SaveState(f.engine.State(), index); err != nil {
		f.storeErr = err
		f.logger.Error().Err(err).Uint64("index", index).Msg("Failed to write state to store")
		return
	}
	f.storeErr = nil
}

// Snapshot creates a point-in-time snapshot of the FSM
// This is called periodically by Raft to compact the log
func (f *SchedulerFSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return &SchedulerSnapshot{State: f.engine.State(), Index: f.lastIndex}, nil
}

// Restore restores the FSM from a snapshot
// This is called when a node restarts or joins the cluster
func (f *SchedulerFSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var snapshot SchedulerSnapshot
	if err := json.NewDecoder(rc).Decode(&snapshot); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snapshot.State == nil {
		return fmt.Errorf("snapshot has no state")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.engine.Restore(snapshot.State); err != nil {
		return fmt.Errorf("failed to restore engine: %w", err)
	}
	f.lastIndex = snapshot.Index

	if f.store != nil {
		if err := f.store.SaveState(snapshot.State, snapshot.Index); err != nil {
			f.storeErr = err
			return fmt.Errorf("failed to restore store: %w", err)
		}
		f.storeErr = nil
	}

	f.logger.Info().
		Int("nodes", len(snapshot.State.Nodes)).
		Int("images", len(snapshot.State.Images)).
		Msg("Restored from snapshot")
	return nil
}

// SchedulerSnapshot represents a point-in-time snapshot of scheduler state
type SchedulerSnapshot struct {
	State *engine.State `json:"state"`

	// Index is the last raft index applied before the snapshot
	Index uint64 `json:"index,omitempty"`
}

// Persist writes the snapshot to the given SnapshotSink
func (s *SchedulerSnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		// Encode snapshot as JSON
		if err := json.NewEncoder(sink).Encode(s); err != nil {
			return err
		}
		return sink.Close()
	}()

	if err != nil {
		sink.Cancel()
	}

	return err
}

// Release releases the snapshot resources
func (s *SchedulerSnapshot) Release() {}

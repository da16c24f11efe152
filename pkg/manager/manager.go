package manager

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/cuemby/burrow/pkg/engine"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
	"github.com/rs/zerolog"
)

const defaultApplyTimeout = 5 * time.Second

// ErrNotLeader is returned when a command is submitted to a follower
var ErrNotLeader = errors.New("not the leader")

// Manager represents a burrow manager node: a raft replica whose state
// machine is the placement engine
type Manager struct {
	nodeID   string
	bindAddr string
	dataDir  string
	inMemory bool

	applyTimeout time.Duration

	raft         *raft.Raft
	transport    raft.Transport
	fsm          *SchedulerFSM
	store        storage.Store
	tokenManager *TokenManager
	eventBroker  *events.Broker
	logger       zerolog.Logger
}

// Config holds configuration for creating a Manager
type Config struct {
	NodeID   string
	BindAddr string
	DataDir  string

	// Operator is the principal allowed to mutate scheduler state
	Operator types.Principal

	// OperatorToken authenticates API callers as Operator. Optional.
	OperatorToken string

	// Oracle compares load handles. Defaults to oracle.Numeric.
	Oracle oracle.Comparator

	// InMemory keeps the raft log, stable store and snapshots in memory and
	// uses an in-memory transport. The materialized store is still opened
	// when DataDir is set.
	InMemory bool

	// ApplyTimeout bounds how long a command may wait to be committed
	ApplyTimeout time.Duration
}

// NewManager creates a new Manager instance
func NewManager(cfg *Config) (*Manager, error) {
	if cfg.NodeID == "" {
		return nil, fmt.Errorf("node id is required")
	}
	if cfg.Operator == "" {
		return nil, fmt.Errorf("operator principal is required")
	}

	var store storage.Store
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}

		// Create BoltDB store
		s, err := storage.NewBoltStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
		store = s
	} else if !cfg.InMemory {
		return nil, fmt.Errorf("data directory is required unless running in memory")
	}

	// Create event broker
	eventBroker := events.NewBroker()

	// Create FSM
	fsm := NewSchedulerFSM(FSMConfig{
		Operator: cfg.Operator,
		Oracle:   cfg.Oracle,
		Emitter:  eventBroker,
		Store:    store,
	})

	// Create token manager
	tokenManager := NewTokenManager(cfg.Operator)
	if cfg.OperatorToken != "" {
		tokenManager.SetStaticToken(cfg.OperatorToken)
	}

	applyTimeout := cfg.ApplyTimeout
	if applyTimeout == 0 {
		applyTimeout = defaultApplyTimeout
	}

	m := &Manager{
		nodeID:       cfg.NodeID,
		bindAddr:     cfg.BindAddr,
		dataDir:      cfg.DataDir,
		inMemory:     cfg.InMemory,
		applyTimeout: applyTimeout,
		fsm:          fsm,
		store:        store,
		tokenManager: tokenManager,
		eventBroker:  eventBroker,
		logger:       log.WithNodeID(cfg.NodeID),
	}

	return m, nil
}

// Bootstrap initializes a new single-node Raft cluster
func (m *Manager) Bootstrap() error {
	if err := m.startRaft(); err != nil {
		return err
	}

	// Bootstrap cluster with this node as the only member
	configuration := raft.Configuration{
		Servers: []raft.Server{
			{
				ID:      raft.ServerID(m.nodeID),
				Address: m.transport.LocalAddr(),
			},
		},
	}

	future := m.raft.BootstrapCluster(configuration)
	if err := future.Error(); err != nil && !errors.Is(err, raft.ErrCantBootstrap) {
		return fmt.Errorf("failed to bootstrap cluster: %w", err)
	}

	m.logger.Info().Str("raft_addr", string(m.transport.LocalAddr())).Msg("Bootstrapped cluster")
	return nil
}

// Start brings up raft without bootstrapping. The node waits for a leader
// to add it with AddVoter, or resumes an existing cluster from its data dir.
func (m *Manager) Start() error {
	if err := m.startRaft(); err != nil {
		return err
	}
	m.logger.Info().Str("raft_addr", string(m.transport.LocalAddr())).Msg("Raft started, waiting for cluster membership")
	return nil
}

func (m *Manager) startRaft() error {
	if m.raft != nil {
		return fmt.Errorf("raft already started")
	}

	raftLogger := log.WithComponent("raft")

	config := raft.DefaultConfig()
	config.LocalID = raft.ServerID(m.nodeID)
	config.LogOutput = raftLogger

	// Faster failover than the WAN-oriented defaults
	config.HeartbeatTimeout = 500 * time.Millisecond
	config.ElectionTimeout = 500 * time.Millisecond
	config.CommitTimeout = 50 * time.Millisecond
	config.LeaderLeaseTimeout = 250 * time.Millisecond

	var (
		logStore      raft.LogStore
		stableStore   raft.StableStore
		snapshotStore raft.SnapshotStore
	)

	if m.inMemory {
		addr := raft.ServerAddress(m.bindAddr)
		if addr == "" {
			addr = raft.NewInmemAddr()
		}
		_, transport := raft.NewInmemTransport(addr)
		m.transport = transport

		inmem := raft.NewInmemStore()
		logStore = inmem
		stableStore = inmem
		snapshotStore = raft.NewInmemSnapshotStore()
	} else {
		// Setup Raft communication
		addr, err := net.ResolveTCPAddr("tcp", m.bindAddr)
		if err != nil {
			return fmt.Errorf("failed to resolve bind address: %w", err)
		}

		transport, err := raft.NewTCPTransport(m.bindAddr, addr, 3, 10*time.Second, raftLogger)
		if err != nil {
			return fmt.Errorf("failed to create transport: %w", err)
		}
		m.transport = transport

		// Create snapshot store
		snapshotStore, err = raft.NewFileSnapshotStore(m.dataDir, 2, raftLogger)
		if err != nil {
			return fmt.Errorf("failed to create snapshot store: %w", err)
		}

		// Create log store and stable store using BoltDB
		logStorePath := filepath.Join(m.dataDir, "raft-log.db")
		boltLog, err := raftboltdb.NewBoltStore(logStorePath)
		if err != nil {
			return fmt.Errorf("failed to create log store: %w", err)
		}
		logStore = boltLog

		stableStorePath := filepath.Join(m.dataDir, "raft-stable.db")
		boltStable, err := raftboltdb.NewBoltStore(stableStorePath)
		if err != nil {
			return fmt.Errorf("failed to create stable store: %w", err)
		}
		stableStore = boltStable
	}

	// Create Raft instance
	r, err := raft.NewRaft(config, m.fsm, logStore, stableStore, snapshotStore, m.transport)
	if err != nil {
		return fmt.Errorf("failed to create raft: %w", err)
	}

	m.raft = r
	return nil
}

// AddVoter adds a new manager node to the Raft cluster
func (m *Manager) AddVoter(nodeID, address string) error {
	if m.raft == nil {
		return fmt.Errorf("raft not initialized")
	}

	if !m.IsLeader() {
		return fmt.Errorf("%w, current leader: %s", ErrNotLeader, m.LeaderAddr())
	}

	future := m.raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(address), 0, 10*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to add voter: %w", err)
	}

	m.logger.Info().Str("voter_id", nodeID).Str("address", address).Msg("Added voter")
	return nil
}

// RemoveServer removes a server from the Raft cluster
func (m *Manager) RemoveServer(nodeID string) error {
	if m.raft == nil {
		return fmt.Errorf("raft not initialized")
	}

	if !m.IsLeader() {
		return fmt.Errorf("%w, current leader: %s", ErrNotLeader, m.LeaderAddr())
	}

	future := m.raft.RemoveServer(raft.ServerID(nodeID), 0, 10*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to remove server: %w", err)
	}

	m.logger.Info().Str("server_id", nodeID).Msg("Removed server")
	return nil
}

// GetClusterServers returns information about all servers in the Raft cluster
func (m *Manager) GetClusterServers() ([]raft.Server, error) {
	if m.raft == nil {
		return nil, fmt.Errorf("raft not initialized")
	}

	future := m.raft.GetConfiguration()
	if err := future.Error(); err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	return future.Configuration().Servers, nil
}

// IsLeader returns true if this manager is the Raft leader
func (m *Manager) IsLeader() bool {
	if m.raft == nil {
		return false
	}
	return m.raft.State() == raft.Leader
}

// LeaderAddr returns the address of the current Raft leader
func (m *Manager) LeaderAddr() string {
	if m.raft == nil {
		return ""
	}
	addr, _ := m.raft.LeaderWithID()
	return string(addr)
}

// WaitForLeader blocks until the cluster has a leader or timeout elapses
func (m *Manager) WaitForLeader(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.LeaderAddr() != "" {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return fmt.Errorf("no leader elected within %s", timeout)
}

// Ready reports whether the manager can serve requests: raft knows a leader
// and the last write-through to the store succeeded
func (m *Manager) Ready() error {
	if m.raft == nil {
		return fmt.Errorf("raft not initialized")
	}
	if m.LeaderAddr() == "" {
		return fmt.Errorf("no raft leader")
	}
	if err := m.fsm.StoreError(); err != nil {
		return fmt.Errorf("store write-through failing: %w", err)
	}
	return nil
}

// GetRaftStats returns Raft statistics
func (m *Manager) GetRaftStats() map[string]interface{} {
	if m.raft == nil {
		return nil
	}

	stats := make(map[string]interface{})
	stats["state"] = m.raft.State().String()
	stats["last_log_index"] = m.raft.LastIndex()
	stats["applied_index"] = m.raft.AppliedIndex()
	stats["leader"] = m.LeaderAddr()

	if servers, err := m.GetClusterServers(); err == nil {
		stats["peers"] = uint64(len(servers))
	}

	return stats
}

// GetEventBroker returns the event broker
func (m *Manager) GetEventBroker() *events.Broker {
	return m.eventBroker
}

// Engine returns the placement engine for queries
func (m *Manager) Engine() *engine.Engine {
	return m.fsm.Engine()
}

// HasPending reports whether any active image has queued replicas
func (m *Manager) HasPending() bool {
	return m.fsm.Engine().HasPending()
}

// Store returns the materialized store, or nil when none is configured
func (m *Manager) Store() storage.Store {
	return m.store
}

// StoreError returns the last write-through failure, if any
func (m *Manager) StoreError() error {
	return m.fsm.StoreError()
}

// NodeID returns the raft id of this manager
func (m *Manager) NodeID() string {
	return m.nodeID
}

// Apply submits a command to the Raft cluster. Engine errors come back
// unwrapped so callers can match them with errors.Is.
func (m *Manager) Apply(cmd Command) error {
	if m.raft == nil {
		return fmt.Errorf("raft not initialized")
	}
	if !m.IsLeader() {
		return fmt.Errorf("%w, current leader: %s", ErrNotLeader, m.LeaderAddr())
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	future := m.raft.Apply(data, m.applyTimeout)
	if err := future.Error(); err != nil {
		if errors.Is(err, raft.ErrNotLeader) || errors.Is(err, raft.ErrLeadershipLost) {
			return fmt.Errorf("%w: %v", ErrNotLeader, err)
		}
		return fmt.Errorf("failed to apply command: %w", err)
	}

	// Check if apply returned an error
	if resp := future.Response(); resp != nil {
		if err, ok := resp.(error); ok && err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) applyPayload(op string, caller types.Principal, payload interface{}) error {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		data = raw
	}
	return m.Apply(Command{Op: op, Caller: caller, Data: data})
}

// RegisterNode replicates a node registration
func (m *Manager) RegisterNode(caller types.Principal, id string, load types.LoadHandle) error {
	return m.applyPayload(OpRegisterNode, caller, NodePayload{ID: id, Load: load})
}

// DeregisterNode replicates a node leaving
func (m *Manager) DeregisterNode(caller types.Principal, id string) error {
	return m.applyPayload(OpDeregisterNode, caller, NodePayload{ID: id})
}

// SetNodeLoad replicates a load update
func (m *Manager) SetNodeLoad(caller types.Principal, id string, load types.LoadHandle) error {
	return m.applyPayload(OpSetNodeLoad, caller, NodePayload{ID: id, Load: load})
}

// AddImage replicates an image addition
func (m *Manager) AddImage(caller types.Principal, name string, replicas uint32) error {
	return m.applyPayload(OpAddImage, caller, ImagePayload{Name: name, Replicas: replicas})
}

// RemoveImage replicates an image removal
func (m *Manager) RemoveImage(caller types.Principal, name string) error {
	return m.applyPayload(OpRemoveImage, caller, ImagePayload{Name: name})
}

// SetImagePorts replicates a port list update
func (m *Manager) SetImagePorts(caller types.Principal, name string, ports []types.PortMapping) error {
	return m.applyPayload(OpSetImagePorts, caller, ImagePayload{Name: name, Ports: ports})
}

// Drain replicates one drain attempt
func (m *Manager) Drain(caller types.Principal) error {
	return m.applyPayload(OpDrain, caller, nil)
}

// Operator returns the principal allowed to mutate state
func (m *Manager) Operator() types.Principal {
	return m.tokenManager.Operator()
}

// Authenticate resolves an API token to a principal
func (m *Manager) Authenticate(token string) (types.Principal, error) {
	return m.tokenManager.Authenticate(token)
}

// GenerateToken issues a temporary operator token. Generated tokens live in
// this manager's memory only; they are not replicated and do not survive a
// restart.
func (m *Manager) GenerateToken(duration time.Duration) (*OperatorToken, error) {
	ot, err := m.tokenManager.GenerateToken(duration)
	if err != nil {
		return nil, err
	}
	m.logger.Info().Str("token_id", ot.ID).Time("expires_at", ot.ExpiresAt).Msg("Issued operator token")
	return ot, nil
}

// RevokeToken revokes a generated token by ID
func (m *Manager) RevokeToken(id string) bool {
	revoked := m.tokenManager.RevokeToken(id)
	if revoked {
		m.logger.Info().Str("token_id", id).Msg("Revoked operator token")
	}
	return revoked
}

// ListTokens lists the generated tokens without their secrets
func (m *Manager) ListTokens() []*OperatorToken {
	return m.tokenManager.ListTokens()
}

// CleanupExpiredTokens drops expired generated tokens
func (m *Manager) CleanupExpiredTokens() int {
	removed := m.tokenManager.CleanupExpiredTokens()
	if removed > 0 {
		m.logger.Debug().Int("removed", removed).Msg("Cleaned up expired tokens")
	}
	return removed
}

// Shutdown gracefully shuts down the manager
func (m *Manager) Shutdown() error {
	// Stop event broker
	if m.eventBroker != nil {
		m.eventBroker.Stop()
	}

	if m.raft != nil {
		future := m.raft.Shutdown()
		if err := future.Error(); err != nil {
			return fmt.Errorf("failed to shutdown raft: %w", err)
		}
	}

	if closer, ok := m.transport.(raft.WithClose); ok {
		if err := closer.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to close raft transport")
		}
	}

	if m.store != nil {
		if err := m.store.Close(); err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
	}

	return nil
}

/*
Package manager runs the placement engine as a replicated state machine on
top of hashicorp/raft.

# Architecture

	┌──────────────────────── MANAGER NODE ────────────────────────┐
	│                                                                │
	│  gRPC API ──▶ Manager.RegisterNode / AddImage / Drain ...      │
	│                     │                                          │
	│                     ▼  Command{Op, Caller, Data} (JSON)        │
	│               raft.Apply ──▶ replicated log                    │
	│                     │                                          │
	│                     ▼                                          │
	│               SchedulerFSM.Apply                               │
	│                 ├─ engine.Engine mutation                      │
	│                 ├─ notifications ──▶ events.Broker             │
	│                 └─ write-through ──▶ storage.BoltStore         │
	│                                                                │
	│  Queries read the local engine directly.                       │
	└────────────────────────────────────────────────────────────────┘

Every mutation carries the caller principal inside the command, so the
engine's authorization check runs identically on every replica. Commands
are stamped with the leader's append time and the FSM hands that time to
the engine as its clock; replicas therefore agree on record timestamps.

The engine's error for a rejected command is returned as the raft apply
response. Manager.Apply passes it back unwrapped so API handlers can match
engine.ErrUnauthorized and engine.ErrValidation with errors.Is.

# Snapshots

Snapshot serializes engine.State as JSON together with the last applied
index. Restore rebuilds the engine with engine.Restore and rewrites the
materialized store.

# Storage

With a data directory the raft log and stable store live in raft-log.db and
raft-stable.db (raft-boltdb) and snapshots in the file snapshot store. The
materialized tables live in burrow.db. Config.InMemory swaps the raft
stores and transport for in-memory versions; tests and single-process tools
use it.

# Authentication

TokenManager resolves API bearer tokens to the operator principal: one
static token from configuration and any number of generated tokens with an
expiry. Generated tokens live only in the memory of the manager that issued
them; they are not replicated and do not survive a restart.

# Usage

	mgr, err := manager.NewManager(&manager.Config{
		NodeID:        "manager-1",
		BindAddr:      "127.0.0.1:7946",
		DataDir:       "/var/lib/burrow",
		Operator:      "admin",
		OperatorToken: token,
	})
	if err != nil {
		return err
	}
	if err := mgr.Bootstrap(); err != nil {
		return err
	}
	defer mgr.Shutdown()

	err = mgr.AddImage("admin", "web", 3)
*/
package manager

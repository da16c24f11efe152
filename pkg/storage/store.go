package storage

import (
	"errors"

	"github.com/cuemby/burrow/pkg/engine"
	"github.com/cuemby/burrow/pkg/types"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// Store holds the materialized scheduler tables: the node registry, the image
// catalog and the pending-deployment queue
type Store interface {
	// SaveState replaces every table with s and records the raft index it
	// reflects
	SaveState(s *engine.State, appliedIndex uint64) error

	// LoadState reads every table back
	LoadState() (*engine.State, error)

	// AppliedIndex returns the raft index of the last SaveState
	AppliedIndex() (uint64, error)

	// Nodes
	GetNode(id string) (*types.Node, error)
	ListNodes() ([]*types.Node, error)

	// Images
	GetImage(name string) (*types.Image, error)
	ListImages() ([]*types.Image, error)

	// Queue
	GetPending(name string) (uint32, error)
	ListPending() (map[string]uint32, error)

	// Utility
	Close() error
}

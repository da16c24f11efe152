package types

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// LoadHandle is an opaque, comparison-only capacity signal reported by a node.
// Its bytes are meaningful only to the oracle that produced it.
type LoadHandle []byte

// String never reveals the handle contents
func (h LoadHandle) String() string {
	if len(h) == 0 {
		return "<empty>"
	}
	return "<sealed>"
}

// MarshalJSON encodes the handle as base64 so it survives the raft log and snapshots
func (h LoadHandle) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}
	return json.Marshal(base64.StdEncoding.EncodeToString(h))
}

// UnmarshalJSON decodes a base64 handle
func (h *LoadHandle) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	*h = raw
	return nil
}

// Node represents a worker capable of hosting containers
type Node struct {
	ID     string
	Active bool
	Load   LoadHandle

	// Containers holds one image name per occupied slot; slot i is Containers[i]
	Containers []string

	// LastAssigned is the image most recently placed on this node
	LastAssigned string

	// Seq is the registration order of the node
	Seq uint64

	JoinedAt  time.Time
	UpdatedAt time.Time
}

// ContainerCount returns the number of occupied slots
func (n *Node) ContainerCount() int {
	return len(n.Containers)
}

// Image represents a deployable workload with a replica target
type Image struct {
	Name          string
	ReplicaTarget uint32
	Deployed      uint32
	Active        bool
	Ports         []PortMapping

	// Seq is the registration order of the image name; reactivation keeps it
	Seq uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PortMapping defines a port exposed by an image
type PortMapping struct {
	From uint32 `json:"from" yaml:"from"` // Port on the node
	To   uint32 `json:"to" yaml:"to"`     // Port inside the container
}

// ImageStatus is the query view of an image
type ImageStatus struct {
	Replicas uint32
	Deployed uint32
	Active   bool
}

// NotificationKind identifies a lifecycle or assignment notification
type NotificationKind string

const (
	NotificationNodeJoined          NotificationKind = "node.joined"
	NotificationNodeLeft            NotificationKind = "node.left"
	NotificationNodeImageAssigned   NotificationKind = "node.image_assigned"
	NotificationNodeLoadUpdated     NotificationKind = "node.load_updated"
	NotificationContainerAssigned   NotificationKind = "container.assigned"
	NotificationContainerRemoved    NotificationKind = "container.removed"
	NotificationDeploymentQueued    NotificationKind = "deployment.queued"
	NotificationDeploymentCompleted NotificationKind = "deployment.completed"
)

// Notification is emitted by the scheduler for audit and automation.
// Fields irrelevant to a kind are left zero.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	NodeID    string           `json:"node_id,omitempty"`
	Image     string           `json:"image,omitempty"`
	Slot      int              `json:"slot"`
	Remaining uint32           `json:"remaining"`
}

// Principal identifies the caller of an administrative operation
type Principal string

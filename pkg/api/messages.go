package api

import (
	"time"

	"github.com/cuemby/burrow/pkg/types"
)

// Empty is used by calls without arguments or results
type Empty struct{}

// NodeRequest addresses a node. Load is set for registration and load
// updates only.
type NodeRequest struct {
	NodeID string           `json:"node_id"`
	Load   types.LoadHandle `json:"load,omitempty"`
}

// ImageRequest addresses an image. Replicas is set for AddImage and Ports
// for SetImagePorts.
type ImageRequest struct {
	Image    string              `json:"image"`
	Replicas uint32              `json:"replicas,omitempty"`
	Ports    []types.PortMapping `json:"ports,omitempty"`
}

// JoinRequest asks the leader to add a manager as a raft voter
type JoinRequest struct {
	NodeID   string `json:"node_id"`
	RaftAddr string `json:"raft_addr"`
}

// LeaveRequest asks the leader to remove a manager from the raft cluster
type LeaveRequest struct {
	NodeID string `json:"node_id"`
}

// TokenRequest carries the lifetime of a token to create, or the ID of a
// token to revoke
type TokenRequest struct {
	TTL time.Duration `json:"ttl,omitempty"`
	ID  string        `json:"id,omitempty"`
}

// TokenInfo describes a generated operator token. Token is only set in the
// response to CreateToken.
type TokenInfo struct {
	ID        string    `json:"id"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenListResponse lists generated tokens
type TokenListResponse struct {
	Tokens []TokenInfo `json:"tokens"`
}

// CountsResponse reports registry and catalog sizes
type CountsResponse struct {
	Nodes  int `json:"nodes"`
	Images int `json:"images"`
}

// ImageStatusResponse reports an image's replica target, deployed count
// and active flag
type ImageStatusResponse struct {
	Replicas uint32 `json:"replicas"`
	Deployed uint32 `json:"deployed"`
	Active   bool   `json:"active"`
}

// PendingCountResponse reports queued replicas of an image
type PendingCountResponse struct {
	Count uint32 `json:"count"`
}

// NodeImagesResponse lists the image of each slot on a node
type NodeImagesResponse struct {
	Images []string `json:"images"`
}

// ImageHostsResponse lists the nodes running an image
type ImageHostsResponse struct {
	Nodes []string `json:"nodes"`
}

// NodeActiveResponse reports whether a node is active
type NodeActiveResponse struct {
	Active bool `json:"active"`
}

// ImagePortsResponse lists an image's exposed ports
type ImagePortsResponse struct {
	Ports []types.PortMapping `json:"ports"`
}

// ClusterServer describes one raft member
type ClusterServer struct {
	ID       string `json:"id"`
	Address  string `json:"address"`
	Suffrage string `json:"suffrage"`
}

// ClusterInfoResponse describes the raft cluster
type ClusterInfoResponse struct {
	Leader  string          `json:"leader"`
	Servers []ClusterServer `json:"servers"`
}

// WatchRequest opens a notification stream
type WatchRequest struct{}

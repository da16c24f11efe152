package engine

import (
	"github.com/cuemby/burrow/pkg/types"
)

// NodeCount returns the number of nodes ever registered, active or not
func (e *Engine) NodeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.nodes)
}

// ImageCount returns the number of image names ever added, active or not
func (e *Engine) ImageCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.images)
}

// ImageStatus returns the replica target, deployed count and active flag
// of name. Unknown images report the zero status.
func (e *Engine) ImageStatus(name string) types.ImageStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	img, ok := e.images[name]
	if !ok {
		return types.ImageStatus{}
	}
	return types.ImageStatus{
		Replicas: img.ReplicaTarget,
		Deployed: img.Deployed,
		Active:   img.Active,
	}
}

// PendingCount returns the number of queued replicas of name
func (e *Engine) PendingCount(name string) uint32 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pending[name]
}

// NodeImages returns the image of every slot on node id, in slot order
func (e *Engine) NodeImages(id string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n, ok := e.nodes[id]
	if !ok {
		return []string{}
	}
	return n.slots.names()
}

// ImageHosts returns the nodes running at least one container of name,
// in registration order
func (e *Engine) ImageHosts(name string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	hosts := []string{}
	for _, id := range e.nodeOrder {
		if e.nodes[id].slots.countOf(name) > 0 {
			hosts = append(hosts, id)
		}
	}
	return hosts
}

// NodeActive reports whether id is registered and active
func (e *Engine) NodeActive(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n, ok := e.nodes[id]
	return ok && n.active
}

// ImagePorts returns the exposed ports of name
func (e *Engine) ImagePorts(name string) []types.PortMapping {
	e.mu.RLock()
	defer e.mu.RUnlock()

	img, ok := e.images[name]
	if !ok {
		return []types.PortMapping{}
	}
	return append([]types.PortMapping{}, img.Ports...)
}

// Nodes returns a copy of every node record in registration order
func (e *Engine) Nodes() []*types.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()

	nodes := make([]*types.Node, 0, len(e.nodeOrder))
	for _, id := range e.nodeOrder {
		nodes = append(nodes, e.nodes[id].toType())
	}
	return nodes
}

// Images returns a copy of every image record in registration order
func (e *Engine) Images() []*types.Image {
	e.mu.RLock()
	defer e.mu.RUnlock()

	images := make([]*types.Image, 0, len(e.imageOrder))
	for _, name := range e.imageOrder {
		images = append(images, copyImage(e.images[name]))
	}
	return images
}

func (n *node) toType() *types.Node {
	return &types.Node{
		ID:           n.id,
		Active:       n.active,
		Load:         cloneHandle(n.load),
		Containers:   n.slots.names(),
		LastAssigned: n.lastAssigned,
		Seq:          n.seq,
		JoinedAt:     n.joinedAt,
		UpdatedAt:    n.updatedAt,
	}
}

func copyImage(img *types.Image) *types.Image {
	out := *img
	out.Ports = append([]types.PortMapping(nil), img.Ports...)
	return &out
}

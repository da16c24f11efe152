package engine

import (
	"fmt"
	"sort"

	"github.com/cuemby/burrow/pkg/types"
)

// State is the persisted form of the engine: the node registry, the image
// catalog and the pending queue. Everything else is derived.
type State struct {
	Nodes   []*types.Node
	Images  []*types.Image
	Pending map[string]uint32
	Seq     uint64
}

// State returns a deep copy of the current state
func (e *Engine) State() *State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := &State{
		Nodes:   make([]*types.Node, 0, len(e.nodeOrder)),
		Images:  make([]*types.Image, 0, len(e.imageOrder)),
		Pending: make(map[string]uint32, len(e.pending)),
		Seq:     e.seq,
	}
	for _, id := range e.nodeOrder {
		s.Nodes = append(s.Nodes, e.nodes[id].toType())
	}
	for _, name := range e.imageOrder {
		s.Images = append(s.Images, copyImage(e.images[name]))
	}
	for name, count := range e.pending {
		if count > 0 {
			s.Pending[name] = count
		}
	}
	return s
}

// Restore replaces the engine state with s. Registration order is rebuilt
// from the records' sequence numbers. No notifications are emitted.
func (e *Engine) Restore(s *State) error {
	nodes := make(map[string]*node, len(s.Nodes))
	nodeOrder := make([]string, 0, len(s.Nodes))
	seq := s.Seq

	sortedNodes := append([]*types.Node(nil), s.Nodes...)
	sort.SliceStable(sortedNodes, func(i, j int) bool { return sortedNodes[i].Seq < sortedNodes[j].Seq })
	for _, n := range sortedNodes {
		if n.ID == "" {
			return fmt.Errorf("restore: node with empty id")
		}
		if _, dup := nodes[n.ID]; dup {
			return fmt.Errorf("restore: duplicate node %s", n.ID)
		}
		nodes[n.ID] = &node{
			id:           n.ID,
			active:       n.Active,
			load:         cloneHandle(n.Load),
			slots:        slotTable(append([]string(nil), n.Containers...)),
			lastAssigned: n.LastAssigned,
			seq:          n.Seq,
			joinedAt:     n.JoinedAt,
			updatedAt:    n.UpdatedAt,
		}
		nodeOrder = append(nodeOrder, n.ID)
		if n.Seq > seq {
			seq = n.Seq
		}
	}

	images := make(map[string]*types.Image, len(s.Images))
	imageOrder := make([]string, 0, len(s.Images))
	sortedImages := append([]*types.Image(nil), s.Images...)
	sort.SliceStable(sortedImages, func(i, j int) bool { return sortedImages[i].Seq < sortedImages[j].Seq })
	for _, img := range sortedImages {
		if img.Name == "" {
			return fmt.Errorf("restore: image with empty name")
		}
		if _, dup := images[img.Name]; dup {
			return fmt.Errorf("restore: duplicate image %s", img.Name)
		}
		images[img.Name] = copyImage(img)
		imageOrder = append(imageOrder, img.Name)
		if img.Seq > seq {
			seq = img.Seq
		}
	}

	pending := make(map[string]uint32, len(s.Pending))
	for name, count := range s.Pending {
		if _, ok := images[name]; !ok {
			return fmt.Errorf("restore: pending replicas for unknown image %s", name)
		}
		pending[name] = count
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodes = nodes
	e.nodeOrder = nodeOrder
	e.images = images
	e.imageOrder = imageOrder
	e.pending = pending
	e.seq = seq
	return nil
}

// Verify checks the bookkeeping invariants: no image is over its replica
// target, the containers of every active image add up to its deployed count,
// inactive nodes hold no containers and queued plus deployed replicas never
// exceed the target.
func (e *Engine) Verify() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	counted := make(map[string]uint32)
	for _, id := range e.nodeOrder {
		n := e.nodes[id]
		if !n.active && n.slots.count() > 0 {
			return fmt.Errorf("inactive node %s holds %d containers", id, n.slots.count())
		}
		for _, name := range n.slots {
			counted[name]++
		}
	}

	for _, name := range e.imageOrder {
		img := e.images[name]
		if img.Deployed > img.ReplicaTarget {
			return fmt.Errorf("image %s has %d deployed, over its target of %d", name, img.Deployed, img.ReplicaTarget)
		}
		if !img.Active {
			if counted[name] > 0 {
				return fmt.Errorf("inactive image %s still has %d containers", name, counted[name])
			}
			continue
		}
		if counted[name] != img.Deployed {
			return fmt.Errorf("image %s has %d containers but deployed count %d", name, counted[name], img.Deployed)
		}
		if uint64(img.Deployed)+uint64(e.pending[name]) > uint64(img.ReplicaTarget) {
			return fmt.Errorf("image %s has %d deployed and %d pending, over its target of %d",
				name, img.Deployed, e.pending[name], img.ReplicaTarget)
		}
	}
	return nil
}

package engine

import (
	"github.com/cuemby/burrow/pkg/types"
)

// RegisterNode adds id to the registry as an active node, or reactivates a
// node that previously left. The node then receives one fair-share initial
// assignment attempt.
func (e *Engine) RegisterNode(caller types.Principal, id string, load types.LoadHandle) error {
	return e.mutate("register_node", caller, func() error {
		if id == "" {
			return validationErrorf("node id cannot be empty")
		}
		if err := e.oracle.Validate(load); err != nil {
			return validationErrorf("invalid load handle for node %s: %v", id, err)
		}
		n, exists := e.nodes[id]
		if exists && n.active {
			return validationErrorf("node %s is already active", id)
		}

		now := e.now()
		if !exists {
			n = &node{id: id, seq: e.nextSeq()}
			e.nodes[id] = n
			e.nodeOrder = append(e.nodeOrder, id)
		}
		n.active = true
		n.load = cloneHandle(load)
		n.slots = nil
		n.joinedAt = now
		n.updatedAt = now

		e.emit(types.Notification{Kind: types.NotificationNodeJoined, NodeID: id})
		e.logger.Info().Str("node_id", id).Msg("Node joined")

		image, ok := e.nextImageForNewNode()
		if !ok {
			return nil
		}
		if placedOn, placed := e.deployNextContainer(image); placed && placedOn == id {
			e.emit(types.Notification{Kind: types.NotificationNodeImageAssigned, NodeID: id, Image: image})
		}
		return nil
	})
}

// DeregisterNode marks id inactive. Every container on it is requeued and
// each affected image gets one immediate re-placement attempt on the
// remaining nodes.
func (e *Engine) DeregisterNode(caller types.Principal, id string) error {
	return e.mutate("deregister_node", caller, func() error {
		n, exists := e.nodes[id]
		if !exists || !n.active {
			return validationErrorf("node %s is not active", id)
		}

		var affected []string
		seen := make(map[string]bool)
		for slot, name := range n.slots {
			img, ok := e.images[name]
			if ok && img.Active {
				e.decrementDeployed(img)
				e.pending[name]++
			}
			e.emit(types.Notification{Kind: types.NotificationContainerRemoved, NodeID: id, Image: name, Slot: slot})
			if !seen[name] {
				seen[name] = true
				affected = append(affected, name)
			}
		}

		n.slots = nil
		n.active = false
		// Load is not retained across a leave; a rejoin reports a fresh one
		n.load = nil
		n.updatedAt = e.now()

		e.emit(types.Notification{Kind: types.NotificationNodeLeft, NodeID: id})
		e.logger.Info().Str("node_id", id).Int("requeued_images", len(affected)).Msg("Node left")

		for _, name := range affected {
			e.deployNextContainer(name)
		}
		return nil
	})
}

// SetNodeLoad replaces the load handle of an active node and then drains at
// most one queued replica.
func (e *Engine) SetNodeLoad(caller types.Principal, id string, load types.LoadHandle) error {
	return e.mutate("set_node_load", caller, func() error {
		n, exists := e.nodes[id]
		if !exists || !n.active {
			return validationErrorf("node %s is not active", id)
		}
		if err := e.oracle.Validate(load); err != nil {
			return validationErrorf("invalid load handle for node %s: %v", id, err)
		}

		n.load = cloneHandle(load)
		n.updatedAt = e.now()
		e.emit(types.Notification{Kind: types.NotificationNodeLoadUpdated, NodeID: id})

		e.drainOne()
		return nil
	})
}

func cloneHandle(h types.LoadHandle) types.LoadHandle {
	if h == nil {
		return nil
	}
	out := make(types.LoadHandle, len(h))
	copy(out, h)
	return out
}

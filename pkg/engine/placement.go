package engine

import (
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/types"
)

// selectBestNode scans active nodes in registration order and returns the one
// with the fewest containers. Among nodes with equal counts the oracle picks
// the one with the greater load; the earlier node is kept unless the later
// one is strictly greater. A lower container count always wins regardless of
// load.
func (e *Engine) selectBestNode() (*node, bool) {
	var best *node
	for _, id := range e.nodeOrder {
		n := e.nodes[id]
		if !n.active {
			continue
		}
		switch {
		case best == nil || n.slots.count() < best.slots.count():
			best = n
		case n.slots.count() == best.slots.count() && e.oracle.GreaterThan(n.load, best.load):
			best = n
		}
	}
	return best, best != nil
}

// deployNextContainer places one pending replica of image. It returns the
// node the replica landed on. When no node is available the replica stays
// queued and a deployment.queued notification is emitted again, so the next
// trigger retries it.
func (e *Engine) deployNextContainer(image string) (string, bool) {
	img, ok := e.images[image]
	if !ok || !img.Active {
		return "", false
	}
	pending := e.pending[image]
	if pending == 0 {
		return "", false
	}
	if img.Deployed >= img.ReplicaTarget {
		e.logger.Warn().Str("image", image).Uint32("pending", pending).Msg("Image already at replica target, clearing its queue")
		e.pending[image] = 0
		return "", false
	}

	n, ok := e.selectBestNode()
	if !ok {
		metrics.PlacementMisses.Inc()
		e.emit(types.Notification{Kind: types.NotificationDeploymentQueued, Image: image, Remaining: pending})
		e.logger.Debug().Str("image", image).Uint32("pending", pending).Msg("No active node, replica stays queued")
		return "", false
	}

	slot := n.slots.add(image)
	n.lastAssigned = image
	n.updatedAt = e.now()
	img.Deployed++
	img.UpdatedAt = n.updatedAt
	pending--
	e.pending[image] = pending

	metrics.PlacementsTotal.Inc()
	e.emit(types.Notification{Kind: types.NotificationContainerAssigned, NodeID: n.id, Image: image, Slot: slot})
	if pending > 0 {
		e.emit(types.Notification{Kind: types.NotificationDeploymentQueued, Image: image, Remaining: pending})
	} else {
		e.emit(types.Notification{Kind: types.NotificationDeploymentCompleted, Image: image})
	}

	e.logger.Debug().
		Str("node_id", n.id).
		Str("image", image).
		Int("slot", slot).
		Uint32("pending", pending).
		Msg("Container assigned")

	return n.id, true
}

package engine

import (
	"github.com/cuemby/burrow/pkg/types"
)

const maxPort = 65535

// AddImage creates or reactivates an image and queues replicas for it.
// One placement is attempted immediately.
func (e *Engine) AddImage(caller types.Principal, name string, replicas uint32) error {
	return e.mutate("add_image", caller, func() error {
		if name == "" {
			return validationErrorf("image name cannot be empty")
		}
		if replicas == 0 {
			return validationErrorf("image %s must have at least one replica", name)
		}
		img, exists := e.images[name]
		if exists && img.Active {
			return validationErrorf("image %s is already active", name)
		}

		now := e.now()
		if !exists {
			img = &types.Image{Name: name, Seq: e.nextSeq(), CreatedAt: now}
			e.images[name] = img
			e.imageOrder = append(e.imageOrder, name)
		}
		img.ReplicaTarget = replicas
		img.Deployed = 0
		img.Active = true
		img.Ports = nil
		img.UpdatedAt = now
		e.pending[name] = replicas

		e.emit(types.Notification{Kind: types.NotificationDeploymentQueued, Image: name, Remaining: replicas})
		e.logger.Info().Str("image", name).Uint32("replicas", replicas).Msg("Image added")

		e.deployNextContainer(name)
		return nil
	})
}

// RemoveImage deactivates an image, drops its pending replicas and evicts
// every container running it. Affected nodes have their slot lists compacted.
func (e *Engine) RemoveImage(caller types.Principal, name string) error {
	return e.mutate("remove_image", caller, func() error {
		img, exists := e.images[name]
		if !exists || !img.Active {
			return validationErrorf("image %s is not active", name)
		}

		img.Active = false
		img.UpdatedAt = e.now()
		e.pending[name] = 0

		evicted := 0
		for _, id := range e.nodeOrder {
			n := e.nodes[id]
			removed := n.slots.evict(name)
			if len(removed) == 0 {
				continue
			}
			for _, slot := range removed {
				e.decrementDeployed(img)
				e.emit(types.Notification{Kind: types.NotificationContainerRemoved, NodeID: id, Image: name, Slot: slot})
			}
			n.updatedAt = img.UpdatedAt
			evicted += len(removed)
		}

		e.logger.Info().Str("image", name).Int("evicted", evicted).Msg("Image removed")
		return nil
	})
}

// SetImagePorts replaces the exposed port list of an active image
func (e *Engine) SetImagePorts(caller types.Principal, name string, ports []types.PortMapping) error {
	return e.mutate("set_image_ports", caller, func() error {
		img, exists := e.images[name]
		if !exists || !img.Active {
			return validationErrorf("image %s is not active", name)
		}
		for _, p := range ports {
			if p.From == 0 || p.From > maxPort || p.To == 0 || p.To > maxPort {
				return validationErrorf("image %s: port mapping %d:%d out of range", name, p.From, p.To)
			}
		}

		img.Ports = append([]types.PortMapping(nil), ports...)
		img.UpdatedAt = e.now()
		return nil
	})
}

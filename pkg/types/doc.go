/*
Package types defines the data model shared by every burrow package.

# Core Types

Scheduling state:
  - Node: a worker with an active flag, an opaque load handle and an ordered
    list of container slots (slot i holds Containers[i])
  - Image: a workload with a replica target, a deployed count, an active flag
    and a list of exposed ports
  - PortMapping: a (from, to) port pair exposed by an image

Confidential load:
  - LoadHandle: opaque bytes understood only by the configured oracle. The
    String method never prints the contents, so handles are safe to pass to
    loggers by accident.

Notifications:
  - Notification: one lifecycle or assignment event
  - NotificationKind: node.joined, node.left, node.image_assigned,
    node.load_updated, container.assigned, container.removed,
    deployment.queued, deployment.completed

# Slot Indices

A slot index is reported in container.assigned and container.removed
notifications. It is valid only until the next compaction of that node's slot
list, which happens when an unrelated image is removed. Do not use it as a
durable container identity.

# Usage

	img := &types.Image{
		Name:          "web",
		ReplicaTarget: 3,
		Active:        true,
		Ports:         []types.PortMapping{{From: 8080, To: 80}},
	}
*/
package types

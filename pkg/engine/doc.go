/*
Package engine implements burrow's placement state machine.

The engine owns three tables: the node registry, the image catalog and the
pending-deployment queue. Administrative operations change those tables and
then synchronously drain at most one queued replica (one per affected image
when a node leaves). Every operation either applies its whole effect or fails
before touching anything, and notifications are delivered only after the
operation has been applied.

# Placement

selectBestNode scans active nodes once, in registration order:

	fewer containers        -> replaces the candidate, whatever the load
	same container count    -> oracle.GreaterThan(node.load, candidate.load)
	                           replaces the candidate only when strictly greater

The container count enforces horizontal spread; the confidential load is only
a tie-break, answered by an oracle.Comparator that never reveals either value.

# Fair Share

When a node joins, nextImageForNewNode chooses which image it should try
first: the active, under-target image with the lowest deployed/target ratio
(fixed-point, ties to the earliest registered image). The replica is then
placed through the normal placement scan, which normally lands on the new,
empty node.

# Queue

Pending replicas are never lost. When no active node exists the replica stays
queued and deployment.queued is emitted again; the next node join, load report
or DrainOne call retries it. Removing an image is terminal for its queue.

# Authorization

Every mutation takes the caller's principal. Only the operator configured in
Config.Operator may mutate; anyone may query.
*/
package engine

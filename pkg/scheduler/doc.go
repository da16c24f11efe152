/*
Package scheduler runs the drain kicker: a leader-only loop that submits a
queue-drain command on a fixed interval.

Placement itself lives in pkg/engine and runs inside the raft FSM. Queued
replicas are normally retried when a node joins or reports a new load. The
kicker covers the case where no such event arrives, for example when an
image was added while every node was already busy and the queue would
otherwise wait indefinitely.

# Behavior

  - Each tick makes at most one Drain call, which places at most one replica
  - Followers skip the tick; only the leader submits commands
  - The command is submitted on behalf of the operator principal
  - Errors are logged and the loop continues
  - An interval of 0 disables the kicker

# Usage

	k := scheduler.NewKicker(mgr, 5*time.Second)
	k.Start()
	defer k.Stop()
*/
package scheduler

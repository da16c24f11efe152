/*
Package worker implements the burrow node agent: the process on a worker
that registers the node with the cluster and keeps its load handle current.

The agent samples a LoadSource on a fixed interval, seals the value with a
Sealer and reports it with SetNodeLoad. Samples equal to the last reported
value are skipped because each report becomes a replicated command and
triggers a queue drain.

# Sealing

On a sealed-oracle cluster the Sealer is an *oracle.Sealed built from the
cluster key, so the manager only ever sees ciphertext. NumericSealer sends
the value in the clear for numeric-oracle clusters.

# Load Sources

  - LoadAvgSource: one-minute load average from /proc/loadavg, times 100
  - StaticSource: a fixed value, for tests and pinned nodes

# Usage

	sealer, _ := oracle.NewSealed(key)
	agent, err := worker.NewAgent(&worker.Config{
		NodeID:           "worker-1",
		Interval:         10 * time.Second,
		Source:           worker.LoadAvgSource{},
		Sealer:           sealer,
		DeregisterOnStop: true,
	}, c)
	if err != nil {
		return err
	}
	if err := agent.Start(ctx); err != nil {
		return err
	}
	defer agent.Stop()
*/
package worker

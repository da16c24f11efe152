/*
Package metrics provides Prometheus metrics and health reporting for burrow.

All metrics are registered with the default Prometheus registry at package
init and exposed by Handler on /metrics.

# Metrics

Registry:
  - burrow_nodes_total{status}: registered nodes, active or inactive
  - burrow_images_total{status}: images, active or inactive
  - burrow_pending_replicas{image}: replicas waiting for placement
  - burrow_deployed_replicas{image}: replicas placed on nodes

Placement:
  - burrow_placements_total: replicas placed
  - burrow_placement_misses_total: placement attempts with no active node
  - burrow_operations_total{operation,result}: result is ok, rejected or
    unauthorized
  - burrow_operation_duration_seconds{operation}
  - burrow_notifications_dropped_total{sink}

Raft and API:
  - burrow_raft_is_leader, burrow_raft_peers_total, burrow_raft_log_index,
    burrow_raft_applied_index
  - burrow_api_requests_total{method,status},
    burrow_api_request_duration_seconds{method}

The registry gauges are refreshed by the manager's metrics collector; the
placement counters are updated inline by the engine.

# Timing

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.OperationDuration, "add_image")

# Health

Components report their state with RegisterComponent/UpdateComponent.
GetReadiness requires every critical component (raft, storage and api by
default, see SetCriticalComponents) to be registered and healthy.

Never label a metric with a node's load: load handles are confidential.
*/
package metrics

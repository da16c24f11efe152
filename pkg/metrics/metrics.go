package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry metrics
	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_nodes_total",
			Help: "Total number of registered nodes by status",
		},
		[]string{"status"},
	)

	ImagesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_images_total",
			Help: "Total number of images by status",
		},
		[]string{"status"},
	)

	PendingReplicas = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_pending_replicas",
			Help: "Replicas waiting for placement by image",
		},
		[]string{"image"},
	)

	DeployedReplicas = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_deployed_replicas",
			Help: "Replicas placed on nodes by image",
		},
		[]string{"image"},
	)

	// Placement metrics
	PlacementsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_placements_total",
			Help: "Total number of replicas placed on a node",
		},
	)

	PlacementMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_placement_misses_total",
			Help: "Placement attempts that found no active node",
		},
	)

	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_operations_total",
			Help: "Administrative operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "burrow_operation_duration_seconds",
			Help:    "Administrative operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	NotificationsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_notifications_dropped_total",
			Help: "Notifications a sink failed to deliver",
		},
		[]string{"sink"},
	)

	NotificationBacklog = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_notification_backlog",
			Help: "Notifications queued for subscribers that have not read them yet",
		},
	)

	// Raft metrics
	RaftLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_raft_is_leader",
			Help: "Whether this manager is the Raft leader (1 = leader, 0 = follower)",
		},
	)

	RaftPeers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_raft_peers_total",
			Help: "Total number of Raft peers in the cluster",
		},
	)

	RaftLogIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_raft_log_index",
			Help: "Current Raft log index",
		},
	)

	RaftAppliedIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_raft_applied_index",
			Help: "Last applied Raft log index",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "burrow_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(ImagesTotal)
	prometheus.MustRegister(PendingReplicas)
	prometheus.MustRegister(DeployedReplicas)
	prometheus.MustRegister(PlacementsTotal)
	prometheus.MustRegister(PlacementMisses)
	prometheus.MustRegister(OperationsTotal)
	prometheus.MustRegister(OperationDuration)
	prometheus.MustRegister(NotificationsDropped)
	prometheus.MustRegister(NotificationBacklog)
	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftPeers)
	prometheus.MustRegister(RaftLogIndex)
	prometheus.MustRegister(RaftAppliedIndex)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

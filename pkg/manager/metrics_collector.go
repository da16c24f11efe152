package manager

import (
	"time"

	"github.com/cuemby/burrow/pkg/metrics"
)

const collectInterval = 15 * time.Second

// MetricsCollector collects metrics from the manager
type MetricsCollector struct {
	manager  *Manager
	interval time.Duration
	stopCh   chan struct{}
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(mgr *Manager) *MetricsCollector {
	return &MetricsCollector{
		manager:  mgr,
		interval: collectInterval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *MetricsCollector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *MetricsCollector) Stop() {
	close(c.stopCh)
}

func (c *MetricsCollector) collect() {
	c.collectNodeMetrics()
	c.collectImageMetrics()
	c.collectRaftMetrics()
}

func (c *MetricsCollector) collectNodeMetrics() {
	counts := map[string]int{"active": 0, "inactive": 0}
	for _, node := range c.manager.Engine().Nodes() {
		if node.Active {
			counts["active"]++
		} else {
			counts["inactive"]++
		}
	}

	for status, count := range counts {
		metrics.NodesTotal.WithLabelValues(status).Set(float64(count))
	}
}

func (c *MetricsCollector) collectImageMetrics() {
	e := c.manager.Engine()
	counts := map[string]int{"active": 0, "inactive": 0}

	for _, img := range e.Images() {
		if !img.Active {
			counts["inactive"]++
			metrics.PendingReplicas.DeleteLabelValues(img.Name)
			metrics.DeployedReplicas.DeleteLabelValues(img.Name)
			continue
		}
		counts["active"]++
		metrics.PendingReplicas.WithLabelValues(img.Name).Set(float64(e.PendingCount(img.Name)))
		metrics.DeployedReplicas.WithLabelValues(img.Name).Set(float64(img.Deployed))
	}

	for status, count := range counts {
		metrics.ImagesTotal.WithLabelValues(status).Set(float64(count))
	}
}

func (c *MetricsCollector) collectRaftMetrics() {
	// Check if leader
	if c.manager.IsLeader() {
		metrics.RaftLeader.Set(1)
	} else {
		metrics.RaftLeader.Set(0)
	}

	// Get Raft stats
	stats := c.manager.GetRaftStats()
	if stats != nil {
		if lastIndex, ok := stats["last_log_index"].(uint64); ok {
			metrics.RaftLogIndex.Set(float64(lastIndex))
		}
		if appliedIndex, ok := stats["applied_index"].(uint64); ok {
			metrics.RaftAppliedIndex.Set(float64(appliedIndex))
		}
		if peers, ok := stats["peers"].(uint64); ok {
			metrics.RaftPeers.Set(float64(peers))
		}
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/manager"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newHealthManager creates a manager for readiness checks. withStore opens a
// bbolt store in a temp dir; bootstrap makes the manager its own leader,
// otherwise raft runs with no cluster and never elects one.
func newHealthManager(t *testing.T, withStore, bootstrap bool) *manager.Manager {
	t.Helper()

	cfg := &manager.Config{
		NodeID:        "manager-1",
		Operator:      testOperator,
		OperatorToken: testToken,
		InMemory:      true,
	}
	if withStore {
		cfg.DataDir = t.TempDir()
	}
	mgr, err := manager.NewManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Shutdown() })

	if bootstrap {
		require.NoError(t, mgr.Bootstrap())
		require.Eventually(t, mgr.IsLeader, 5*time.Second, 20*time.Millisecond)
	} else {
		require.NoError(t, mgr.Start())
	}

	// The API listener is a critical component outside the manager
	metrics.RegisterComponent("api", true, "test")
	return mgr
}

func getReady(t *testing.T, hs *HealthServer) (int, ReadyResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	hs.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ReadyResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w.Code, resp
}

func getComponents(t *testing.T, hs *HealthServer) metrics.HealthStatus {
	t.Helper()

	w := httptest.NewRecorder()
	hs.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/components", nil))

	var health metrics.HealthStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&health))
	return health
}

func TestReadyLeaderInMemory(t *testing.T) {
	hs := NewHealthServer(newHealthManager(t, false, true))

	code, resp := getReady(t, hs)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "leader", resp.Checks["raft"])
	assert.Equal(t, "in-memory", resp.Checks["storage"])
	assert.Equal(t, "ready", resp.Checks["api"])
	assert.Empty(t, resp.Message)

	health := getComponents(t, hs)
	assert.Equal(t, "healthy", health.Components["raft"])
	assert.Equal(t, "healthy", health.Components["storage"])
}

func TestReadyLeaderWithStore(t *testing.T) {
	hs := NewHealthServer(newHealthManager(t, true, true))

	code, resp := getReady(t, hs)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Checks["storage"])
}

func TestReadyWithoutLeader(t *testing.T) {
	hs := NewHealthServer(newHealthManager(t, false, false))

	code, resp := getReady(t, hs)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", resp.Status)
	assert.Equal(t, "no leader elected", resp.Checks["raft"])
	assert.Equal(t, "Waiting for leader election", resp.Message)

	health := getComponents(t, hs)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "unhealthy: no leader elected", health.Components["raft"])
}

func TestReadyReportsStoreFailure(t *testing.T) {
	mgr := newHealthManager(t, true, true)
	hs := NewHealthServer(mgr)

	// Closing the store makes the next write-through fail; the command
	// itself still commits
	require.NoError(t, mgr.Store().Close())
	require.NoError(t, mgr.RegisterNode(testOperator, "n1", oracle.NumericHandle(1)))
	require.Error(t, mgr.StoreError())

	code, resp := getReady(t, hs)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "leader", resp.Checks["raft"])
	assert.Contains(t, resp.Checks["storage"], "error:")
	assert.Equal(t, "Storage not accessible", resp.Message)

	health := getComponents(t, hs)
	assert.Contains(t, health.Components["storage"], "unhealthy: error:")
}

func TestReadyWaitsForAPIListener(t *testing.T) {
	hs := NewHealthServer(newHealthManager(t, false, true))
	metrics.UpdateComponent("api", false, "starting")
	t.Cleanup(func() { metrics.UpdateComponent("api", true, "test") })

	code, resp := getReady(t, hs)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready: starting", resp.Checks["api"])
	assert.Equal(t, "waiting for api", resp.Message)
}

func TestReadyWithoutManager(t *testing.T) {
	code, resp := getReady(t, NewHealthServer(nil))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not initialized", resp.Checks["raft"])
	assert.Equal(t, "not initialized", resp.Checks["storage"])
	assert.Equal(t, "Manager not initialized", resp.Message)
}

func TestHealthEndpoints(t *testing.T) {
	Version = "1.4.0-test"
	t.Cleanup(func() { Version = "dev" })
	hs := NewHealthServer(nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodPost, "/health", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/ready", http.StatusMethodNotAllowed},
		{http.MethodGet, "/live", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/nodes", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			hs.GetHandler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := httptest.NewRecorder()
	hs.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.4.0-test", resp.Version)
}

func TestMetricsExposeSchedulerSeries(t *testing.T) {
	mgr := newHealthManager(t, false, true)
	require.NoError(t, mgr.AddImage(testOperator, "web", 2))
	hs := NewHealthServer(mgr)

	w := httptest.NewRecorder()
	hs.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "burrow_operation_duration_seconds")
	assert.Contains(t, w.Body.String(), "burrow_notification_backlog")
}

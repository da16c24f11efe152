package engine

import (
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRestoreRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.RegisterNode(operator, "n1", load(3)))
	require.NoError(t, e.RegisterNode(operator, "n2", load(5)))
	require.NoError(t, e.AddImage(operator, "web", 4))
	require.NoError(t, e.AddImage(operator, "db", 1))
	require.NoError(t, e.DrainOne(operator))
	require.NoError(t, e.SetImagePorts(operator, "web", []types.PortMapping{{From: 8080, To: 80}}))
	require.NoError(t, e.DeregisterNode(operator, "n1"))

	state := e.State()

	restored, rec := newTestEngine(t)
	require.NoError(t, restored.Restore(state))
	assert.Empty(t, rec.take(), "restore must not emit")
	require.NoError(t, restored.Verify())

	assert.Equal(t, e.Nodes(), restored.Nodes())
	assert.Equal(t, e.Images(), restored.Images())
	assert.Equal(t, e.PendingCount("web"), restored.PendingCount("web"))
	assert.Equal(t, e.PendingCount("db"), restored.PendingCount("db"))
	assert.Equal(t, []types.PortMapping{{From: 8080, To: 80}}, restored.ImagePorts("web"))

	// Sequence numbers continue past the restored records
	require.NoError(t, restored.RegisterNode(operator, "n3", load(1)))
	nodes := restored.Nodes()
	assert.Equal(t, "n3", nodes[len(nodes)-1].ID)
	assert.Greater(t, nodes[len(nodes)-1].Seq, state.Seq)
}

func TestStateIsADeepCopy(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.RegisterNode(operator, "n1", load(3)))
	require.NoError(t, e.AddImage(operator, "web", 1))

	state := e.State()
	state.Nodes[0].Containers[0] = "tampered"
	state.Nodes[0].Load[0] = 0xff
	state.Images[0].ReplicaTarget = 99

	assert.Equal(t, []string{"web"}, e.NodeImages("n1"))
	assert.Equal(t, uint32(1), e.ImageStatus("web").Replicas)
	assert.Equal(t, load(3), e.Nodes()[0].Load)
}

func TestStateSkipsEmptyQueues(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.RegisterNode(operator, "n1", load(3)))
	require.NoError(t, e.AddImage(operator, "web", 1))
	require.NoError(t, e.AddImage(operator, "db", 2))

	state := e.State()
	assert.Equal(t, map[string]uint32{"db": 1}, state.Pending)
}

func TestRestoreOrdersBySequence(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.Restore(&State{
		Nodes: []*types.Node{
			{ID: "late", Active: true, Load: load(1), Seq: 7},
			{ID: "early", Active: true, Load: load(1), Seq: 2},
		},
		Images: []*types.Image{
			{Name: "b", ReplicaTarget: 1, Active: true, Seq: 5},
			{Name: "a", ReplicaTarget: 1, Active: true, Seq: 3},
		},
		Pending: map[string]uint32{"a": 1, "b": 1},
	})
	require.NoError(t, err)

	nodes := e.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "early", nodes[0].ID)
	assert.Equal(t, "late", nodes[1].ID)

	// Image a registered first, so it drains first
	require.NoError(t, e.DrainOne(operator))
	assert.Equal(t, uint32(1), e.ImageStatus("a").Deployed)
	assert.Equal(t, uint32(0), e.ImageStatus("b").Deployed)
	assert.Equal(t, []string{"a"}, e.NodeImages("early"))
}

func TestRestoreRejectsMalformedState(t *testing.T) {
	tests := []struct {
		name  string
		state *State
	}{
		{
			name:  "empty node id",
			state: &State{Nodes: []*types.Node{{ID: ""}}},
		},
		{
			name:  "duplicate node",
			state: &State{Nodes: []*types.Node{{ID: "n1", Seq: 1}, {ID: "n1", Seq: 2}}},
		},
		{
			name:  "empty image name",
			state: &State{Images: []*types.Image{{Name: ""}}},
		},
		{
			name:  "duplicate image",
			state: &State{Images: []*types.Image{{Name: "web", Seq: 1}, {Name: "web", Seq: 2}}},
		},
		{
			name:  "pending for unknown image",
			state: &State{Pending: map[string]uint32{"ghost": 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			require.NoError(t, e.RegisterNode(operator, "keep", load(1)))

			assert.Error(t, e.Restore(tt.state))
			assert.True(t, e.NodeActive("keep"), "failed restore must leave state untouched")
		})
	}
}

func TestVerifyDetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(e *Engine)
	}{
		{
			name: "over target",
			corrupt: func(e *Engine) {
				e.images["web"].Deployed = 5
			},
		},
		{
			name: "container count mismatch",
			corrupt: func(e *Engine) {
				e.nodes["n1"].slots.add("web")
			},
		},
		{
			name: "inactive node holds containers",
			corrupt: func(e *Engine) {
				e.nodes["n1"].active = false
			},
		},
		{
			name: "inactive image still placed",
			corrupt: func(e *Engine) {
				e.images["web"].Active = false
			},
		},
		{
			name: "queue overflows target",
			corrupt: func(e *Engine) {
				e.pending["web"] = 2
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			require.NoError(t, e.RegisterNode(operator, "n1", load(1)))
			require.NoError(t, e.AddImage(operator, "web", 2))
			require.NoError(t, e.Verify())

			tt.corrupt(e)
			assert.Error(t, e.Verify())
		})
	}
}

func TestClockStampsRecords(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := New(Config{Operator: operator, Clock: func() time.Time { return fixed }})

	require.NoError(t, e.RegisterNode(operator, "n1", load(1)))
	require.NoError(t, e.AddImage(operator, "web", 1))

	nodes := e.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, fixed, nodes[0].JoinedAt)
	assert.Equal(t, fixed, nodes[0].UpdatedAt)

	images := e.Images()
	require.Len(t, images, 1)
	assert.Equal(t, fixed, images[0].CreatedAt)
	assert.Equal(t, fixed, images[0].UpdatedAt)
}

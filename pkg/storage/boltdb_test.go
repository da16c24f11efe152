package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/engine"
	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operator types.Principal = "operator"

func populatedEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(engine.Config{Operator: operator})
	require.NoError(t, e.RegisterNode(operator, "n1", oracle.NumericHandle(4)))
	require.NoError(t, e.RegisterNode(operator, "n2", oracle.NumericHandle(9)))
	require.NoError(t, e.AddImage(operator, "web", 3))
	require.NoError(t, e.AddImage(operator, "db", 5))
	require.NoError(t, e.SetImagePorts(operator, "web", []types.PortMapping{{From: 8080, To: 80}}))
	return e
}

func TestNewBoltStore(t *testing.T) {
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	state, err := store.LoadState()
	require.NoError(t, err)
	assert.Empty(t, state.Nodes)
	assert.Empty(t, state.Images)
	assert.Empty(t, state.Pending)

	index, err := store.AppliedIndex()
	require.NoError(t, err)
	assert.Zero(t, index)
}

func TestSaveAndLoadState(t *testing.T) {
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	e := populatedEngine(t)
	state := e.State()
	require.NoError(t, store.SaveState(state, 17))

	loaded, err := store.LoadState()
	require.NoError(t, err)
	assert.Equal(t, state.Seq, loaded.Seq)
	assert.Equal(t, state.Pending, loaded.Pending)

	require.Len(t, loaded.Nodes, 2)
	assert.Equal(t, "n1", loaded.Nodes[0].ID)
	assert.Equal(t, "n2", loaded.Nodes[1].ID)
	assert.Equal(t, state.Nodes[1].Containers, loaded.Nodes[1].Containers)
	assert.Equal(t, oracle.NumericHandle(9), loaded.Nodes[1].Load)

	require.Len(t, loaded.Images, 2)
	assert.Equal(t, "web", loaded.Images[0].Name)
	assert.Equal(t, []types.PortMapping{{From: 8080, To: 80}}, loaded.Images[0].Ports)

	index, err := store.AppliedIndex()
	require.NoError(t, err)
	assert.Equal(t, uint64(17), index)

	// A loaded state restores into an equivalent engine
	restored := engine.New(engine.Config{Operator: operator})
	require.NoError(t, restored.Restore(loaded))
	require.NoError(t, restored.Verify())
	assert.Equal(t, e.NodeImages("n1"), restored.NodeImages("n1"))
	assert.Equal(t, e.NodeImages("n2"), restored.NodeImages("n2"))
	assert.Equal(t, e.PendingCount("db"), restored.PendingCount("db"))
}

func TestSaveStateReplacesTables(t *testing.T) {
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	e := populatedEngine(t)
	require.NoError(t, store.SaveState(e.State(), 1))

	require.NoError(t, e.RemoveImage(operator, "db"))
	require.NoError(t, store.SaveState(e.State(), 2))

	_, err = store.GetPending("db")
	require.NoError(t, err)
	pending, err := store.ListPending()
	require.NoError(t, err)
	_, queued := pending["db"]
	assert.False(t, queued, "removed image must leave the queue")

	img, err := store.GetImage("db")
	require.NoError(t, err)
	assert.False(t, img.Active)
	assert.Zero(t, img.Deployed)
}

func TestGetNotFound(t *testing.T) {
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.GetNode("ghost")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = store.GetImage("ghost")
	assert.True(t, errors.Is(err, ErrNotFound))

	count, err := store.GetPending("ghost")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetRecords(t *testing.T) {
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	e := populatedEngine(t)
	require.NoError(t, store.SaveState(e.State(), 5))

	node, err := store.GetNode("n2")
	require.NoError(t, err)
	assert.True(t, node.Active)
	assert.Equal(t, e.NodeImages("n2"), node.Containers)

	nodes, err := store.ListNodes()
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	images, err := store.ListImages()
	require.NoError(t, err)
	assert.Len(t, images, 2)

	count, err := store.GetPending("db")
	require.NoError(t, err)
	assert.Equal(t, e.PendingCount("db"), count)
}

func TestStateSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBoltStore(dir)
	require.NoError(t, err)
	e := populatedEngine(t)
	require.NoError(t, store.SaveState(e.State(), 9))
	require.NoError(t, store.Close())

	ro, err := OpenReadOnly(dir)
	require.NoError(t, err)
	defer ro.Close()

	nodes, err := ro.ListNodes()
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	index, err := ro.AppliedIndex()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), index)
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	start := time.Now()
	_, err := OpenReadOnly(t.TempDir())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

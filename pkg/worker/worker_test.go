package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeReporter struct {
	mu            sync.Mutex
	registered    []types.LoadHandle
	updates       []types.LoadHandle
	deregistered  int
	registerErrs  int
	registerCalls int
	active        bool
	registerErr   error
}

func (f *fakeReporter) RegisterNode(id string, load types.LoadHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	if f.registerErrs > 0 {
		f.registerErrs--
		return errors.New("manager unavailable")
	}
	if f.registerErr != nil {
		return f.registerErr
	}
	if f.active {
		return status.Errorf(codes.InvalidArgument, "validation failed: node %s is already active", id)
	}
	f.registered = append(f.registered, load)
	f.active = true
	return nil
}

func (f *fakeReporter) NodeActive(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, nil
}

func (f *fakeReporter) SetNodeLoad(id string, load types.LoadHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, load)
	return nil
}

func (f *fakeReporter) DeregisterNode(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deregistered++
	f.active = false
	return nil
}

func (f *fakeReporter) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

// sequenceSource returns the next value on every call, repeating the last
type sequenceSource struct {
	values []uint64
	i      atomic.Int32
}

func (s *sequenceSource) Load() (uint64, error) {
	i := int(s.i.Add(1)) - 1
	if i >= len(s.values) {
		i = len(s.values) - 1
	}
	return s.values[i], nil
}

func TestNewAgentValidation(t *testing.T) {
	_, err := NewAgent(&Config{Source: StaticSource(1)}, &fakeReporter{})
	assert.Error(t, err)

	_, err = NewAgent(&Config{NodeID: "n1"}, &fakeReporter{})
	assert.Error(t, err)

	a, err := NewAgent(&Config{NodeID: "n1", Source: StaticSource(1)}, &fakeReporter{})
	require.NoError(t, err)
	assert.Equal(t, defaultInterval, a.interval)
	assert.IsType(t, NumericSealer{}, a.sealer)
}

func TestAgentRegistersAndReportsChanges(t *testing.T) {
	rep := &fakeReporter{registerErrs: 2}
	src := &sequenceSource{values: []uint64{3, 3, 7, 7, 7}}

	a, err := NewAgent(&Config{
		NodeID:           "n1",
		Interval:         5 * time.Millisecond,
		Source:           src,
		DeregisterOnStop: true,
	}, rep)
	require.NoError(t, err)

	require.NoError(t, a.Start(context.Background()))
	require.Eventually(t, func() bool { return src.i.Load() >= 6 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, a.Stop())

	rep.mu.Lock()
	defer rep.mu.Unlock()
	require.Len(t, rep.registered, 1)
	assert.Equal(t, oracle.NumericHandle(3), rep.registered[0])
	require.Len(t, rep.updates, 1, "only the change from 3 to 7 is reported")
	assert.Equal(t, oracle.NumericHandle(7), rep.updates[0])
	assert.Equal(t, 1, rep.deregistered)
}

func TestAgentRegistrationGivesUp(t *testing.T) {
	rep := &fakeReporter{registerErrs: 100}
	a, err := NewAgent(&Config{NodeID: "n1", Source: StaticSource(1), RegisterAttempts: 2}, rep)
	require.NoError(t, err)

	assert.Error(t, a.Start(context.Background()))
}

func TestAgentResumesActiveNode(t *testing.T) {
	rep := &fakeReporter{}

	// A previous agent registered n1 and exited without deregistering
	first, err := NewAgent(&Config{NodeID: "n1", Source: StaticSource(3), Interval: time.Hour}, rep)
	require.NoError(t, err)
	require.NoError(t, first.Start(context.Background()))

	second, err := NewAgent(&Config{NodeID: "n1", Source: StaticSource(9), Interval: time.Hour}, rep)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, second.Start(context.Background()))
	assert.Less(t, time.Since(start), 150*time.Millisecond, "no backoff on a permanent rejection")
	require.NoError(t, second.Stop())

	rep.mu.Lock()
	defer rep.mu.Unlock()
	assert.Equal(t, 2, rep.registerCalls)
	require.Len(t, rep.updates, 1)
	assert.Equal(t, oracle.NumericHandle(9), rep.updates[0])
}

func TestAgentDoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"permission denied", status.Error(codes.PermissionDenied, "not the operator")},
		{"unauthenticated", status.Error(codes.Unauthenticated, "missing bearer token")},
		{"invalid load", status.Error(codes.InvalidArgument, "load handle rejected")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := &fakeReporter{registerErr: tt.err}
			a, err := NewAgent(&Config{NodeID: "n1", Source: StaticSource(1)}, rep)
			require.NoError(t, err)

			err = a.Start(context.Background())
			require.Error(t, err)
			assert.Equal(t, status.Code(tt.err), status.Code(err))
			assert.Equal(t, 1, rep.registerCalls)
			assert.Empty(t, rep.updates)
		})
	}
}

func TestAgentSealsLoad(t *testing.T) {
	sealed, err := oracle.NewSealed(oracle.DeriveKey("cluster"))
	require.NoError(t, err)

	rep := &fakeReporter{}
	a, err := NewAgent(&Config{NodeID: "n1", Source: StaticSource(42), Sealer: sealed, Interval: time.Hour}, rep)
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, a.Stop())

	require.Len(t, rep.registered, 1)
	assert.NoError(t, sealed.Validate(rep.registered[0]))
	assert.NotEqual(t, oracle.NumericHandle(42), rep.registered[0])
	assert.Zero(t, rep.updateCount())
	assert.Zero(t, rep.deregistered)
}

func TestLoadAvgSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loadavg")

	require.NoError(t, os.WriteFile(path, []byte("1.25 0.80 0.50 1/123 4567\n"), 0644))
	load, err := LoadAvgSource{Path: path}.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(125), load)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))
	_, err = LoadAvgSource{Path: path}.Load()
	assert.Error(t, err)

	_, err = LoadAvgSource{Path: filepath.Join(dir, "missing")}.Load()
	assert.Error(t, err)
}

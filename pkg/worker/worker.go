package worker

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultInterval = 5 * time.Second

// Reporter is the part of the burrow client the agent uses
type Reporter interface {
	RegisterNode(id string, load types.LoadHandle) error
	SetNodeLoad(id string, load types.LoadHandle) error
	DeregisterNode(id string) error
	NodeActive(id string) (bool, error)
}

// LoadSource samples the node's current load
type LoadSource interface {
	Load() (uint64, error)
}

// Sealer turns a load value into a handle the cluster oracle understands
type Sealer interface {
	Seal(load uint64) (types.LoadHandle, error)
}

// NumericSealer produces cleartext handles for numeric-oracle clusters
type NumericSealer struct{}

// Seal encodes load as a numeric handle
func (NumericSealer) Seal(load uint64) (types.LoadHandle, error) {
	return oracle.NumericHandle(load), nil
}

// StaticSource always reports the same load
type StaticSource uint64

// Load returns the fixed value
func (s StaticSource) Load() (uint64, error) {
	return uint64(s), nil
}

// LoadAvgSource reports the one-minute load average of a Linux host,
// scaled by 100 so two decimals survive the integer handle
type LoadAvgSource struct {
	// Path defaults to /proc/loadavg
	Path string
}

// Load reads and scales the one-minute load average
func (s LoadAvgSource) Load() (uint64, error) {
	path := s.Path
	if path == "" {
		path = "/proc/loadavg"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read load average: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty load average file %s", path)
	}
	avg, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || avg < 0 {
		return 0, fmt.Errorf("invalid load average %q", fields[0])
	}
	return uint64(avg*100 + 0.5), nil
}

// Config holds agent configuration
type Config struct {
	NodeID string

	// Interval between load samples. Defaults to five seconds.
	Interval time.Duration

	Source LoadSource

	// Sealer defaults to NumericSealer
	Sealer Sealer

	// RegisterAttempts bounds registration retries while the manager starts
	RegisterAttempts uint

	// DeregisterOnStop makes Stop mark the node inactive
	DeregisterOnStop bool
}

// Agent registers a worker node and keeps its load handle current. A new
// handle is only reported when the sampled load changes, since every
// report is a replicated command.
type Agent struct {
	nodeID   string
	interval time.Duration
	reporter Reporter
	source   LoadSource
	sealer   Sealer
	attempts uint
	leave    bool
	logger   zerolog.Logger

	mu       sync.Mutex
	lastLoad uint64
	reported bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewAgent creates an agent reporting through reporter
func NewAgent(cfg *Config, reporter Reporter) (*Agent, error) {
	if cfg.NodeID == "" {
		return nil, fmt.Errorf("node id is required")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("load source is required")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	sealer := cfg.Sealer
	if sealer == nil {
		sealer = NumericSealer{}
	}
	attempts := cfg.RegisterAttempts
	if attempts == 0 {
		attempts = 10
	}

	return &Agent{
		nodeID:   cfg.NodeID,
		interval: interval,
		reporter: reporter,
		source:   cfg.Source,
		sealer:   sealer,
		attempts: attempts,
		leave:    cfg.DeregisterOnStop,
		logger:   log.WithNodeID(cfg.NodeID).With().Str("component", "agent").Logger(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start registers the node and begins the report loop
func (a *Agent) Start(ctx context.Context) error {
	load, handle, err := a.sample()
	if err != nil {
		return err
	}

	err = retry.Do(
		func() error { return a.reporter.RegisterNode(a.nodeID, handle) },
		retry.Context(ctx),
		retry.Attempts(a.attempts),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			a.logger.Warn().Err(err).Uint("attempt", n+1).Msg("Registration failed, retrying")
		}),
	)
	if err != nil && status.Code(err) == codes.InvalidArgument {
		err = a.resume(handle, err)
	}
	if err != nil {
		return fmt.Errorf("failed to register node: %w", err)
	}

	a.mu.Lock()
	a.lastLoad = load
	a.reported = true
	a.mu.Unlock()

	a.logger.Info().Dur("interval", a.interval).Msg("Node registered")

	go a.reportLoop()
	return nil
}

// resume handles a rejected registration. When the node is still active from
// a previous run of the agent, the registration is replaced by a load update
// and the agent carries on; otherwise regErr is returned.
func (a *Agent) resume(handle types.LoadHandle, regErr error) error {
	active, err := a.reporter.NodeActive(a.nodeID)
	if err != nil || !active {
		return regErr
	}
	if err := a.reporter.SetNodeLoad(a.nodeID, handle); err != nil {
		return err
	}
	a.logger.Info().Msg("Node already active, resuming")
	return nil
}

// retryable reports whether a registration error may clear up on its own.
// Rejected arguments and credentials never do.
func retryable(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.PermissionDenied, codes.Unauthenticated:
		return false
	}
	return true
}

// Stop ends the report loop and, when configured, deregisters the node
func (a *Agent) Stop() error {
	close(a.stopCh)
	<-a.doneCh

	if a.leave {
		if err := a.reporter.DeregisterNode(a.nodeID); err != nil {
			return fmt.Errorf("failed to deregister node: %w", err)
		}
		a.logger.Info().Msg("Node deregistered")
	}
	return nil
}

// reportLoop samples the load on every tick
func (a *Agent) reportLoop() {
	defer close(a.doneCh)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.report(); err != nil {
				a.logger.Error().Err(err).Msg("Load report failed")
			}
		case <-a.stopCh:
			return
		}
	}
}

// report sends a fresh handle when the load changed since the last report
func (a *Agent) report() error {
	load, handle, err := a.sample()
	if err != nil {
		return err
	}

	a.mu.Lock()
	unchanged := a.reported && load == a.lastLoad
	a.mu.Unlock()
	if unchanged {
		return nil
	}

	if err := a.reporter.SetNodeLoad(a.nodeID, handle); err != nil {
		return err
	}

	a.mu.Lock()
	a.lastLoad = load
	a.reported = true
	a.mu.Unlock()

	a.logger.Debug().Msg("Load reported")
	return nil
}

func (a *Agent) sample() (uint64, types.LoadHandle, error) {
	load, err := a.source.Load()
	if err != nil {
		return 0, nil, err
	}
	handle, err := a.sealer.Seal(load)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to seal load: %w", err)
	}
	return load, handle, nil
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	defaultAttempts     = 3
	defaultRetryDelay   = 100 * time.Millisecond
	defaultBatchTimeout = 50 * time.Millisecond
	defaultWriteTimeout = 5 * time.Second

	defaultMaxForwardDelay = 10 * time.Second
)

// Config configures the Kafka sink
type Config struct {
	Brokers []string
	Topic   string

	// Attempts is the number of delivery attempts per event
	Attempts uint

	// RetryDelay is the base delay of the exponential backoff between attempts
	RetryDelay time.Duration
}

// messageWriter is the part of kafka.Writer the sink uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes events to a Kafka topic. Each event becomes one message
// keyed by its image (or node, for node-only events) so the events of one
// workload stay in one partition and keep their order.
type KafkaSink struct {
	writer     messageWriter
	attempts   uint
	retryDelay time.Duration
	logger     zerolog.Logger
}

// NewKafkaSink creates a sink writing to cfg.Topic on cfg.Brokers
func NewKafkaSink(cfg Config) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka sink: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka sink: topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: defaultBatchTimeout,
		WriteTimeout: defaultWriteTimeout,
		// Retries are handled by the sink
		MaxAttempts: 1,
	}
	return newSink(w, cfg), nil
}

func newSink(w messageWriter, cfg Config) *KafkaSink {
	attempts := cfg.Attempts
	if attempts == 0 {
		attempts = defaultAttempts
	}
	delay := cfg.RetryDelay
	if delay == 0 {
		delay = defaultRetryDelay
	}
	return &KafkaSink{
		writer:     w,
		attempts:   attempts,
		retryDelay: delay,
		logger:     log.WithComponent("notify"),
	}
}

// Send delivers one event, retrying with exponential backoff
func (s *KafkaSink) Send(ctx context.Context, ev *events.Event) error {
	msg, err := encode(ev)
	if err != nil {
		return err
	}

	err = retry.Do(
		func() error {
			return s.writer.WriteMessages(ctx, msg)
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			s.logger.Warn().
				Err(err).
				Uint("attempt", attempt+1).
				Str("event_id", ev.ID).
				Msg("Kafka write failed, retrying")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", ev.ID, err)
	}
	return nil
}

// Close flushes and closes the underlying writer
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func encode(ev *events.Event) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode event %s: %w", ev.ID, err)
	}

	key := ev.Notification.Image
	if key == "" {
		key = ev.Notification.NodeID
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  ev.Timestamp,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(ev.Notification.Kind)},
			{Key: "event_id", Value: []byte(ev.ID)},
		},
	}, nil
}

// Sender delivers a single event
type Sender interface {
	Send(ctx context.Context, ev *events.Event) error
}

var errNotLeader = errors.New("no longer the leader")

// Forwarder relays broker events to a Sender. Every replica runs one, but
// only the replica for which isLeader reports true delivers, so each event
// leaves the cluster once. A failed delivery is retried with backoff until
// it succeeds, the context ends or leadership is lost; later events wait
// behind it so the sink sees events in commit order.
type Forwarder struct {
	broker     *events.Broker
	sub        events.Subscriber
	sender     Sender
	isLeader   func() bool
	retryDelay time.Duration
	maxDelay   time.Duration
	logger     zerolog.Logger
}

// NewForwarder creates a forwarder. It subscribes immediately, so events
// published before Run starts are forwarded too. A nil isLeader forwards
// unconditionally.
func NewForwarder(broker *events.Broker, sender Sender, isLeader func() bool) *Forwarder {
	if isLeader == nil {
		isLeader = func() bool { return true }
	}
	return &Forwarder{
		broker:     broker,
		sub:        broker.Subscribe(),
		sender:     sender,
		isLeader:   isLeader,
		retryDelay: defaultRetryDelay,
		maxDelay:   defaultMaxForwardDelay,
		logger:     log.WithComponent("notify"),
	}
}

// Run forwards events until ctx is cancelled or the broker stops
func (f *Forwarder) Run(ctx context.Context) {
	defer f.broker.Unsubscribe(f.sub)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-f.sub:
			if !ok {
				return
			}
			if !f.isLeader() {
				continue
			}
			if err := f.forward(ctx, ev); err != nil {
				if ctx.Err() != nil {
					return
				}
				metrics.NotificationsDropped.WithLabelValues("kafka").Inc()
				f.logger.Warn().
					Err(err).
					Str("kind", string(ev.Notification.Kind)).
					Uint64("sequence", ev.Sequence).
					Msg("Notification not forwarded")
			}
		}
	}
}

// forward delivers ev, retrying for as long as this replica leads
func (f *Forwarder) forward(ctx context.Context, ev *events.Event) error {
	return retry.Do(
		func() error {
			if !f.isLeader() {
				return retry.Unrecoverable(errNotLeader)
			}
			return f.sender.Send(ctx, ev)
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(f.retryDelay),
		retry.MaxDelay(f.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			f.logger.Error().
				Err(err).
				Uint("attempt", attempt+1).
				Uint64("sequence", ev.Sequence).
				Msg("Forwarding notification failed, retrying")
		}),
	)
}

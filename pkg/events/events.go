package events

import (
	"sync"
	"time"

	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/google/uuid"
)

// Event is a notification stamped for delivery
type Event struct {
	ID           string             `json:"id"`
	Sequence     uint64             `json:"sequence"`
	Timestamp    time.Time          `json:"timestamp"`
	Notification types.Notification `json:"notification"`
}

// Subscriber is a channel that receives events
type Subscriber <-chan *Event

// subscription buffers events for one subscriber. The queue is unbounded so
// publishing never waits on a slow reader and never loses an event.
type subscription struct {
	out    chan *Event
	mu     sync.Mutex
	queue  []*Event
	signal chan struct{}
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// Broker fans engine notifications out to subscribers. It implements
// engine.Emitter. Publishing never blocks the caller and every subscriber
// receives every event published while it is subscribed, in publish order.
type Broker struct {
	subscribers map[Subscriber]*subscription
	mu          sync.Mutex
	stopped     bool
	seq         uint64
	now         func() time.Time
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]*subscription),
		now:         time.Now,
	}
}

// Stop stops the broker. Subscriber channels are closed and undelivered
// events are discarded.
func (b *Broker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return
	}
	b.stopped = true

	for key, s := range b.subscribers {
		s.close()
		delete(b.subscribers, key)
	}
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	s := &subscription{
		out:    make(chan *Event),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	go s.pump()
	if b.stopped {
		s.close()
		return s.out
	}
	b.subscribers[s.out] = s
	return s.out
}

// Unsubscribe removes a subscription. The channel is closed when
// Unsubscribe returns.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.subscribers[sub]; ok {
		delete(b.subscribers, sub)
		s.close()
	}
}

// Emit stamps n and queues it for every subscriber
func (b *Broker) Emit(n types.Notification) {
	b.Publish(&Event{Notification: n})
}

// Publish queues an event for every subscriber, filling in its ID, sequence
// and timestamp when unset
func (b *Broker) Publish(event *Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Sequence == 0 {
		b.seq++
		event.Sequence = b.seq
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = b.now()
	}

	for _, s := range b.subscribers {
		s.enqueue(event)
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (s *subscription) enqueue(event *Event) {
	s.mu.Lock()
	s.queue = append(s.queue, event)
	s.mu.Unlock()
	metrics.NotificationBacklog.Inc()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// pump moves queued events to the subscriber channel one at a time
func (s *subscription) pump() {
	defer close(s.exited)
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.signal:
				continue
			case <-s.done:
				return
			}
		}
		event := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- event:
			metrics.NotificationBacklog.Dec()
		case <-s.done:
			metrics.NotificationBacklog.Dec()
			return
		}
	}
}

// close stops the pump and waits for it to close the channel
func (s *subscription) close() {
	s.once.Do(func() {
		close(s.done)
		<-s.exited

		s.mu.Lock()
		metrics.NotificationBacklog.Sub(float64(len(s.queue)))
		s.queue = nil
		s.mu.Unlock()
	})
}

/*
Package events fans scheduler notifications out to in-process subscribers.

The Broker implements engine.Emitter. Every notification the engine commits
is wrapped in an Event carrying a UUID, a broker-wide sequence number and a
timestamp, then appended to the queue of each current subscriber.

# Delivery

	engine ──Emit──▶ per-subscriber queue ──pump──▶ subscriber channel

Queues are unbounded: Emit never blocks the engine and a slow subscriber
never loses events, it only falls behind. Each subscriber sees the events
published while it was subscribed, in sequence order. The number of queued
events is exported as burrow_notification_backlog.

Subscribers include the gRPC WatchNotifications stream and the Kafka
forwarder in package notify.

# Usage

	broker := events.NewBroker()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	for ev := range sub {
		fmt.Println(ev.Sequence, ev.Notification.Kind)
	}
*/
package events

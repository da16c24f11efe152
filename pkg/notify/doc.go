// Package notify exports scheduler notifications to Kafka for audit and
// automation. A Forwarder subscribes to the events broker and hands each event
// to a KafkaSink on the raft leader only; the sink retries failed writes with
// exponential backoff and counts events it finally gives up on.
package notify

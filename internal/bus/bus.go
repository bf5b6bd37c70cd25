// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package bus carries relay events (frames, connection statuses, lifecycle
// notices) from stream sessions to external subscribers.
package bus

import (
	"context"
	"strings"
)

// Message is one event delivered to a subscriber.
type Message struct {
	Topic   string `json:"topic"`
	Payload string `json:"payload"`
}

// Subscriber receives messages for one topic until Close is called.
type Subscriber interface {
	C() <-chan Message
	Close() error
}

// Bus is the publish/subscribe surface used by the relay and the event feed.
type Bus interface {
	Publish(ctx context.Context, topic, payload string) error
	Subscribe(ctx context.Context, topic string) (Subscriber, error)
}

// TopicKind returns the namespace part of a "<kind>::<id>" topic, used as a
// low-cardinality metrics label.
func TopicKind(topic string) string {
	kind, _, ok := strings.Cut(topic, "::")
	if !ok {
		return "unknown"
	}
	return kind
}

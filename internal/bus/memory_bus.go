// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/camrelay/internal/log"
	"github.com/ManuGH/camrelay/internal/metrics"
)

// MemoryBus is an in-process pub/sub. Publish blocks on a full subscriber
// until the publish context ends, then drops the message for that subscriber.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string][]chan Message
	buffer int
}

const (
	dropLogEvery      = 100
	defaultSubBufSize = 64
)

var dropCount atomic.Uint64

// NewMemoryBus creates a bus whose subscriber channels hold buffer messages.
func NewMemoryBus(buffer int) *MemoryBus {
	if buffer <= 0 {
		buffer = defaultSubBufSize
	}
	return &MemoryBus{subs: make(map[string][]chan Message), buffer: buffer}
}

func publishDropReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

func (b *MemoryBus) Publish(ctx context.Context, topic, payload string) error {
	if ctx == nil {
		return fmt.Errorf("publish context is nil")
	}
	msg := Message{Topic: topic, Payload: payload}
	kind := TopicKind(topic)

	// The read lock is held across delivery so Close cannot close a channel
	// mid-send; publish contexts bound how long that can take.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[topic] {
		select {
		case ch <- msg:
		case <-ctx.Done():
			reason := publishDropReason(ctx.Err())
			metrics.IncBusDropReason(kind, reason)
			count := dropCount.Add(1)
			if count%dropLogEvery == 0 {
				log.L().Warn().
					Str("topic", topic).
					Str("reason", reason).
					Uint64("dropped", count).
					Msg("memory bus failed to publish due to context cancellation")
			}
			return fmt.Errorf("publish topic %q: %w", topic, ctx.Err())
		}
	}
	metrics.IncBusPublished("memory", kind)
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, topic string) (Subscriber, error) {
	ch := make(chan Message, b.buffer)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	return &memSub{b: b, topic: topic, ch: ch}, nil
}

// Subscribers reports how many subscribers are attached to topic.
func (b *MemoryBus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

type memSub struct {
	b     *MemoryBus
	topic string
	ch    chan Message
	once  sync.Once
}

func (s *memSub) C() <-chan Message {
	return s.ch
}

func (s *memSub) Close() error {
	s.once.Do(func() {
		s.b.mu.Lock()
		defer s.b.mu.Unlock()

		lst := s.b.subs[s.topic]
		out := lst[:0]
		for _, c := range lst {
			if c != s.ch {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			delete(s.b.subs, s.topic)
		} else {
			s.b.subs[s.topic] = out
		}
		close(s.ch) // Signal subscriber to stop
	})
	return nil
}

// Ensure compliance
var _ Bus = (*MemoryBus)(nil)

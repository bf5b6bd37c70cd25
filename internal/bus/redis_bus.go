// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/ManuGH/camrelay/internal/log"
	"github.com/ManuGH/camrelay/internal/metrics"
)

// RedisBus publishes events on Redis pub/sub channels named after the topic,
// so subscribers outside this process can follow a stream.
type RedisBus struct {
	client *redis.Client
	buffer int
}

// NewRedisBus wraps an existing client. The caller owns the client lifecycle.
func NewRedisBus(client *redis.Client, buffer int) *RedisBus {
	if buffer <= 0 {
		buffer = defaultSubBufSize
	}
	return &RedisBus{client: client, buffer: buffer}
}

// Ping checks connectivity; used by the readiness probe.
func (b *RedisBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBus) Publish(ctx context.Context, topic, payload string) error {
	if ctx == nil {
		return fmt.Errorf("publish context is nil")
	}
	kind := TopicKind(topic)
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		metrics.IncBusDropReason(kind, publishDropReason(err))
		return fmt.Errorf("publish topic %q: %w", topic, err)
	}
	metrics.IncBusPublished("redis", kind)
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, topic string) (Subscriber, error) {
	ps := b.client.Subscribe(ctx, topic)
	// Wait for the subscription confirmation so no publish is missed after return.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe topic %q: %w", topic, err)
	}

	sub := &redisSub{
		ps:   ps,
		ch:   make(chan Message, b.buffer),
		done: make(chan struct{}),
	}
	go sub.pump(topic)
	return sub, nil
}

type redisSub struct {
	ps   *redis.PubSub
	ch   chan Message
	done chan struct{}
	once sync.Once
}

func (s *redisSub) pump(topic string) {
	defer close(s.ch)
	logger := log.WithComponent("bus")
	for m := range s.ps.Channel() {
		msg := Message{Topic: m.Channel, Payload: m.Payload}
		select {
		case s.ch <- msg:
		case <-s.done:
			return
		default:
			metrics.IncBusDropReason(TopicKind(topic), "full")
			logger.Debug().Str("topic", topic).Msg("redis subscriber buffer full, dropping event")
		}
	}
}

func (s *redisSub) C() <-chan Message {
	return s.ch
}

func (s *redisSub) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

var _ Bus = (*RedisBus)(nil)

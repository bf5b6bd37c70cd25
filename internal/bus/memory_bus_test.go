// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bus

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/camrelay/internal/metrics"
)

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestMemoryBusDeliversToTopicSubscribers(t *testing.T) {
	b := NewMemoryBus(4)
	sub, err := b.Subscribe(context.Background(), "connection-status::gate-1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	other, err := b.Subscribe(context.Background(), "connection-status::gate-2")
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })

	require.NoError(t, b.Publish(context.Background(), "connection-status::gate-1", "connected"))

	select {
	case msg := <-sub.C():
		require.Equal(t, Message{Topic: "connection-status::gate-1", Payload: "connected"}, msg)
	case <-time.After(time.Second):
		t.Fatal("expected message")
	}
	require.Empty(t, other.C())
}

func TestMemoryBusPublishWithoutSubscribers(t *testing.T) {
	b := NewMemoryBus(0)
	require.NoError(t, b.Publish(context.Background(), "live-frame::nobody", "AAAA"))
}

func TestMemoryBusPublishContextTimeoutIncrementsDropMetrics(t *testing.T) {
	b := NewMemoryBus(2)
	sub, err := b.Subscribe(context.Background(), "live-frame::cam")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	// Fill subscriber channel to capacity so next publish blocks.
	for i := 0; i < cap(sub.C()); i++ {
		require.NoError(t, b.Publish(context.Background(), "live-frame::cam", "msg"))
	}

	initial := getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("live-frame", "timeout"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = b.Publish(ctx, "live-frame::cam", "blocked")
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	final := getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("live-frame", "timeout"))
	require.Greater(t, final, initial, "expected drop counter to increase")
}

func TestMemoryBusPublishRejectsNilContext(t *testing.T) {
	b := NewMemoryBus(1)
	//nolint:staticcheck // nil context is the case under test
	err := b.Publish(nil, "topic", "msg")
	require.Error(t, err)
	require.Contains(t, err.Error(), "context is nil")
}

func TestMemoryBusCloseUnsubscribes(t *testing.T) {
	b := NewMemoryBus(1)
	sub, err := b.Subscribe(context.Background(), "t::1")
	require.NoError(t, err)
	require.Equal(t, 1, b.Subscribers("t::1"))

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close(), "close is idempotent")
	require.Equal(t, 0, b.Subscribers("t::1"))

	_, ok := <-sub.C()
	require.False(t, ok, "channel should be closed")
}

func TestTopicKind(t *testing.T) {
	require.Equal(t, "live-frame", TopicKind("live-frame::gate-1"))
	require.Equal(t, "connection-status", TopicKind("connection-status::a::b"))
	require.Equal(t, "unknown", TopicKind("plain"))
}

func TestPublishDropReason(t *testing.T) {
	require.Equal(t, "timeout", publishDropReason(context.DeadlineExceeded))
	require.Equal(t, "canceled", publishDropReason(fmt.Errorf("publish: %w", context.Canceled)))
	require.Equal(t, "error", publishDropReason(errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")))
}

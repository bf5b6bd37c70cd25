// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ManuGH/camrelay/internal/bus"
	"github.com/ManuGH/camrelay/internal/log"
	"github.com/ManuGH/camrelay/internal/metrics"
	"github.com/ManuGH/camrelay/internal/relay"
)

// eventTopics maps the ?topics= selector to the per-stream topics.
func eventTopics(streamID, selector string) ([]string, error) {
	if selector == "" {
		return relay.Topics(streamID), nil
	}
	var topics []string
	seen := make(map[string]bool)
	for _, name := range strings.Split(selector, ",") {
		var topic string
		switch strings.TrimSpace(name) {
		case "frames":
			topic = relay.FrameTopic(streamID)
		case "status":
			topic = relay.StatusTopic(streamID)
		case "lifecycle":
			topic = relay.LifecycleTopic(streamID)
		default:
			return nil, fmt.Errorf("unknown topic selector %q (want frames, status or lifecycle)", name)
		}
		if !seen[topic] {
			seen[topic] = true
			topics = append(topics, topic)
		}
	}
	return topics, nil
}

// handleEvents upgrades to a websocket and forwards every bus message for the
// stream as {"topic","payload"} JSON until either side goes away. A feed may
// be opened before the stream is started.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	topics, err := eventTopics(id, r.URL.Query().Get("topics"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger := log.WithContext(log.ContextWithStreamID(r.Context(), id), s.logger)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	subs := make([]bus.Subscriber, 0, len(topics))
	defer func() {
		for _, sub := range subs {
			_ = sub.Close()
		}
	}()
	for _, topic := range topics {
		sub, err := s.bus.Subscribe(ctx, topic)
		if err != nil {
			logger.Error().Err(err).Str("topic", topic).Msg("event subscription failed")
			writeError(w, http.StatusServiceUnavailable, "event bus unavailable")
			return
		}
		subs = append(subs, sub)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.EventSubscribers.Inc()
	defer metrics.EventSubscribers.Dec()
	logger.Debug().Strs("topics", topics).Msg("event feed opened")

	// Incoming frames are ignored; reading is needed for control frames and
	// to notice the client closing.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	msgs := fanIn(ctx, subs)
	ping := time.NewTicker(s.cfg.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug().Err(err).Msg("event feed write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

// fanIn merges subscriber channels. The result closes once every input has
// closed or ctx ends.
func fanIn(ctx context.Context, subs []bus.Subscriber) <-chan bus.Message {
	out := make(chan bus.Message)
	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(ch <-chan bus.Message) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-ch:
					if !ok {
						return
					}
					select {
					case out <- msg:
					case <-ctx.Done():
						return
					}
				}
			}
		}(sub.C())
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

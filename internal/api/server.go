// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api exposes the stream commands and the event feed over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/camrelay/internal/api/middleware"
	"github.com/ManuGH/camrelay/internal/bus"
	"github.com/ManuGH/camrelay/internal/health"
	"github.com/ManuGH/camrelay/internal/log"
	"github.com/ManuGH/camrelay/internal/relay"
)

// StreamService is the command surface of the stream registry.
type StreamService interface {
	Start(ctx context.Context, req relay.StreamRequest) (relay.Result, error)
	Stop(ctx context.Context, streamID string) relay.Result
	List() []string
}

// Config tunes the HTTP surface.
type Config struct {
	RateLimitRPS   int
	TracingService string
	// PingInterval keeps idle event feeds alive through proxies.
	PingInterval time.Duration
	WriteTimeout time.Duration
	// CheckOrigin overrides the websocket origin policy; nil allows any origin.
	CheckOrigin func(r *http.Request) bool
}

// Server wires HTTP routes to the registry, the bus and health probes.
type Server struct {
	cfg      Config
	streams  StreamService
	bus      bus.Bus
	health   *health.Manager
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// New creates a server. hm may be nil, in which case probes always pass.
func New(cfg Config, streams StreamService, b bus.Bus, hm *health.Manager) *Server {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if hm == nil {
		hm = health.NewManager("")
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Server{
		cfg:     cfg,
		streams: streams,
		bus:     b,
		health:  hm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: log.WithComponent("api"),
	}
}

// Handler returns the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:  true,
		TracingService: s.cfg.TracingService,
		EnableLogging:  true,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/streams", func(r chi.Router) {
		if s.cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimitPerSecond(s.cfg.RateLimitRPS))
		}
		r.Get("/", s.handleListStreams)
		r.Post("/{id}", s.handleStartStream)
		r.Delete("/{id}", s.handleStopStream)
		r.Get("/{id}/events", s.handleEvents)
	})
	return r
}

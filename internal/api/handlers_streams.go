// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/camrelay/internal/log"
	"github.com/ManuGH/camrelay/internal/relay"
)

const maxStartBody = 64 << 10

type startStreamRequest struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Address  string `json:"address"`
	Path     string `json:"path"`
}

type listStreamsResponse struct {
	Streams []string `json:"streams"`
}

func (s *Server) handleStartStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := log.ContextWithStreamID(r.Context(), id)

	var body startStreamRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStartBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, relay.Result{
			IsSuccess: false,
			Message:   fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	res, err := s.streams.Start(ctx, relay.StreamRequest{
		StreamID: id,
		Username: body.Username,
		Password: body.Password,
		Address:  body.Address,
		Path:     body.Path,
	})
	switch {
	case errors.Is(err, relay.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, res)
	case err != nil:
		s.logger.Error().Err(err).Str(log.FieldStreamID, id).Msg("unexpected start failure")
		writeJSON(w, http.StatusInternalServerError, relay.Result{IsSuccess: false, Message: "internal error"})
	default:
		// A spawn failure is a soft result: 200 with is_success=false.
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleStopStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res := s.streams.Stop(log.ContextWithStreamID(r.Context(), id), id)
	if errors.Is(res.Err, relay.ErrStreamNotFound) {
		writeJSON(w, http.StatusNotFound, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListStreams(w http.ResponseWriter, _ *http.Request) {
	streams := s.streams.List()
	if streams == nil {
		streams = []string{}
	}
	writeJSON(w, http.StatusOK, listStreamsResponse{Streams: streams})
}

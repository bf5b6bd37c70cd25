// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import "errors"

var (
	// ErrInvalidArgument is the only start failure returned as an error.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSpawnFailed marks a transcoder that could not be started. It is
	// logged and recorded but reported to callers as a soft Result.
	ErrSpawnFailed = errors.New("spawn failed")
	// ErrStreamNotFound classifies soft stop failures; it never leaves Stop as an error.
	ErrStreamNotFound = errors.New("stream not found")
)

// Result is the command-level answer to start and stop requests.
type Result struct {
	IsSuccess bool    `json:"is_success"`
	Message   string  `json:"message"`
	Outcome   Outcome `json:"outcome,omitempty"`
	// Err classifies a non-success Result; it wraps one of the errors above.
	Err error `json:"-"`
}

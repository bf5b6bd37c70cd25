// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID  = "request_id"
	FieldStreamID   = "stream_id"
	FieldInstanceID = "instance_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldPID       = "pid"
	FieldOutcome   = "outcome"
	FieldExitCode  = "exit_code"

	// Media / stream fields
	FieldStatus    = "status"
	FieldFrameSize = "frame_size"
	FieldFPS       = "fps"
	FieldURL       = "url"

	// HTTP fields
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldHTTPCode = "status_code"
	FieldDuration = "duration"
)

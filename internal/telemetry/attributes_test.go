// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestHTTPAttributes(t *testing.T) {
	attrs := HTTPAttributes("POST", "/api/v1/streams/{id}", 200)

	if len(attrs) != 3 {
		t.Fatalf("Expected 3 attributes, got %d", len(attrs))
	}

	verifyAttribute(t, attrs, HTTPMethodKey, "POST")
	verifyAttribute(t, attrs, HTTPRouteKey, "/api/v1/streams/{id}")
	verifyIntAttribute(t, attrs, HTTPStatusCodeKey, 200)
}

func TestStreamAttributes(t *testing.T) {
	tests := []struct {
		name     string
		streamID string
		wantLen  int
	}{
		{name: "with id", streamID: "gate-1", wantLen: 1},
		{name: "empty id", streamID: "", wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := StreamAttributes(tt.streamID)
			if len(attrs) != tt.wantLen {
				t.Errorf("Expected %d attributes, got %d", tt.wantLen, len(attrs))
			}
			if tt.streamID != "" {
				verifyAttribute(t, attrs, StreamIDKey, tt.streamID)
			}
		})
	}
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("spawn_failed")
	verifyAttribute(t, attrs, ErrorTypeKey, "spawn_failed")
	for _, attr := range attrs {
		if string(attr.Key) == ErrorKey && !attr.Value.AsBool() {
			t.Errorf("expected %s=true", ErrorKey)
		}
	}
}

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, want string) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsString() != want {
				t.Errorf("attribute %s = %q, want %q", key, attr.Value.AsString(), want)
			}
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}

func verifyIntAttribute(t *testing.T, attrs []attribute.KeyValue, key string, want int) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsInt64() != int64(want) {
				t.Errorf("attribute %s = %d, want %d", key, attr.Value.AsInt64(), want)
			}
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}

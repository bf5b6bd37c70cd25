// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

// Status is the connection health of one stream as seen by subscribers.
type Status string

const (
	StatusConnected      Status = "connected"
	StatusConnectionSlow Status = "connection_slow"
	StatusDisconnected   Status = "disconnected"
	StatusError          Status = "error"
)

// Lifecycle events published on the lifecycle topic.
const (
	LifecycleStarted       = "started"
	LifecycleStoppedClean  = "stopped_clean"
	LifecycleStoppedForced = "stopped_forced"
	LifecycleReplaced      = "replaced"
)

// Topic prefixes, namespaced per stream id as "<prefix>::<stream_id>".
const (
	FrameTopicPrefix     = "live-frame"
	StatusTopicPrefix    = "connection-status"
	LifecycleTopicPrefix = "stream-lifecycle"
)

func FrameTopic(streamID string) string     { return FrameTopicPrefix + "::" + streamID }
func StatusTopic(streamID string) string    { return StatusTopicPrefix + "::" + streamID }
func LifecycleTopic(streamID string) string { return LifecycleTopicPrefix + "::" + streamID }

// Topics lists every topic a subscriber to streamID may follow.
func Topics(streamID string) []string {
	return []string{FrameTopic(streamID), StatusTopic(streamID), LifecycleTopic(streamID)}
}

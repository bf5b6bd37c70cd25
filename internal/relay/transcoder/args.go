// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcoder

import (
	"fmt"
	"strconv"
)

// Profile holds the tunable parts of the low-latency MJPEG profile.
type Profile struct {
	FPS      int    // constant output frame rate
	Quality  int    // -q:v, 2 (best) .. 31 (worst)
	LogLevel string // ffmpeg -loglevel for the diagnostic channel
}

// DefaultProfile is the profile used for camera previews.
func DefaultProfile() Profile {
	return Profile{FPS: 10, Quality: 5, LogLevel: "error"}
}

// Validate rejects values ffmpeg would refuse or misinterpret.
func (p Profile) Validate() error {
	if p.FPS <= 0 || p.FPS > 60 {
		return fmt.Errorf("fps must be within 1..60, got %d", p.FPS)
	}
	if p.Quality < 2 || p.Quality > 31 {
		return fmt.Errorf("quality must be within 2..31, got %d", p.Quality)
	}
	return nil
}

// BuildArgs constructs the ffmpeg arguments for RTSP -> MJPEG on stdout.
// Arguments are passed directly to exec, never through a shell.
func BuildArgs(streamURL string, p Profile) ([]string, error) {
	if streamURL == "" {
		return nil, fmt.Errorf("missing stream URL")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	logLevel := p.LogLevel
	if logLevel == "" {
		logLevel = "error"
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", logLevel, // stderr is the diagnostic channel

		// Input: TCP interleaved RTSP, no input buffering
		"-rtsp_transport", "tcp",
		"-fflags", "nobuffer",
		"-flags", "low_delay",
		"-i", streamURL,

		// Output: video only, constant frame rate MJPEG on stdout
		"-an",
		"-r", strconv.Itoa(p.FPS),
		"-fps_mode", "cfr",
		"-q:v", strconv.Itoa(p.Quality),
		"-f", "mjpeg",
		"pipe:1",
	}
	return args, nil
}

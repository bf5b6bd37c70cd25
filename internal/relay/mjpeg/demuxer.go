// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package mjpeg splits a motion-JPEG elementary stream into complete frames.
package mjpeg

import "bytes"

// DefaultCeiling is the buffer size above which an incomplete frame is
// abandoned.
const DefaultCeiling = 1_000_000

var (
	startMarker = []byte{0xFF, 0xD8} // SOI
	endMarker   = []byte{0xFF, 0xD9} // EOI
)

// Demuxer accumulates stream bytes and yields complete SOI..EOI frames.
// It is owned by a single reader and is not safe for concurrent use.
type Demuxer struct {
	buf      []byte
	ceiling  int
	frames   uint64
	overflow uint64
}

// NewDemuxer returns a demuxer that discards its buffer once it grows past
// ceiling bytes without yielding a frame. ceiling <= 0 selects DefaultCeiling.
func NewDemuxer(ceiling int) *Demuxer {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Demuxer{ceiling: ceiling}
}

// Feed appends chunk and returns every frame that became complete, in stream
// order. Returned frames do not alias the internal buffer.
func (d *Demuxer) Feed(chunk []byte) [][]byte {
	d.buf = append(d.buf, chunk...)

	var frames [][]byte
	for {
		frame, ok := d.next()
		if !ok {
			break
		}
		frames = append(frames, frame)
	}

	// Whatever is left has not produced a frame yet.
	if len(d.buf) > d.ceiling {
		d.buf = nil
		d.overflow++
	}
	return frames
}

// next extracts one frame from the front of the buffer, re-anchoring at the
// first start marker.
func (d *Demuxer) next() ([]byte, bool) {
	start := bytes.Index(d.buf, startMarker)
	if start < 0 {
		return nil, false
	}
	rel := bytes.Index(d.buf[start+len(startMarker):], endMarker)
	if rel < 0 {
		return nil, false
	}
	end := start + len(startMarker) + rel + len(endMarker)

	frame := make([]byte, end-start)
	copy(frame, d.buf[start:end])
	d.buf = d.buf[end:]
	d.frames++
	return frame, true
}

// Buffered reports how many bytes are waiting for a frame to complete.
func (d *Demuxer) Buffered() int { return len(d.buf) }

// Frames reports how many frames have been extracted.
func (d *Demuxer) Frames() uint64 { return d.frames }

// Overflows reports how many times the buffer was discarded.
func (d *Demuxer) Overflows() uint64 { return d.overflow }

// Reset drops any buffered bytes.
func (d *Demuxer) Reset() { d.buf = nil }

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncStreamStopKeepsOutcomesApart(t *testing.T) {
	cleanBefore := testutil.ToFloat64(StreamStopsTotal.WithLabelValues("clean"))
	forcedBefore := testutil.ToFloat64(StreamStopsTotal.WithLabelValues("forced"))

	IncStreamStop("clean")
	IncStreamStop("forced")
	IncStreamStop("forced")

	assert.Equal(t, cleanBefore+1, testutil.ToFloat64(StreamStopsTotal.WithLabelValues("clean")))
	assert.Equal(t, forcedBefore+2, testutil.ToFloat64(StreamStopsTotal.WithLabelValues("forced")))
}

func TestObserveFrame(t *testing.T) {
	framesBefore := testutil.ToFloat64(FramesPublishedTotal)
	bytesBefore := testutil.ToFloat64(FrameBytesTotal)

	ObserveFrame(1024)

	assert.Equal(t, framesBefore+1, testutil.ToFloat64(FramesPublishedTotal))
	assert.Equal(t, bytesBefore+1024, testutil.ToFloat64(FrameBytesTotal))
}

func TestIncBusDropReasonDefaultsLabels(t *testing.T) {
	before := testutil.ToFloat64(BusDroppedTotal.WithLabelValues("unknown", "unknown"))
	IncBusDropReason("", "")
	assert.Equal(t, before+1, testutil.ToFloat64(BusDroppedTotal.WithLabelValues("unknown", "unknown")))
}

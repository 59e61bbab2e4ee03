// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/misekit/placefinder/places"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureNoteAndOutcome(t *testing.T) {
	tests := []struct {
		name      string
		out       places.Outcome
		wantNote  string
		wantLabel string
	}{
		{
			name:      "zero results",
			out:       zeroResults("/place/textsearch/json").Outcome,
			wantNote:  "provider rejected: google maps status: ZERO_RESULTS",
			wantLabel: "rejected",
		},
		{
			name: "over query limit",
			out: places.Outcome{
				HTTPStatus: http.StatusOK,
				Status:     "OVER_QUERY_LIMIT",
				Err:        places.ClassifyProviderStatus("OVER_QUERY_LIMIT", ""),
			},
			wantNote:  "provider rejected (quota exceeded): google maps status: OVER_QUERY_LIMIT",
			wantLabel: "quota_exceeded",
		},
		{
			name:      "http 429",
			out:       failed("/geocode/json", http.StatusTooManyRequests, places.ClassifyHTTPError(http.StatusTooManyRequests, "")).Outcome,
			wantNote:  "provider unavailable (rate limited): rate limit reached",
			wantLabel: "rate_limited",
		},
		{
			name:      "http 403",
			out:       failed("/geocode/json", http.StatusForbidden, places.ClassifyHTTPError(http.StatusForbidden, "")).Outcome,
			wantNote:  "provider unavailable (quota exceeded): quota exceeded or access denied",
			wantLabel: "quota_exceeded",
		},
		{
			name:      "http 404",
			out:       failed("/geocode/json", http.StatusNotFound, places.ClassifyHTTPError(http.StatusNotFound, "")).Outcome,
			wantNote:  "provider unavailable: not found",
			wantLabel: "unavailable",
		},
		{
			name:      "http 503",
			out:       failed("/geocode/json", http.StatusServiceUnavailable, places.ClassifyHTTPError(http.StatusServiceUnavailable, "")).Outcome,
			wantNote:  "provider unavailable: service unavailable (status 503)",
			wantLabel: "unavailable",
		},
		{
			name:      "transport timeout",
			out:       failed("/geocode/json", 0, places.ClassifyTransportError(context.DeadlineExceeded)).Outcome,
			wantNote:  "provider unavailable (timeout): request timed out: context deadline exceeded",
			wantLabel: "timeout",
		},
		{
			name:      "connection refused",
			out:       failed("/geocode/json", 0, places.ClassifyTransportError(errors.New("connection refused"))).Outcome,
			wantNote:  "provider unavailable: request failed: connection refused",
			wantLabel: "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantNote, failureNote(tt.out, "none"))
			assert.Equal(t, tt.wantLabel, outcomeLabel(tt.out, false))
		})
	}
}

func TestFailureNoteEmpty(t *testing.T) {
	out := places.Outcome{OK: true, HTTPStatus: http.StatusOK, Status: "OK"}

	assert.Equal(t, "no candidates", failureNote(out, "no candidates"))
	assert.Equal(t, "empty", outcomeLabel(out, false))
	assert.Equal(t, "ok", outcomeLabel(out, true))
}

func TestResolveUpstreamFailureKinds(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	gw := &fakeGateway{
		geocode: anchored(),
		nearby:  failed("/place/findplacefromtext/json", http.StatusTooManyRequests, places.ClassifyHTTPError(http.StatusTooManyRequests, "")),
		text:    failed("/place/textsearch/json", 0, places.ClassifyTransportError(context.DeadlineExceeded)),
	}

	res, err := New(gw, DefaultOptions(), nil, metrics).Resolve(context.Background(), Request{Name: "Cafe Mise", Address: "x"})
	require.NoError(t, err)

	assert.Equal(t, SourceGeocode, res.Place.Source)
	require.Len(t, res.Steps, 4)
	assert.Equal(t, http.StatusTooManyRequests, *res.Steps[1].HTTPStatus)
	assert.Equal(t, "provider unavailable (rate limited): rate limit reached", *res.Steps[1].Note)
	assert.Nil(t, res.Steps[2].HTTPStatus)
	assert.Contains(t, *res.Steps[2].Note, "provider unavailable (timeout)")

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.upstreamCalls.WithLabelValues(StepNearbySearch, "rate_limited")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.upstreamCalls.WithLabelValues(StepTextSearch, "timeout")), 0)
}

// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"testing"

	"github.com/misekit/placefinder/places"
	"github.com/misekit/placefinder/spatial"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	anchor := Anchor{Point: anchorPoint, FormattedAddress: anchorAddress}

	tests := []struct {
		name        string
		candidate   Candidate
		wantMeters  float64
		wantMatches bool
		wantAccept  bool
	}{
		{"close and matching", Candidate{Point: near62m, FormattedAddress: ptr(matchingAddress)}, 62.0, true, true},
		{"close but different address", Candidate{Point: near62m, FormattedAddress: ptr(otherAddress)}, 62.0, false, false},
		{"matching but far", Candidate{Point: far550m, FormattedAddress: ptr(matchingAddress)}, 550.4, true, false},
		{"no address", Candidate{Point: near120m}, 120.1, false, false},
		{"same point", Candidate{Point: anchorPoint, FormattedAddress: ptr(anchorAddress)}, 0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.candidate, anchor)

			assert.InDelta(t, tt.wantMeters, got.DistanceMeters, 0.5)
			assert.Equal(t, tt.wantMatches, got.AddressMatches)
			assert.Equal(t, tt.wantAccept, Accept(got))
		})
	}
}

func TestAcceptRequiresBothChecks(t *testing.T) {
	assert.True(t, Accept(Candidate{DistanceMeters: DefaultRadius, AddressMatches: true}))
	assert.False(t, Accept(Candidate{DistanceMeters: DefaultRadius + 0.001, AddressMatches: true}))
	assert.False(t, Accept(Candidate{DistanceMeters: 0, AddressMatches: false}))
	assert.True(t, AcceptWithin(Candidate{DistanceMeters: 550, AddressMatches: true}, 600))
}

func TestCandidateFrom(t *testing.T) {
	_, ok := candidateFrom(&places.Place{PlaceID: "x"})
	assert.False(t, ok)

	_, ok = candidateFrom(nil)
	assert.False(t, ok)

	p := &places.Place{PlaceID: "x", FormattedAddress: ""}
	p.Geometry.Location = &spatial.Point{Lat: 1, Lng: 2}

	c, ok := candidateFrom(p)
	assert.True(t, ok)
	assert.Equal(t, "x", *c.PlaceID)
	assert.Nil(t, c.FormattedAddress)
	assert.Equal(t, spatial.Point{Lat: 1, Lng: 2}, c.Point)
}

func TestTraceDropsSamplesOutsideDebug(t *testing.T) {
	step := TraceStep{Step: StepGeocode, Sample: map[string]any{"status": "OK"}}

	quiet := NewTrace(false, nil)
	quiet.Record(step)
	assert.Nil(t, quiet.Steps()[0].Sample)

	loud := NewTrace(true, nil)
	loud.Record(step)
	assert.Equal(t, map[string]any{"status": "OK"}, loud.Steps()[0].Sample)

	steps := loud.Steps()
	steps[0].Step = "mutated"
	assert.Equal(t, StepGeocode, loud.Steps()[0].Step)
}

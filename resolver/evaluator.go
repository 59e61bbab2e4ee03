// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"github.com/misekit/placefinder/address"
	"github.com/misekit/placefinder/places"
	"github.com/misekit/placefinder/spatial"
)

// DefaultRadius is the acceptance radius around the anchor, in meters.
const DefaultRadius = 400.0

// Evaluate measures a candidate against the anchor.
func Evaluate(c Candidate, a Anchor) Candidate {
	c.DistanceMeters = spatial.HaversineMeters(c.Point, a.Point)

	c.AddressMatches = false
	if c.FormattedAddress != nil {
		c.AddressMatches = address.Similar(*c.FormattedAddress, a.FormattedAddress)
	}

	return c
}

// Accept applies the acceptance policy with DefaultRadius.
func Accept(c Candidate) bool {
	return AcceptWithin(c, DefaultRadius)
}

// AcceptWithin requires both proximity and an address match.
func AcceptWithin(c Candidate, radius float64) bool {
	return c.DistanceMeters <= radius && c.AddressMatches
}

// candidateFrom converts the first search result. Results without a
// coordinate cannot be evaluated.
func candidateFrom(p *places.Place) (Candidate, bool) {
	loc := p.Location()
	if loc == nil {
		return Candidate{}, false
	}

	return Candidate{
		PlaceID:          optional(p.PlaceID),
		Point:            *loc,
		FormattedAddress: optional(p.FormattedAddress),
	}, true
}

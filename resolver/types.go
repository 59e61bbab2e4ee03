// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolver turns a business name and postal address into a verified
// location by cascading through geocoding and place searches.
package resolver

import (
	"errors"

	"github.com/misekit/placefinder/spatial"
)

var (
	// ErrInvalidRequest is returned when name or address is blank.
	ErrInvalidRequest = errors.New("name and address are required")

	// ErrNotFound is returned by the lookups that have no degraded answer.
	ErrNotFound = errors.New("not found")
)

// Source tells which cascade step produced a ResolvedPlace.
type Source string

// Cascade steps, in order.
const (
	SourceGeocode      Source = "geocode"
	SourceNearbySearch Source = "nearby_search"
	SourceTextSearch   Source = "text_search"
)

// Request asks for a business to be located.
type Request struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Debug   bool   `json:"debug"`
}

// Anchor is the geocoded address, the reference for every proximity check.
type Anchor struct {
	spatial.Point

	FormattedAddress string `json:"formattedAddress"`
}

// Candidate is a name search result awaiting evaluation against the Anchor.
type Candidate struct {
	PlaceID          *string
	Point            spatial.Point
	FormattedAddress *string
	DistanceMeters   float64
	AddressMatches   bool
}

// ResolvedPlace is the result handed back to callers. PlaceID is only set
// when a candidate was accepted, in which case Source is not geocode.
type ResolvedPlace struct {
	PlaceID          *string  `json:"placeId,omitempty"`
	Lat              *float64 `json:"lat,omitempty"`
	Lng              *float64 `json:"lng,omitempty"`
	FormattedAddress *string  `json:"formattedAddress,omitempty"`
	Source           Source   `json:"source"`
	Cell             string   `json:"cell,omitempty"` // H3 cell at CellResolution
}

// Found reports whether the place has coordinates.
func (p ResolvedPlace) Found() bool {
	return p.Lat != nil && p.Lng != nil
}

// Verified reports whether the place is anchored to a canonical place id.
func (p ResolvedPlace) Verified() bool {
	return p.PlaceID != nil
}

// TraceStep records the outcome of one cascade transition.
type TraceStep struct {
	Step               string         `json:"step"`
	RequestDescription string         `json:"requestDescription"`
	HTTPStatus         *int           `json:"httpStatus,omitempty"`
	ProviderStatus     *string        `json:"providerStatus,omitempty"`
	ProviderError      *string        `json:"providerError,omitempty"`
	DistanceMeters     *float64       `json:"distanceMeters,omitempty"`
	AddressMatched     *bool          `json:"addressMatched,omitempty"`
	Note               *string        `json:"note,omitempty"`
	Sample             map[string]any `json:"sample,omitempty"`
}

// Result is a resolved place plus the trace that produced it.
type Result struct {
	Place ResolvedPlace
	Steps []TraceStep
}

func ptr[T any](v T) *T {
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

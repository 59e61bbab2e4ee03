// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

// Package places talks to the geocoding and place search provider.
package places

import (
	"context"

	"github.com/misekit/placefinder/spatial"
)

// Locale biases provider answers.
type Locale struct {
	Language string
	Region   string
}

// Outcome is what a single provider call produced. A call never fails
// loudly: transport errors, non-2xx answers, undecodable bodies and provider
// statuses other than OK all leave OK false and Err set.
type Outcome struct {
	OK           bool
	HTTPStatus   int            // 0 when no response was received
	Body         map[string]any // nil when the payload is not JSON
	Raw          string
	Status       string // provider status field, e.g. OK, ZERO_RESULTS
	ErrorMessage string // provider error_message field
	Err          error
	Request      string // request description without credentials
}

// Place is the part of a geocoding or search result the resolver consumes.
type Place struct {
	PlaceID          string `json:"place_id"`
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location *spatial.Point `json:"location"`
	} `json:"geometry"`
}

// Location returns the place coordinate, or nil when the provider omitted it.
func (p *Place) Location() *spatial.Point {
	if p == nil {
		return nil
	}

	return p.Geometry.Location
}

// Review is a single user review attached to place details.
type Review struct {
	AuthorName              string `json:"author_name"`
	AuthorURL               string `json:"author_url"`
	Rating                  int    `json:"rating"`
	Text                    string `json:"text"`
	RelativeTimeDescription string `json:"relative_time_description"`
	Time                    int64  `json:"time"`
}

// PlaceDetails is the Place Details projection served to callers.
type PlaceDetails struct {
	Place

	AdrAddress       string   `json:"adr_address"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal *int     `json:"user_ratings_total"`
	OpeningHours     *struct {
		OpenNow *bool `json:"open_now"`
	} `json:"opening_hours"`
	Reviews []Review `json:"reviews"`
}

// PlaceResponse carries the first result of a geocode or search call.
type PlaceResponse struct {
	Outcome

	Place *Place
}

// DetailsResponse carries the result of a place details call.
type DetailsResponse struct {
	Outcome

	Details *PlaceDetails
}

// Gateway issues one provider request per call and never retries.
type Gateway interface {
	// Geocode resolves free-text address into its best match.
	Geocode(ctx context.Context, address string, locale Locale) *PlaceResponse

	// FindNearbyByName looks a business name up, biased to a circle around center.
	FindNearbyByName(ctx context.Context, name string, center spatial.Point, radius float64, locale Locale) *PlaceResponse

	// TextSearchByName runs a broader text search around center.
	TextSearchByName(ctx context.Context, name string, center spatial.Point, radius float64, locale Locale) *PlaceResponse

	// PlaceDetails fetches the details of a canonical place identifier.
	PlaceDetails(ctx context.Context, placeID string, locale Locale) *DetailsResponse
}

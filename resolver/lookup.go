// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/misekit/placefinder/places"
	"go.uber.org/zap"
)

// PlaceSummary is the public projection of place details. Reviewer identity
// is never part of it.
type PlaceSummary struct {
	PlaceID          string            `json:"placeId"`
	Name             string            `json:"name"`
	FormattedAddress string            `json:"formattedAddress"`
	Lat              *float64          `json:"lat,omitempty"`
	Lng              *float64          `json:"lng,omitempty"`
	Rating           *float64          `json:"rating,omitempty"`
	UserRatingsTotal *int              `json:"userRatingsTotal,omitempty"`
	OpenNow          *bool             `json:"openNow,omitempty"`
	AddressParts     map[string]string `json:"addressParts,omitempty"`
	Reviews          []ReviewSummary   `json:"reviews"`
}

// ReviewSummary is a review without its author.
type ReviewSummary struct {
	Rating       int    `json:"rating"`
	Text         string `json:"text"`
	RelativeTime string `json:"relativeTime"`
}

// Geocode returns the anchor for address without searching for a business.
func (r *Resolver) Geocode(ctx context.Context, address string) (*Anchor, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrInvalidRequest
	}

	resp := r.gateway.Geocode(ctx, address, r.opts.Locale)
	loc := resp.Place.Location()
	r.metrics.upstream(StepGeocode, outcomeLabel(resp.Outcome, loc != nil))

	if !resp.OK || loc == nil {
		r.logger.Debug("geocode without result", zap.String("note", failureNote(resp.Outcome, "no coordinates")))

		return nil, fmt.Errorf("geocoding %q: %w", address, ErrNotFound)
	}

	return &Anchor{Point: *loc, FormattedAddress: resp.Place.FormattedAddress}, nil
}

// Details fetches place details for a canonical place id.
func (r *Resolver) Details(ctx context.Context, placeID string) (*PlaceSummary, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, ErrInvalidRequest
	}

	resp := r.gateway.PlaceDetails(ctx, placeID, r.opts.Locale)
	r.metrics.upstream("place_details", outcomeLabel(resp.Outcome, resp.Details != nil))

	if !resp.OK || resp.Details == nil {
		r.logger.Debug("place details without result",
			zap.String("place_id", placeID),
			zap.String("note", failureNote(resp.Outcome, "empty result")))

		return nil, fmt.Errorf("place %q: %w", placeID, ErrNotFound)
	}

	return r.summarize(placeID, resp.Details), nil
}

func (r *Resolver) summarize(placeID string, d *places.PlaceDetails) *PlaceSummary {
	summary := &PlaceSummary{
		PlaceID:          placeID,
		Name:             d.Name,
		FormattedAddress: d.FormattedAddress,
		Rating:           d.Rating,
		UserRatingsTotal: d.UserRatingsTotal,
		Reviews:          make([]ReviewSummary, 0, len(d.Reviews)),
	}

	if d.PlaceID != "" {
		summary.PlaceID = d.PlaceID
	}

	if loc := d.Location(); loc != nil {
		summary.Lat = ptr(loc.Lat)
		summary.Lng = ptr(loc.Lng)
	}

	if d.OpeningHours != nil {
		summary.OpenNow = d.OpeningHours.OpenNow
	}

	parts, err := places.ParseAdrAddress(d.AdrAddress)
	if err != nil {
		r.logger.Warn("cannot parse adr_address", zap.String("place_id", placeID), zap.Error(err))
	} else if len(parts) > 0 {
		summary.AddressParts = parts
	}

	for _, review := range d.Reviews {
		summary.Reviews = append(summary.Reviews, ReviewSummary{
			Rating:       review.Rating,
			Text:         review.Text,
			RelativeTime: review.RelativeTimeDescription,
		})
	}

	return summary
}

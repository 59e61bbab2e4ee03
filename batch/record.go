// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

// Package batch resolves many places at once and keeps the results in DuckDB.
package batch

import (
	"fmt"
	"time"

	"github.com/misekit/placefinder/resolver"
	"github.com/misekit/placefinder/spatial"
)

// Row is one input line: {"id": ..., "name": ..., "address": ...}.
type Row struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Record is a stored resolution.
type Record struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Address          string          `json:"address"`
	PlaceID          *string         `json:"place_id,omitempty"`
	Point            *spatial.Point  `json:"point,omitempty"`
	FormattedAddress *string         `json:"formatted_address,omitempty"`
	Source           resolver.Source `json:"source"`
	Steps            int             `json:"steps"`
	ResolvedAt       time.Time       `json:"resolved_at"`
	H3Res7           int64           `json:"-"`
	H3Res8           int64           `json:"-"`
	H3Res9           int64           `json:"-"`
}

// NewRecord builds the stored form of a resolution.
func NewRecord(row Row, res *resolver.Result, at time.Time) (*Record, error) {
	rec := &Record{
		ID:               row.ID,
		Name:             row.Name,
		Address:          row.Address,
		PlaceID:          res.Place.PlaceID,
		FormattedAddress: res.Place.FormattedAddress,
		Source:           res.Place.Source,
		Steps:            len(res.Steps),
		ResolvedAt:       at,
	}

	if res.Place.Found() {
		rec.Point = &spatial.Point{Lat: *res.Place.Lat, Lng: *res.Place.Lng}
	}

	if err := rec.computeH3(); err != nil {
		return nil, err
	}

	return rec, nil
}

func (rec *Record) computeH3() error {
	rec.H3Res7, rec.H3Res8, rec.H3Res9 = 0, 0, 0
	if rec.Point == nil {
		return nil
	}

	for res := 7; res <= 9; res++ {
		cell, err := rec.Point.Cell(res)
		if err != nil {
			return fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		switch res {
		case 7:
			rec.H3Res7 = int64(cell)
		case 8:
			rec.H3Res8 = int64(cell)
		case 9:
			rec.H3Res9 = int64(cell)
		}
	}

	return nil
}

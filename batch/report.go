// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/misekit/placefinder/resolver"
)

// ReportQuery selects stored records. ID wins over the other fields.
type ReportQuery struct {
	ID     string
	Source *resolver.Source
	Limit  int // <= 0 means all
}

// WriteReport writes the selected records as JSON lines.
func WriteReport(w io.Writer, repo ResolutionRepository, q ReportQuery) error {
	var records []*Record

	if q.ID != "" {
		rec, err := repo.Get(q.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no stored resolution for id %q", q.ID)
		}

		if err != nil {
			return fmt.Errorf("reading %s: %w", q.ID, err)
		}

		records = append(records, rec)
	} else {
		var err error

		records, err = repo.List(q.Source, q.Limit, 0)
		if err != nil {
			return fmt.Errorf("listing resolutions: %w", err)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}

	return nil
}

// WriteSourceCounts writes how many stored records each cascade step
// produced, one "source count" line per step in source order.
func WriteSourceCounts(w io.Writer, repo ResolutionRepository) error {
	counts, err := repo.CountBySource()
	if err != nil {
		return fmt.Errorf("counting resolutions: %w", err)
	}

	sources := make([]resolver.Source, 0, len(counts))
	for source := range counts {
		sources = append(sources, source)
	}

	slices.Sort(sources)

	for _, source := range sources {
		if _, err := fmt.Fprintf(w, "%-14s %d\n", source, counts[source]); err != nil {
			return err
		}
	}

	return nil
}

// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/misekit/placefinder/resolver"
	"github.com/schollz/progressbar/v3"
)

// Resolver is the part of resolver.Resolver a batch needs.
type Resolver interface {
	Resolve(ctx context.Context, req resolver.Request) (*resolver.Result, error)
}

// Options tunes a Runner.
type Options struct {
	MaxProcs int // <= 0 means runtime.NumCPU()
}

// Summary describes a finished batch.
type Summary struct {
	Total    int
	Failed   int
	Found    int
	Verified int
	BySource map[resolver.Source]int
}

// Runner resolves rows concurrently and stores the results.
type Runner struct {
	resolver Resolver
	repo     ResolutionRepository
	options  Options
	now      func() time.Time
}

// NewRunner creates a runner.
func NewRunner(r Resolver, repo ResolutionRepository, options Options) *Runner {
	return &Runner{
		resolver: r,
		repo:     repo,
		options:  options,
		now:      time.Now,
	}
}

// ReadRows parses JSON lines. Blank lines are skipped and rows without an id
// are keyed as line-N. Repeated ids are an error since each id is one record.
func ReadRows(r io.Reader) ([]Row, error) {
	var rows []Row

	seen := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var row Row
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if row.ID == "" {
			row.ID = "line-" + strconv.Itoa(line)
		}

		if first, ok := seen[row.ID]; ok {
			return nil, fmt.Errorf("line %d: duplicate id %q (first seen on line %d)", line, row.ID, first)
		}

		seen[row.ID] = line
		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	return rows, nil
}

// Run resolves every row. Rows that cannot be resolved are logged and
// counted as failed; the remaining records are saved in one transaction.
func (r *Runner) Run(ctx context.Context, rows []Row) (*Summary, error) {
	n := len(rows)

	ids := make(map[string]struct{}, n)
	for _, row := range rows {
		if _, ok := ids[row.ID]; ok {
			return nil, fmt.Errorf("duplicate row id %q", row.ID)
		}

		ids[row.ID] = struct{}{}
	}

	maxProcs := r.options.MaxProcs
	if maxProcs <= 0 {
		maxProcs = runtime.NumCPU()
	}

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetDescription("Resolving"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var wg sync.WaitGroup

	semaphore := make(chan struct{}, maxProcs)
	errChan := make(chan error, n)
	recordChan := make(chan *Record, n)

	for _, row := range rows {
		wg.Add(1)

		go func(row Row) {
			defer wg.Done()
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			rec, err := r.resolveRow(ctx, row)
			if err != nil {
				errChan <- fmt.Errorf("resolving %s - %w", row.ID, err)
			} else {
				recordChan <- rec
			}

			if bar == nil {
				log.Printf("Resolved %s", row.ID)
			} else {
				_ = bar.Add(1)
			}
		}(row)
	}

	wg.Wait()
	close(errChan)
	close(recordChan)

	summary := &Summary{Total: n, BySource: make(map[resolver.Source]int)}

	for err := range errChan {
		log.Printf("⚠️ Resolution failed - %s", err)

		summary.Failed++
	}

	records := make([]*Record, 0, n)
	for rec := range recordChan {
		records = append(records, rec)

		summary.BySource[rec.Source]++

		if rec.Point != nil {
			summary.Found++
		}

		if rec.PlaceID != nil {
			summary.Verified++
		}
	}

	if err := r.repo.SaveAll(records); err != nil {
		return summary, fmt.Errorf("saving results: %w", err)
	}

	return summary, nil
}

func (r *Runner) resolveRow(ctx context.Context, row Row) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := r.resolver.Resolve(ctx, resolver.Request{Name: row.Name, Address: row.Address})
	if err != nil {
		return nil, err
	}

	return NewRecord(row, res, r.now().UTC())
}

// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"strings"

	"github.com/misekit/placefinder/places"
	"github.com/misekit/placefinder/spatial"
	"go.uber.org/zap"
)

// CellResolution is the H3 resolution attached to resolved places.
const CellResolution = 9

// Options configures a Resolver.
type Options struct {
	Radius float64
	Locale places.Locale
}

// DefaultOptions resolves Japanese addresses in Japanese.
func DefaultOptions() Options {
	return Options{
		Radius: DefaultRadius,
		Locale: places.Locale{Language: "ja", Region: "jp"},
	}
}

// Resolver runs the geocode, nearby search, text search cascade.
type Resolver struct {
	gateway places.Gateway
	opts    Options
	logger  *zap.Logger
	metrics *Metrics
}

// New creates a Resolver. logger and metrics may be nil.
func New(gateway places.Gateway, opts Options, logger *zap.Logger, metrics *Metrics) *Resolver {
	if opts.Radius <= 0 {
		opts.Radius = DefaultRadius
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{
		gateway: gateway,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

type state int

const (
	stateStart state = iota
	stateAnchored
	stateNearbyRejected
	stateAllRejected
	stateDone
)

type searchFunc func(ctx context.Context, name string, center spatial.Point, radius float64, locale places.Locale) *places.PlaceResponse

// resolution is the working state of a single Resolve call.
type resolution struct {
	req    Request
	anchor *Anchor
	trace  *Trace
	place  ResolvedPlace
}

// Resolve locates req.Name near req.Address. Provider failures never surface
// as errors: they end in a degraded ResolvedPlace with the trace explaining
// why. The only error is ErrInvalidRequest, returned before any provider call.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)

	if req.Name == "" || req.Address == "" {
		return nil, ErrInvalidRequest
	}

	run := &resolution{
		req:   req,
		trace: NewTrace(req.Debug, r.logger.With(zap.String("name", req.Name))),
	}

	for st := stateStart; st != stateDone; {
		switch st {
		case stateStart:
			st = r.geocode(ctx, run)
		case stateAnchored:
			st = r.search(ctx, run, StepNearbySearch, SourceNearbySearch, r.gateway.FindNearbyByName, stateNearbyRejected)
		case stateNearbyRejected:
			st = r.search(ctx, run, StepTextSearch, SourceTextSearch, r.gateway.TextSearchByName, stateAllRejected)
		case stateAllRejected:
			st = r.fallBack(run)
		}
	}

	r.metrics.resolved(run.place)
	r.logger.Info("place resolved",
		zap.String("name", req.Name),
		zap.String("source", string(run.place.Source)),
		zap.Bool("found", run.place.Found()),
		zap.Bool("verified", run.place.Verified()),
		zap.Int("steps", len(run.trace.steps)),
	)

	return &Result{Place: run.place, Steps: run.trace.Steps()}, nil
}

func (r *Resolver) geocode(ctx context.Context, run *resolution) state {
	resp := r.gateway.Geocode(ctx, run.req.Address, r.opts.Locale)
	step := stepFrom(StepGeocode, resp.Outcome, run.trace.Debug())

	loc := resp.Place.Location()
	r.metrics.upstream(StepGeocode, outcomeLabel(resp.Outcome, loc != nil))

	if !resp.OK || loc == nil {
		step.Note = ptr(failureNote(resp.Outcome, "geocode returned no coordinates"))
		run.trace.Record(step)
		run.place = ResolvedPlace{Source: SourceGeocode}

		return stateDone
	}

	run.anchor = &Anchor{Point: *loc, FormattedAddress: resp.Place.FormattedAddress}
	step.Note = ptr("anchored")
	run.trace.Record(step)

	return stateAnchored
}

// search evaluates the first result of fn. Only that result is considered;
// the cascade moves on to next when it is missing or rejected.
func (r *Resolver) search(ctx context.Context, run *resolution, stepName string, source Source, fn searchFunc, next state) state {
	resp := fn(ctx, run.req.Name, run.anchor.Point, r.opts.Radius, r.opts.Locale)
	step := stepFrom(stepName, resp.Outcome, run.trace.Debug())

	var (
		candidate Candidate
		ok        bool
	)

	if resp.OK && resp.Place != nil {
		candidate, ok = candidateFrom(resp.Place)
	}

	r.metrics.upstream(stepName, outcomeLabel(resp.Outcome, ok))

	if !ok {
		step.Note = ptr(failureNote(resp.Outcome, "no candidate with coordinates"))
		run.trace.Record(step)

		return next
	}

	candidate = Evaluate(candidate, *run.anchor)
	step.DistanceMeters = ptr(candidate.DistanceMeters)
	step.AddressMatched = ptr(candidate.AddressMatches)

	switch {
	case !AcceptWithin(candidate, r.opts.Radius):
		step.Note = ptr(rejectionNote(candidate, r.opts.Radius))
	case candidate.PlaceID == nil:
		step.Note = ptr("rejected: candidate has no place id")
	default:
		step.Note = ptr("accepted")
		run.trace.Record(step)

		run.place = ResolvedPlace{
			PlaceID:          candidate.PlaceID,
			Lat:              ptr(candidate.Point.Lat),
			Lng:              ptr(candidate.Point.Lng),
			FormattedAddress: candidate.FormattedAddress,
			Source:           source,
			Cell:             r.cellOf(candidate.Point),
		}

		return stateDone
	}

	run.trace.Record(step)

	return next
}

// fallBack answers with the anchor itself, unverified.
func (r *Resolver) fallBack(run *resolution) state {
	run.trace.Record(TraceStep{
		Step: StepFallback,
		Note: ptr("no candidate accepted, using geocoded address"),
	})

	run.place = ResolvedPlace{
		Lat:              ptr(run.anchor.Lat),
		Lng:              ptr(run.anchor.Lng),
		FormattedAddress: optional(run.anchor.FormattedAddress),
		Source:           SourceGeocode,
		Cell:             r.cellOf(run.anchor.Point),
	}

	return stateDone
}

func rejectionNote(c Candidate, radius float64) string {
	var reasons []string

	if c.DistanceMeters > radius {
		reasons = append(reasons, "too far")
	}

	if !c.AddressMatches {
		reasons = append(reasons, "address mismatch")
	}

	return "rejected: " + strings.Join(reasons, ", ")
}

func (r *Resolver) cellOf(p spatial.Point) string {
	cell, err := p.Cell(CellResolution)
	if err != nil {
		r.logger.Warn("cannot index point", zap.Stringer("point", p), zap.Error(err))

		return ""
	}

	return cell.String()
}

// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"slices"
	"strings"

	"github.com/misekit/placefinder/places"
	"go.uber.org/zap"
)

// Step names recorded in a trace.
const (
	StepGeocode      = "geocode"
	StepNearbySearch = "nearby_search"
	StepTextSearch   = "text_search"
	StepFallback     = "fallback"
)

// Trace accumulates the steps of one resolution. Samples are kept only in
// debug mode and never reach the log.
type Trace struct {
	debug  bool
	steps  []TraceStep
	logger *zap.Logger
}

// NewTrace creates an empty trace.
func NewTrace(debug bool, logger *zap.Logger) *Trace {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Trace{debug: debug, logger: logger}
}

// Debug reports whether samples are being collected.
func (t *Trace) Debug() bool {
	return t.debug
}

// Record appends a step.
func (t *Trace) Record(step TraceStep) {
	if !t.debug {
		step.Sample = nil
	}

	t.steps = append(t.steps, step)

	t.logger.Debug("resolution step",
		zap.String("step", step.Step),
		zap.String("request", step.RequestDescription),
		zap.Intp("http_status", step.HTTPStatus),
		zap.Stringp("provider_status", step.ProviderStatus),
		zap.Stringp("provider_error", step.ProviderError),
		zap.Float64p("distance_m", step.DistanceMeters),
		zap.Boolp("address_matched", step.AddressMatched),
		zap.Stringp("note", step.Note),
	)
}

// Steps returns a copy of the recorded steps.
func (t *Trace) Steps() []TraceStep {
	return slices.Clone(t.steps)
}

// stepFrom fills the provider facts of a step from a call outcome.
func stepFrom(name string, out places.Outcome, debug bool) TraceStep {
	step := TraceStep{Step: name, RequestDescription: out.Request}

	if out.HTTPStatus != 0 {
		step.HTTPStatus = ptr(out.HTTPStatus)
	}

	step.ProviderStatus = optional(out.Status)
	step.ProviderError = optional(out.ErrorMessage)

	if debug {
		step.Sample = places.Preview(out.Raw)
	}

	return step
}

// failureKind names the provider failure for notes and metrics.
func failureKind(err error) string {
	switch {
	case places.IsRateLimitError(err):
		return "rate_limited"
	case places.IsQuotaExceededError(err):
		return "quota_exceeded"
	case places.IsTimeoutError(err):
		return "timeout"
	case places.IsProviderRejection(err):
		return "rejected"
	default:
		return "unavailable"
	}
}

// failureNote explains why a call produced nothing usable.
func failureNote(out places.Outcome, empty string) string {
	if out.Err == nil {
		return empty
	}

	note := "provider unavailable"
	if places.IsProviderRejection(out.Err) {
		note = "provider rejected"
	}

	switch kind := failureKind(out.Err); kind {
	case "rejected", "unavailable":
	default:
		note += " (" + strings.ReplaceAll(kind, "_", " ") + ")"
	}

	return note + ": " + out.Err.Error()
}

// outcomeLabel buckets a call for metrics.
func outcomeLabel(out places.Outcome, usable bool) string {
	switch {
	case out.OK && usable:
		return "ok"
	case out.OK:
		return "empty"
	default:
		return failureKind(out.Err)
	}
}

// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides client-side HTTP middleware.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"
)

// LoggingRoundTripper dumps every exchange to Writer. Query parameters named
// in Redact are masked before dumping.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool
	Redact    []string
}

const redacted = "REDACTED"

// abbreviate prefixes lines and caps both their count and length.
func abbreviate(lines []string, prefix rune) []string {
	const maxLines, maxChars = 256, 512

	if len(lines) > maxLines {
		lines = append(lines[:maxLines], "…")
	}

	for i, line := range lines {
		line = fmt.Sprintf("%c %s", prefix, line)
		if len(line) > maxChars {
			line = line[:maxChars] + "…"
		}

		lines[i] = line
	}

	return lines
}

func (t *LoggingRoundTripper) write(lines []string) error {
	lines = append(lines, "")
	_, err := fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

// redact returns a copy of req safe to dump. It shares the body with req.
func (t *LoggingRoundTripper) redact(req *http.Request) *http.Request {
	clone := req.Clone(req.Context())

	query := clone.URL.Query()
	for _, name := range t.Redact {
		if query.Has(name) {
			query.Set(name, redacted)
		}
	}

	clone.URL.RawQuery = query.Encode()

	return clone
}

func (t *LoggingRoundTripper) dumpRequest(req *http.Request) error {
	clone := t.redact(req)

	dump, err := httputil.DumpRequestOut(clone, true)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	req.Body = clone.Body

	return t.write(abbreviate(strings.Split(string(dump), "\n"), '>'))
}

func (t *LoggingRoundTripper) dumpResponse(resp *http.Response, elapsed time.Duration) error {
	dump, err := httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	if _, err := fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n", elapsed); err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	return t.write(abbreviate(strings.Split(string(dump), "\n"), '<'))
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Transport.RoundTrip(req)
	}

	if err := t.dumpRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.Writer, "< ERROR: [%v] %v\n", time.Since(start), err)

		return nil, err
	}

	if err := t.dumpResponse(resp, time.Since(start)); err != nil {
		return nil, err
	}

	return resp, nil
}

// AppendRequestHeadersRoundTripper sets fixed headers on every request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	return t.Transport.RoundTrip(req)
}

// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

// Package address canonicalizes postal address text so that formatted
// addresses coming from different providers can be compared.
package address

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// CountryToken is the literal country designator providers prepend to
// formatted addresses.
const CountryToken = "日本"

var (
	fullwidthDigits = &unicode.RangeTable{
		R16: []unicode.Range16{{Lo: 0xFF10, Hi: 0xFF19, Stride: 1}},
	}

	dashes = strings.NewReplacer(
		"‐", "-", // hyphen
		"‑", "-", // non-breaking hyphen
		"‒", "-", // figure dash
		"–", "-", // en dash
		"—", "-", // em dash
		"―", "-", // horizontal bar
		"−", "-", // minus sign
		"ー", "-", // katakana prolonged sound mark
		"－", "-", // fullwidth hyphen-minus
		"ｰ", "-", // halfwidth prolonged sound mark
	)

	postalCode = regexp.MustCompile(`〒?\d{3}-?\d{4}`)

	separators = ",、。，．"
)

// Normalize canonicalizes address text for comparison: fullwidth digits
// become ASCII, dash variants become '-', the country token and postal
// codes are dropped, whitespace and separators are removed and the result is
// lowercased.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s, _, _ = transform.String(runes.If(runes.In(fullwidthDigits), width.Fold, nil), s)
	s = dashes.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(separators, r) {
			return -1
		}

		return r
	}, s)
	s = strings.ToLower(s)

	// Removing a token can splice its neighbours into a new match.
	for {
		next := strings.ReplaceAll(s, CountryToken, "")
		next = postalCode.ReplaceAllString(next, "")

		if next == s {
			return s
		}

		s = next
	}
}

// Similar reports whether two addresses share a contiguous core: after
// normalization one must contain the other. Empty addresses never match.
func Similar(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}

	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

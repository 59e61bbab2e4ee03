// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"github.com/tidwall/gjson"
)

// Paths tried, in order, to find the first result of a payload.
var previewFirst = []string{"candidates.0", "results.0", "result"}

// Allow-list of fields copied from the first result. Reviews, phone
// numbers and anything else that may carry personal data are never read.
var previewFields = []struct{ name, path string }{
	{"place_id", "place_id"},
	{"name", "name"},
	{"formatted_address", "formatted_address"},
	{"lat", "geometry.location.lat"},
	{"lng", "geometry.location.lng"},
}

// Preview projects a raw provider payload onto a small, fixed set of fields
// suitable for diagnostics. It is never a copy of the payload.
func Preview(raw string) map[string]any {
	if raw == "" {
		return nil
	}

	if !gjson.Valid(raw) {
		return map[string]any{"raw_length": len(raw)}
	}

	sample := make(map[string]any)

	for _, key := range []string{"status", "error_message"} {
		if v := gjson.Get(raw, key); v.Exists() {
			sample[key] = v.String()
		}
	}

	for _, list := range []string{"candidates", "results"} {
		if v := gjson.Get(raw, list); v.IsArray() {
			sample[list+"_count"] = len(v.Array())
		}
	}

	for _, path := range previewFirst {
		first := gjson.Get(raw, path)
		if !first.IsObject() {
			continue
		}

		projection := make(map[string]any)

		for _, f := range previewFields {
			if v := first.Get(f.path); v.Exists() {
				projection[f.name] = v.Value()
			}
		}

		sample["first"] = projection

		break
	}

	return sample
}

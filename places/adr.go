// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"fmt"
	"strings"

	"github.com/misekit/placefinder/utils/htmlutils"
	"golang.org/x/net/html"
)

// adr microformat classes used by the adr_address field.
var adrClasses = []string{
	"post-office-box",
	"street-address",
	"extended-address",
	"locality",
	"region",
	"postal-code",
	"country-name",
}

// ParseAdrAddress splits an adr_address HTML snippet into its microformat
// parts, keyed by class name.
func ParseAdrAddress(snippet string) (map[string]string, error) {
	if strings.TrimSpace(snippet) == "" {
		return nil, nil
	}

	root, err := htmlutils.AsNode(strings.NewReader(snippet))
	if err != nil {
		return nil, err
	}

	parts := make(map[string]string)

	var walkErr error

	htmlutils.Walk(root, func(n *html.Node) bool {
		if walkErr != nil || n.Type != html.ElementNode {
			return walkErr == nil
		}

		for _, class := range adrClasses {
			if !htmlutils.HasClass(n, class) {
				continue
			}

			sb := strings.Builder{}
			if err := htmlutils.Node2string(n, &sb); err != nil {
				walkErr = fmt.Errorf("reading %s: %w", class, err)

				return false
			}

			if text := sb.String(); text != "" {
				parts[class] = text
			}

			return false
		}

		return true
	})

	if walkErr != nil {
		return nil, walkErr
	}

	return parts, nil
}

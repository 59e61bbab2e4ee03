// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/misekit/placefinder/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}

// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/misekit/placefinder/resolver"
	"github.com/spf13/cobra"
)

var resolveOptions = struct {
	Debug bool
}{}

var resolveCmd = &cobra.Command{
	Use:   "resolve NAME ADDRESS",
	Short: "Resolve a single place and print it as JSON",
	Long: `Runs the resolution cascade once and prints the same body the HTTP server
answers with.

$ placefinder resolve "Cafe Mise" "大阪市東淀川区東中島1-2-3" --debug
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rootOptions.newResolver(cmd.Context(), nil)
		if err != nil {
			return err
		}

		res, err := r.Resolve(cmd.Context(), resolver.Request{
			Name:    args[0],
			Address: args[1],
			Debug:   resolveOptions.Debug,
		})
		if err != nil {
			return err
		}

		out := resolver.ResolveResponse{ResolvedPlace: res.Place}
		if resolveOptions.Debug {
			out.Debug = &resolver.DebugInfo{Steps: res.Steps}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)

		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveOptions.Debug, "debug", false, "include the resolution trace with payload previews")
}

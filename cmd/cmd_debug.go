// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/misekit/placefinder/address"
	"github.com/misekit/placefinder/places"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugNormalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Print the comparison form of addresses read from stdin",
	Long: `Reads one address per line and prints it followed by its normalized form.

$ echo '日本、〒533-0033 大阪府大阪市東淀川区東中島１丁目２−３' | placefinder debug normalize
日本、〒533-0033 大阪府大阪市東淀川区東中島１丁目２−３	大阪府大阪市東淀川区東中島1丁目2-3
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter addresses to normalize, one per line…")
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			fmt.Printf("%s\t%s\n", line, address.Normalize(line))
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		return nil
	},
}

var debugPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the trace preview of a provider payload read from stdin",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)

		return enc.Encode(places.Preview(string(raw)))
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugNormalizeCmd)
	debugCmd.AddCommand(debugPreviewCmd)
}

// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/misekit/placefinder/resolver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveOptions = struct {
	Listen string
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the place resolution HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		r, err := rootOptions.newResolver(cmd.Context(), reg)
		if err != nil {
			return err
		}

		if rootOptions.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		log.Printf("🌐 Serving on http://%s (radius %.0fm, %s/%s)",
			serveOptions.Listen, rootOptions.Radius, rootOptions.Language, rootOptions.Region)

		return resolver.NewServer(r, reg, logger).Run(serveOptions.Listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveOptions.Listen, "listen", "localhost:8080", "address to listen on")
}

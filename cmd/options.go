// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/misekit/placefinder/places"
	"github.com/misekit/placefinder/resolver"
	"github.com/misekit/placefinder/utils/httputils"
	"github.com/prometheus/client_golang/prometheus"
)

const apiKeyEnv = "GOOGLE_MAPS_API_KEY"

type RootOptions struct {
	LogLevel   string
	Language   string
	Region     string
	Radius     float64
	Timeout    time.Duration
	HTTPTrace  bool
	BaseURL    string
	KeyName    string
	KeyProject string
}

var rootOptions = RootOptions{}

func (o RootOptions) resolverOptions() resolver.Options {
	return resolver.Options{
		Radius: o.Radius,
		Locale: places.Locale{Language: o.Language, Region: o.Region},
	}
}

// apiKey reads the environment first and falls back to the API Keys service.
func (o RootOptions) apiKey(ctx context.Context) (string, error) {
	if key := os.Getenv(apiKeyEnv); key != "" {
		return key, nil
	}

	log.Printf("🔑 %s not set, looking up key %q with Application Default Credentials", apiKeyEnv, o.KeyName)

	key, err := places.KeyLookup{DisplayName: o.KeyName, FallbackProject: o.KeyProject}.APIKeyFromADC(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving api key (set %s or configure ADC): %w", apiKeyEnv, err)
	}

	return key, nil
}

func (o RootOptions) httpClient() *http.Client {
	var transport http.RoundTripper = http.DefaultTransport

	if o.HTTPTrace {
		transport = &httputils.LoggingRoundTripper{
			Transport: transport,
			Writer:    os.Stderr,
			DumpBody:  true,
			Redact:    []string{"key"},
		}
	}

	transport = &httputils.AppendRequestHeadersRoundTripper{
		Transport: transport,
		Headers:   map[string]string{"User-Agent": "placefinder/" + Version},
	}

	return &http.Client{Timeout: o.Timeout, Transport: transport}
}

func (o RootOptions) newGateway(ctx context.Context) (places.Gateway, error) {
	key, err := o.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	gw := places.NewGoogleMapsGateway(key, o.httpClient())
	if o.BaseURL != "" {
		gw = gw.WithBaseURL(o.BaseURL)
	}

	return gw, nil
}

// newResolver wires the gateway, logger and, when reg is not nil, metrics.
func (o RootOptions) newResolver(ctx context.Context, reg prometheus.Registerer) (*resolver.Resolver, error) {
	gw, err := o.newGateway(ctx)
	if err != nil {
		return nil, err
	}

	var metrics *resolver.Metrics
	if reg != nil {
		metrics = resolver.NewMetrics(reg)
	}

	return resolver.New(gw, o.resolverOptions(), logger, metrics), nil
}

func init() {
	defaults := resolver.DefaultOptions()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootOptions.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&rootOptions.Language, "language", defaults.Locale.Language, "language of provider answers")
	flags.StringVar(&rootOptions.Region, "region", defaults.Locale.Region, "region bias (ccTLD)")
	flags.Float64Var(&rootOptions.Radius, "radius", defaults.Radius, "acceptance radius around the geocoded address, in meters")
	flags.DurationVar(&rootOptions.Timeout, "timeout", 10*time.Second, "timeout of each provider request")
	flags.BoolVar(&rootOptions.HTTPTrace, "http-trace", false, "dump provider HTTP traffic to stderr")
	flags.StringVar(&rootOptions.BaseURL, "base-url", places.DefaultBaseURL, "provider web services root")
	flags.StringVar(&rootOptions.KeyName, "key-name", "placefinder", "display name of the API key looked up when "+apiKeyEnv+" is unset")
	flags.StringVar(&rootOptions.KeyProject, "key-project", "", "project used for the key lookup when credentials carry none")
}

// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/misekit/placefinder/spatial"
)

// DefaultBaseURL is the Google Maps web services root.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

const (
	placeFields   = "place_id,name,formatted_address,geometry"
	detailsFields = "place_id,name,formatted_address,geometry,adr_address,rating,user_ratings_total,opening_hours,reviews"
)

// GoogleMapsGateway uses the Google Maps Geocoding and Places web services.
type GoogleMapsGateway struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleMapsGateway creates a gateway. A nil client gets a 10 second timeout.
func NewGoogleMapsGateway(apiKey string, httpClient *http.Client) *GoogleMapsGateway {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	return &GoogleMapsGateway{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: httpClient,
	}
}

// WithBaseURL points the gateway at another server, e.g. a test double.
func (g *GoogleMapsGateway) WithBaseURL(baseURL string) *GoogleMapsGateway {
	g.baseURL = strings.TrimRight(baseURL, "/")

	return g
}

type googleMapsResponse struct {
	Results      []Place       `json:"results"`
	Candidates   []Place       `json:"candidates"`
	Result       *PlaceDetails `json:"result"`
	Status       string        `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string        `json:"error_message"`
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func setLocale(params url.Values, locale Locale, withRegion bool) {
	if locale.Language != "" {
		params.Set("language", locale.Language)
	}

	if withRegion && locale.Region != "" {
		params.Set("region", locale.Region)
	}
}

// Geocode implements Gateway.
func (g *GoogleMapsGateway) Geocode(ctx context.Context, address string, locale Locale) *PlaceResponse {
	params := url.Values{}
	params.Set("address", address)
	setLocale(params, locale, true)

	outcome, gmResp := g.get(ctx, "/geocode/json", params)

	resp := &PlaceResponse{Outcome: outcome}
	if gmResp != nil && len(gmResp.Results) > 0 {
		resp.Place = &gmResp.Results[0]
	}

	return resp
}

// FindNearbyByName implements Gateway with Find Place from Text and a
// circular location bias. Find Place has no region parameter.
func (g *GoogleMapsGateway) FindNearbyByName(ctx context.Context, name string, center spatial.Point, radius float64, locale Locale) *PlaceResponse {
	params := url.Values{}
	params.Set("input", name)
	params.Set("inputtype", "textquery")
	params.Set("fields", placeFields)
	params.Set("locationbias", fmt.Sprintf("circle:%s@%s,%s", formatFloat(radius), formatFloat(center.Lat), formatFloat(center.Lng)))
	setLocale(params, locale, false)

	outcome, gmResp := g.get(ctx, "/place/findplacefromtext/json", params)

	resp := &PlaceResponse{Outcome: outcome}
	if gmResp != nil && len(gmResp.Candidates) > 0 {
		resp.Place = &gmResp.Candidates[0]
	}

	return resp
}

// TextSearchByName implements Gateway with Text Search.
func (g *GoogleMapsGateway) TextSearchByName(ctx context.Context, name string, center spatial.Point, radius float64, locale Locale) *PlaceResponse {
	params := url.Values{}
	params.Set("query", name)
	params.Set("location", formatFloat(center.Lat)+","+formatFloat(center.Lng))
	params.Set("radius", formatFloat(radius))
	setLocale(params, locale, true)

	outcome, gmResp := g.get(ctx, "/place/textsearch/json", params)

	resp := &PlaceResponse{Outcome: outcome}
	if gmResp != nil && len(gmResp.Results) > 0 {
		resp.Place = &gmResp.Results[0]
	}

	return resp
}

// PlaceDetails implements Gateway.
func (g *GoogleMapsGateway) PlaceDetails(ctx context.Context, placeID string, locale Locale) *DetailsResponse {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)
	setLocale(params, locale, true)

	outcome, gmResp := g.get(ctx, "/place/details/json", params)

	resp := &DetailsResponse{Outcome: outcome}
	if gmResp != nil {
		resp.Details = gmResp.Result
	}

	return resp
}

// get performs exactly one request. The decoded envelope is only returned
// when the outcome is OK.
func (g *GoogleMapsGateway) get(ctx context.Context, endpoint string, params url.Values) (Outcome, *googleMapsResponse) {
	outcome := Outcome{Request: "GET " + endpoint + "?" + params.Encode()}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}

	query.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		outcome.Err = &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}

		return outcome, nil
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		outcome.Err = ClassifyTransportError(err)

		return outcome, nil
	}

	defer resp.Body.Close()

	outcome.HTTPStatus = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome.Err = ClassifyTransportError(fmt.Errorf("reading body: %w", err))

		return outcome, nil
	}

	outcome.Raw = string(body)

	var generic map[string]any
	if err := json.Unmarshal(body, &generic); err == nil {
		outcome.Body = generic
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome.Err = ClassifyHTTPError(resp.StatusCode, outcome.Raw)

		return outcome, nil
	}

	var gmResp googleMapsResponse
	if err := json.Unmarshal(body, &gmResp); err != nil {
		outcome.Err = &GeocodingError{Type: ErrorTypeMalformedResponse, Message: "decoding response", Err: err}

		return outcome, nil
	}

	outcome.Status = gmResp.Status
	outcome.ErrorMessage = gmResp.ErrorMessage

	if gmResp.Status != "OK" {
		outcome.Err = ClassifyProviderStatus(gmResp.Status, gmResp.ErrorMessage)

		return outcome, nil
	}

	outcome.OK = true

	return outcome, &gmResp
}

// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/misekit/placefinder/places"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServerTest(t *testing.T, gw *fakeGateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	r := New(gw, DefaultOptions(), nil, NewMetrics(reg))

	return NewServer(r, reg, nil).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var got map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	}

	return w, got
}

func TestResolvePlaceAPI(t *testing.T) {
	router := setupServerTest(t, &fakeGateway{
		geocode: anchored(),
		nearby:  found("/place/findplacefromtext/json", "abc", matchingAddress, near62m),
	})

	w, got := doJSON(t, router, http.MethodPost, "/resolve-place", `{"name": "Cafe Mise", "address": "大阪市東淀川区東中島1-2-3"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", got["placeId"])
	assert.Equal(t, "nearby_search", got["source"])
	assert.InDelta(t, near62m.Lat, got["lat"], 1e-9)
	assert.Equal(t, matchingAddress, got["formattedAddress"])
	assert.NotContains(t, got, "debug")
}

func TestResolvePlaceAPIDebug(t *testing.T) {
	router := setupServerTest(t, &fakeGateway{geocode: anchored()})

	w, got := doJSON(t, router, http.MethodPost, "/resolve-place", `{"name": "Cafe Mise", "address": "x", "debug": true}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "geocode", got["source"])
	assert.NotContains(t, got, "placeId")

	debug, ok := got["debug"].(map[string]any)
	require.True(t, ok)

	steps, ok := debug["steps"].([]any)
	require.True(t, ok)
	assert.Len(t, steps, 4)

	first := steps[0].(map[string]any)
	assert.Equal(t, "geocode", first["step"])
	assert.Contains(t, first, "sample")
}

func TestResolvePlaceAPINothingFound(t *testing.T) {
	router := setupServerTest(t, &fakeGateway{})

	w, got := doJSON(t, router, http.MethodPost, "/resolve-place", `{"name": "Cafe Mise", "address": "nowhere"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"source": "geocode"}, got)
}

func TestResolvePlaceAPIBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"address": "大阪市"}`},
		{"blank address", `{"name": "Cafe Mise", "address": "   "}`},
		{"not json", `name=Cafe`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{geocode: anchored()}
			router := setupServerTest(t, gw)

			w, got := doJSON(t, router, http.MethodPost, "/resolve-place", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, got, "error")
			assert.Zero(t, gw.total())
		})
	}
}

func TestGeocodeAPI(t *testing.T) {
	router := setupServerTest(t, &fakeGateway{geocode: anchored()})

	w, got := doJSON(t, router, http.MethodPost, "/geocode", `{"address": "大阪市東淀川区東中島1-2-3"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 34.72, got["lat"], 1e-9)
	assert.InDelta(t, 135.52, got["lng"], 1e-9)
	assert.Equal(t, anchorAddress, got["formattedAddress"])

	w, _ = doJSON(t, router, http.MethodPost, "/geocode", `{"address": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, got = doJSON(t, setupServerTest(t, &fakeGateway{}), http.MethodPost, "/geocode", `{"address": "nowhere"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "address not found", got["error"])
}

func TestPlaceDetailsAPI(t *testing.T) {
	details := &places.PlaceDetails{
		AdrAddress: `<span class="postal-code">533-0033</span> <span class="region">大阪府</span>`,
		Rating:     ptr(4.5),
		Reviews: []places.Review{
			{AuthorName: "Taro", AuthorURL: "https://example.com/taro", Rating: 5, Text: "美味しい", RelativeTimeDescription: "1 か月前"},
		},
	}
	details.PlaceID = "abc"
	details.Name = "Cafe Mise"
	details.OpeningHours = &struct {
		OpenNow *bool `json:"open_now"`
	}{OpenNow: ptr(true)}

	gw := &fakeGateway{details: &places.DetailsResponse{
		Outcome: places.Outcome{OK: true, HTTPStatus: http.StatusOK, Status: "OK"},
		Details: details,
	}}
	router := setupServerTest(t, gw)

	w, got := doJSON(t, router, http.MethodGet, "/place-details/abc", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", got["placeId"])
	assert.Equal(t, "Cafe Mise", got["name"])
	assert.InDelta(t, 4.5, got["rating"], 1e-9)
	assert.Equal(t, true, got["openNow"])
	assert.Equal(t, map[string]any{"postal-code": "533-0033", "region": "大阪府"}, got["addressParts"])
	assert.Equal(t, []any{"abc"}, gw.argsOf("details"))

	reviews := got["reviews"].([]any)
	require.Len(t, reviews, 1)
	assert.Equal(t, map[string]any{"rating": float64(5), "text": "美味しい", "relativeTime": "1 か月前"}, reviews[0])
	assert.NotContains(t, w.Body.String(), "Taro")
}

func TestPlaceDetailsAPINotFound(t *testing.T) {
	router := setupServerTest(t, &fakeGateway{})

	w, got := doJSON(t, router, http.MethodGet, "/place-details/missing", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "place not found", got["error"])
}

func TestHealthAndMetrics(t *testing.T) {
	router := setupServerTest(t, &fakeGateway{geocode: anchored()})

	w, got := doJSON(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", got["status"])

	doJSON(t, router, http.MethodPost, "/resolve-place", `{"name": "Cafe Mise", "address": "x"}`)

	w, _ = doJSON(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `placefinder_resolutions_total{found="true",source="geocode"} 1`)
	assert.Contains(t, w.Body.String(), `placefinder_upstream_calls_total{outcome="ok",step="geocode"} 1`)
}

// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/misekit/placefinder/places"
	"github.com/misekit/placefinder/spatial"
)

const (
	anchorAddress   = "日本、〒533-0033 大阪府大阪市東淀川区東中島1丁目2-3"
	matchingAddress = "〒533-0033 大阪府大阪市東淀川区東中島１丁目２−３ 新大阪ビル"
	otherAddress    = "大阪府大阪市淀川区西中島5丁目"
)

var (
	anchorPoint = spatial.Point{Lat: 34.72, Lng: 135.52}
	near62m     = spatial.Point{Lat: 34.7205, Lng: 135.5203}
	far550m     = spatial.Point{Lat: 34.72495, Lng: 135.52}
	near120m    = spatial.Point{Lat: 34.72108, Lng: 135.52}
)

// fakeGateway returns canned responses and counts calls.
type fakeGateway struct {
	mu sync.Mutex

	geocode *places.PlaceResponse
	nearby  *places.PlaceResponse
	text    *places.PlaceResponse
	details *places.DetailsResponse

	calls map[string]int
	args  map[string][]any
}

func (f *fakeGateway) called(method string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.calls == nil {
		f.calls = map[string]int{}
		f.args = map[string][]any{}
	}

	f.calls[method]++
	f.args[method] = args
}

func (f *fakeGateway) argsOf(method string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.args[method]
}

func (f *fakeGateway) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[method]
}

func (f *fakeGateway) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		n += c
	}

	return n
}

func orEmpty(resp *places.PlaceResponse, endpoint string) *places.PlaceResponse {
	if resp != nil {
		return resp
	}

	return zeroResults(endpoint)
}

func (f *fakeGateway) Geocode(_ context.Context, address string, locale places.Locale) *places.PlaceResponse {
	f.called("geocode", address, locale)

	return orEmpty(f.geocode, "/geocode/json")
}

func (f *fakeGateway) FindNearbyByName(_ context.Context, name string, center spatial.Point, radius float64, _ places.Locale) *places.PlaceResponse {
	f.called("nearby", name, center, radius)

	return orEmpty(f.nearby, "/place/findplacefromtext/json")
}

func (f *fakeGateway) TextSearchByName(_ context.Context, name string, center spatial.Point, radius float64, _ places.Locale) *places.PlaceResponse {
	f.called("text", name, center, radius)

	return orEmpty(f.text, "/place/textsearch/json")
}

func (f *fakeGateway) PlaceDetails(_ context.Context, placeID string, _ places.Locale) *places.DetailsResponse {
	f.called("details", placeID)

	if f.details != nil {
		return f.details
	}

	return &places.DetailsResponse{Outcome: places.Outcome{
		HTTPStatus: http.StatusOK,
		Status:     "NOT_FOUND",
		Raw:        `{"status": "NOT_FOUND"}`,
		Err:        places.ClassifyProviderStatus("NOT_FOUND", ""),
		Request:    "GET /place/details/json",
	}}
}

func found(endpoint, placeID, addr string, p spatial.Point) *places.PlaceResponse {
	place := &places.Place{PlaceID: placeID, Name: "Cafe Mise", FormattedAddress: addr}
	place.Geometry.Location = &spatial.Point{Lat: p.Lat, Lng: p.Lng}

	raw := fmt.Sprintf(`{"status": "OK", "results": [{"place_id": %q, "name": "Cafe Mise", "formatted_address": %q, `+
		`"geometry": {"location": {"lat": %v, "lng": %v}}, "reviews": [{"author_name": "Taro"}]}]}`,
		placeID, addr, p.Lat, p.Lng)

	return &places.PlaceResponse{
		Outcome: places.Outcome{
			OK:         true,
			HTTPStatus: http.StatusOK,
			Status:     "OK",
			Raw:        raw,
			Request:    "GET " + endpoint,
		},
		Place: place,
	}
}

func zeroResults(endpoint string) *places.PlaceResponse {
	return &places.PlaceResponse{Outcome: places.Outcome{
		HTTPStatus: http.StatusOK,
		Status:     "ZERO_RESULTS",
		Raw:        `{"results": [], "status": "ZERO_RESULTS"}`,
		Err:        places.ClassifyProviderStatus("ZERO_RESULTS", ""),
		Request:    "GET " + endpoint,
	}}
}

func anchored() *places.PlaceResponse {
	return found("/geocode/json", "geo-1", anchorAddress, anchorPoint)
}

func failed(endpoint string, httpStatus int, err error) *places.PlaceResponse {
	return &places.PlaceResponse{Outcome: places.Outcome{
		HTTPStatus: httpStatus,
		Err:        err,
		Request:    "GET " + endpoint,
	}}
}

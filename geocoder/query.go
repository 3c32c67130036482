// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jcodagnone/geotester/spatial"
)

// DetailLevel restricts how precise a reverse geocoding answer should be.
type DetailLevel string

// Detail levels understood by the dialects. The empty level means unspecified.
const (
	DetailUnspecified DetailLevel = ""
	DetailCountry     DetailLevel = "country"
	DetailState       DetailLevel = "state"
	DetailCounty      DetailLevel = "county"
	DetailCity        DetailLevel = "city"
	DetailDistrict    DetailLevel = "district"
	DetailStreet      DetailLevel = "street"
	DetailHouse       DetailLevel = "house"
)

var detailLevels = []DetailLevel{
	DetailCountry, DetailState, DetailCounty, DetailCity,
	DetailDistrict, DetailStreet, DetailHouse,
}

// ParseDetailLevel validates a textual detail level.
func ParseDetailLevel(s string) (DetailLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DetailUnspecified, nil
	}

	for _, d := range detailLevels {
		if string(d) == s {
			return d, nil
		}
	}

	return DetailUnspecified, fmt.Errorf("unknown detail level %q", s)
}

// Query is the backend independent description of a search or reverse
// request. Text drives searches and Center drives reverse lookups; a search
// may also carry a Center as location bias.
type Query struct {
	Text     string
	Center   *spatial.Point
	Language string
	Limit    int
	Detail   DetailLevel
}

// Request is the backend request a Query was translated into.
type Request struct {
	Endpoint string
	Params   url.Values
}

// URL returns the full request URL.
func (r Request) URL() string {
	if len(r.Params) == 0 {
		return r.Endpoint
	}

	sep := "?"
	if strings.Contains(r.Endpoint, "?") {
		sep = "&"
	}

	return r.Endpoint + sep + r.Params.Encode()
}

// Result is one query round-trip: what was asked, how it was asked, and
// what the backend answered.
type Result struct {
	Query    Query
	Request  Request
	Features []*Feature
}

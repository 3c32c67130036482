// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Dialect selects how queries are translated for a backend.
type Dialect int

const (
	// Generic passes query fields through with minimal transformation.
	Generic Dialect = iota
	// Nominatim speaks the Nominatim search/reverse API with geocodejson output.
	Nominatim
	// Photon speaks the Photon /api and /reverse API.
	Photon
)

var dialectNames = map[Dialect]string{
	Generic:   "generic",
	Nominatim: "nominatim",
	Photon:    "photon",
}

func (d Dialect) String() string {
	if s, ok := dialectNames[d]; ok {
		return s
	}

	return fmt.Sprintf("dialect(%d)", int(d))
}

// ParseDialect resolves a dialect by name.
func ParseDialect(s string) (Dialect, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Generic, nil
	}

	for d, name := range dialectNames {
		if name == s {
			return d, nil
		}
	}

	return Generic, fmt.Errorf("unknown dialect %q", s)
}

// Dialects returns the names of all dialects.
func Dialects() []string {
	return []string{Generic.String(), Nominatim.String(), Photon.String()}
}

// nominatim zoom for each detail level.
var nominatimZoom = map[DetailLevel]int{
	DetailCountry:  3,
	DetailState:    5,
	DetailCounty:   8,
	DetailCity:     10,
	DetailDistrict: 14,
	DetailStreet:   17,
	DetailHouse:    18,
}

const defaultNominatimZoom = 18

const (
	opSearch  = "search"
	opReverse = "reverse"
)

func setCenter(params url.Values, q Query) {
	params.Set("lat", strconv.FormatFloat(q.Center.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(q.Center.Lng, 'f', -1, 64))
}

func setLimit(params url.Values, q Query) {
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
}

func (d Dialect) searchEndpoint(base string) string {
	switch d {
	case Nominatim:
		return joinURL(base, "/search")
	case Photon:
		return joinURL(base, "/api")
	default:
		return base
	}
}

func (d Dialect) reverseEndpoint(base string) (string, error) {
	switch d {
	case Nominatim, Photon:
		return joinURL(base, "/reverse"), nil
	default:
		return "", unsupported(d, opReverse, "no reverse endpoint is known")
	}
}

func (d Dialect) searchParams(q Query) (url.Values, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, fmt.Errorf("%s: search without query text", d)
	}

	params := url.Values{}
	params.Set("q", q.Text)
	setLimit(params, q)

	switch d {
	case Nominatim:
		if q.Center != nil {
			return nil, unsupported(d, opSearch, "searching around a center point")
		}

		params.Set("format", "geocodejson")
		params.Set("addressdetails", "1")

		if q.Language != "" {
			params.Set("accept-language", q.Language)
		}
	default:
		if q.Language != "" {
			params.Set("lang", q.Language)
		}

		if q.Center != nil {
			setCenter(params, q)
		}
	}

	return params, nil
}

func (d Dialect) reverseParams(q Query) (url.Values, error) {
	if q.Center == nil {
		return nil, fmt.Errorf("%s: reverse without center point", d)
	}

	params := url.Values{}
	setCenter(params, q)

	switch d {
	case Nominatim:
		zoom := defaultNominatimZoom
		if z, ok := nominatimZoom[q.Detail]; ok {
			zoom = z
		}

		params.Set("zoom", strconv.Itoa(zoom))
		params.Set("format", "geocodejson")
		params.Set("addressdetails", "1")

		if q.Language != "" {
			params.Set("accept-language", q.Language)
		}
	case Photon:
		switch q.Detail {
		case DetailUnspecified, DetailHouse:
		case DetailStreet:
			params.Set("osm_tag", "highway")
		default:
			return nil, unsupported(d, opReverse, fmt.Sprintf("detail level %q", q.Detail))
		}

		setLimit(params, q)

		if q.Language != "" {
			params.Set("lang", q.Language)
		}
	default:
		return nil, unsupported(d, opReverse, "no reverse endpoint is known")
	}

	return params, nil
}

// decodeFeatures flattens the backend body into features.
func (d Dialect) decodeFeatures(body []byte) ([]*Feature, error) {
	switch d {
	case Photon:
		return decodeCollection(body, "")
	default:
		// geocodejson nests everything under "geocoding"; flat bags pass through.
		return decodeCollection(body, "geocoding")
	}
}

func joinURL(base, suffix string) string {
	u, err := url.Parse(base)
	if err != nil || u.Path == "" && u.Host == "" {
		return strings.TrimRight(base, "/") + suffix
	}

	u.Path = strings.TrimRight(u.Path, "/") + suffix

	return u.String()
}

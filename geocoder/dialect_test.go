// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/geotester/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paris = &spatial.Point{Lat: 48.8566, Lng: 2.3522}

func TestParseDialect(t *testing.T) {
	for _, name := range Dialects() {
		d, err := ParseDialect(name)
		require.NoError(t, err)
		assert.Equal(t, name, d.String())
	}

	d, err := ParseDialect("  Nominatim ")
	require.NoError(t, err)
	assert.Equal(t, Nominatim, d)

	d, err = ParseDialect("")
	require.NoError(t, err)
	assert.Equal(t, Generic, d)

	_, err = ParseDialect("pelias")
	assert.Error(t, err)
}

func TestParseDetailLevel(t *testing.T) {
	d, err := ParseDetailLevel("Street")
	require.NoError(t, err)
	assert.Equal(t, DetailStreet, d)

	d, err = ParseDetailLevel("")
	require.NoError(t, err)
	assert.Equal(t, DetailUnspecified, d)

	_, err = ParseDetailLevel("planet")
	assert.Error(t, err)
}

func TestSearchParams(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    Query
		expected url.Values
	}{
		{
			name:    "generic passes everything through",
			dialect: Generic,
			query:   Query{Text: "rue de rivoli", Limit: 5, Language: "fr", Center: paris},
			expected: url.Values{
				"q":     {"rue de rivoli"},
				"limit": {"5"},
				"lang":  {"fr"},
				"lat":   {"48.8566"},
				"lon":   {"2.3522"},
			},
		},
		{
			name:     "generic minimal",
			dialect:  Generic,
			query:    Query{Text: "berlin"},
			expected: url.Values{"q": {"berlin"}},
		},
		{
			name:    "nominatim",
			dialect: Nominatim,
			query:   Query{Text: "berlin", Limit: 1, Language: "de"},
			expected: url.Values{
				"q":               {"berlin"},
				"limit":           {"1"},
				"accept-language": {"de"},
				"format":          {"geocodejson"},
				"addressdetails":  {"1"},
			},
		},
		{
			name:    "photon with location bias",
			dialect: Photon,
			query:   Query{Text: "berlin", Limit: 3, Language: "en", Center: paris},
			expected: url.Values{
				"q":     {"berlin"},
				"limit": {"3"},
				"lang":  {"en"},
				"lat":   {"48.8566"},
				"lon":   {"2.3522"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.dialect.searchParams(tc.query)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("params mismatch (-expected +got):\n%s", diff)
			}
		})
	}
}

func TestNominatimSearchWithCenterIsUnsupported(t *testing.T) {
	_, err := Nominatim.searchParams(Query{Text: "berlin", Center: paris})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))

	var ue *UnsupportedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, Nominatim, ue.Dialect)
	assert.Equal(t, "search", ue.Operation)
}

func TestSearchWithoutText(t *testing.T) {
	_, err := Photon.searchParams(Query{Text: "  "})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupported))
}

func TestNominatimZoom(t *testing.T) {
	tests := []struct {
		detail DetailLevel
		zoom   string
	}{
		{DetailUnspecified, "18"},
		{DetailCountry, "3"},
		{DetailState, "5"},
		{DetailCounty, "8"},
		{DetailCity, "10"},
		{DetailDistrict, "14"},
		{DetailStreet, "17"},
		{DetailHouse, "18"},
	}

	for _, tc := range tests {
		t.Run(string(tc.detail), func(t *testing.T) {
			got, err := Nominatim.reverseParams(Query{Center: paris, Detail: tc.detail, Language: "fr"})
			require.NoError(t, err)

			expected := url.Values{
				"lat":             {"48.8566"},
				"lon":             {"2.3522"},
				"zoom":            {tc.zoom},
				"format":          {"geocodejson"},
				"addressdetails":  {"1"},
				"accept-language": {"fr"},
			}
			if diff := cmp.Diff(expected, got); diff != "" {
				t.Errorf("params mismatch (-expected +got):\n%s", diff)
			}
		})
	}
}

func TestPhotonReverseParams(t *testing.T) {
	got, err := Photon.reverseParams(Query{Center: paris, Detail: DetailStreet, Limit: 2})
	require.NoError(t, err)

	expected := url.Values{
		"lat":     {"48.8566"},
		"lon":     {"2.3522"},
		"osm_tag": {"highway"},
		"limit":   {"2"},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("params mismatch (-expected +got):\n%s", diff)
	}

	got, err = Photon.reverseParams(Query{Center: paris, Detail: DetailHouse})
	require.NoError(t, err)
	assert.Empty(t, got.Get("osm_tag"))

	for _, d := range []DetailLevel{DetailCity, DetailCountry, DetailDistrict} {
		_, err := Photon.reverseParams(Query{Center: paris, Detail: d})
		assert.ErrorIs(t, err, ErrUnsupported, "detail %s", d)
	}
}

func TestGenericReverseIsUnsupported(t *testing.T) {
	_, err := Generic.reverseParams(Query{Center: paris})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Generic.reverseEndpoint("http://localhost")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestReverseWithoutCenter(t *testing.T) {
	_, err := Photon.reverseParams(Query{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupported))
}

func TestEndpoints(t *testing.T) {
	tests := []struct {
		dialect Dialect
		base    string
		search  string
		reverse string
	}{
		{Generic, "http://localhost:5001/api/", "http://localhost:5001/api/", ""},
		{Nominatim, "https://nominatim.example.org/", "https://nominatim.example.org/search", "https://nominatim.example.org/reverse"},
		{Nominatim, "https://example.org/nominatim", "https://example.org/nominatim/search", "https://example.org/nominatim/reverse"},
		{Photon, "https://photon.example.org", "https://photon.example.org/api", "https://photon.example.org/reverse"},
	}

	for _, tc := range tests {
		t.Run(tc.dialect.String()+" "+tc.base, func(t *testing.T) {
			assert.Equal(t, tc.search, tc.dialect.searchEndpoint(tc.base))

			reverse, err := tc.dialect.reverseEndpoint(tc.base)
			if tc.reverse == "" {
				assert.ErrorIs(t, err, ErrUnsupported)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.reverse, reverse)
		})
	}
}

func TestRequestURL(t *testing.T) {
	r := Request{Endpoint: "http://h/api", Params: url.Values{"q": {"a b"}, "limit": {"1"}}}
	assert.Equal(t, "http://h/api?limit=1&q=a+b", r.URL())

	r = Request{Endpoint: "http://h/api?key=x", Params: url.Values{"q": {"a"}}}
	assert.Equal(t, "http://h/api?key=x&q=a", r.URL())

	assert.Equal(t, "http://h/api", Request{Endpoint: "http://h/api"}.URL())
}

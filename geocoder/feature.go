// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jcodagnone/geotester/spatial"
)

// Feature is one candidate result, flattened to a property bag and a point.
type Feature struct {
	Properties map[string]any
	Point      *spatial.Point // nil when the backend sent no geometry
}

// Get returns the string form of a property and whether it was present.
func (f *Feature) Get(key string) (string, bool) {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return "", false
	}

	return stringify(v), true
}

// Value returns the string form of a property, empty when missing.
func (f *Feature) Value(key string) string {
	s, _ := f.Get(key)

	return s
}

// Label is the display label, falling back to the bare name.
func (f *Feature) Label() string {
	if label := f.Value("label"); label != "" {
		return label
	}

	return f.Value("name")
}

// Category is the type classifier of the feature.
func (f *Feature) Category() string {
	return f.Value("type")
}

// AddressLabel describes where the feature is, from an explicit address
// property or composed from its address parts.
func (f *Feature) AddressLabel() string {
	if address := f.Value("address"); address != "" {
		return address
	}

	var parts []string

	street := strings.TrimSpace(f.Value("housenumber") + " " + f.Value("street"))
	locality := strings.TrimSpace(f.Value("postcode") + " " + f.Value("city"))

	for _, p := range []string{street, locality} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, ", ")
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}

		return string(b)
	}
}

var errNoFeatures = errors.New("response has no features array")

type rawFeature struct {
	Properties map[string]any `json:"properties"`
	Geometry   *struct {
		Type        string        `json:"type"`
		Coordinates []json.Number `json:"coordinates"`
	} `json:"geometry"`
}

// decodeCollection parses a GeoJSON-like feature collection. nested names
// the property holding the real property bag ("" when flat); when the
// nested key is missing the properties are used as they are.
func decodeCollection(body []byte, nested string) ([]*Feature, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var fc struct {
		Features *[]rawFeature `json:"features"`
	}

	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if fc.Features == nil {
		return nil, errNoFeatures
	}

	features := make([]*Feature, 0, len(*fc.Features))

	for i, raw := range *fc.Features {
		f, err := flatten(raw, nested)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		features = append(features, f)
	}

	return features, nil
}

func flatten(raw rawFeature, nested string) (*Feature, error) {
	props := raw.Properties
	if nested != "" {
		if inner, ok := props[nested].(map[string]any); ok {
			props = inner
		}
	}

	f := &Feature{Properties: make(map[string]any, len(props))}
	for k, v := range props {
		f.Properties[k] = v
	}

	if raw.Geometry == nil || len(raw.Geometry.Coordinates) < 2 {
		return f, nil
	}

	lng, err := raw.Geometry.Coordinates[0].Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid longitude: %w", err)
	}

	lat, err := raw.Geometry.Coordinates[1].Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid latitude: %w", err)
	}

	f.Point = &spatial.Point{Lat: lat, Lng: lng}

	return f, nil
}

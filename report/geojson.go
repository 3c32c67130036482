// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jcodagnone/geotester/geocoder"
	"github.com/jcodagnone/geotester/spatial"
	"github.com/jcodagnone/geotester/verify"
)

type geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   *geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

func pointFeature(p spatial.Point, props map[string]any) feature {
	return feature{
		Type:       "Feature",
		Geometry:   &geometry{Type: "Point", Coordinates: []float64{p.Lng, p.Lat}},
		Properties: props,
	}
}

// GeoJSON renders the results of a failed verification as a feature
// collection. The expected coordinate, with its tolerance cell, or else the
// query center, is appended so both can be viewed on a map.
func GeoJSON(err error) ([]byte, error) {
	var (
		se  *verify.SearchError
		de  *verify.DuplicateError
		res *geocoder.Result
		c   verify.Criterion
	)

	switch {
	case errors.As(err, &se):
		res, c = se.Result, se.Outcome.Criterion
	case errors.As(err, &de):
		res = de.Result
	default:
		return nil, fmt.Errorf("not a verification failure: %w", err)
	}

	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}

	for _, f := range res.Features {
		out := feature{Type: "Feature", Properties: f.Properties}
		if f.Point != nil {
			out.Geometry = &geometry{Type: "Point", Coordinates: []float64{f.Point.Lng, f.Point.Lat}}
		}

		fc.Features = append(fc.Features, out)
	}

	extra, err := referenceFeatures(res.Query, c)
	if err != nil {
		return nil, err
	}

	fc.Features = append(fc.Features, extra...)

	return json.Marshal(fc)
}

func referenceFeatures(q geocoder.Query, c verify.Criterion) ([]feature, error) {
	tolerance, err := c.Coordinate()
	if err != nil {
		return nil, err
	}

	if tolerance == nil {
		if q.Center == nil {
			return nil, nil
		}

		return []feature{pointFeature(*q.Center, map[string]any{"center": true})}, nil
	}

	props := map[string]any{"expected": true}
	for k, v := range c {
		props[k] = v
	}

	cell, err := tolerance.Point.ToleranceCell(tolerance.MaxDeviation)
	if err != nil {
		return nil, err
	}

	ring, err := spatial.CellRing(cell)
	if err != nil {
		return nil, err
	}

	coords := make([][]float64, 0, len(ring))
	for _, p := range ring {
		coords = append(coords, []float64{p.Lng, p.Lat})
	}

	return []feature{
		pointFeature(tolerance.Point, props),
		{
			Type:     "Feature",
			Geometry: &geometry{Type: "Polygon", Coordinates: [][][]float64{coords}},
			Properties: map[string]any{
				"tolerance": tolerance.MaxDeviation,
				"h3":        cell.String(),
			},
		},
	}, nil
}

// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jcodagnone/geotester/spatial"
)

// Reserved field names.
const (
	// CoordinateField holds "lat,lon,max_deviation_meters".
	CoordinateField = "coordinate"
	// DistanceField is reported instead of CoordinateField when the tolerance is exceeded.
	DistanceField = "distance"
)

// ErrInvalidCriterion is returned for expectations that cannot be evaluated.
var ErrInvalidCriterion = errors.New("invalid expectation")

// Criterion maps result fields to their expected values. A feature satisfies
// it when every field matches.
type Criterion map[string]string

// Fields returns the declared field names in a stable order.
func (c Criterion) Fields() []string {
	fields := make([]string, 0, len(c))
	for k := range c {
		fields = append(fields, k)
	}

	slices.Sort(fields)

	return fields
}

func (c Criterion) String() string {
	parts := make([]string, 0, len(c))
	for _, k := range c.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", k, c[k]))
	}

	return strings.Join(parts, " | ")
}

// Tolerance is a decoded coordinate expectation.
type Tolerance struct {
	Point        spatial.Point
	MaxDeviation float64 // meters
}

// Accepts reports whether p lies within the tolerance, and at which distance.
func (t Tolerance) Accepts(p *spatial.Point) (bool, float64) {
	d := t.Point.HaversineDistance(p)

	return d <= t.MaxDeviation, d
}

// Coordinate decodes the coordinate field, if declared.
func (c Criterion) Coordinate() (*Tolerance, error) {
	v, ok := c[CoordinateField]
	if !ok {
		return nil, nil
	}

	return ParseTolerance(v)
}

// ParseTolerance decodes "lat,lon,max_deviation_meters".
func ParseTolerance(s string) (*Tolerance, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: coordinate %q is not \"lat,lon,max_deviation\"", ErrInvalidCriterion, s)
	}

	p, err := spatial.ParseLatLng(parts[0], parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: coordinate %q: %w", ErrInvalidCriterion, s, err)
	}

	maxDeviation, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil || maxDeviation < 0 {
		return nil, fmt.Errorf("%w: coordinate %q: bad max deviation", ErrInvalidCriterion, s)
	}

	return &Tolerance{Point: p, MaxDeviation: maxDeviation}, nil
}

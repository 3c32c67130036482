// Copyright 2026 The GeoTester Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/uber/h3-go/v4"
)

const earthRadius = 6371e3 // meters

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// ParsePoint parses a "lat,lon" pair.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("spatial: expected \"lat,lon\", got %q", s)
	}

	return ParseLatLng(parts[0], parts[1])
}

// ParseLatLng builds a Point from its textual latitude and longitude.
func ParseLatLng(lat, lng string) (Point, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Point{}, fmt.Errorf("spatial: invalid latitude %q: %w", lat, err)
	}

	lo, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return Point{}, fmt.Errorf("spatial: invalid longitude %q: %w", lng, err)
	}

	if la < -90 || la > 90 || lo < -180 || lo > 180 {
		return Point{}, fmt.Errorf("spatial: point out of range (%f, %f)", la, lo)
	}

	return Point{Lat: la, Lng: lo}, nil
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// average hexagon edge length in meters, indexed by H3 resolution.
var h3EdgeLength = [...]float64{
	1281256, 483057, 182513, 68979, 26072, 9854, 3724, 1406,
	531, 201, 76, 29, 11, 4, 1.5, 0.58,
}

// ToleranceResolution returns the finest H3 resolution whose average edge
// length still covers radius meters.
func ToleranceResolution(radius float64) int {
	res := 0

	for i, edge := range h3EdgeLength {
		if edge < radius {
			break
		}

		res = i
	}

	return res
}

// ToleranceCell returns the H3 cell containing p sized after radius.
func (p Point) ToleranceCell(radius float64) (h3.Cell, error) {
	res := ToleranceResolution(radius)

	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}

// CellRing returns the closed boundary ring of cell.
func CellRing(cell h3.Cell) ([]Point, error) {
	boundary, err := cell.Boundary()
	if err != nil {
		return nil, fmt.Errorf("computing boundary of %s: %w", cell, err)
	}

	ring := make([]Point, 0, len(boundary)+1)
	for _, ll := range boundary {
		ring = append(ring, Point{Lat: ll.Lat, Lng: ll.Lng})
	}

	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}

	return ring, nil
}

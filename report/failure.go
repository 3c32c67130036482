// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

// Package report renders verification failures for humans and tools.
package report

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jcodagnone/geotester/geocoder"
	"github.com/jcodagnone/geotester/verify"
	"github.com/muesli/termenv"
)

// Columns of the results table, in order.
var Columns = []string{
	"name", "osm_key", "osm_value", "osm_id", "housenumber", "street",
	"postcode", "city", "country", "lat", "lon", "distance",
}

const missing = "—"

// Options tunes failure rendering.
type Options struct {
	// GeoJSON appends a feature collection of the results to the report.
	GeoJSON bool
	// Renderer styles the output; nil uses the default renderer.
	Renderer *lipgloss.Renderer
}

func (o Options) renderer() *lipgloss.Renderer {
	if o.Renderer == nil {
		return lipgloss.DefaultRenderer()
	}

	return o.Renderer
}

// Failure renders a verification failure. Errors that are not verification
// failures are rendered as their message.
func Failure(err error, opts Options) string {
	var (
		se *verify.SearchError
		de *verify.DuplicateError
	)

	switch {
	case errors.As(err, &se):
		return searchFailure(se, opts)
	case errors.As(err, &de):
		return duplicateFailure(de, opts)
	default:
		return err.Error()
	}
}

func searchFailure(e *verify.SearchError, opts Options) string {
	lines := header(e.Result)
	lines = append(lines,
		"# Expected was: "+e.Outcome.Criterion.String(),
		"# Message: "+e.Message(),
		"# Results were:",
	)

	failed := make([][]string, len(e.Result.Features))
	distances := make([]*float64, len(e.Result.Features))

	for _, c := range e.Outcome.Checks {
		failed[c.Index] = c.Failed
		distances[c.Index] = c.Distance
	}

	lines = append(lines, Table(e.Result.Features, failed, distances, opts.renderer()))

	if len(e.Duplicates) > 0 {
		lines = append(lines, duplicateLines(e.Result.Features, e.Duplicates)...)
	}

	if opts.GeoJSON {
		lines = appendGeoJSON(lines, e)
	}

	return strings.Join(lines, "\n") + "\n"
}

func duplicateFailure(e *verify.DuplicateError, opts Options) string {
	lines := header(e.Result)
	lines = append(lines,
		fmt.Sprintf("# Message: %d duplicate group(s) in the top %d results", len(e.Groups), e.Depth),
		"# Results were:",
	)

	failed := make([][]string, len(e.Result.Features))

	for _, members := range e.Groups {
		for _, f := range members {
			if i := slices.Index(e.Result.Features, f); i >= 0 {
				failed[i] = []string{"name"}
			}
		}
	}

	lines = append(lines, Table(e.Result.Features, failed, nil, opts.renderer()))
	lines = append(lines, duplicateLines(e.Result.Features, e.Groups)...)

	if opts.GeoJSON {
		lines = appendGeoJSON(lines, e)
	}

	return strings.Join(lines, "\n") + "\n"
}

func header(res *geocoder.Result) []string {
	lines := []string{
		"",
		"Search failed",
		"# Search was: " + verify.DescribeQuery(res.Query),
	}

	keys := make([]string, 0, len(res.Request.Params))
	for k := range res.Request.Params {
		if k != "q" {
			keys = append(keys, k)
		}
	}

	slices.Sort(keys)

	params := make([]string, 0, len(keys))
	for _, k := range keys {
		params = append(params, fmt.Sprintf("%s: %s", k, strings.Join(res.Request.Params[k], ",")))
	}

	return append(lines, "# Params was: "+strings.Join(params, " - "))
}

func duplicateLines(features []*geocoder.Feature, groups map[verify.DuplicateKey][]*geocoder.Feature) []string {
	lines := []string{"# Duplicates were:"}

	for _, k := range verify.SortedKeys(groups) {
		positions := make([]string, 0, len(groups[k]))
		for _, f := range groups[k] {
			positions = append(positions, "#"+strconv.Itoa(slices.Index(features, f)+1))
		}

		lines = append(lines, fmt.Sprintf("  - %s: %s", k, strings.Join(positions, ", ")))
	}

	return lines
}

func appendGeoJSON(lines []string, err error) []string {
	b, jerr := GeoJSON(err)
	if jerr != nil {
		return append(lines, "# Geojson: "+jerr.Error())
	}

	return append(lines, "# Geojson:", string(b))
}

// Table renders features as a results table. failed and distances are
// indexed like features and may be nil; failed cells are emphasized.
func Table(features []*geocoder.Feature, failed [][]string, distances []*float64, r *lipgloss.Renderer) string {
	if len(features) == 0 {
		return "(no results)"
	}

	emphasis := r.NewStyle().Bold(true).Underline(true)
	plainText := r.ColorProfile() == termenv.Ascii

	rows := make([][]string, 0, len(features))

	for i, f := range features {
		var (
			bad  []string
			dist *float64
		)

		if i < len(failed) {
			bad = failed[i]
		}

		if i < len(distances) {
			dist = distances[i]
		}

		row := make([]string, 0, len(Columns))

		for _, col := range Columns {
			v := cell(f, col, dist)

			if slices.Contains(bad, col) {
				if plainText {
					v = "*" + v + "*"
				} else {
					v = emphasis.Render(v)
				}
			}

			row = append(row, v)
		}

		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle()).
		Headers(Columns...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.NewStyle().Bold(true).Padding(0, 1)
			}

			return r.NewStyle().Padding(0, 1)
		})

	return t.String()
}

func cell(f *geocoder.Feature, col string, dist *float64) string {
	switch col {
	case "lat", "lon":
		if f.Point == nil {
			return ""
		}

		v := f.Point.Lat
		if col == "lon" {
			v = f.Point.Lng
		}

		return strconv.FormatFloat(v, 'f', -1, 64)
	case "distance":
		if dist == nil {
			return missing
		}

		return strconv.Itoa(int(*dist))
	}

	v, ok := f.Get(col)
	if !ok {
		return missing
	}

	return v
}

// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

// Package testcase loads geocoding test cases from CSV and YAML files.
package testcase

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jcodagnone/geotester/geocoder"
	"github.com/jcodagnone/geotester/spatial"
	"github.com/jcodagnone/geotester/verify"
)

// DefaultLimit is the number of results requested when a case does not say.
const DefaultLimit = 1

// Case is one geocoding expectation.
type Case struct {
	ID         string // "<path>::<name>"
	Path       string
	Name       string
	Text       string
	Center     *spatial.Point
	Language   string
	Limit      int
	Detail     geocoder.DetailLevel
	Comment    string
	Skip       string // reason; set when Skipped
	Skipped    bool
	Marks      []string
	MaxMatches int
	Expected   []verify.Criterion

	// Err is set when the case could not be loaded; such a case is reported
	// as errored instead of aborting the whole file.
	Err error
}

// Query returns the geocoder query the case runs.
func (c *Case) Query() geocoder.Query {
	return geocoder.Query{
		Text:     c.Text,
		Center:   c.Center,
		Language: c.Language,
		Limit:    c.Limit,
		Detail:   c.Detail,
	}
}

// HasMark reports whether the case carries mark.
func (c *Case) HasMark(mark string) bool {
	return slices.Contains(c.Marks, mark)
}

// Describe is a one line summary for listings.
func (c *Case) Describe() string {
	s := "Search: " + c.Text
	if c.Text == "" && c.Center != nil {
		s = fmt.Sprintf("Reverse: %g,%g", c.Center.Lat, c.Center.Lng)
	}

	if c.Comment != "" {
		s = fmt.Sprintf("%s (%s)", s, c.Comment)
	}

	return s
}

// fields collects the raw attributes of a case, whatever the file format.
type fields struct {
	query, lat, lon, lang, limit, comment, detail, maxMatches string
	hasQuery, hasSkip                                         bool
	skip                                                      string
	marks                                                     []string
	expected                                                  []verify.Criterion
}

func newCase(path, name string, baseMarks []string, f fields) *Case {
	c := &Case{
		ID:       path + "::" + name,
		Path:     path,
		Name:     name,
		Text:     f.query,
		Language: f.lang,
		Comment:  f.comment,
		Skip:     f.skip,
		Skipped:  f.hasSkip,
		Limit:    DefaultLimit,
		Expected: f.expected,
	}

	if !f.hasQuery {
		c.Text = name
	}

	c.Marks = append(slices.Clone(baseMarks), f.marks...)

	var errs []string

	if f.lat != "" || f.lon != "" {
		p, err := spatial.ParseLatLng(f.lat, f.lon)
		if err != nil {
			errs = append(errs, fmt.Sprintf("center: %v", err))
		} else {
			c.Center = &p
		}
	}

	if f.limit != "" {
		n, err := strconv.Atoi(strings.TrimSpace(f.limit))
		if err != nil || n < 0 {
			errs = append(errs, fmt.Sprintf("invalid limit %q", f.limit))
		} else {
			c.Limit = n
		}
	}

	if f.maxMatches != "" {
		n, err := strconv.Atoi(strings.TrimSpace(f.maxMatches))
		if err != nil || n < 0 {
			errs = append(errs, fmt.Sprintf("invalid max_matches %q", f.maxMatches))
		} else {
			c.MaxMatches = n
		}
	}

	detail, err := geocoder.ParseDetailLevel(f.detail)
	if err != nil {
		errs = append(errs, err.Error())
	}

	c.Detail = detail

	if len(errs) > 0 {
		c.Err = fmt.Errorf("case %s: %s", c.ID, strings.Join(errs, "; "))
	}

	return c
}

func splitMarks(s string) []string {
	var marks []string

	for m := range strings.SplitSeq(s, ",") {
		if m = strings.TrimSpace(m); m != "" {
			marks = append(marks, m)
		}
	}

	return marks
}

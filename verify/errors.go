// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"errors"
	"fmt"

	"github.com/jcodagnone/geotester/geocoder"
)

// FailureKind tells why a criterion was not satisfied.
type FailureKind int

const (
	passed FailureKind = iota
	// NoMatch no feature satisfied the criterion.
	NoMatch
	// TooManyMatches more features than allowed satisfied the criterion.
	TooManyMatches
)

func (k FailureKind) String() string {
	switch k {
	case NoMatch:
		return "no match"
	case TooManyMatches:
		return "too many matches"
	default:
		return "passed"
	}
}

// SearchError is a failed criterion with everything needed to explain it.
type SearchError struct {
	Kind       FailureKind
	Result     *geocoder.Result
	Criteria   []Criterion // every criterion of the verification
	Outcome    *Outcome    // the failing one, with per-feature failed fields
	MaxMatches int
	Duplicates map[DuplicateKey][]*geocoder.Feature // empty unless duplicates were checked
}

// Message is a short explanation of the failure.
func (e *SearchError) Message() string {
	if e.Kind == TooManyMatches {
		return fmt.Sprintf("%d results matched, expected at most %d", e.Outcome.Matched, e.MaxMatches)
	}

	return fmt.Sprintf("none of the %d results matched", len(e.Result.Features))
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search %s failed: expected {%s}: %s",
		DescribeQuery(e.Result.Query), e.Outcome.Criterion, e.Message())
}

// DuplicateError reports semantically redundant entries among the top results.
type DuplicateError struct {
	Result *geocoder.Result
	Depth  int
	Groups map[DuplicateKey][]*geocoder.Feature
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("search %s: %d duplicate group(s) in the top %d results",
		DescribeQuery(e.Result.Query), len(e.Groups), e.Depth)
}

// IsFailure reports whether err is a verification failure, as opposed to a
// transport, configuration, or unsupported-operation condition.
func IsFailure(err error) bool {
	var se *SearchError

	var de *DuplicateError

	return errors.As(err, &se) || errors.As(err, &de)
}

// DescribeQuery renders a query for messages.
func DescribeQuery(q geocoder.Query) string {
	if q.Text == "" && q.Center != nil {
		return fmt.Sprintf("reverse(%g,%g)", q.Center.Lat, q.Center.Lng)
	}

	return fmt.Sprintf("%q", q.Text)
}

// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

// Package verify decides whether geocoding results satisfy declared
// expectations, and looks for duplicate entries among them.
package verify

import (
	"fmt"

	"github.com/jcodagnone/geotester/config"
	"github.com/jcodagnone/geotester/geocoder"
	"github.com/jcodagnone/geotester/utils/textutils"
)

// FeatureCheck is the evaluation of one feature against one criterion.
type FeatureCheck struct {
	Index    int      // position in the backend answer
	Failed   []string // fields that did not match
	Distance *float64 // meters to the expected coordinate, when one is declared
}

// Matched reports whether every field matched.
func (fc FeatureCheck) Matched() bool {
	return len(fc.Failed) == 0
}

// Outcome is the evaluation of one criterion against a whole result list.
type Outcome struct {
	Criterion Criterion
	Matched   int
	Checks    []FeatureCheck // one per feature, in backend order
}

// FirstMatch returns the index of the first matching feature, or -1.
func (o *Outcome) FirstMatch() int {
	for _, c := range o.Checks {
		if c.Matched() {
			return c.Index
		}
	}

	return -1
}

// Verifier evaluates results under the session's comparison settings. It
// holds no per-call state and is safe for concurrent use.
type Verifier struct {
	loose          bool
	duplicateDepth int
}

// NewVerifier creates a verifier from the session configuration.
func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{
		loose:          cfg.LooseCompare,
		duplicateDepth: cfg.DuplicateDepth,
	}
}

// Check evaluates every feature against c. Features are never modified.
func (v *Verifier) Check(features []*geocoder.Feature, c Criterion) (*Outcome, error) {
	tolerance, err := c.Coordinate()
	if err != nil {
		return nil, err
	}

	fields := c.Fields()
	out := &Outcome{
		Criterion: c,
		Checks:    make([]FeatureCheck, 0, len(features)),
	}

	for i, f := range features {
		check := v.checkFeature(f, c, fields, tolerance)
		check.Index = i

		if check.Matched() {
			out.Matched++
		}

		out.Checks = append(out.Checks, check)
	}

	return out, nil
}

func (v *Verifier) checkFeature(f *geocoder.Feature, c Criterion, fields []string, tolerance *Tolerance) FeatureCheck {
	var check FeatureCheck

	for _, key := range fields {
		if key == CoordinateField {
			if f.Point == nil {
				check.Failed = append(check.Failed, DistanceField)

				continue
			}

			ok, d := tolerance.Accepts(f.Point)
			check.Distance = &d

			if !ok {
				check.Failed = append(check.Failed, DistanceField)
			}

			continue
		}

		got, ok := f.Get(key)
		if !ok || !textutils.Equal(got, c[key], v.loose) {
			check.Failed = append(check.Failed, key)
		}
	}

	return check
}

// Verify checks that every criterion is satisfied by res. With maxMatches > 0
// a criterion must also not be satisfied by more than maxMatches features.
// When duplicate checking is enabled, duplicates found among the top results
// fail the verification too. Failures are *SearchError or *DuplicateError.
func (v *Verifier) Verify(res *geocoder.Result, criteria []Criterion, maxMatches int) error {
	if len(criteria) == 0 {
		return fmt.Errorf("%w: no expected result declared", ErrInvalidCriterion)
	}

	duplicates := v.Duplicates(res.Features)

	for _, c := range criteria {
		outcome, err := v.Check(res.Features, c)
		if err != nil {
			return err
		}

		kind := passed

		switch {
		case outcome.Matched == 0:
			kind = NoMatch
		case maxMatches > 0 && outcome.Matched > maxMatches:
			kind = TooManyMatches
		}

		if kind != passed {
			return &SearchError{
				Kind:       kind,
				Result:     res,
				Criteria:   criteria,
				Outcome:    outcome,
				MaxMatches: maxMatches,
				Duplicates: duplicates,
			}
		}
	}

	if len(duplicates) > 0 {
		return &DuplicateError{
			Result: res,
			Depth:  v.duplicateDepth,
			Groups: duplicates,
		}
	}

	return nil
}

// Duplicates groups the top results by identity under the session settings.
func (v *Verifier) Duplicates(features []*geocoder.Feature) map[DuplicateKey][]*geocoder.Feature {
	return FindDuplicates(features, v.duplicateDepth, v.loose)
}

// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/jcodagnone/geotester/geocoder"
	"github.com/jcodagnone/geotester/utils/textutils"
)

// categories naming points of interest; those are told apart by address.
var poiCategories = map[string]bool{
	"poi": true,
}

// DuplicateKey is the identity of a feature as an end user perceives it.
type DuplicateKey struct {
	Label    string
	Category string
	Address  string // only set for points of interest
}

func (k DuplicateKey) String() string {
	if k.Address == "" {
		return fmt.Sprintf("%s (%s)", k.Label, k.Category)
	}

	return fmt.Sprintf("%s (%s) @ %s", k.Label, k.Category, k.Address)
}

// KeyOf derives the duplicate key of f. Loose keys are normalized.
func KeyOf(f *geocoder.Feature, loose bool) DuplicateKey {
	fold := func(s string) string { return s }
	if loose {
		fold = textutils.Normalize
	}

	category := f.Category()
	key := DuplicateKey{
		Label:    fold(f.Label()),
		Category: fold(category),
	}

	if poiCategories[strings.ToLower(category)] {
		key.Address = fold(f.AddressLabel())
	}

	return key
}

// FindDuplicates groups the first depth features by key and returns the groups
// with more than one member. A depth of zero disables the check.
func FindDuplicates(features []*geocoder.Feature, depth int, loose bool) map[DuplicateKey][]*geocoder.Feature {
	groups := map[DuplicateKey][]*geocoder.Feature{}
	if depth <= 0 {
		return groups
	}

	for _, f := range features[:min(depth, len(features))] {
		k := KeyOf(f, loose)
		groups[k] = append(groups[k], f)
	}

	for k, members := range groups {
		if len(members) < 2 {
			delete(groups, k)
		}
	}

	return groups
}

// SortedKeys returns the keys of groups in a stable order.
func SortedKeys(groups map[DuplicateKey][]*geocoder.Feature) []DuplicateKey {
	keys := make([]DuplicateKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b DuplicateKey) int {
		return cmp.Or(
			cmp.Compare(a.Label, b.Label),
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.Address, b.Address),
		)
	})

	return keys
}

// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/geotester/geocoder"
	"github.com/stretchr/testify/assert"
)

func TestKeyOf(t *testing.T) {
	tests := []struct {
		name    string
		feature *geocoder.Feature
		loose   bool
		want    DuplicateKey
	}{
		{
			name:    "label wins over name",
			feature: feature(0, 0, "label", "Berlin, Germany", "name", "Berlin", "type", "city"),
			want:    DuplicateKey{Label: "Berlin, Germany", Category: "city"},
		},
		{
			name:    "poi carries its address",
			feature: feature(0, 0, "name", "Café Central", "type", "poi", "address", "Herrengasse 14"),
			want:    DuplicateKey{Label: "Café Central", Category: "poi", Address: "Herrengasse 14"},
		},
		{
			name:    "loose keys are normalized",
			feature: feature(0, 0, "name", "Café  Central", "type", "POI", "street", "Herrengasse"),
			loose:   true,
			want:    DuplicateKey{Label: "cafe central", Category: "poi", Address: "herrengasse"},
		},
		{
			name:    "street has no address part",
			feature: feature(0, 0, "name", "Herrengasse", "type", "street", "city", "Wien"),
			want:    DuplicateKey{Label: "Herrengasse", Category: "street"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KeyOf(tc.feature, tc.loose))
		})
	}
}

func TestFindDuplicates(t *testing.T) {
	features := []*geocoder.Feature{
		feature(0, 0, "name", "Main Street", "type", "street"),
		feature(0, 0, "name", "Café", "type", "poi", "address", "Main Street 1"),
		feature(0, 0, "name", "Café", "type", "poi", "address", "Main Street 2"),
		feature(0, 0, "name", "Main Street", "type", "street"),
		feature(0, 0, "name", "Cafe", "type", "poi", "address", "main street 1"),
	}

	tests := []struct {
		name  string
		depth int
		loose bool
		want  map[DuplicateKey][]int
	}{
		{"disabled", 0, false, map[DuplicateKey][]int{}},
		{"depth cuts the pair", 3, false, map[DuplicateKey][]int{}},
		{
			"strict", 5, false,
			map[DuplicateKey][]int{{Label: "Main Street", Category: "street"}: {0, 3}},
		},
		{
			"depth larger than results", 50, false,
			map[DuplicateKey][]int{{Label: "Main Street", Category: "street"}: {0, 3}},
		},
		{
			"loose", 5, true,
			map[DuplicateKey][]int{
				{Label: "main street", Category: "street"}:                 {0, 3},
				{Label: "cafe", Category: "poi", Address: "main street 1"}: {1, 4},
			},
		},
	}

	index := func(f *geocoder.Feature) int {
		for i, g := range features {
			if f == g {
				return i
			}
		}

		return -1
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := map[DuplicateKey][]int{}
			for k, members := range FindDuplicates(features, tc.depth, tc.loose) {
				for _, f := range members {
					got[k] = append(got[k], index(f))
				}
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("FindDuplicates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortedKeys(t *testing.T) {
	groups := map[DuplicateKey][]*geocoder.Feature{
		{Label: "b", Category: "city"}:              nil,
		{Label: "a", Category: "poi", Address: "2"}: nil,
		{Label: "a", Category: "poi", Address: "1"}: nil,
	}

	want := []DuplicateKey{
		{Label: "a", Category: "poi", Address: "1"},
		{Label: "a", Category: "poi", Address: "2"},
		{Label: "b", Category: "city"},
	}

	assert.Equal(t, want, SortedKeys(groups))
	assert.Equal(t, "a (poi) @ 1", want[0].String())
	assert.Equal(t, "b (city)", want[2].String())
}

// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils folds strings into comparable forms.
package textutils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that carry no combining mark, so NFD cannot strip them.
var transliterations = strings.NewReplacer(
	"ø", "o",
	"ł", "l",
	"đ", "d",
	"ð", "d",
	"ħ", "h",
	"ı", "i",
	"æ", "ae",
	"œ", "oe",
	"þ", "th",
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(cases.Fold().String(s)),
	)

	return transliterations.Replace(s)
}

// Normalize returns the loose comparison form of s: case folded, without
// diacritics, and with every run of non-word characters collapsed into a
// single space.
func Normalize(s string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(LowerASCIIFolding(s), " "))
}

// Equal reports whether a and b are equal, loosely when loose is set.
func Equal(a, b string, loose bool) bool {
	if loose {
		return Normalize(a) == Normalize(b)
	}

	return a == b
}

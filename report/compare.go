// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"
)

// SaveFailed writes the identifiers of failed cases, one per line.
func SaveFailed(path string, ids []string) error {
	content := strings.Join(ids, "\n")
	if len(ids) > 0 {
		content += "\n"
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}

	return nil
}

// LoadFailed reads a report written by SaveFailed.
func LoadFailed(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading report: %w", err)
	}
	defer f.Close()

	var ids []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			ids = append(ids, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loading report %s: %w", path, err)
	}

	return ids, nil
}

// Diff is the change between two runs.
type Diff struct {
	NewFailures []string // failing now, not before
	NewPassing  []string // failing before, not now
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.NewFailures) == 0 && len(d.NewPassing) == 0
}

// Compare diffs the failures of a previous run against the current ones.
// Only identifiers in executed are reported as newly passing, so a partial
// run does not claim fixes for cases it never ran; a nil executed disables
// that filter.
func Compare(previous, current, executed []string) Diff {
	var d Diff

	for _, id := range current {
		if !slices.Contains(previous, id) {
			d.NewFailures = append(d.NewFailures, id)
		}
	}

	for _, id := range previous {
		if slices.Contains(current, id) {
			continue
		}

		if executed != nil && !slices.Contains(executed, id) {
			continue
		}

		d.NewPassing = append(d.NewPassing, id)
	}

	return d
}

// String renders d the way it is printed after a run.
func (d Diff) String() string {
	var sb strings.Builder

	if len(d.NewFailures) > 0 {
		fmt.Fprintf(&sb, "%d new failures:\n", len(d.NewFailures))

		for _, id := range d.NewFailures {
			fmt.Fprintf(&sb, "  - %s\n", id)
		}
	}

	if len(d.NewPassing) > 0 {
		fmt.Fprintf(&sb, "%d new passing:\n", len(d.NewPassing))

		for _, id := range d.NewPassing {
			fmt.Fprintf(&sb, "  - %s\n", id)
		}
	}

	if d.Empty() {
		sb.WriteString("no changes since previous report\n")
	}

	return sb.String()
}

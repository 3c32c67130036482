// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package testcase

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// filePrefix marks the files holding cases.
const filePrefix = "test"

// IsCaseFile reports whether path names a case file.
func IsCaseFile(path string) bool {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, filePrefix) {
		return false
	}

	switch filepath.Ext(base) {
	case ".csv", ".yml", ".yaml":
		return true
	default:
		return false
	}
}

// LoadFile loads the cases of one file, tagging them with marks.
func LoadFile(path string, marks []string) ([]*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading cases: %w", err)
	}

	id := filepath.ToSlash(path)

	switch filepath.Ext(path) {
	case ".csv":
		return parseCSV(id, data, marks)
	case ".yml", ".yaml":
		return parseYAML(id, data, marks)
	default:
		return nil, fmt.Errorf("unsupported case file %s", path)
	}
}

// Discover walks roots for case files and loads them in lexical order.
// Directory names between a root and a file become marks of its cases.
// A root may also be a single file.
func Discover(roots ...string) ([]*Case, error) {
	var cases []*Case

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("error reading cases: %w", err)
		}

		if !info.IsDir() {
			loaded, err := LoadFile(root, nil)
			if err != nil {
				return nil, err
			}

			cases = append(cases, loaded...)

			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() || !IsCaseFile(path) {
				return nil
			}

			loaded, err := LoadFile(path, dirMarks(root, path))
			if err != nil {
				return err
			}

			cases = append(cases, loaded...)

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error discovering cases in %s: %w", root, err)
		}
	}

	return cases, nil
}

func dirMarks(root, path string) []string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return nil
	}

	var marks []string

	for _, d := range strings.Split(rel, string(filepath.Separator)) {
		if d != "" && d != "." {
			marks = append(marks, d)
		}
	}

	return marks
}

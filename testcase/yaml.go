// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package testcase

import (
	"errors"
	"fmt"

	"github.com/jcodagnone/geotester/verify"
	"gopkg.in/yaml.v3"
)

const nullTag = "!!null"

var errNotMapping = errors.New("expected a mapping")

// parseYAML reads a top level mapping of case name to case. Scalars are
// taken with their literal text so "48.10" stays "48.10".
func parseYAML(path string, data []byte, marks []string) ([]*Case, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: %w of case names", path, errNotMapping)
	}

	cases := make([]*Case, 0, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value

		f, err := yamlFields(root.Content[i+1])

		c := newCase(path, name, marks, f)
		if err != nil {
			c.Err = fmt.Errorf("case %s (line %d): %w", c.ID, root.Content[i].Line, err)
		}

		cases = append(cases, c)
	}

	return cases, nil
}

func yamlFields(node *yaml.Node) (fields, error) {
	var f fields

	if node.Kind != yaml.MappingNode {
		return f, errNotMapping
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]

		switch key {
		case "query":
			f.query, f.hasQuery = value.Value, true
		case "lat":
			f.lat = value.Value
		case "lon":
			f.lon = value.Value
		case "lang":
			f.lang = value.Value
		case "limit":
			f.limit = value.Value
		case "comment":
			f.comment = value.Value
		case "detail":
			f.detail = value.Value
		case "max_matches":
			f.maxMatches = value.Value
		case "skip":
			f.skip, f.hasSkip = value.Value, value.Tag != nullTag
		case "mark":
			f.marks = yamlMarks(value)
		case "expected":
			expected, err := yamlExpected(value)
			if err != nil {
				return f, fmt.Errorf("expected: %w", err)
			}

			f.expected = expected
		}
	}

	return f, nil
}

func yamlMarks(node *yaml.Node) []string {
	if node.Kind != yaml.SequenceNode {
		return splitMarks(node.Value)
	}

	marks := make([]string, 0, len(node.Content))
	for _, n := range node.Content {
		marks = append(marks, splitMarks(n.Value)...)
	}

	return marks
}

// yamlExpected accepts a single criterion mapping or a list of them.
func yamlExpected(node *yaml.Node) ([]verify.Criterion, error) {
	switch node.Kind {
	case yaml.MappingNode:
		c, err := yamlCriterion(node)
		if err != nil {
			return nil, err
		}

		return []verify.Criterion{c}, nil
	case yaml.SequenceNode:
		criteria := make([]verify.Criterion, 0, len(node.Content))

		for _, n := range node.Content {
			c, err := yamlCriterion(n)
			if err != nil {
				return nil, err
			}

			criteria = append(criteria, c)
		}

		return criteria, nil
	default:
		return nil, errNotMapping
	}
}

func yamlCriterion(node *yaml.Node) (verify.Criterion, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errNotMapping
	}

	c := make(verify.Criterion, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%s: expected a scalar value", key.Value)
		}

		c[key.Value] = value.Value
	}

	return c, nil
}

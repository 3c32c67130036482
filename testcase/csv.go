// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package testcase

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jcodagnone/geotester/verify"
)

const expectedPrefix = "expected_"

var delimiters = []rune{',', ';', '\t', '|'}

// sniffDelimiter picks the candidate delimiter most frequent in the header line.
func sniffDelimiter(data []byte) rune {
	line, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()

	best, bestCount := delimiters[0], 0

	for _, d := range delimiters {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}

	return best
}

// parseCSV reads one case per row. Columns named expected_<field> form the
// single criterion of the row; empty cells are ignored.
func parseCSV(path string, data []byte, marks []string) ([]*Case, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("error reading header of %s: %w", path, err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var (
		cases []*Case
		seen  = map[string]int{}
	)

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return cases, fmt.Errorf("error reading %s: %w", path, err)
		}

		line, _ := r.FieldPos(0)
		f := csvFields(header, record)

		name := f.query
		if name == "" {
			name = "row " + strconv.Itoa(line)
		}

		if seen[name]++; seen[name] > 1 {
			name = fmt.Sprintf("%s [line %d]", name, line)
		}

		f.hasQuery = true
		cases = append(cases, newCase(path, name, marks, f))
	}

	return cases, nil
}

func csvFields(header, record []string) fields {
	var (
		f         fields
		criterion = verify.Criterion{}
	)

	for i, col := range header {
		if i >= len(record) {
			break
		}

		v := record[i]

		switch col {
		case "query":
			f.query = v
		case "lat":
			f.lat = v
		case "lon":
			f.lon = v
		case "lang":
			f.lang = v
		case "limit":
			f.limit = v
		case "comment":
			f.comment = v
		case "detail":
			f.detail = v
		case "max_matches":
			f.maxMatches = v
		case "mark":
			f.marks = splitMarks(v)
		case "skip":
			f.skip = v
			f.hasSkip = strings.TrimSpace(v) != ""
		default:
			if field, ok := strings.CutPrefix(col, expectedPrefix); ok && v != "" {
				criterion[field] = v
			}
		}
	}

	if len(criterion) > 0 {
		f.expected = []verify.Criterion{criterion}
	}

	return f
}

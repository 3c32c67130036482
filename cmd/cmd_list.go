// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jcodagnone/geotester/runner"
	"github.com/jcodagnone/geotester/testcase"
	"github.com/spf13/cobra"
)

var listMarks []string

var listCmd = &cobra.Command{
	Use:   "list [paths...]",
	Short: "Lists the test cases found under paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := testcase.Discover(casePaths(args)...)
		if err != nil {
			return err
		}

		printCases(cmd.OutOrStdout(), runner.Select(cases, listMarks))

		return nil
	},
}

func printCases(w io.Writer, cases []*testcase.Case) {
	idWidth, marksWidth := len("Id"), len("Marks")

	for _, c := range cases {
		idWidth = max(idWidth, utf8.RuneCountInString(c.ID))
		marksWidth = max(marksWidth, utf8.RuneCountInString(strings.Join(c.Marks, ",")))
	}

	a, b := strings.Repeat("─", idWidth), strings.Repeat("─", marksWidth)
	c := strings.Repeat("─", 50)

	fmt.Fprintf(w, "%d cases:\n", len(cases))
	fmt.Fprintf(w, "╭─%s─┬─%s─┬─%s─╮\n", a, b, c)
	fmt.Fprintf(w, "│ %s │ %s │ %s │\n", pad("Id", idWidth), pad("Marks", marksWidth), pad("Description", 50))
	fmt.Fprintf(w, "├─%s─┼─%s─┼─%s─┤\n", a, b, c)

	for _, tc := range cases {
		desc := tc.Describe()
		if tc.Skipped {
			desc = "[skip] " + desc
		}

		if tc.Err != nil {
			desc = "[invalid] " + desc
		}

		fmt.Fprintf(w, "│ %s │ %s │ %s │\n", pad(tc.ID, idWidth), pad(strings.Join(tc.Marks, ","), marksWidth), pad(desc, 50))
	}

	fmt.Fprintf(w, "╰─%s─┴─%s─┴─%s─╯\n", a, b, c)
}

// pad right-pads s to width runes, truncating longer strings.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		r := []rune(s)

		return string(r[:width-1]) + "…"
	}

	return s + strings.Repeat(" ", width-n)
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringSliceVar(&listMarks, "mark", nil, "Only list cases carrying one of these marks")
}

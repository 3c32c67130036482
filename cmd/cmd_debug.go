// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jcodagnone/geotester/geocoder"
	"github.com/jcodagnone/geotester/report"
	"github.com/jcodagnone/geotester/spatial"
	"github.com/jcodagnone/geotester/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugNormalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Prints the loose comparison form of each input line",
	Long: `Reads one string per line and prints it followed by the form used when
--loose-compare is enabled.

$ echo "Café  Central" | geotester debug normalize
Café  Central	cafe central
	`,
	Run: func(_ *cobra.Command, _ []string) {
		input := os.Stdin
		if isatty.IsTerminal(input.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter strings to normalize, one per line…")
		}

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			line := scanner.Text()
			fmt.Printf("%s\t%s\n", line, textutils.Normalize(line))
		}

		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
			os.Exit(1)
		}
	},
}

var debugQuery = struct {
	lang   string
	limit  int
	center string
	detail string
}{}

func printResult(cmd *cobra.Command, res *geocoder.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n", res.Request.URL())
	fmt.Fprintln(out, report.Table(res.Features, nil, nil, lipgloss.NewRenderer(out)))
}

var debugSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Runs one search and prints the results table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		client, err := geocoder.NewClient(cfg)
		if err != nil {
			return err
		}

		q := geocoder.Query{Text: args[0], Language: debugQuery.lang, Limit: debugQuery.limit}

		if debugQuery.center != "" {
			p, err := spatial.ParsePoint(debugQuery.center)
			if err != nil {
				return err
			}

			q.Center = &p
		}

		res, err := client.Search(cmd.Context(), q)
		if err != nil {
			return err
		}

		printResult(cmd, res)

		return nil
	},
}

var debugReverseCmd = &cobra.Command{
	Use:   "reverse <lat> <lon>",
	Short: "Runs one reverse lookup and prints the results table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		client, err := geocoder.NewClient(cfg)
		if err != nil {
			return err
		}

		p, err := spatial.ParseLatLng(args[0], args[1])
		if err != nil {
			return err
		}

		detail, err := geocoder.ParseDetailLevel(debugQuery.detail)
		if err != nil {
			return err
		}

		res, err := client.Reverse(cmd.Context(), geocoder.Query{
			Center:   &p,
			Language: debugQuery.lang,
			Limit:    debugQuery.limit,
			Detail:   detail,
		})
		if err != nil {
			return err
		}

		printResult(cmd, res)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugNormalizeCmd)
	debugCmd.AddCommand(debugSearchCmd)
	debugCmd.AddCommand(debugReverseCmd)

	for _, c := range []*cobra.Command{debugSearchCmd, debugReverseCmd} {
		c.Flags().StringVar(&debugQuery.lang, "lang", "", "Preferred result language")
		c.Flags().IntVar(&debugQuery.limit, "limit", 5, "Maximum number of results")
	}

	debugSearchCmd.Flags().StringVar(&debugQuery.center, "center", "", `Location bias as "lat,lon"`)
	debugReverseCmd.Flags().StringVar(&debugQuery.detail, "detail", "", "Detail level: country, state, county, city, district, street or house")
}

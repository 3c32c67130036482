// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jcodagnone/geotester/config"
	"github.com/jcodagnone/geotester/geocoder"
	"github.com/jcodagnone/geotester/report"
	"github.com/jcodagnone/geotester/runner"
	"github.com/jcodagnone/geotester/testcase"
	"github.com/spf13/cobra"
)

var errCasesFailed = errors.New("some cases failed")

type runFlags struct {
	maxRun        int
	parallel      int
	geoJSON       bool
	marks         []string
	saveReport    string
	compareReport string
	metricsFile   string
}

var runOptions = &runFlags{}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("max-run") {
		cfg.MaxRun = runOptions.maxRun
	}

	if flags.Changed("parallel") {
		cfg.Parallel = runOptions.parallel
	}

	if flags.Changed("geojson") {
		cfg.GeoJSON = runOptions.geoJSON
	}
}

func casePaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}

	return args
}

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Runs the test cases found under paths",
	Long: `Discovers test files (test*.csv, test*.yml, test*.yaml) under the given paths,
runs every case against the backend and reports the failures. Directory names
become marks that --mark can select.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		cases, err := testcase.Discover(casePaths(args)...)
		if err != nil {
			return err
		}

		cases = runner.Select(cases, runOptions.marks)

		var previous []string
		if runOptions.compareReport != "" {
			if previous, err = report.LoadFailed(runOptions.compareReport); err != nil {
				return err
			}
		}

		client, err := geocoder.NewClient(cfg)
		if err != nil {
			return err
		}

		log.Printf("Running %d cases against %s (%s dialect, run %s)", len(cases), cfg.APIURL, client.Dialect(), cfg.RunID)

		r := runner.New(cfg, client)
		summary, runErr := r.Run(cmd.Context(), cases)

		printOutcomes(cmd.OutOrStdout(), summary, report.Options{GeoJSON: cfg.GeoJSON})
		log.Printf("Run complete - %s", summary)

		if runOptions.saveReport != "" {
			if err := report.SaveFailed(runOptions.saveReport, summary.FailedIDs()); err != nil {
				return err
			}
		}

		if runOptions.compareReport != "" {
			diff := report.Compare(previous, summary.FailedIDs(), summary.ExecutedIDs())
			fmt.Fprint(cmd.OutOrStdout(), diff)
		}

		if runOptions.metricsFile != "" {
			if err := r.Metrics().WriteFile(runOptions.metricsFile); err != nil {
				return err
			}
		}

		if runErr != nil {
			return runErr
		}

		if !summary.OK() {
			return errCasesFailed
		}

		return nil
	},
}

func printOutcomes(w io.Writer, summary *runner.Summary, opts report.Options) {
	for _, o := range summary.Outcomes {
		switch o.Status {
		case runner.Failed:
			fmt.Fprintf(w, "FAILED %s - %s\n%s\n", o.Case.ID, o.Case.Describe(), report.Failure(o.Err, opts))
		case runner.Errored:
			fmt.Fprintf(w, "ERROR %s - %s\n", o.Case.ID, o.Err)
		case runner.NotApplicable:
			fmt.Fprintf(w, "N/A %s - %s\n", o.Case.ID, o.Err)
		case runner.Passed, runner.Skipped:
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.IntVar(&runOptions.maxRun, "max-run", 0, "Limit the number of tests to be run. 0 means no limit")
	flags.IntVar(&runOptions.parallel, "parallel", 1, "Number of cases run concurrently")
	flags.BoolVar(&runOptions.geoJSON, "geojson", false, "Display geojson in the report of failing tests")
	flags.StringSliceVar(&runOptions.marks, "mark", nil, "Only run cases carrying one of these marks")
	flags.StringVar(&runOptions.saveReport, "save-report", "", "Path where to save the report")
	flags.StringVar(&runOptions.compareReport, "compare-report", "", "Path where to load the report to compare with")
	flags.StringVar(&runOptions.metricsFile, "metrics-file", "", "Write run metrics in the node exporter textfile format")
}

// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

// Package runner executes test cases against a geocoder and verifies the
// answers.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jcodagnone/geotester/config"
	"github.com/jcodagnone/geotester/geocoder"
	"github.com/jcodagnone/geotester/testcase"
	"github.com/jcodagnone/geotester/verify"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// Status is the verdict of one case.
type Status int

const (
	Passed Status = iota
	Failed
	Skipped
	// NotApplicable the backend dialect cannot express the case.
	NotApplicable
	// Errored the case could not be loaded, sent, or evaluated.
	Errored
)

var statusNames = map[Status]string{
	Passed:        "passed",
	Failed:        "failed",
	Skipped:       "skipped",
	NotApplicable: "not applicable",
	Errored:       "errored",
}

// Statuses lists every status in reporting order.
var Statuses = []Status{Passed, Failed, Skipped, NotApplicable, Errored}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome is what happened to one case.
type Outcome struct {
	Case     *testcase.Case
	Status   Status
	Err      error
	Result   *geocoder.Result
	Duration time.Duration
}

// Runner executes cases with bounded parallelism. Identical queries are
// always sent again; nothing is cached between cases.
type Runner struct {
	geocoder geocoder.Geocoder
	verifier *verify.Verifier
	maxRun   int
	parallel int
	metrics  *Metrics

	// Progress enables the terminal progress bar; it defaults to whether
	// stderr is a terminal.
	Progress bool
}

// New creates a runner for the session configuration.
func New(cfg *config.Config, g geocoder.Geocoder) *Runner {
	return &Runner{
		geocoder: g,
		verifier: verify.NewVerifier(cfg),
		maxRun:   cfg.MaxRun,
		parallel: max(cfg.Parallel, 1),
		metrics:  NewMetrics(),
		Progress: isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// Metrics returns the metrics recorded by the runner.
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// Select keeps the cases carrying any of marks; no marks keeps everything.
func Select(cases []*testcase.Case, marks []string) []*testcase.Case {
	if len(marks) == 0 {
		return cases
	}

	var selected []*testcase.Case

	for _, c := range cases {
		for _, m := range marks {
			if c.HasMark(m) {
				selected = append(selected, c)

				break
			}
		}
	}

	return selected
}

// plan drops the cases beyond the run limit. Skipped cases do not count
// against it.
func (r *Runner) plan(cases []*testcase.Case) []*testcase.Case {
	if r.maxRun <= 0 {
		return cases
	}

	var (
		planned []*testcase.Case
		run     int
	)

	for _, c := range cases {
		if c.Skipped && c.Err == nil {
			planned = append(planned, c)

			continue
		}

		if run == r.maxRun {
			break
		}

		run++

		planned = append(planned, c)
	}

	return planned
}

// Run executes cases and returns their outcomes in case order. It only
// fails when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, cases []*testcase.Case) (*Summary, error) {
	start := time.Now()
	cases = r.plan(cases)
	outcomes := make([]*Outcome, len(cases))

	var bar *progressbar.ProgressBar
	if r.Progress {
		bar = progressbar.NewOptions(len(cases),
			progressbar.OptionSetDescription("Running"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var barMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)

	for i, c := range cases {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			o := r.runCase(ctx, c)
			outcomes[i] = o
			r.metrics.observe(o)

			if bar == nil {
				log.Printf("%s: %s", c.ID, o.Status)

				return nil
			}

			barMu.Lock()
			defer barMu.Unlock()

			if err := bar.Add(1); err != nil {
				log.Printf("Updating progress bar for %s - %s", c.ID, err)
			}

			return nil
		})
	}

	err := g.Wait()

	summary := &Summary{Elapsed: time.Since(start)}
	for _, o := range outcomes {
		if o != nil {
			summary.Outcomes = append(summary.Outcomes, o)
		}
	}

	if err != nil {
		return summary, fmt.Errorf("run interrupted: %w", err)
	}

	return summary, nil
}

func (r *Runner) runCase(ctx context.Context, c *testcase.Case) *Outcome {
	start := time.Now()
	o := &Outcome{Case: c}

	defer func() { o.Duration = time.Since(start) }()

	switch {
	case c.Err != nil:
		o.Status, o.Err = Errored, c.Err

		return o
	case c.Skipped:
		o.Status = Skipped

		return o
	}

	res, err := geocoder.Resolve(ctx, r.geocoder, c.Query())
	if err != nil {
		o.Status, o.Err = Errored, err
		if errors.Is(err, geocoder.ErrUnsupported) {
			o.Status = NotApplicable
		}

		return o
	}

	o.Result = res

	err = r.verifier.Verify(res, c.Expected, c.MaxMatches)

	switch {
	case err == nil:
		o.Status = Passed
	case verify.IsFailure(err):
		o.Status, o.Err = Failed, err
	default:
		o.Status, o.Err = Errored, fmt.Errorf("case %s: %w", c.ID, err)
	}

	return o
}

// Summary is the result of a run.
type Summary struct {
	Outcomes []*Outcome
	Elapsed  time.Duration
}

// Count returns how many outcomes have status s.
func (s *Summary) Count(status Status) int {
	n := 0

	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}

	return n
}

// OK reports whether nothing failed or errored.
func (s *Summary) OK() bool {
	return s.Count(Failed) == 0 && s.Count(Errored) == 0
}

// FailedIDs lists the cases that failed or errored, in case order.
func (s *Summary) FailedIDs() []string {
	var ids []string

	for _, o := range s.Outcomes {
		if o.Status == Failed || o.Status == Errored {
			ids = append(ids, o.Case.ID)
		}
	}

	return ids
}

// ExecutedIDs lists the cases that were sent to the backend or failed to load.
func (s *Summary) ExecutedIDs() []string {
	ids := []string{}

	for _, o := range s.Outcomes {
		if o.Status != Skipped {
			ids = append(ids, o.Case.ID)
		}
	}

	return ids
}

func (s *Summary) String() string {
	parts := make([]string, 0, len(Statuses))
	for _, status := range Statuses {
		parts = append(parts, fmt.Sprintf("%d %s", s.Count(status), status))
	}

	return fmt.Sprintf("%s in %s", strings.Join(parts, ", "), s.Elapsed.Round(time.Millisecond))
}

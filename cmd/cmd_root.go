// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/jcodagnone/geotester/config"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "geotester",
	Short: "verifies geocoding backends against declared expectations",
	Long: `
geotester runs collections of geocoding test cases (CSV or YAML files) against
a geocoding backend speaking the generic, Nominatim or Photon dialect, and
reports every case whose results do not satisfy its expectations.
`,
	SilenceUsage: true,
}

var Version = "dev"

// sessionFlags are the flags shared by every command talking to a backend.
type sessionFlags struct {
	configFile    string
	apiURL        string
	dialect       string
	looseCompare  bool
	duplicates    int
	timeout       time.Duration
	rate          float64
	traceHTTP     bool
	traceHTTPBody bool
}

var session = &sessionFlags{}

// loadConfig assembles the configuration: defaults, .env, config file,
// environment and finally the flags given on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	cfg.UserAgent = fmt.Sprintf("geotester/%s (+https://github.com/jcodagnone/geotester)", Version)

	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	if session.configFile != "" {
		if err := cfg.LoadFile(session.configFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.FromEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = session.apiURL
	}

	if flags.Changed("dialect") {
		cfg.Dialect = session.dialect
	}

	if flags.Changed("loose-compare") {
		cfg.LooseCompare = session.looseCompare
	}

	if flags.Changed("duplicates") {
		cfg.DuplicateDepth = session.duplicates
	}

	if flags.Changed("timeout") {
		cfg.Timeout = session.timeout
	}

	if flags.Changed("rate") {
		cfg.RequestsPerSecond = session.rate
	}

	cfg.TraceHTTP = cfg.TraceHTTP || session.traceHTTP
	cfg.TraceHTTPBody = cfg.TraceHTTPBody || session.traceHTTPBody

	applyRunFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Execute(version string) {
	Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&session.configFile, "config", "", "YAML configuration file")
	flags.StringVar(&session.apiURL, "api-url", config.DefaultAPIURL, "The URL to use for running tests against")
	flags.StringVar(&session.dialect, "dialect", "generic", "Backend dialect: generic, nominatim or photon")
	flags.BoolVar(&session.looseCompare, "loose-compare", false, "Loose compare the results strings")
	flags.IntVar(&session.duplicates, "duplicates", 0, "Check the top N results for duplicates. 0 disables the check")
	flags.DurationVar(&session.timeout, "timeout", 30*time.Second, "Timeout of every backend request")
	flags.Float64Var(&session.rate, "rate", 0, "Maximum backend requests per second. 0 means unlimited")
	flags.BoolVar(&session.traceHTTP, "trace-http", false, "Display HTTP requests-responses")
	flags.BoolVar(&session.traceHTTPBody, "trace-http-body", false, "Display HTTP requests-responses bodies")
}

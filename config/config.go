// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

// Package config holds the process-wide settings of a verification session.
// A Config is assembled once at start-up (defaults, optional YAML file,
// environment, command line) and treated as read-only afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "GEOTESTER_"

// DefaultAPIURL is the backend used when nothing else is configured.
const DefaultAPIURL = "http://localhost:5001/api/"

// Config is the session configuration.
type Config struct {
	// APIURL is the backend base URL; dialects append their own paths.
	APIURL string `yaml:"api_url" validate:"required,url"`

	// Dialect selects the backend query/response dialect.
	Dialect string `yaml:"dialect" validate:"oneof=generic nominatim photon"`

	// LooseCompare compares normalized strings instead of exact ones.
	LooseCompare bool `yaml:"loose_compare"`

	// DuplicateDepth is how many top results are checked for duplicates. 0 disables.
	DuplicateDepth int `yaml:"duplicate_depth" validate:"gte=0"`

	// MaxRun caps the number of verifications in one session. 0 means no limit.
	MaxRun int `yaml:"max_run" validate:"gte=0"`

	// GeoJSON appends a geojson document to failure reports.
	GeoJSON bool `yaml:"geojson"`

	// Parallel is the number of cases verified concurrently.
	Parallel int `yaml:"parallel" validate:"gte=1,lte=64"`

	// RequestsPerSecond throttles backend requests. 0 disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`

	// Timeout bounds every backend request.
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`

	// UserAgent identifies the tool to the backend operator.
	UserAgent string `yaml:"user_agent" validate:"required"`

	// RunID tags every request of the session for log correlation.
	RunID string `yaml:"-" validate:"required"`

	// Enables light tracing of HTTP requests and responses
	TraceHTTP bool `yaml:"trace_http"`

	// Enables full HTTP body tracing
	TraceHTTPBody bool `yaml:"trace_http_body"`
}

// Default returns a configuration with every default applied and a fresh run id.
func Default() *Config {
	return &Config{
		APIURL:    DefaultAPIURL,
		Dialect:   "generic",
		Parallel:  1,
		Timeout:   30 * time.Second,
		UserAgent: "geotester/dev",
		RunID:     uuid.NewString(),
	}
}

// LoadFile overlays the YAML document at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}

	return nil
}

// FromEnv overlays GEOTESTER_* variables onto c. lookup is usually os.LookupEnv.
func (c *Config) FromEnv(lookup func(string) (string, bool)) error {
	var errs []error

	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)

		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("API_URL"); ok {
		c.APIURL = v
	}

	if v, ok := get("DIALECT"); ok {
		c.Dialect = strings.ToLower(v)
	}

	if v, ok := get("USER_AGENT"); ok {
		c.UserAgent = v
	}

	if v, ok := get("LOOSE_COMPARE"); ok {
		b, err := strconv.ParseBool(v)
		if err == nil {
			c.LooseCompare = b
		}

		errs = append(errs, wrapEnv("LOOSE_COMPARE", err))
	}

	for name, dst := range map[string]*int{
		"DUPLICATE_DEPTH": &c.DuplicateDepth,
		"MAX_RUN":         &c.MaxRun,
		"PARALLEL":        &c.Parallel,
	} {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err == nil {
				*dst = n
			}

			errs = append(errs, wrapEnv(name, err))
		}
	}

	if v, ok := get("RATE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			c.RequestsPerSecond = f
		}

		errs = append(errs, wrapEnv("RATE", err))
	}

	if v, ok := get("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			c.Timeout = d
		}

		errs = append(errs, wrapEnv("TIMEOUT", err))
	}

	return errors.Join(errs...)
}

func wrapEnv(name string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}

			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}

		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

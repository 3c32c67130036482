// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides http.RoundTripper decorators used by the
// geocoder client.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxTraceLines, maxTraceChars = 256, 512

// prefix and truncate dump lines.
func abbreviate(dump []byte, prefix rune) string {
	lines := strings.Split(string(dump), "\n")
	truncated := len(lines) > maxTraceLines

	if truncated {
		lines = lines[:maxTraceLines]
	}

	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if len(line) > maxTraceChars {
			line = line[:maxTraceChars] + "…"
		}

		lines[i] = fmt.Sprintf("%c %s", prefix, line)
	}

	if truncated {
		lines = append(lines, fmt.Sprintf("%c …", prefix))
	}

	return strings.Join(lines, "\n") + "\n"
}

// LoggingRoundTripper writes a trace of every request and response to Writer.
// A nil Writer disables tracing.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool

	mu sync.Mutex
}

func (t *LoggingRoundTripper) write(s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := io.WriteString(t.Writer, s)

	return err
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Transport.RoundTrip(req)
	}

	dump, err := httputil.DumpRequestOut(req, t.DumpBody)
	if err != nil {
		return nil, fmt.Errorf("tracing HTTP request: %w", err)
	}

	if err := t.write(abbreviate(dump, '>')); err != nil {
		return nil, fmt.Errorf("tracing HTTP request: %w", err)
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	dump, err = httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return nil, fmt.Errorf("tracing HTTP response: %w", err)
	}

	trace := fmt.Sprintf("< RESPONSE: [%v]\n", time.Since(start)) + abbreviate(dump, '<')
	if err := t.write(trace); err != nil {
		return nil, fmt.Errorf("tracing HTTP response: %w", err)
	}

	return resp, nil
}

// AppendRequestHeadersRoundTripper adds headers to the request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	return t.Transport.RoundTrip(req)
}

// RateLimitRoundTripper delays requests so the backend never sees more than
// the limiter allows. A nil Limiter lets every request through.
type RateLimitRoundTripper struct {
	Transport http.RoundTripper
	Limiter   *rate.Limiter
}

// NewRateLimitRoundTripper limits transport to perSecond requests per second.
// Zero or negative values disable the limit.
func NewRateLimitRoundTripper(transport http.RoundTripper, perSecond float64) *RateLimitRoundTripper {
	rt := &RateLimitRoundTripper{Transport: transport}
	if perSecond > 0 {
		rt.Limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}

	return rt
}

// RoundTrip implements the http.RoundTripper interface.
func (t *RateLimitRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	return t.Transport.RoundTrip(req)
}

// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// recordingRoundTripper answers every request with a canned body and keeps the last request.
type recordingRoundTripper struct {
	body        string
	lastRequest *http.Request
	calls       int
}

func (d *recordingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	d.lastRequest = req
	d.calls++

	return &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(d.body)),
		Request:    req,
	}, nil
}

func TestLoggingRoundTripper(t *testing.T) {
	var logBuffer bytes.Buffer

	lt := &LoggingRoundTripper{
		Transport: &recordingRoundTripper{body: `{"features":[]}`},
		Writer:    &logBuffer,
		DumpBody:  true,
	}

	req, err := http.NewRequest(http.MethodGet, "http://example.com/search?q=berlin", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	resp, err := lt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}

	if string(body) != `{"features":[]}` {
		t.Errorf("body was consumed by the trace, got %q", body)
	}

	logContent := logBuffer.String()
	if !strings.Contains(logContent, "> GET /search?q=berlin") {
		t.Errorf("log does not contain request info. Got: %s", logContent)
	}

	if !strings.Contains(logContent, "< RESPONSE: [") {
		t.Errorf("log does not contain response header with timing info. Got: %s", logContent)
	}

	if !strings.Contains(logContent, `< {"features":[]}`) {
		t.Errorf("log does not contain response body. Got: %s", logContent)
	}
}

func TestLoggingRoundTripperDisabled(t *testing.T) {
	rec := &recordingRoundTripper{}
	lt := &LoggingRoundTripper{Transport: rec}

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	if _, err := lt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	if rec.calls != 1 {
		t.Errorf("expected one call, got %d", rec.calls)
	}
}

func TestAbbreviate(t *testing.T) {
	long := strings.Repeat("x", maxTraceChars+10)

	got := abbreviate([]byte("a\r\n"+long), '>')
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}

	if lines[0] != "> a" {
		t.Errorf("unexpected first line %q", lines[0])
	}

	if !strings.HasSuffix(lines[1], "…") || len(lines[1]) > maxTraceChars+len("> …") {
		t.Errorf("long line was not truncated: %d chars", len(lines[1]))
	}
}

func TestAppendRequestHeadersRoundTripper(t *testing.T) {
	dummy := &recordingRoundTripper{}

	atr := &AppendRequestHeadersRoundTripper{
		Transport: dummy,
		Headers: map[string]string{
			"User-Agent":      "geotester/test",
			"X-Geotester-Run": "run-1",
		},
	}

	req, err := http.NewRequest(http.MethodGet, "http://example.org", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if _, err = atr.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	if dummy.lastRequest == nil {
		t.Fatalf("dummy transport did not receive any request")
	}

	if got := dummy.lastRequest.Header.Get("X-Geotester-Run"); got != "run-1" {
		t.Errorf("expected header X-Geotester-Run to have value 'run-1', but got '%s'", got)
	}

	if got := dummy.lastRequest.Header.Get("User-Agent"); got != "geotester/test" {
		t.Errorf("expected User-Agent 'geotester/test', but got '%s'", got)
	}

	if req.Header.Get("X-Geotester-Run") != "" {
		t.Errorf("the caller's request must not be modified")
	}
}

func TestRateLimitRoundTripper(t *testing.T) {
	rec := &recordingRoundTripper{}
	rt := NewRateLimitRoundTripper(rec, 20)

	start := time.Now()

	for range 3 {
		req, _ := http.NewRequest(http.MethodGet, "http://example.org", nil)
		if _, err := rt.RoundTrip(req); err != nil {
			t.Fatalf("RoundTrip returned error: %v", err)
		}
	}

	// burst of one: the second and third request wait 50ms each.
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("requests were not throttled, took %v", elapsed)
	}

	if rec.calls != 3 {
		t.Errorf("expected 3 calls, got %d", rec.calls)
	}
}

func TestRateLimitRoundTripperCanceled(t *testing.T) {
	rt := &RateLimitRoundTripper{
		Transport: &recordingRoundTripper{},
		Limiter:   rate.NewLimiter(rate.Every(time.Hour), 1),
	}

	ctx, cancel := context.WithCancel(context.Background())

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.org", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("first request should use the burst: %v", err)
	}

	cancel()

	if _, err := rt.RoundTrip(req); err == nil {
		t.Errorf("expected an error for a canceled context")
	}
}

func TestRateLimitRoundTripperDisabled(t *testing.T) {
	rt := NewRateLimitRoundTripper(&recordingRoundTripper{}, 0)
	if rt.Limiter != nil {
		t.Errorf("expected no limiter for a zero rate")
	}
}

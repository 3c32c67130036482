// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoder translates backend independent queries into the request
// dialect of a geocoding service and normalizes its answers into features.
package geocoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jcodagnone/geotester/config"
	"github.com/jcodagnone/geotester/utils/httputils"
)

// RunHeader carries the session run id on every request.
const RunHeader = "X-Geotester-Run"

// maximum accepted response size.
const maxBodySize = 32 << 20

// Geocoder is the API access contract shared by every dialect.
type Geocoder interface {
	Search(ctx context.Context, q Query) (*Result, error)
	Reverse(ctx context.Context, q Query) (*Result, error)
}

// Client executes queries against one backend in one dialect.
type Client struct {
	baseURL string
	dialect Dialect
	client  *http.Client
}

var _ Geocoder = (*Client)(nil)

// NewClient builds a client from the session configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	dialect, err := ParseDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	var httpLogWriter io.Writer
	if cfg.TraceHTTP || cfg.TraceHTTPBody {
		httpLogWriter = os.Stderr
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  cfg.TraceHTTPBody,
		Transport: transport,
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": cfg.UserAgent,
			"Accept":     "application/json",
			RunHeader:    cfg.RunID,
		},
		Transport: loggingTransport,
	}

	return &Client{
		baseURL: cfg.APIURL,
		dialect: dialect,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: httputils.NewRateLimitRoundTripper(headerTransport, cfg.RequestsPerSecond),
		},
	}, nil
}

// Dialect returns the dialect the client speaks.
func (c *Client) Dialect() Dialect {
	return c.dialect
}

// Search runs a free text search.
func (c *Client) Search(ctx context.Context, q Query) (*Result, error) {
	params, err := c.dialect.searchParams(q)
	if err != nil {
		return nil, err
	}

	return c.do(ctx, q, Request{Endpoint: c.dialect.searchEndpoint(c.baseURL), Params: params})
}

// Reverse runs a reverse lookup around q.Center.
func (c *Client) Reverse(ctx context.Context, q Query) (*Result, error) {
	params, err := c.dialect.reverseParams(q)
	if err != nil {
		return nil, err
	}

	endpoint, err := c.dialect.reverseEndpoint(c.baseURL)
	if err != nil {
		return nil, err
	}

	return c.do(ctx, q, Request{Endpoint: endpoint, Params: params})
}

// Resolve picks Search or Reverse depending on what the query carries.
func Resolve(ctx context.Context, g Geocoder, q Query) (*Result, error) {
	if q.Text == "" && q.Center != nil {
		return g.Reverse(ctx, q)
	}

	return g.Search(ctx, q)
}

func (c *Client) do(ctx context.Context, q Query, r Request) (res *Result, err error) {
	reqURL := r.URL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Type: ErrorTypeNetwork, URL: reqURL, Err: err}
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing resp.Body: %w", cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ClassifyHTTPStatus(resp.StatusCode, reqURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Type: ErrorTypeNetwork, URL: reqURL, StatusCode: resp.StatusCode, Err: err}
	}

	features, err := c.dialect.decodeFeatures(body)
	if err != nil {
		return nil, &TransportError{Type: ErrorTypeDecode, URL: reqURL, StatusCode: resp.StatusCode, Err: err}
	}

	return &Result{Query: q, Request: r, Features: features}, nil
}

// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geotester/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records the requests a gin router receives.
type fakeBackend struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (b *fakeBackend) record(ctx *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, ctx.Request.Clone(context.Background()))
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.requests)
}

func (b *fakeBackend) last() *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.requests[len(b.requests)-1]
}

func setupBackend(t *testing.T) (*httptest.Server, *fakeBackend) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := &fakeBackend{}
	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		backend.record(ctx)
		ctx.Next()
	})

	router.GET("/search", func(ctx *gin.Context) {
		ctx.Data(http.StatusOK, "application/json", []byte(geocodeJSONBody))
	})
	router.GET("/reverse", func(ctx *gin.Context) {
		if ctx.Query("lat") == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing lat"})

			return
		}

		ctx.Data(http.StatusOK, "application/json", []byte(photonBody))
	})
	router.GET("/api", func(ctx *gin.Context) {
		ctx.Data(http.StatusOK, "application/json", []byte(photonBody))
	})
	router.GET("/broken/api", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "<html>maintenance</html>")
	})
	router.GET("/busy/api", func(ctx *gin.Context) {
		ctx.Status(http.StatusTooManyRequests)
	})
	router.GET("/down/api", func(ctx *gin.Context) {
		ctx.Status(http.StatusServiceUnavailable)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, backend
}

func newTestClient(t *testing.T, url, dialect string) *Client {
	t.Helper()

	cfg := config.Default()
	cfg.APIURL = url
	cfg.Dialect = dialect
	cfg.UserAgent = "geotester/test"
	cfg.RunID = "run-42"
	cfg.Timeout = 5 * time.Second
	require.NoError(t, cfg.Validate())

	c, err := NewClient(cfg)
	require.NoError(t, err)

	return c
}

func TestClientNominatimSearch(t *testing.T) {
	server, backend := setupBackend(t)
	c := newTestClient(t, server.URL, "nominatim")

	res, err := c.Search(context.Background(), Query{Text: "paris", Limit: 1, Language: "fr"})
	require.NoError(t, err)
	require.Len(t, res.Features, 1)
	assert.Equal(t, "Paris", res.Features[0].Value("name"))
	assert.Equal(t, server.URL+"/search", res.Request.Endpoint)
	assert.Equal(t, "geocodejson", res.Request.Params.Get("format"))
	assert.Equal(t, "paris", res.Query.Text)

	req := backend.last()
	assert.Equal(t, "/search", req.URL.Path)
	assert.Equal(t, "paris", req.URL.Query().Get("q"))
	assert.Equal(t, "1", req.URL.Query().Get("addressdetails"))
	assert.Equal(t, "fr", req.URL.Query().Get("accept-language"))
	assert.Equal(t, "geotester/test", req.Header.Get("User-Agent"))
	assert.Equal(t, "run-42", req.Header.Get(RunHeader))
}

func TestClientNominatimSearchWithCenterDoesNotCallBackend(t *testing.T) {
	server, backend := setupBackend(t)
	c := newTestClient(t, server.URL, "nominatim")

	_, err := c.Search(context.Background(), Query{Text: "paris", Center: paris})
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, 0, backend.count())
}

func TestClientPhotonReverse(t *testing.T) {
	server, backend := setupBackend(t)
	c := newTestClient(t, server.URL, "photon")

	res, err := Resolve(context.Background(), c, Query{Center: paris, Detail: DetailStreet})
	require.NoError(t, err)
	require.Len(t, res.Features, 2)

	req := backend.last()
	assert.Equal(t, "/reverse", req.URL.Path)
	assert.Equal(t, "highway", req.URL.Query().Get("osm_tag"))
}

func TestClientGenericReverseDoesNotCallBackend(t *testing.T) {
	server, backend := setupBackend(t)
	c := newTestClient(t, server.URL+"/api", "generic")

	_, err := Resolve(context.Background(), c, Query{Center: paris})
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, 0, backend.count())

	res, err := Resolve(context.Background(), c, Query{Text: "berlin", Center: paris})
	require.NoError(t, err)
	assert.Len(t, res.Features, 2)
	assert.Equal(t, "48.8566", backend.last().URL.Query().Get("lat"))
}

func TestClientTransportErrors(t *testing.T) {
	server, _ := setupBackend(t)

	tests := []struct {
		name      string
		url       string
		errType   ErrorType
		status    int
		rateLimit bool
	}{
		{"rate limited", server.URL + "/busy", ErrorTypeRateLimit, http.StatusTooManyRequests, true},
		{"unavailable", server.URL + "/down", ErrorTypeUnavailable, http.StatusServiceUnavailable, false},
		{"not found", server.URL + "/missing", ErrorTypeNotFound, http.StatusNotFound, false},
		{"not json", server.URL + "/broken", ErrorTypeDecode, http.StatusOK, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, tc.url, "photon")

			_, err := c.Search(context.Background(), Query{Text: "berlin"})
			require.Error(t, err)
			assert.True(t, IsTransportError(err))
			assert.False(t, IsTransportError(nil))
			assert.Equal(t, tc.rateLimit, IsRateLimitError(err))

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tc.errType, te.Type)
			assert.Equal(t, tc.status, te.StatusCode)
			assert.Contains(t, te.URL, "q=berlin")
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := newTestClient(t, url, "photon")

	_, err := c.Search(context.Background(), Query{Text: "berlin"})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrorTypeNetwork, te.Type)
	assert.Zero(t, te.StatusCode)
}

func TestClientRepeatsIdenticalQueries(t *testing.T) {
	server, backend := setupBackend(t)
	c := newTestClient(t, server.URL, "photon")

	for range 3 {
		_, err := c.Search(context.Background(), Query{Text: "berlin"})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, backend.count(), "results must never be cached")
}

func TestNewClientRejectsUnknownDialect(t *testing.T) {
	cfg := config.Default()
	cfg.Dialect = "pelias"

	_, err := NewClient(cfg)
	assert.Error(t, err)
}

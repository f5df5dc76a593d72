package entropy_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/petasbytes/entropy-agent/internal/entropy"
)

// sampleServer answers every request with {"data":[sample],"success":true}
// and counts hits.
func sampleServer(t *testing.T, sample int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	return jsonServer(t, http.StatusOK, fmt.Sprintf(`{"type":"uint8","length":1,"data":[%d],"success":true}`, sample))
}

func jsonServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// unreachableClient fails every request at the transport.
func unreachableClient() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})}
}

// blockingClient never answers; requests end when their context does.
func blockingClient() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()
		return nil, r.Context().Err()
	})}
}

func testConfig(endpoint string) entropy.Config {
	cfg := entropy.DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.Timeout = 200 * time.Millisecond
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func newResolver(t *testing.T, cfg entropy.Config, opts ...entropy.Option) (*entropy.Resolver, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	r, err := entropy.New(cfg, append([]entropy.Option{entropy.WithLogger(zap.New(core))}, opts...)...)
	require.NoError(t, err)
	return r, logs
}

package clients

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/middleware"
	"github.com/gzizouseif24/tarot-reader/internal/platform/config"
)

func defaultConfig() *Config {
	return &Config{
		ServiceName: "dashscope",
		Timeout:     5 * time.Second,
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	}
}

// roundTripFunc lets tests stand in for the network.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newPost(t *testing.T, ctx context.Context, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/chat/completions", strings.NewReader(`{}`))
	require.NoError(t, err)
	return req
}

// closeBody is a test helper that closes the response body and fails the test on error.
func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if err := resp.Body.Close(); err != nil {
		t.Errorf("failed to close response body: %v", err)
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")
}

func TestNew_RequiresServiceName(t *testing.T) {
	cfg := defaultConfig()
	cfg.ServiceName = ""

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service name is required")
}

func TestNew_DefaultTimeout(t *testing.T) {
	cfg := defaultConfig()
	cfg.Timeout = 0

	client, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, client.http.Timeout)
}

func TestNew_TransportSettings(t *testing.T) {
	cfg := defaultConfig()
	cfg.Transport = config.TransportConfig{
		MaxIdleConns:        7,
		MaxIdleConnsPerHost: 3,
		IdleConnTimeout:     time.Minute,
	}

	client, err := New(cfg)
	require.NoError(t, err)

	transport, ok := client.http.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7, transport.MaxIdleConns)
	assert.Equal(t, 3, transport.MaxIdleConnsPerHost)
	assert.Equal(t, time.Minute, transport.IdleConnTimeout)
}

func TestClient_HeaderPropagation(t *testing.T) {
	var receivedRequestID, receivedCorrelationID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedRequestID = r.Header.Get(middleware.HeaderRequestID)
		receivedCorrelationID = r.Header.Get(middleware.HeaderCorrelationID)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := New(defaultConfig())
	require.NoError(t, err)

	ctx := middleware.ContextWithRequestID(context.Background(), "test-request-123")
	ctx = middleware.ContextWithCorrelationID(ctx, "test-correlation-456")

	resp, err := client.Do(ctx, newPost(t, ctx, server.URL))
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "test-request-123", receivedRequestID)
	assert.Equal(t, "test-correlation-456", receivedCorrelationID)
}

func TestClient_SingleAttemptOnServerError(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":{"message":"upstream down"}}`)
	}))
	defer server.Close()

	client, err := New(defaultConfig())
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), newPost(t, context.Background(), server.URL))
	require.NoError(t, err, "error statuses are returned for the caller to decode")
	defer closeBody(t, resp)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "upstream down")
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_TransportError(t *testing.T) {
	var calls int32
	cfg := defaultConfig()
	cfg.RoundTripper = roundTripFunc(func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection reset by peer")
	})

	client, err := New(cfg)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), newPost(t, context.Background(), "http://upstream.invalid"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Contains(t, err.Error(), "dashscope request")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.Timeout = 50 * time.Millisecond

	client, err := New(cfg)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), newPost(t, context.Background(), server.URL))
	require.Error(t, err)
}

func TestClient_ContextCancellation(t *testing.T) {
	cfg := defaultConfig()
	cfg.RoundTripper = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()
		return nil, r.Context().Err()
	})

	client, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Do(ctx, newPost(t, ctx, "http://upstream.invalid"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_ClientErrorsDoNotTripCircuit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.Circuit.MaxFailures = 1

	client, err := New(cfg)
	require.NoError(t, err)

	for range 3 {
		resp, err := client.Do(context.Background(), newPost(t, context.Background(), server.URL))
		require.NoError(t, err)
		closeBody(t, resp)
	}

	assert.Equal(t, StateClosed, client.CircuitState())
}

func TestClient_CircuitBreakerShortCircuitsWhenOpen(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.Circuit.MaxFailures = 2

	client, err := New(cfg)
	require.NoError(t, err)

	for range 2 {
		resp, err := client.Do(context.Background(), newPost(t, context.Background(), server.URL))
		require.NoError(t, err)
		closeBody(t, resp)
	}
	assert.Equal(t, StateOpen, client.CircuitState())

	callsBefore := atomic.LoadInt32(&calls)

	_, err = client.Do(context.Background(), newPost(t, context.Background(), server.URL))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, callsBefore, atomic.LoadInt32(&calls), "request should be short-circuited when circuit is open")
}

func TestClient_TooManyRequestsCountsAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.Circuit.MaxFailures = 1

	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), newPost(t, context.Background(), server.URL))
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, StateOpen, client.CircuitState())
}

func TestRequestDoer_UsesRequestContext(t *testing.T) {
	var receivedRequestID string

	cfg := defaultConfig()
	cfg.RoundTripper = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		receivedRequestID = r.Header.Get(middleware.HeaderRequestID)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("{}")),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	})

	client, err := New(cfg)
	require.NoError(t, err)

	ctx := middleware.ContextWithRequestID(context.Background(), "req-from-doer")
	resp, err := client.Doer().Do(newPost(t, ctx, "http://upstream.invalid"))
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "req-from-doer", receivedRequestID)
}

func TestClient_CircuitError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.Circuit.MaxFailures = 1
	cfg.Circuit.Timeout = time.Minute

	client, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, client.CircuitError())

	resp, err := client.Do(context.Background(), newPost(t, context.Background(), server.URL))
	require.NoError(t, err)
	closeBody(t, resp)

	err = client.CircuitError()
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "retry in 1m0s")
}

func TestClient_StandardClient(t *testing.T) {
	var gotRequestID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(middleware.HeaderRequestID)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := New(defaultConfig())
	require.NoError(t, err)

	ctx := middleware.ContextWithRequestID(context.Background(), "req-std")
	req := newPost(t, ctx, server.URL)

	resp, err := client.StandardClient().Do(req)
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "req-std", gotRequestID)
	assert.Empty(t, req.Header.Get(middleware.HeaderRequestID), "caller's request is not mutated")
}

//go:build integration

package integration

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/clients"
	"github.com/gzizouseif24/tarot-reader/internal/adapters/clients/acl"
	transport "github.com/gzizouseif24/tarot-reader/internal/adapters/http"
	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/handlers"
	"github.com/gzizouseif24/tarot-reader/internal/app"
	"github.com/gzizouseif24/tarot-reader/internal/platform/config"
	"github.com/gzizouseif24/tarot-reader/internal/ports"
)

// fakeModel is an OpenAI-compatible chat-completion endpoint whose
// behaviour can be changed between requests.
type fakeModel struct {
	server *httptest.Server

	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32

	mu      sync.Mutex
	reply   string
	status  int
	delay   time.Duration
	prompts []string
	headers []http.Header
}

func newFakeModel() *fakeModel {
	m := &fakeModel{reply: "Test reading.", status: http.StatusOK}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))

	return m
}

func (m *fakeModel) serve(w http.ResponseWriter, r *http.Request) {
	m.calls.Add(1)

	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)

	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}

	var body struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}

	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &body)

	m.mu.Lock()
	if len(body.Messages) > 0 {
		m.prompts = append(m.prompts, body.Messages[0].Content)
	}
	m.headers = append(m.headers, r.Header.Clone())
	reply, status, delay := m.reply, m.status, m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if status != http.StatusOK {
		_, _ = io.WriteString(w, `{"error":{"message":"upstream unavailable","type":"server_error"}}`)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-integration",
		"object": "chat.completion",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": reply},
		}},
	})
}

func (m *fakeModel) set(reply string, status int, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reply, m.status, m.delay = reply, status, delay
}

func (m *fakeModel) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.prompts) == 0 {
		return ""
	}

	return m.prompts[len(m.prompts)-1]
}

func (m *fakeModel) lastHeaders() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.headers) == 0 {
		return nil
	}

	return m.headers[len(m.headers)-1]
}

func (m *fakeModel) Close() {
	m.server.Close()
}

// stackOptions tunes the in-process service.
type stackOptions struct {
	apiKey         string
	maxConcurrent  int
	maxFailures    int
	clientTimeout  time.Duration
	requestTimeout time.Duration
}

func defaultStackOptions() stackOptions {
	return stackOptions{
		apiKey:         "sk-integration",
		maxConcurrent:  config.DefaultLLMMaxConcurrent,
		maxFailures:    config.DefaultClientCircuitMaxFailures,
		clientTimeout:  5 * time.Second,
		requestTimeout: 10 * time.Second,
	}
}

// newStack wires the production components against baseURL and returns the
// HTTP handler.
func newStack(baseURL string, opts stackOptions) (http.Handler, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	httpClient, err := clients.New(&clients.Config{
		ServiceName: acl.ServiceName,
		Timeout:     opts.clientTimeout,
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   opts.maxFailures,
			Timeout:       time.Minute,
			HalfOpenLimit: 1,
		},
		Transport: config.TransportConfig{
			MaxIdleConns:        config.DefaultTransportMaxIdleConns,
			MaxIdleConnsPerHost: config.DefaultTransportMaxIdleConnsPerHost,
			IdleConnTimeout:     90 * time.Second,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	completion, err := acl.NewCompletionClient(acl.CompletionClientConfig{
		Client: httpClient,
		LLM: config.LLMConfig{
			BaseURL:       baseURL,
			Model:         config.DefaultLLMModel,
			Temperature:   config.DefaultLLMTemperature,
			TopP:          config.DefaultLLMTopP,
			MaxTokens:     config.DefaultLLMMaxTokens,
			MaxConcurrent: opts.maxConcurrent,
			APIKey:        opts.apiKey,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	registry := ports.NewHealthRegistry()
	if err := registry.Register(completion); err != nil {
		return nil, err
	}

	service := app.NewReadingService(app.ReadingServiceConfig{
		Generator: completion,
		Pool:      app.NewWorkerPool(opts.maxConcurrent),
		Logger:    logger,
	})

	srv := transport.New(&config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		RequestTimeout:  opts.requestTimeout,
		MaxRequestSize:  config.DefaultMaxRequestSize,
	}, logger)

	transport.SetupRouter(srv.Engine(), transport.RouterConfig{
		AppConfig:      &config.AppConfig{Name: "tarot-reader", Version: "1.0.0", Environment: "test"},
		CORSConfig:     &config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}, AllowCredentials: true},
		HealthHandler:  handlers.NewHealthHandler(registry, completion, handlers.NewBuildInfo("1.0.0", "integration", "now")),
		ReadingHandler: handlers.NewReadingHandler(service),
		ZodiacHandler:  handlers.NewZodiacHandler(),
		Timeout:        opts.requestTimeout,
		MaxRequestSize: config.DefaultMaxRequestSize,
	})

	return srv.Engine(), nil
}

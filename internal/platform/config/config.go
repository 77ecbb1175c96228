// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Model providers.
const (
	ProviderDashScope = "dashscope"
	ProviderAnthropic = "anthropic"
)

// CredentialEnvVar is the conventional variable holding the DashScope key.
const CredentialEnvVar = "DASHSCOPE_API_KEY"

// AnthropicCredentialEnvVar holds the key when llm.provider is anthropic.
const AnthropicCredentialEnvVar = "ANTHROPIC_API_KEY"

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8000

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20

	// DefaultClientCircuitMaxFailures is the default failures before circuit opens.
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the default successes to close circuit.
	DefaultClientCircuitHalfOpenLimit = 1

	// DefaultTransportMaxIdleConns is the default max idle connections.
	DefaultTransportMaxIdleConns = 100

	// DefaultTransportMaxIdleConnsPerHost is the default max idle connections per host.
	DefaultTransportMaxIdleConnsPerHost = 10

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28

	// DefaultLLMBaseURL is DashScope's OpenAI-compatible endpoint.
	DefaultLLMBaseURL = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"

	// DefaultLLMModel is the chat model used for readings.
	DefaultLLMModel = "qwen3-max"

	// DefaultLLMTemperature is the sampling temperature.
	DefaultLLMTemperature = 0.7

	// DefaultLLMTopP is the nucleus sampling cutoff.
	DefaultLLMTopP = 0.8

	// DefaultLLMMaxTokens caps the completion length.
	DefaultLLMMaxTokens = 500

	// DefaultLLMMaxConcurrent bounds in-flight completion calls.
	DefaultLLMMaxConcurrent = 8

	// DefaultAnthropicBaseURL replaces DefaultLLMBaseURL for the anthropic provider.
	DefaultAnthropicBaseURL = "https://api.anthropic.com"

	// DefaultAnthropicModel replaces DefaultLLMModel for the anthropic provider.
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	CORS      CORSConfig      `koanf:"cors"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	LLM       LLMConfig       `koanf:"llm"       validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
	Insecure     bool    `koanf:"insecure"`
}

// CORSConfig restricts which browser origins may call the API.
type CORSConfig struct {
	AllowedOrigins   []string      `koanf:"allowed_origins"   validate:"required,min=1,dive,required"`
	AllowCredentials bool          `koanf:"allow_credentials"`
	MaxAge           time.Duration `koanf:"max_age"`
}

// ClientConfig contains HTTP client settings for the completion endpoint.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// LLMConfig describes the chat-completion model. None of these vary per request.
type LLMConfig struct {
	Provider      string  `koanf:"provider"       validate:"required,oneof=dashscope anthropic"`
	BaseURL       string  `koanf:"base_url"       validate:"required,url"`
	Model         string  `koanf:"model"          validate:"required"`
	Temperature   float32 `koanf:"temperature"    validate:"min=0,max=2"`
	TopP          float32 `koanf:"top_p"          validate:"min=0,max=1"`
	MaxTokens     int     `koanf:"max_tokens"     validate:"required,min=1"`
	MaxConcurrent int     `koanf:"max_concurrent" validate:"required,min=1,max=1024"`

	// APIKey may be empty at startup; readings then fail with a
	// configuration error and /health reports it.
	APIKey string `koanf:"api_key"`
}

// HasAPIKey reports whether a provider credential is configured.
func (c LLMConfig) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// CredentialVar names the environment variable operators set for the
// configured provider.
func (c LLMConfig) CredentialVar() string {
	if c.Provider == ProviderAnthropic {
		return AnthropicCredentialEnvVar
	}

	return CredentialEnvVar
}

// applyProviderDefaults swaps the DashScope defaults for the anthropic ones
// when the provider is anthropic and the setting was left at its default.
func applyProviderDefaults(c *LLMConfig) {
	if c.Provider != ProviderAnthropic {
		return
	}

	if c.BaseURL == DefaultLLMBaseURL {
		c.BaseURL = DefaultAnthropicBaseURL
	}

	if c.Model == DefaultLLMModel {
		c.Model = DefaultAnthropicModel
	}
}

// loadCredential copies the provider's conventional key variable into
// llm.api_key unless APP_LLM_API_KEY was given explicitly.
func loadCredential(k *koanf.Koanf) error {
	if os.Getenv("APP_LLM_API_KEY") != "" {
		return nil
	}

	name := LLMConfig{Provider: k.String("llm.provider")}.CredentialVar()

	key := os.Getenv(name)
	if key == "" {
		return nil
	}

	if err := k.Load(confmap.Provider(map[string]any{"llm.api_key": key}, "."), nil); err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}

	return nil
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "tarot-reader",
		"app.version":     "1.0.0",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "90s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "75s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "tarot-reader",
		"telemetry.sampling_rate": 1.0,
		"telemetry.insecure":      true,

		"cors.allowed_origins":   []string{"http://localhost:5173"},
		"cors.allow_credentials": true,
		"cors.max_age":           "12h",

		"client.timeout":                           "60s",
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"llm.provider":       ProviderDashScope,
		"llm.base_url":       DefaultLLMBaseURL,
		"llm.model":          DefaultLLMModel,
		"llm.temperature":    DefaultLLMTemperature,
		"llm.top_p":          DefaultLLMTopP,
		"llm.max_tokens":     DefaultLLMMaxTokens,
		"llm.max_concurrent": DefaultLLMMaxConcurrent,
		"llm.api_key":        "",
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. APP_LLM_API_KEY, then DASHSCOPE_API_KEY or ANTHROPIC_API_KEY
//     depending on llm.provider, for llm.api_key only
//  2. Environment variables (APP_ prefix)
//  3. Profile config file (configs/{profile}.yaml)
//  4. Base config file (configs/base.yaml)
//  5. Default values
//
// A .env file in the working directory is read into the process
// environment first; variables already set are not overwritten.
func Load(profile string) (*Config, error) {
	_, cfg, err := load(profile)
	return cfg, err
}

// Dump loads profile like Load and renders the effective settings as YAML.
// A configured credential is replaced by a marker.
func Dump(profile string) ([]byte, error) {
	k, cfg, err := load(profile)
	if err != nil {
		return nil, err
	}

	apiKey := ""
	if cfg.LLM.HasAPIKey() {
		apiKey = redactedMarker
	}

	for key, val := range map[string]any{
		"llm.base_url": cfg.LLM.BaseURL,
		"llm.model":    cfg.LLM.Model,
		"llm.api_key":  apiKey,
	} {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("setting %s: %w", key, err)
		}
	}

	out, err := k.Marshal(yaml.Parser())
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}

	return out, nil
}

const redactedMarker = "[REDACTED]"

func load(profile string) (*koanf.Koanf, *Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, nil, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")

	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("loading defaults: %w", err)
	}

	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	err = k.Load(env.Provider("APP_", ".", envKeyMapper(k.Keys())), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("loading env vars: %w", err)
	}

	err = loadCredential(k)
	if err != nil {
		return nil, nil, err
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	applyProviderDefaults(&cfg.LLM)

	return k, &cfg, nil
}

// envKeyMapper maps APP_LLM_API_KEY to llm.api_key. Underscores are
// ambiguous between nesting and key names, so known keys are matched
// first; anything else falls back to one level per underscore.
func envKeyMapper(known []string) func(string) string {
	flat := make(map[string]string, len(known))
	for _, key := range known {
		flat[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, "APP_"))
		if key, ok := flat[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}

// loadDotEnv populates the environment from path when it exists.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

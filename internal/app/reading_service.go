// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gzizouseif24/tarot-reader/internal/domain"
	"github.com/gzizouseif24/tarot-reader/internal/platform/metrics"
	"github.com/gzizouseif24/tarot-reader/internal/platform/telemetry"
	"github.com/gzizouseif24/tarot-reader/internal/ports"
)

// ReadingService turns a validated spread into a generated reading.
// It holds no per-request state.
type ReadingService struct {
	generator ports.ReadingGenerator
	pool      *WorkerPool
	executor  *Executor
	logger    *slog.Logger
}

// ReadingServiceConfig contains configuration for the reading service.
type ReadingServiceConfig struct {
	Generator ports.ReadingGenerator
	Pool      *WorkerPool
	Logger    *slog.Logger
}

// NewReadingService creates a reading service. It panics without a generator.
func NewReadingService(cfg ReadingServiceConfig) *ReadingService {
	if cfg.Generator == nil {
		panic("app: reading service requires a generator")
	}

	if cfg.Pool == nil {
		cfg.Pool = NewWorkerPool(DefaultPoolSize)
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &ReadingService{
		generator: cfg.Generator,
		pool:      cfg.Pool,
		executor:  NewExecutor(cfg.Logger),
		logger:    cfg.Logger,
	}
}

// CreateReading validates req, composes the prompt, generates through the
// worker pool and returns the trimmed reading.
func (s *ReadingService) CreateReading(ctx context.Context, req domain.ReadingRequest) (*domain.Reading, error) {
	start := time.Now()

	ctx, span := telemetry.Tracer().Start(ctx, "reading.create", trace.WithAttributes(
		attribute.Int("tarot.spread_size", len(req.Cards)),
		attribute.Bool("tarot.zodiac_included", strings.TrimSpace(req.ZodiacSign) != ""),
	))
	defer span.End()

	op := Operation[domain.ReadingRequest, string, string, *domain.Reading]{
		Name: "create_reading",
		Validate: func(_ context.Context, in domain.ReadingRequest) error {
			return in.Validate()
		},
		Perform: func(ctx context.Context, in domain.ReadingRequest) (string, error) {
			prompt, err := domain.ComposePrompt(in.Question, in.Cards, in.ZodiacSign)
			if err != nil {
				return "", err
			}

			return Submit(ctx, s.pool, func(ctx context.Context) (string, error) {
				return s.generator.Generate(ctx, prompt)
			})
		},
		Verify: func(_ context.Context, _ domain.ReadingRequest, text string) (string, error) {
			text = strings.TrimSpace(text)
			if text == "" {
				return "", domain.NewGenerationError("upstream returned an empty reading", nil)
			}

			return text, nil
		},
		Respond: func(_ context.Context, _ domain.ReadingRequest, text string) (*domain.Reading, error) {
			return &domain.Reading{Text: text}, nil
		},
	}

	reading, err := Execute(ctx, s.executor, op, req)
	outcome := s.record(req, err, time.Since(start))

	if err != nil {
		if step, ok := GetExecutionStep(err); ok {
			span.SetAttributes(attribute.String("tarot.failed_step", string(step)))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}

	return reading, nil
}

func (s *ReadingService) record(req domain.ReadingRequest, err error, elapsed time.Duration) string {
	outcome := outcomeFor(err)

	metrics.ReadingsTotal.WithLabelValues(outcome, spreadLabel(len(req.Cards))).Inc()
	metrics.ReadingDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	if err == nil {
		_, known := domain.LookupZodiac(req.ZodiacSign)
		metrics.ZodiacContextTotal.WithLabelValues(strconv.FormatBool(known)).Inc()
	}

	return outcome
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case domain.IsValidation(err):
		return metrics.OutcomeValidation
	case domain.IsConfiguration(err):
		return metrics.OutcomeConfiguration
	case domain.IsGeneration(err):
		return metrics.OutcomeGeneration
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeInternal
	}
}

// spreadLabel keeps the spread_size label bounded.
func spreadLabel(n int) string {
	if n < 1 || n > domain.MaxCards {
		return "invalid"
	}

	return strconv.Itoa(n)
}

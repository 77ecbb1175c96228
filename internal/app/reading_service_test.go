package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/gzizouseif24/tarot-reader/internal/domain"
	"github.com/gzizouseif24/tarot-reader/internal/mocks"
	"github.com/gzizouseif24/tarot-reader/internal/platform/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loversRequest() domain.ReadingRequest {
	return domain.ReadingRequest{
		Question: "Will I find love?",
		Cards: []domain.CardDescriptor{{
			Name:        "The Lovers",
			Orientation: domain.Upright,
			Keywords:    []string{"love", "harmony"},
			Meaning:     "Union",
		}},
	}
}

func newTestService(t *testing.T, gen *mocks.MockReadingGenerator) *ReadingService {
	t.Helper()

	return NewReadingService(ReadingServiceConfig{
		Generator: gen,
		Pool:      NewWorkerPool(2),
		Logger:    discardLogger(),
	})
}

func TestNewReadingService_PanicsWithoutGenerator(t *testing.T) {
	assert.Panics(t, func() {
		NewReadingService(ReadingServiceConfig{Logger: discardLogger()})
	})
}

func TestNewReadingService_Defaults(t *testing.T) {
	svc := NewReadingService(ReadingServiceConfig{Generator: mocks.NewMockReadingGenerator(t)})

	require.NotNil(t, svc)
	assert.Equal(t, DefaultPoolSize, svc.pool.Size())
	assert.NotNil(t, svc.logger)
}

func TestReadingService_CreateReading(t *testing.T) {
	gen := mocks.NewMockReadingGenerator(t)
	gen.EXPECT().
		Generate(mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, "**The Lovers** (upright)") &&
				strings.Contains(prompt, "\"Will I find love?\"")
		})).
		Return("  Test reading.\n", nil).
		Once()

	before := testutil.ToFloat64(metrics.ReadingsTotal.WithLabelValues(metrics.OutcomeSuccess, "1"))

	reading, err := newTestService(t, gen).CreateReading(context.Background(), loversRequest())

	require.NoError(t, err)
	assert.Equal(t, &domain.Reading{Text: "Test reading."}, reading)
	assert.InDelta(t, before+1, testutil.ToFloat64(metrics.ReadingsTotal.WithLabelValues(metrics.OutcomeSuccess, "1")), 0)
}

func TestReadingService_CreateReading_ZodiacContext(t *testing.T) {
	tests := []struct {
		name     string
		sign     string
		included string
		inPrompt bool
	}{
		{name: "known sign", sign: "Leo", included: "true", inPrompt: true},
		{name: "unknown sign", sign: "Ophiuchus", included: "false", inPrompt: false},
		{name: "no sign", sign: "", included: "false", inPrompt: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := mocks.NewMockReadingGenerator(t)
			gen.EXPECT().
				Generate(mock.Anything, mock.MatchedBy(func(prompt string) bool {
					return strings.Contains(prompt, "QUERENT'S ZODIAC SIGN") == tt.inPrompt
				})).
				Return("A reading.", nil)

			counter := metrics.ZodiacContextTotal.WithLabelValues(tt.included)
			before := testutil.ToFloat64(counter)

			req := loversRequest()
			req.ZodiacSign = tt.sign

			_, err := newTestService(t, gen).CreateReading(context.Background(), req)

			require.NoError(t, err)
			assert.InDelta(t, before+1, testutil.ToFloat64(counter), 0)
		})
	}
}

func TestReadingService_CreateReading_InvalidRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ReadingRequest)
		field  string
	}{
		{name: "blank question", mutate: func(r *domain.ReadingRequest) { r.Question = "  " }, field: "question"},
		{name: "no cards", mutate: func(r *domain.ReadingRequest) { r.Cards = nil }, field: "cards"},
		{name: "four cards", mutate: func(r *domain.ReadingRequest) {
			r.Cards = append(r.Cards, r.Cards[0], r.Cards[0], r.Cards[0])
		}, field: "cards"},
		{name: "bad orientation", mutate: func(r *domain.ReadingRequest) { r.Cards[0].Orientation = "sideways" }, field: "cards"},
		{name: "blank card name", mutate: func(r *domain.ReadingRequest) { r.Cards[0].Name = "" }, field: "cards"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := mocks.NewMockReadingGenerator(t)

			req := loversRequest()
			tt.mutate(&req)

			reading, err := newTestService(t, gen).CreateReading(context.Background(), req)

			require.Error(t, err)
			assert.Nil(t, reading)
			assert.True(t, domain.IsValidation(err))

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)

			step, ok := GetExecutionStep(err)
			require.True(t, ok)
			assert.Equal(t, StepValidate, step)

			gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestReadingService_CreateReading_GeneratorErrors(t *testing.T) {
	tests := []struct {
		name     string
		result   string
		err      error
		errCheck func(error) bool
		step     ExecutionStep
	}{
		{
			name:     "missing credential",
			err:      domain.NewConfigurationError("DASHSCOPE_API_KEY", ""),
			errCheck: domain.IsConfiguration,
			step:     StepPerform,
		},
		{
			name:     "upstream failure",
			err:      domain.NewGenerationError("upstream returned status 500", nil),
			errCheck: domain.IsGeneration,
			step:     StepPerform,
		},
		{
			name:     "blank reading",
			result:   " \n\t ",
			errCheck: domain.IsGeneration,
			step:     StepVerify,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := mocks.NewMockReadingGenerator(t)
			gen.EXPECT().Generate(mock.Anything, mock.Anything).Return(tt.result, tt.err).Once()

			reading, err := newTestService(t, gen).CreateReading(context.Background(), loversRequest())

			require.Error(t, err)
			assert.Nil(t, reading)
			assert.True(t, tt.errCheck(err), "unexpected error type: %v", err)

			step, ok := GetExecutionStep(err)
			require.True(t, ok)
			assert.Equal(t, tt.step, step)
		})
	}
}

func TestReadingService_CreateReading_CallerGoesAway(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})

	gen := mocks.NewMockReadingGenerator(t)
	gen.EXPECT().
		Generate(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ string) (string, error) {
			defer close(finished)
			<-release
			return "late reading", ctx.Err()
		}).
		Once()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	reading, err := newTestService(t, gen).CreateReading(ctx, loversRequest())

	require.Error(t, err)
	assert.Nil(t, reading)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, metrics.OutcomeCanceled, outcomeFor(err))

	close(release)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("abandoned generation did not finish")
	}
}

func TestOutcomeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", want: metrics.OutcomeSuccess},
		{name: "validation", err: domain.NewValidationError("question", "is required"), want: metrics.OutcomeValidation},
		{name: "configuration", err: domain.NewConfigurationError("DASHSCOPE_API_KEY", ""), want: metrics.OutcomeConfiguration},
		{name: "generation", err: domain.NewGenerationError("boom", context.DeadlineExceeded), want: metrics.OutcomeGeneration},
		{name: "canceled", err: &ExecutionError{Step: StepPerform, Message: "operation failed", Cause: context.Canceled}, want: metrics.OutcomeCanceled},
		{name: "other", err: errors.New("boom"), want: metrics.OutcomeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outcomeFor(tt.err))
		})
	}
}

func TestSpreadLabel(t *testing.T) {
	assert.Equal(t, "invalid", spreadLabel(0))
	assert.Equal(t, "1", spreadLabel(1))
	assert.Equal(t, "3", spreadLabel(3))
	assert.Equal(t, "invalid", spreadLabel(4))
}

func TestReadingService_CreateReading_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	gen := mocks.NewMockReadingGenerator(t)
	gen.EXPECT().Generate(mock.Anything, mock.Anything).
		Return("", domain.NewGenerationError("upstream unavailable", errors.New("503"))).
		Once()

	req := loversRequest()
	req.ZodiacSign = "Leo"

	_, err := newTestService(t, gen).CreateReading(context.Background(), req)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "reading.create", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, metrics.OutcomeGeneration, span.Status().Description)
	assert.Contains(t, span.Attributes(), attribute.Int("tarot.spread_size", 1))
	assert.Contains(t, span.Attributes(), attribute.Bool("tarot.zodiac_included", true))
	assert.Contains(t, span.Attributes(), attribute.String("tarot.failed_step", string(StepPerform)))
}

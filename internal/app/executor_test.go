package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzizouseif24/tarot-reader/internal/platform/logging"
	"github.com/gzizouseif24/tarot-reader/internal/platform/metrics"
)

func TestExecute_RunsStepsInOrder(t *testing.T) {
	var steps []ExecutionStep

	op := Operation[int, int, int, string]{
		Name: "double",
		Validate: func(_ context.Context, in int) error {
			steps = append(steps, StepValidate)
			return nil
		},
		Perform: func(_ context.Context, in int) (int, error) {
			steps = append(steps, StepPerform)
			return in * 2, nil
		},
		Verify: func(_ context.Context, _ int, performed int) (int, error) {
			steps = append(steps, StepVerify)
			return performed + 1, nil
		},
		Respond: func(_ context.Context, _ int, verified int) (string, error) {
			steps = append(steps, StepRespond)
			if verified == 7 {
				return "seven", nil
			}
			return "other", nil
		},
	}

	got, err := Execute(context.Background(), NewExecutor(discardLogger()), op, 3)

	require.NoError(t, err)
	assert.Equal(t, "seven", got)
	assert.Equal(t, []ExecutionStep{StepValidate, StepPerform, StepVerify, StepRespond}, steps)
}

func TestExecute_StopsAtFailingStep(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		op   Operation[int, int, int, int]
		step ExecutionStep
	}{
		{
			name: "validate",
			op: Operation[int, int, int, int]{
				Validate: func(context.Context, int) error { return cause },
				Perform: func(context.Context, int) (int, error) {
					panic("perform must not run")
				},
			},
			step: StepValidate,
		},
		{
			name: "perform",
			op: Operation[int, int, int, int]{
				Perform: func(context.Context, int) (int, error) { return 0, cause },
				Verify: func(context.Context, int, int) (int, error) {
					panic("verify must not run")
				},
			},
			step: StepPerform,
		},
		{
			name: "verify",
			op: Operation[int, int, int, int]{
				Verify: func(context.Context, int, int) (int, error) { return 0, cause },
				Respond: func(context.Context, int, int) (int, error) {
					panic("respond must not run")
				},
			},
			step: StepVerify,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.op.Name = tt.name

			_, err := Execute(context.Background(), NewExecutor(discardLogger()), tt.op, 1)

			require.Error(t, err)
			assert.ErrorIs(t, err, cause)
			step, ok := GetExecutionStep(err)
			require.True(t, ok)
			assert.Equal(t, tt.step, step)
		})
	}
}

func TestExecute_RespondErrorIsNotWrapped(t *testing.T) {
	cause := errors.New("format")

	op := Operation[int, int, int, int]{
		Respond: func(context.Context, int, int) (int, error) { return 0, cause },
	}

	_, err := Execute(context.Background(), NewExecutor(nil), op, 1)

	require.ErrorIs(t, err, cause)
	_, ok := GetExecutionStep(err)
	assert.False(t, ok)
}

func TestExecutionError_Error(t *testing.T) {
	withCause := &ExecutionError{Step: StepPerform, Message: "operation failed", Cause: errors.New("boom")}
	assert.Equal(t, "perform failed: operation failed: boom", withCause.Error())

	bare := &ExecutionError{Step: StepVerify, Message: "verification failed"}
	assert.Equal(t, "verify failed: verification failed", bare.Error())

	_, ok := GetExecutionStep(errors.New("plain"))
	assert.False(t, ok)
}

func TestExecute_StepsLogWithOperationName(t *testing.T) {
	var buf bytes.Buffer
	exec := NewExecutor(slog.New(slog.NewJSONHandler(&buf, nil)))

	op := Operation[int, int, int, int]{
		Name: "draw",
		Perform: func(ctx context.Context, in int) (int, error) {
			logging.FromContext(ctx).Info("shuffling")
			return in, nil
		},
	}

	_, err := Execute(context.Background(), exec, op, 1)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"shuffling","operation":"draw"`)
	assert.Contains(t, buf.String(), `"msg":"operation completed"`)
}

func TestExecute_ContextLoggerWins(t *testing.T) {
	var own, ctxBuf bytes.Buffer
	exec := NewExecutor(slog.New(slog.NewJSONHandler(&own, nil)))
	ctx := logging.WithContext(context.Background(), slog.New(slog.NewJSONHandler(&ctxBuf, nil)))

	_, err := Execute(ctx, exec, Operation[int, int, int, int]{Name: "draw"}, 1)
	require.NoError(t, err)

	assert.Empty(t, own.String())
	assert.Contains(t, ctxBuf.String(), "operation completed")
}

func TestExecute_CountsStepFailures(t *testing.T) {
	counter := metrics.StepFailuresTotal.WithLabelValues("count_failures", string(StepVerify))
	before := testutil.ToFloat64(counter)

	op := Operation[int, int, int, int]{
		Name:   "count_failures",
		Verify: func(context.Context, int, int) (int, error) { return 0, errors.New("unusable") },
	}

	_, err := Execute(context.Background(), NewExecutor(discardLogger()), op, 1)
	require.Error(t, err)

	assert.InDelta(t, before+1, testutil.ToFloat64(counter), 0)
}

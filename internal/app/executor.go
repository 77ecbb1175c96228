package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gzizouseif24/tarot-reader/internal/platform/logging"
	"github.com/gzizouseif24/tarot-reader/internal/platform/metrics"
)

// An Operation runs as Validate, Perform, Verify, Respond. Validate rejects
// bad input before any upstream call; Perform composes the prompt and calls
// the model; Verify checks the result is usable; Respond shapes it.
//
// A failure in the first three steps is wrapped in an ExecutionError naming
// the step. The domain error underneath stays reachable with errors.As.

// ExecutionStep names a step of an Operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records which step failed.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Operation holds one function per step. A nil step is skipped and yields
// the zero value.
type Operation[I, P, V, O any] struct {
	// Name labels logs and the step failure metric.
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// Executor runs operations. Its logger is used only for contexts that do
// not carry one.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor returns an executor; a nil logger means the process default.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger}
}

func (x *Executor) contextWithLogger(ctx context.Context, name string) context.Context {
	if x != nil && x.logger != nil && !logging.HasLogger(ctx) {
		ctx = logging.WithContext(ctx, x.logger)
	}

	return logging.With(ctx, slog.String("operation", name))
}

// Execute runs op over input. Every step sees a context whose logger
// carries the operation name.
func Execute[I, P, V, O any](ctx context.Context, x *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var zero O

	ctx = x.contextWithLogger(ctx, op.Name)
	logger := logging.FromContext(ctx)
	start := time.Now()

	fail := func(step ExecutionStep, msg string, err error) error {
		metrics.StepFailuresTotal.WithLabelValues(op.Name, string(step)).Inc()

		level := slog.LevelError
		if step == StepValidate {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, msg, slog.String("step", string(step)), slog.Any("error", err))

		if step == StepRespond {
			return err
		}

		return &ExecutionError{Step: step, Message: msg, Cause: err}
	}

	if op.Validate != nil {
		if err := op.Validate(ctx, input); err != nil {
			return zero, fail(StepValidate, "input validation failed", err)
		}
	}

	var performed P
	if op.Perform != nil {
		var err error
		if performed, err = op.Perform(ctx, input); err != nil {
			return zero, fail(StepPerform, "operation failed", err)
		}
	}

	var verified V
	if op.Verify != nil {
		var err error
		if verified, err = op.Verify(ctx, input, performed); err != nil {
			return zero, fail(StepVerify, "verification failed", err)
		}
	}

	result := zero
	if op.Respond != nil {
		var err error
		if result, err = op.Respond(ctx, input, verified); err != nil {
			return zero, fail(StepRespond, "respond failed", err)
		}
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// GetExecutionStep returns the failed step, if err is an ExecutionError.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}

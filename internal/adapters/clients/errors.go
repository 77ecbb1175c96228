// Package clients provides the instrumented HTTP client used for upstream calls.
package clients

import "errors"

// Client errors are infrastructure failures. Callers translate them into
// domain errors.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open and the
	// request was not sent.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

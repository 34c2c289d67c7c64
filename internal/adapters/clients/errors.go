// Package clients provides the instrumented HTTP client used by the
// downstream adapters in clients/acl.
package clients

import "errors"

// Client errors are infrastructure failures. Adapters translate them into
// domain errors before they leave the adapter layer.
var (
	// ErrCircuitOpen is returned without contacting the downstream while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRequestFailed wraps the transport error of the final attempt.
	ErrRequestFailed = errors.New("request failed")
)

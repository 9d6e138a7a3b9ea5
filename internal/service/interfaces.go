// Package service defines the small set of types shared by application services.
package service

import (
	"time"
)

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	// Operation names the call in retry log lines, e.g. "write tab Monthly".
	Operation    string
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// Named returns a copy of o labelled with operation.
func (o RetryOptions) Named(operation string) RetryOptions {
	o.Operation = operation
	return o
}

package eoscalc

import (
	"errors"
	"fmt"
)

// ErrInvalidParameters is wrapped by errors about parameter sets that cannot be
// encoded for the requested model.
var ErrInvalidParameters = errors.New("invalid parameter set")

// InitializationError means no token handshake was possible, nothing else can
// succeed after it.
type InitializationError struct {
	Reason string
	Err    error
}

func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("initialize session: %s: %s", e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("initialize session: %s", e.Reason)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// ExchangeError is a single failed postback, the transport failed or the
// server refused the request.
type ExchangeError struct {
	// Stage is the exchange that failed, "switch" or "compute".
	Stage string
	Err   error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s exchange: %s", e.Stage, e.Err.Error())
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure classes the engine distinguishes.
// Configuration and resource errors are returned to the caller; state
// errors are programming errors and go through ReportStateError instead.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrResource      = errors.New("resource error")
	ErrQuitRequested = errors.New("quit requested")
)

// StateError marks misuse of the engine's ordering contracts: unbalanced
// canvas push/pop, draw calls outside a frame, use of a destroyed handle.
type StateError struct {
	Op     string
	Detail string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error in %s: %s", e.Op, e.Detail)
}

func NewStateError(op, format string, args ...interface{}) *StateError {
	return &StateError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// strictState controls how state errors are handled. When true (debug
// configuration) they are fatal; otherwise they are logged and ignored
// on a best-effort basis.
var strictState bool

func SetStrictState(strict bool) {
	strictState = strict
}

// ReportStateError logs the error. In a debug configuration it stops the
// process; releases keep going so a single bad call site does not take
// the whole game down.
func ReportStateError(err *StateError) {
	if strictState {
		LogFatal(err.Error())
		return
	}
	LogWarn(err.Error())
}

func ConfigErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func ResourceErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrResource, fmt.Sprintf(format, args...))
}

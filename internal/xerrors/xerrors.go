// Package xerrors defines the typed error taxonomy used across the backtest
// engine: ConfigError, InvariantError, DataError, TriggerError and
// SweepTaskError. Each carries a Kind, a human-readable Message, and an
// optional bar timestamp for errors tied to a specific point in a run.
package xerrors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies the taxonomy an error belongs to.
type Kind string

const (
	KindConfig    Kind = "config"
	KindInvariant Kind = "invariant"
	KindData      Kind = "data"
	KindTrigger   Kind = "trigger"
	KindSweepTask Kind = "sweep_task"
)

// Error is the common shape for every taxonomy member.
type Error struct {
	Kind    Kind
	Message string
	At      *time.Time
	Err     error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.At != nil {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.At.Format(time.RFC3339))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, msg string, at *time.Time, cause error) *Error {
	return &Error{Kind: kind, Message: msg, At: at, Err: cause}
}

// ConfigError reports invalid numeric ranges, unknown enum values, or
// contradictory flags discovered at construction time. Fatal.
func ConfigError(msg string) *Error { return newErr(KindConfig, msg, nil, nil) }

// InvariantError reports a broken runtime invariant (position exists when
// entering, no position when exiting, cash < 0 post-fill, a pending order on
// a past timestamp). Fatal for the current run.
func InvariantError(msg string, at time.Time) *Error {
	t := at
	return newErr(KindInvariant, msg, &t, nil)
}

// DataError reports non-monotonic timestamps, missing OHLC fields, negative
// prices/volumes, or NaN. Fatal for the current run.
func DataError(msg string, at time.Time) *Error {
	t := at
	return newErr(KindData, msg, &t, nil)
}

// TriggerError wraps a panic/error raised by a kill-switch trigger's check.
// Callers must treat it as non-tripping and continue the run.
func TriggerError(triggerName string, cause error) *Error {
	return newErr(KindTrigger, fmt.Sprintf("trigger %q: %v", triggerName, cause), nil, cause)
}

// SweepTaskError wraps a failure for a single parameter-sweep point. It never
// aborts the sweep.
func SweepTaskError(cause error) *Error {
	return newErr(KindSweepTask, cause.Error(), nil, cause)
}

// IsKind reports whether err (or any error it wraps) is a taxonomy error of
// the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

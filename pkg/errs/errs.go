// Package errs classifies the failures of the motif pipeline.
//
// Every failure surfaced by the pipeline belongs to one of four kinds.
// Per-graph kinds (InvalidConfiguration, OracleFailure) are isolated by the
// aggregator; CacheCorruption is downgraded to a cache miss; DatasetMissing
// always propagates to the caller.
package errs

import (
	"errors"
	"fmt"
)

// Kind is the classification of a pipeline error
type Kind int

const (
	// KindInvalidConfiguration means a degree/motif size combination is out of range
	KindInvalidConfiguration Kind = iota + 1
	// KindOracleFailure means the census tool failed, timed out or produced garbage
	KindOracleFailure
	// KindCacheCorruption means a persisted entry could not be decoded
	KindCacheCorruption
	// KindDatasetMissing means the requested group is not in the dataset
	KindDatasetMissing
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindInvalidConfiguration:
		return "invalid_configuration"
	case KindOracleFailure:
		return "oracle_failure"
	case KindCacheCorruption:
		return "cache_corruption"
	case KindDatasetMissing:
		return "dataset_missing"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against any *Error of the same kind
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrOracleFailure        = errors.New("oracle failure")
	ErrCacheCorruption      = errors.New("cache corruption")
	ErrDatasetMissing       = errors.New("dataset missing")
)

// Error wraps a cause with its kind, the failing operation and, for
// per-graph failures, the graph index within its group (-1 otherwise).
type Error struct {
	Kind  Kind
	Op    string
	Index int
	Err   error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s (graph %d)", msg, e.Index)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindInvalidConfiguration:
		return ErrInvalidConfiguration
	case KindOracleFailure:
		return ErrOracleFailure
	case KindCacheCorruption:
		return ErrCacheCorruption
	case KindDatasetMissing:
		return ErrDatasetMissing
	}
	return nil
}

// InvalidConfiguration creates a configuration error
func InvalidConfiguration(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidConfiguration, Op: op, Index: -1, Err: fmt.Errorf(format, args...)}
}

// OracleFailure wraps cause as an oracle failure
func OracleFailure(op string, cause error) *Error {
	return &Error{Kind: KindOracleFailure, Op: op, Index: -1, Err: cause}
}

// CacheCorruption wraps cause as a cache corruption
func CacheCorruption(op string, cause error) *Error {
	return &Error{Kind: KindCacheCorruption, Op: op, Index: -1, Err: cause}
}

// DatasetMissing reports that label is not present in the dataset
func DatasetMissing(op, label string) *Error {
	return &Error{Kind: KindDatasetMissing, Op: op, Index: -1, Err: fmt.Errorf("group not found: %s", label)}
}

// AtIndex returns a copy of err annotated with a graph index. Errors that
// are not *Error are classified as oracle failures.
func AtIndex(err error, index int) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		cp.Index = index
		return &cp
	}
	return &Error{Kind: KindOracleFailure, Index: index, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not classified
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

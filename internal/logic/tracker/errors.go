package tracker

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrTransientFetch matches fetch failures that waiting can resolve:
	// not yet visible, not yet mined, flaky transport.
	ErrTransientFetch = errors.New("transaction data not available yet")
	// ErrFatalFetch matches fetch failures that must not be retried.
	ErrFatalFetch = errors.New("transaction fetch failed")
	// ErrInvalidInput matches every InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCancelled is returned when the caller's context ends a wait.
	ErrCancelled = errors.New("wait cancelled")
	// ErrRetriesExhausted is returned when the retry policy gives up.
	ErrRetriesExhausted = errors.New("retry budget exhausted")
	// ErrNotMined is returned by operations that need a mined record.
	ErrNotMined = errors.New("transaction not mined")
)

// FetchError wraps a failed lookup with its classification.
type FetchError struct {
	Hash      common.Hash
	Op        string
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	kind := "fatal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Hash.Hex(), kind, e.Err)
}

func (e *FetchError) Is(target error) bool {
	if e.Transient {
		return target == ErrTransientFetch
	}
	return target == ErrFatalFetch
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// InvalidInputError rejects malformed caller input before any network call.
type InvalidInputError struct {
	Field string
	Value string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

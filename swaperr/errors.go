// Package swaperr defines the error taxonomy shared by every component of
// the swap core. Errors are classified by kind rather than by identity so
// a caller can decide whether to retry, abort, or surface the failure to
// an operator without needing to know which package raised it.
package swaperr

import (
	"errors"
	"fmt"
)

// Code classifies an Error by how a caller should react to it.
type Code int

const (
	// InputError marks malformed arguments to a pure function: bad key
	// lengths, a zero or oversized timelock, an amount below dust, a
	// preimage that isn't 32 bytes. Reported synchronously; never retried.
	InputError Code = iota

	// CryptoError marks a signing-primitive or DER-encoding failure.
	// Expected to be exceedingly rare and fatal for the operation.
	CryptoError

	// ChainUnavailable marks any chain-client failure: the call timed
	// out, the node is unreachable, or it returned a transport error.
	// Transient; the failing call changes no swap status or transaction
	// reference, though a transaction signed before a failed broadcast
	// stays cached on the record for retry.
	ChainUnavailable

	// ProtocolViolation marks a broadcast rejected by the network because
	// the referenced UTXO is already spent, the script doesn't satisfy
	// the node's policy, or a timelock hasn't matured yet.
	ProtocolViolation

	// StateError marks an attempted transition from a swap state that
	// disallows it, e.g. completing a swap that was never funded.
	StateError
)

func (c Code) String() string {
	switch c {
	case InputError:
		return "input_error"
	case CryptoError:
		return "crypto_error"
	case ChainUnavailable:
		return "chain_unavailable"
	case ProtocolViolation:
		return "protocol_violation"
	case StateError:
		return "state_error"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by this module. It carries a
// Code a caller can switch on, a short message, and an optional wrapped
// cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an *Error around an existing error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// HasCode reports whether err wraps an *Error of the given code. Code
// values aren't errors themselves, so this is the supported way to
// branch on classification instead of errors.Is.
func HasCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// Package keyringerr defines the closed taxonomy of errors surfaced by the
// store, agent, actors and multisig engine. Every subsystem returns or wraps
// one of these codes rather than an ad-hoc error string, so that callers
// (the agent's JSON responses, the CLI's exit codes) can classify failures
// without parsing messages.
package keyringerr

import (
	"errors"
	"fmt"
)

// Code is a taxonomy symbol from spec §7.
type Code string

const (
	InvalidFormat          Code = "InvalidFormat"
	FileNotFound           Code = "FileNotFound"
	NotInitialized         Code = "NotInitialized"
	AlreadyInitialized     Code = "AlreadyInitialized"
	InvalidPassphrase      Code = "InvalidPassphrase"
	KeypairNotFound        Code = "KeypairNotFound"
	AddressNotFound        Code = "AddressNotFound"
	AlreadyExists          Code = "AlreadyExists"
	DeviceNotFound         Code = "DeviceNotFound"
	DeviceError            Code = "DeviceError"
	UserCancelled          Code = "UserCancelled"
	InvalidDerivationPath  Code = "InvalidDerivationPath"
	AgentLocked            Code = "AgentLocked"
	InvalidTransaction     Code = "InvalidTransaction"
	Rpc                    Code = "Rpc"
	BlockhashExpired       Code = "BlockhashExpired"
	InsufficientFunds      Code = "InsufficientFunds"
	RateLimited            Code = "RateLimited"
	Timeout                Code = "Timeout"
	MultisigNotFound       Code = "MultisigNotFound"
	InvalidAccountData     Code = "InvalidAccountData"
	ProposalFailed         Code = "ProposalFailed"
	ApprovalFailed         Code = "ApprovalFailed"
	ExecutionFailed        Code = "ExecutionFailed"
	InsufficientApprovals  Code = "InsufficientApprovals"
	Internal               Code = "Internal"
)

// Error wraps a taxonomy Code with a human-readable message and an optional
// underlying cause. It implements error and supports errors.Is/As against
// both *Error values (compared by Code) and the underlying cause.
type Error struct {
	Code    Code
	Message string
	Cause   error

	// Current/Required are populated only for InsufficientApprovals.
	Current  int
	Required int
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Code, so callers can
// do errors.Is(err, keyringerr.New(keyringerr.InvalidPassphrase, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New constructs an *Error with no cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap constructs an *Error with an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// InsufficientApprovalsErr builds the one taxonomy member that carries
// structured fields beyond a message.
func InsufficientApprovalsErr(current, required int) *Error {
	return &Error{
		Code:     InsufficientApprovals,
		Message:  fmt.Sprintf("%d of %d required approvals", current, required),
		Current:  current,
		Required: required,
	}
}

// CodeOf extracts the taxonomy Code from err, defaulting to Internal for
// errors that were never classified.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a referenced entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidPrivateKey is returned when a wallet key cannot be parsed
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidRPCURL is returned when an endpoint is not http(s) or ws(s)
	ErrInvalidRPCURL = errors.New("invalid rpc url")

	// ErrInvalidABI is returned when contract interface JSON cannot be parsed
	ErrInvalidABI = errors.New("invalid ABI: could not parse contract interface")

	// ErrInvalidAmount is returned when a value string cannot be converted to base units
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidUpdate is returned when an edit names a field that cannot be patched
	ErrInvalidUpdate = errors.New("invalid update")

	// ErrInvalidPayload is returned when a message body does not match its type
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrUnknownMessage is returned when no route exists for a message type
	ErrUnknownMessage = errors.New("unknown message type")

	// ErrChannelNotActive is returned when a message targets a channel that is not attached
	ErrChannelNotActive = errors.New("channel not active")
)

// EntityKind names the kind of entity an error refers to
type EntityKind string

const (
	KindWallet           EntityKind = "wallet"
	KindEnvironment      EntityKind = "environment"
	KindInteractContract EntityKind = "contract"
	KindDeployContract   EntityKind = "deploy contract"
	KindScript           EntityKind = "script"
)

// NotFoundError reports a missing referenced entity
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Wire codes carried in error payloads
const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodeCallFailed   = "CALL_FAILED"
	CodeUnknownType  = "UNKNOWN_TYPE"
)

// ErrorCode classifies err into a wire code
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnknownMessage):
		return CodeUnknownType
	case errors.Is(err, ErrInvalidAddress),
		errors.Is(err, ErrInvalidPrivateKey),
		errors.Is(err, ErrInvalidRPCURL),
		errors.Is(err, ErrInvalidABI),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidUpdate),
		errors.Is(err, ErrInvalidPayload):
		return CodeInvalidInput
	default:
		return CodeCallFailed
	}
}

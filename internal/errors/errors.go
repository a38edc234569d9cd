package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// CodexSDKError is the base interface for all SDK errors.
type CodexSDKError interface {
	error
	IsCodexSDKError() bool
}

// Compile-time verification that all error types implement CodexSDKError.
var (
	_ CodexSDKError = (*CodexNotFoundError)(nil)
	_ CodexSDKError = (*ConnectionError)(nil)
	_ CodexSDKError = (*ProcessError)(nil)
	_ CodexSDKError = (*DecodeError)(nil)
	_ CodexSDKError = (*LineTooLongError)(nil)
	_ CodexSDKError = (*RPCError)(nil)
	_ CodexSDKError = (*PhaseError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrClientNotStarted indicates the client has not been spawned yet.
	ErrClientNotStarted = errors.New("client not started")

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.New("client closed: clients are single-use, create a new one with NewClient()")

	// ErrConnClosed indicates the app-server connection has terminated.
	ErrConnClosed = errors.New("connection closed")

	// ErrTransportNotStarted indicates the transport process has not been spawned.
	ErrTransportNotStarted = errors.New("transport not started")

	// ErrRequestTimeout indicates a request timed out.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrStdinClosed indicates stdin was closed due to context cancellation.
	ErrStdinClosed = errors.New("stdin closed")

	// ErrUnknownRequest indicates a respond call targeted a server request id
	// that was never received.
	ErrUnknownRequest = errors.New("unknown server request id")

	// ErrAlreadyResponded indicates a server request was already answered.
	ErrAlreadyResponded = errors.New("server request already answered")

	// ErrUnknownMethod indicates a notification method the SDK has no typed
	// payload for. Callers should fall back to the raw params rather than
	// treating this as fatal.
	ErrUnknownMethod = errors.New("unknown method")
)

// CodexNotFoundError indicates the codex binary was not found.
type CodexNotFoundError struct {
	SearchedPaths []string
}

func (e *CodexNotFoundError) Error() string {
	return fmt.Sprintf("codex binary not found in: %v", e.SearchedPaths)
}

// IsCodexSDKError implements CodexSDKError.
func (e *CodexNotFoundError) IsCodexSDKError() bool { return true }

// ConnectionError indicates failure to spawn or connect to the app-server.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to app-server: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsCodexSDKError implements CodexSDKError.
func (e *ConnectionError) IsCodexSDKError() bool { return true }

// ProcessError indicates the app-server process failed.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("app-server process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("app-server process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsCodexSDKError implements CodexSDKError.
func (e *ProcessError) IsCodexSDKError() bool { return true }

// DecodeError indicates a line from the app-server could not be decoded into
// a protocol message. Raw preserves the offending line byte for byte; Value
// holds the parsed JSON when the line parsed but did not match any envelope
// shape. Non-fatal: the read loop continues with the next line.
type DecodeError struct {
	Raw   string
	Value any
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode message: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsCodexSDKError implements CodexSDKError.
func (e *DecodeError) IsCodexSDKError() bool { return true }

// LineTooLongError indicates a line exceeded the configured size limit.
// Truncated holds the first bytes of the discarded line for diagnostics.
// The line is consumed through its newline so the next line parses cleanly.
type LineTooLongError struct {
	Limit     int
	Truncated string
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("line exceeds %d byte limit", e.Limit)
}

// IsCodexSDKError implements CodexSDKError.
func (e *LineTooLongError) IsCodexSDKError() bool { return true }

// RPCError is an error response from the app-server.
type RPCError struct {
	Code    int64
	Message string
	Data    json.RawMessage
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("JSON-RPC error (%d): %s", e.Code, e.Message)
}

// IsCodexSDKError implements CodexSDKError.
func (e *RPCError) IsCodexSDKError() bool { return true }

// PhaseError indicates an operation was invoked outside its permitted
// session phase. Raised before any bytes are written to the app-server.
type PhaseError struct {
	Op    string
	Phase string
	Want  []string
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s not permitted in phase %s (want %s)", e.Op, e.Phase, strings.Join(e.Want, " or "))
}

// IsCodexSDKError implements CodexSDKError.
func (e *PhaseError) IsCodexSDKError() bool { return true }

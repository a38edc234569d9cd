package codexsdk

import "github.com/wagiedev/codex-agent-sdk-go/internal/errors"

// Re-export error types from internal package

// CodexSDKError is the base interface for all SDK errors.
type CodexSDKError = errors.CodexSDKError

// CodexNotFoundError indicates the codex binary was not found.
type CodexNotFoundError = errors.CodexNotFoundError

// ConnectionError indicates failure to spawn or connect to the app-server.
type ConnectionError = errors.ConnectionError

// ProcessError indicates the app-server process failed.
type ProcessError = errors.ProcessError

// DecodeError indicates a line from the app-server could not be decoded.
// Non-fatal: the connection keeps reading subsequent lines.
type DecodeError = errors.DecodeError

// LineTooLongError indicates a line exceeded the configured size limit.
type LineTooLongError = errors.LineTooLongError

// RPCError is an error response from the app-server.
type RPCError = errors.RPCError

// PhaseError indicates an operation was invoked outside its permitted
// session phase.
type PhaseError = errors.PhaseError

// Re-export sentinel errors from internal package.
var (
	// ErrClientNotStarted indicates the client has not been spawned yet.
	ErrClientNotStarted = errors.ErrClientNotStarted

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.ErrClientClosed

	// ErrConnClosed indicates the app-server connection has terminated.
	ErrConnClosed = errors.ErrConnClosed

	// ErrTransportNotStarted indicates the transport process has not been spawned.
	ErrTransportNotStarted = errors.ErrTransportNotStarted

	// ErrStdinClosed indicates a write was attempted after the app-server's
	// stdin was closed.
	ErrStdinClosed = errors.ErrStdinClosed

	// ErrRequestTimeout indicates a request timed out.
	ErrRequestTimeout = errors.ErrRequestTimeout

	// ErrUnknownRequest indicates a respond call targeted a server request
	// id that was never received.
	ErrUnknownRequest = errors.ErrUnknownRequest

	// ErrAlreadyResponded indicates a server request was already answered.
	ErrAlreadyResponded = errors.ErrAlreadyResponded
)

// Package config provides configuration types for the Codex SDK.
package config

import (
	"context"

	"github.com/wagiedev/codex-agent-sdk-go/internal/jsonrpc"
)

// Transport defines the interface for app-server communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., remote connections).
//
// The default implementation is AppServer which spawns a subprocess.
// Custom transports can be injected via Options.Transport.
type Transport interface {
	// Start initializes the transport and prepares it for communication.
	// This is called before any messages are sent or received.
	Start(ctx context.Context) error

	// ReadMessages returns channels for receiving messages and errors.
	// The message channel yields decoded wire messages from the server.
	// The error channel yields any errors that occur during reading;
	// framing and decode errors are delivered per line and do not stop
	// the stream. Both channels are closed when reading completes.
	ReadMessages(ctx context.Context) (<-chan jsonrpc.Message, <-chan error)

	// SendMessage sends an encoded message to the server.
	// The data should be a complete JSON message (newline is appended if missing).
	// This method must be safe for concurrent use.
	SendMessage(ctx context.Context, data []byte) error

	// Close terminates the transport and releases resources.
	// It's safe to call Close multiple times.
	Close() error

	// IsReady returns true if the transport is ready for communication.
	IsReady() bool

	// EndInput signals that no more input will be sent.
	// For process-based transports, this typically closes stdin.
	EndInput() error
}

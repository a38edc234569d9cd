package codexsdk

import (
	"context"
	"iter"
)

// Client provides an interactive, stateful interface for multi-turn
// conversations with a codex app-server.
//
// Unlike the one-shot Exec() function, Client maintains session state
// across multiple turns. It supports steering, interruption, approvals,
// and concurrent requests against a single long-lived app-server
// process.
//
// Lifecycle: Clients are single-use. After Close(), create a new client
// with NewClient().
//
// Example usage:
//
//	client := NewClient()
//	defer client.Close()
//
//	err := client.Start(ctx,
//	    WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	thread, err := client.ThreadStart(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = client.TurnStart(ctx, &TurnStartParams{
//	    ThreadID: thread.ThreadID,
//	    Input:    []UserInput{TextInput("What is 2+2?")},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Receive all messages for this turn (stops after turn/completed)
//	for msg, err := range client.ReceiveTurn(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    // Process message...
//	}
//
//	// Or receive messages indefinitely (for continuous streaming)
//	for msg, err := range client.Messages(ctx) {
//	    if err != nil {
//	        break
//	    }
//	    // Process message...
//	}
type Client interface {
	// Start spawns the app-server and performs the initialize handshake.
	// Must be called before any other methods.
	// Returns CodexNotFoundError if the binary is not found,
	// ConnectionError on spawn failure.
	Start(ctx context.Context, opts ...Option) error

	// Spawn starts the app-server without performing the handshake.
	// Use this to send custom InitializeParams via Initialize; most
	// callers want Start instead.
	Spawn(ctx context.Context, opts ...Option) error

	// Initialize performs the handshake after Spawn: the initialize
	// request followed by the initialized notification. A nil params
	// sends the defaults derived from the options.
	Initialize(ctx context.Context, params *InitializeParams) (*InitializeResponse, error)

	// ThreadStart opens a conversation thread. Starting a second thread
	// replaces the tracked one.
	ThreadStart(ctx context.Context, params *ThreadStartParams) (*ThreadStartResponse, error)

	// ThreadArchive archives a thread server-side. Archiving the tracked
	// thread returns the session to the Ready phase.
	ThreadArchive(ctx context.Context, threadID string) error

	// TurnStart submits user input on the tracked thread.
	// Returns after the server acknowledges the turn; items and deltas
	// stream on Messages()/ReceiveTurn() until a turn/completed or
	// turn/failed notification ends the turn.
	TurnStart(ctx context.Context, params *TurnStartParams) error

	// TurnSteer injects additional input into the running turn.
	TurnSteer(ctx context.Context, params *TurnSteerParams) error

	// TurnInterrupt asks the server to stop the running turn. The turn
	// stays active until the server confirms with a turn/completed
	// notification carrying the interrupted status.
	TurnInterrupt(ctx context.Context, threadID string) error

	// Call sends a request outside the typed surface and decodes the
	// response into result, which may be nil to discard it. Use this for
	// app-server methods this SDK has no wrapper for.
	Call(ctx context.Context, method string, params, result any) error

	// Notify sends a notification. Notifications carry no id and get no
	// response.
	Notify(ctx context.Context, method string, params any) error

	// Respond answers a server request received on the message stream.
	// Returns ErrUnknownRequest for an id never received and
	// ErrAlreadyResponded for an id already answered.
	Respond(ctx context.Context, id RequestID, result any) error

	// RespondError answers a server request with an error.
	RespondError(ctx context.Context, id RequestID, message string) error

	// NextMessage blocks until the next notification or server request
	// arrives. After the connection terminates it drains messages
	// received before the failure, then keeps returning the terminal
	// error.
	NextMessage(ctx context.Context) (*ServerMessage, error)

	// Messages returns an iterator that yields inbound messages in wire
	// order until the client is closed, the connection fails, or the
	// context is cancelled. A clean Close ends the iterator without an
	// error. Use iter.Pull2 if you need pull-based iteration instead of
	// range.
	Messages(ctx context.Context) iter.Seq2[*ServerMessage, error]

	// ReceiveTurn returns an iterator that yields messages until the
	// notification ending the current turn, which is yielded before the
	// iterator stops. Use iter.Pull2 if you need pull-based iteration
	// instead of range.
	ReceiveTurn(ctx context.Context) iter.Seq2[*ServerMessage, error]

	// UserAgent returns the server identity reported during the
	// handshake, or the empty string before initialization completes.
	UserAgent() string

	// Phase returns the session's current lifecycle phase.
	Phase() Phase

	// ThreadID returns the tracked thread id, or the empty string when
	// no thread is active.
	ThreadID() string

	// Close terminates the session and kills the app-server process.
	// Every outstanding request resolves with a connection-closed error.
	// After Close(), the client cannot be reused. Safe to call multiple
	// times.
	Close() error
}

// NewClient creates a new interactive client.
//
// Call Start() with options to begin a session:
//
//	client := NewClient()
//	err := client.Start(ctx,
//	    WithLogger(slog.Default()),
//	    WithApprovalHandler(handler),
//	)
func NewClient() Client {
	return newClientImpl()
}

package codexsdk

import (
	"context"
	"iter"

	"github.com/wagiedev/codex-agent-sdk-go/internal/client"
	"github.com/wagiedev/codex-agent-sdk-go/internal/config"
)

// clientWrapper wraps the internal client to adapt it to the public interface.
type clientWrapper struct {
	impl *client.Client
}

// Compile-time check that *clientWrapper implements the Client interface.
var _ Client = (*clientWrapper)(nil)

// newClientImpl creates the internal client implementation.
func newClientImpl() *clientWrapper {
	return &clientWrapper{impl: client.New()}
}

// Start spawns the app-server and performs the initialize handshake.
func (c *clientWrapper) Start(ctx context.Context, opts ...Option) error {
	return c.impl.Start(ctx, applyOptionsToConfig(opts))
}

// Spawn starts the app-server without performing the handshake.
func (c *clientWrapper) Spawn(ctx context.Context, opts ...Option) error {
	return c.impl.Spawn(ctx, applyOptionsToConfig(opts))
}

// Initialize performs the handshake after Spawn.
func (c *clientWrapper) Initialize(
	ctx context.Context,
	params *InitializeParams,
) (*InitializeResponse, error) {
	return c.impl.Initialize(ctx, params)
}

// ThreadStart opens a conversation thread.
func (c *clientWrapper) ThreadStart(
	ctx context.Context,
	params *ThreadStartParams,
) (*ThreadStartResponse, error) {
	return c.impl.ThreadStart(ctx, params)
}

// ThreadArchive archives a thread server-side.
func (c *clientWrapper) ThreadArchive(ctx context.Context, threadID string) error {
	return c.impl.ThreadArchive(ctx, threadID)
}

// TurnStart submits user input on the tracked thread.
func (c *clientWrapper) TurnStart(ctx context.Context, params *TurnStartParams) error {
	return c.impl.TurnStart(ctx, params)
}

// TurnSteer injects additional input into the running turn.
func (c *clientWrapper) TurnSteer(ctx context.Context, params *TurnSteerParams) error {
	return c.impl.TurnSteer(ctx, params)
}

// TurnInterrupt asks the server to stop the running turn.
func (c *clientWrapper) TurnInterrupt(ctx context.Context, threadID string) error {
	return c.impl.TurnInterrupt(ctx, threadID)
}

// Call sends a request outside the typed surface and decodes the response.
func (c *clientWrapper) Call(ctx context.Context, method string, params, result any) error {
	return c.impl.Call(ctx, method, params, result)
}

// Notify sends a notification.
func (c *clientWrapper) Notify(ctx context.Context, method string, params any) error {
	return c.impl.Notify(ctx, method, params)
}

// Respond answers a server request received on the message stream.
func (c *clientWrapper) Respond(ctx context.Context, id RequestID, result any) error {
	return c.impl.Respond(ctx, id, result)
}

// RespondError answers a server request with an error.
func (c *clientWrapper) RespondError(ctx context.Context, id RequestID, message string) error {
	return c.impl.RespondError(ctx, id, message)
}

// NextMessage blocks until the next notification or server request arrives.
func (c *clientWrapper) NextMessage(ctx context.Context) (*ServerMessage, error) {
	return c.impl.NextMessage(ctx)
}

// Messages returns an iterator that yields inbound messages in wire order.
func (c *clientWrapper) Messages(ctx context.Context) iter.Seq2[*ServerMessage, error] {
	return c.impl.Messages(ctx)
}

// ReceiveTurn returns an iterator that yields messages until the turn ends.
func (c *clientWrapper) ReceiveTurn(ctx context.Context) iter.Seq2[*ServerMessage, error] {
	return c.impl.ReceiveTurn(ctx)
}

// UserAgent returns the server identity reported during the handshake.
func (c *clientWrapper) UserAgent() string {
	return c.impl.UserAgent()
}

// Phase returns the session's current lifecycle phase.
func (c *clientWrapper) Phase() Phase {
	return c.impl.Phase()
}

// ThreadID returns the tracked thread id.
func (c *clientWrapper) ThreadID() string {
	return c.impl.ThreadID()
}

// Close terminates the session and cleans up resources.
func (c *clientWrapper) Close() error {
	return c.impl.Close()
}

// applyOptionsToConfig converts public options to internal config.Options.
func applyOptionsToConfig(opts []Option) *config.Options {
	options := applyOptions(opts)
	if options == nil {
		return nil
	}
	// Options is a type alias to config.Options, so direct cast works
	return options
}

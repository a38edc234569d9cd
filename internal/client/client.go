package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/codex-agent-sdk-go/internal/config"
	"github.com/wagiedev/codex-agent-sdk-go/internal/errors"
	"github.com/wagiedev/codex-agent-sdk-go/internal/jsonrpc"
	"github.com/wagiedev/codex-agent-sdk-go/internal/protocol"
	"github.com/wagiedev/codex-agent-sdk-go/internal/subprocess"
)

const (
	// sdkName identifies this SDK in the initialize handshake when the
	// caller does not provide their own client info.
	sdkName = "codex-sdk-go"

	// sdkVersion is the client version reported alongside sdkName.
	sdkVersion = "0.1.0"
)

// Client is the engine shared by both facade variants. It owns the
// app-server transport, the connection that multiplexes it, and the
// session phase machine, and is safe for concurrent use.
type Client struct {
	log       *slog.Logger
	transport config.Transport
	conn      *protocol.Conn
	session   *protocol.Session
	options   *config.Options

	// Handshake result
	uaMu      sync.RWMutex
	userAgent string

	// Errgroup for goroutine management
	eg errgroup.Group

	// Lifecycle management
	mu        sync.Mutex
	started   bool
	closed    bool      // Tracks if Close() has been called
	closeOnce sync.Once // Ensures Close() only runs once
}

// New creates a new client engine.
//
// The client is not running after creation. Call Start for the full
// handshake, or Spawn plus Initialize for custom handshake parameters.
func New() *Client {
	return &Client{
		session: protocol.NewSession(),
	}
}

// checkStarted reports whether the client can accept operations.
func (c *Client) checkStarted() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrClientClosed
	}

	if !c.started {
		return errors.ErrClientNotStarted
	}

	return nil
}

// isStarted returns true if the client has been spawned and not closed.
// This method is safe to call from any goroutine.
func (c *Client) isStarted() bool {
	return c.checkStarted() == nil
}

// getConn returns the connection when one exists. Unlike checkStarted
// this admits a closed client, so the read side can drain messages that
// arrived before shutdown.
func (c *Client) getConn() (*protocol.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if c.closed {
			return nil, errors.ErrClientClosed
		}

		return nil, errors.ErrClientNotStarted
	}

	return c.conn, nil
}

// Spawn launches the app-server subprocess and starts the connection,
// without performing the initialize handshake. The session is left in
// Initializing; callers must Initialize before thread or turn
// operations are permitted.
//
// Returns CodexNotFoundError if the codex binary cannot be located, or
// ConnectionError if the process fails to start.
func (c *Client) Spawn(ctx context.Context, options *config.Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrClientClosed
	}

	// Default to empty options if nil
	if options == nil {
		options = &config.Options{}
	}

	// Extract logger from options, defaulting to a no-op logger
	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c.log = log.With("component", "client")
	c.options = options

	if err := c.session.BeginSpawn(); err != nil {
		return err
	}

	// Create or use injected transport
	var transport config.Transport

	if options.Transport != nil {
		transport = options.Transport

		c.log.Debug("Using injected custom transport")
	} else {
		transport = subprocess.NewAppServer(c.log, options)
	}

	if err := transport.Start(ctx); err != nil {
		c.session.AbortSpawn()

		return fmt.Errorf("start transport: %w", err)
	}

	c.transport = transport

	timeout := config.DefaultRequestTimeout
	if options.RequestTimeout != nil {
		timeout = *options.RequestTimeout
	}

	// The session observes the connection's read loop so turn-final
	// notifications advance the phase before consumers see them.
	c.conn = protocol.NewConn(c.log, transport, protocol.ConnConfig{
		DefaultTimeout:   timeout,
		StringRequestIDs: options.StringRequestIDs,
		ApprovalHandler:  options.ApprovalHandler,
		Observe:          c.session.Observe,
	})

	// The connection is started on a background context rather than the
	// caller's ctx: a spawn deadline expiring later must not sever a
	// healthy session. Close() is the only way down.
	if err := c.conn.Start(context.Background()); err != nil {
		transport.Close()
		c.session.AbortSpawn()

		return fmt.Errorf("start connection: %w", err)
	}

	c.eg.Go(c.watchConn)

	c.started = true
	c.log.Info("Client spawned")

	return nil
}

// Start spawns the app-server and performs the initialize handshake
// with the default client identity from the options.
func (c *Client) Start(ctx context.Context, options *config.Options) error {
	if err := c.Spawn(ctx, options); err != nil {
		return err
	}

	if _, err := c.Initialize(ctx, nil); err != nil {
		// The session never reached Ready; tear down the spawned process.
		_ = c.Close()

		return err
	}

	return nil
}

// watchConn closes the session when the connection terminates, so phase
// checks fail fast once the transport is gone. Errors reach waiters
// through their pending requests and the message stream, not through
// this goroutine.
func (c *Client) watchConn() error {
	<-c.conn.Done()

	c.session.Close()

	if err := c.conn.FatalError(); err != nil && !stderrors.Is(err, errors.ErrConnClosed) {
		c.log.Error("Connection terminated", "error", err)
	}

	return nil
}

// defaultInitializeParams builds the handshake parameters from the
// options when the caller passed none.
func (c *Client) defaultInitializeParams() *protocol.InitializeParams {
	info := c.options.ClientInfo
	if info == nil {
		info = &protocol.ClientInfo{Name: sdkName, Version: sdkVersion}
	}

	params := &protocol.InitializeParams{ClientInfo: *info}

	if c.options.ExperimentalAPI || len(c.options.OptOutNotificationMethods) > 0 {
		params.Capabilities = &protocol.InitializeCapabilities{
			ExperimentalAPI:           c.options.ExperimentalAPI,
			OptOutNotificationMethods: c.options.OptOutNotificationMethods,
		}
	}

	return params
}

// Initialize performs the handshake: the initialize request followed by
// the initialized notification. The session reaches Ready only after
// both have gone through. A nil params sends the defaults from the
// options.
func (c *Client) Initialize(
	ctx context.Context,
	params *protocol.InitializeParams,
) (*protocol.InitializeResponse, error) {
	if err := c.checkStarted(); err != nil {
		return nil, err
	}

	if err := c.session.CheckInitialize(); err != nil {
		return nil, err
	}

	if params == nil {
		params = c.defaultInitializeParams()
	}

	c.log.Info("Initializing session", "client", params.ClientInfo.Name)

	raw, err := c.conn.Call(ctx, protocol.MethodInitialize, params)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}

	var resp protocol.InitializeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &errors.DecodeError{Raw: string(raw), Err: err}
	}

	if err := c.conn.Notify(ctx, protocol.MethodInitialized, nil); err != nil {
		return nil, fmt.Errorf("send initialized notification: %w", err)
	}

	c.session.FinishInitialize()

	c.uaMu.Lock()
	c.userAgent = resp.UserAgent
	c.uaMu.Unlock()

	c.log.Info("Session ready", "user_agent", resp.UserAgent)

	if hook := c.options.VersionHook; hook != nil {
		hook(resp.UserAgent)
	}

	return &resp, nil
}

// ThreadStart opens a conversation thread and tracks it for the phase
// machine. Starting a second thread replaces the tracked one.
func (c *Client) ThreadStart(
	ctx context.Context,
	params *protocol.ThreadStartParams,
) (*protocol.ThreadStartResponse, error) {
	if err := c.checkStarted(); err != nil {
		return nil, err
	}

	if err := c.session.CheckThreadStart(); err != nil {
		return nil, err
	}

	if params == nil {
		params = &protocol.ThreadStartParams{}
	}

	raw, err := c.conn.Call(ctx, protocol.MethodThreadStart, params)
	if err != nil {
		return nil, fmt.Errorf("thread/start: %w", err)
	}

	var resp protocol.ThreadStartResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &errors.DecodeError{Raw: string(raw), Err: err}
	}

	c.session.FinishThreadStart(resp.ThreadID)

	c.log.Info("Thread started", "thread_id", resp.ThreadID)

	return &resp, nil
}

// ThreadArchive archives a thread server-side. Archiving the tracked
// thread returns the phase to Ready.
func (c *Client) ThreadArchive(ctx context.Context, threadID string) error {
	if err := c.checkStarted(); err != nil {
		return err
	}

	if err := c.session.CheckThreadArchive(); err != nil {
		return err
	}

	params := &protocol.ThreadArchiveParams{ThreadID: threadID}
	if _, err := c.conn.Call(ctx, protocol.MethodThreadArchive, params); err != nil {
		return fmt.Errorf("thread/archive: %w", err)
	}

	c.session.FinishThreadArchive(threadID)

	c.log.Info("Thread archived", "thread_id", threadID)

	return nil
}

// TurnStart submits user input on the tracked thread. The turn is in
// flight from the moment the request is written, not when the server
// responds: deltas may overtake the response on the wire. The turn ends
// when a turn/completed or turn/failed notification is observed, which
// returns the phase to ThreadActive.
func (c *Client) TurnStart(ctx context.Context, params *protocol.TurnStartParams) error {
	if err := c.checkStarted(); err != nil {
		return err
	}

	if params == nil {
		params = &protocol.TurnStartParams{}
	}

	if err := c.session.BeginTurn(); err != nil {
		return err
	}

	pending, err := c.conn.Send(ctx, protocol.MethodTurnStart, params)
	if err != nil {
		c.session.AbortTurn()

		return fmt.Errorf("turn/start: %w", err)
	}

	c.log.Info("Turn started", "thread_id", params.ThreadID)

	if _, err := pending.Await(ctx); err != nil {
		// A server rejection means no turn is running. Timeouts and
		// dead connections leave the phase alone: the turn may still be
		// live server-side, and a dead connection closes the session
		// through watchConn anyway.
		if _, ok := stderrors.AsType[*errors.RPCError](err); ok {
			c.session.AbortTurn()
		}

		return fmt.Errorf("turn/start: %w", err)
	}

	return nil
}

// TurnSteer injects additional user input into the active turn.
func (c *Client) TurnSteer(ctx context.Context, params *protocol.TurnSteerParams) error {
	if err := c.checkStarted(); err != nil {
		return err
	}

	if err := c.session.CheckTurnSteer(); err != nil {
		return err
	}

	if _, err := c.conn.Call(ctx, protocol.MethodTurnSteer, params); err != nil {
		return fmt.Errorf("turn/steer: %w", err)
	}

	return nil
}

// TurnInterrupt asks the server to stop the active turn. The phase
// returns to ThreadActive when the turn-final notification arrives, not
// when this call returns.
func (c *Client) TurnInterrupt(ctx context.Context, threadID string) error {
	if err := c.checkStarted(); err != nil {
		return err
	}

	if err := c.session.CheckTurnInterrupt(); err != nil {
		return err
	}

	c.log.Info("Interrupting turn", "thread_id", threadID)

	params := &protocol.TurnInterruptParams{ThreadID: threadID}
	if _, err := c.conn.Call(ctx, protocol.MethodTurnInterrupt, params); err != nil {
		return fmt.Errorf("turn/interrupt: %w", err)
	}

	return nil
}

// Call issues a raw request and decodes its result into result when
// result is non-nil. It requires a started client but performs no
// phase validation; callers own the method contract.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	if err := c.checkStarted(); err != nil {
		return err
	}

	raw, err := c.conn.Call(ctx, method, params)
	if err != nil {
		return err
	}

	if result == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, result); err != nil {
		return &errors.DecodeError{Raw: string(raw), Err: err}
	}

	return nil
}

// Send issues a raw request without waiting for its response. The
// returned pending resolves through Await; any number of pendings may
// be outstanding at once.
func (c *Client) Send(ctx context.Context, method string, params any) (*protocol.Pending, error) {
	if err := c.checkStarted(); err != nil {
		return nil, err
	}

	return c.conn.Send(ctx, method, params)
}

// Notify sends a one-way notification to the server.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	if err := c.checkStarted(); err != nil {
		return err
	}

	return c.conn.Notify(ctx, method, params)
}

// Respond answers a server-initiated request, normally an approval.
// Each request accepts exactly one answer; a second attempt fails with
// ErrAlreadyResponded.
func (c *Client) Respond(ctx context.Context, id jsonrpc.RequestID, result any) error {
	if err := c.checkStarted(); err != nil {
		return err
	}

	if err := c.session.CheckRespond(); err != nil {
		return err
	}

	return c.conn.Respond(ctx, id, result)
}

// RespondError rejects a server-initiated request with an error message.
func (c *Client) RespondError(ctx context.Context, id jsonrpc.RequestID, message string) error {
	if err := c.checkStarted(); err != nil {
		return err
	}

	if err := c.session.CheckRespond(); err != nil {
		return err
	}

	return c.conn.RespondError(ctx, id, message)
}

// NextMessage blocks until the next notification or server request
// arrives. After the connection terminates it drains messages received
// before the failure, then keeps returning the terminal error.
func (c *Client) NextMessage(ctx context.Context) (*protocol.ServerMessage, error) {
	conn, err := c.getConn()
	if err != nil {
		return nil, err
	}

	return conn.Next(ctx)
}

// Messages returns an iterator over inbound notifications and server
// requests, in wire order. The iterator ends without an error when the
// client is closed; a transport failure is yielded as a final error.
func (c *Client) Messages(ctx context.Context) iter.Seq2[*protocol.ServerMessage, error] {
	return func(yield func(*protocol.ServerMessage, error) bool) {
		conn, err := c.getConn()
		if err != nil {
			yield(nil, err)

			return
		}

		for {
			msg, err := conn.Next(ctx)
			if err != nil {
				if stderrors.Is(err, errors.ErrConnClosed) &&
					stderrors.Is(conn.FatalError(), errors.ErrConnClosed) {
					return
				}

				yield(nil, err)

				return
			}

			if !yield(msg, nil) {
				return
			}
		}
	}
}

// ReceiveTurn returns an iterator over inbound messages that stops after
// the notification ending the current turn (turn/completed or
// turn/failed), which is yielded before the iterator returns. Messages
// for other threads pass through unchanged.
func (c *Client) ReceiveTurn(ctx context.Context) iter.Seq2[*protocol.ServerMessage, error] {
	return func(yield func(*protocol.ServerMessage, error) bool) {
		conn, err := c.getConn()
		if err != nil {
			yield(nil, err)

			return
		}

		for {
			msg, err := conn.Next(ctx)
			if err != nil {
				yield(nil, fmt.Errorf("receive turn: %w", err))

				return
			}

			if !yield(msg, nil) {
				return
			}

			// Stop after the turn-ending notification
			if msg.Method == protocol.MethodTurnCompleted || msg.Method == protocol.MethodTurnFailed {
				return
			}
		}
	}
}

// UserAgent returns the server identity reported during the handshake,
// or the empty string before initialization completes.
func (c *Client) UserAgent() string {
	c.uaMu.RLock()
	defer c.uaMu.RUnlock()

	return c.userAgent
}

// Phase returns the session's current lifecycle phase.
func (c *Client) Phase() protocol.Phase {
	return c.session.Phase()
}

// ThreadID returns the tracked thread id, or the empty string when no
// thread is active.
func (c *Client) ThreadID() string {
	return c.session.ThreadID()
}

// Close terminates the session and the app-server process.
//
// Every outstanding request resolves with a connection-closed error,
// exactly once each. After Close() the client cannot be reused - create
// a new client with New(). This method is safe to call multiple times;
// repeated calls are no-op successes.
func (c *Client) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		wasStarted := c.started
		c.started = false
		c.mu.Unlock()

		c.session.Close()

		if !wasStarted {
			return
		}

		c.log.Info("Closing client")

		// Fail pending requests and stop the read loop before the kill,
		// so waiters see a clean connection-closed cause rather than a
		// raced process exit error.
		c.conn.Close()

		if err := c.transport.Close(); err != nil {
			closeErr = err
		}

		if err := c.eg.Wait(); err != nil && closeErr == nil {
			closeErr = err
		}

		c.log.Info("Client closed")
	})

	return closeErr
}

package protocol

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/codex-agent-sdk-go/internal/errors"
	"github.com/wagiedev/codex-agent-sdk-go/internal/jsonrpc"
)

// codeInternalError is the JSON-RPC error code used when an approval
// handler fails.
const codeInternalError = -32603

// Transport is the subset of the transport layer the connection needs.
type Transport interface {
	// ReadMessages returns channels for decoded messages and read errors.
	ReadMessages(ctx context.Context) (<-chan jsonrpc.Message, <-chan error)

	// SendMessage writes one encoded message to the server.
	SendMessage(ctx context.Context, data []byte) error
}

// ConnConfig carries construction parameters for a Conn.
type ConnConfig struct {
	// DefaultTimeout bounds each request's wait for its response. Zero
	// disables the bound.
	DefaultTimeout time.Duration

	// StringRequestIDs switches outbound request ids from a session-local
	// integer counter to ULID strings.
	StringRequestIDs bool

	// ApprovalHandler, when set, answers approval requests inline instead
	// of surfacing them on the message stream.
	ApprovalHandler ApprovalHandler

	// Observe, when set, is invoked with each inbound notification method
	// before the notification is queued for consumers.
	Observe func(method string)
}

// ServerMessage is one inbound message surfaced to consumers: a
// notification, a server request awaiting an answer, or a record of a
// line that could not be decoded.
type ServerMessage struct {
	// Method is the JSON-RPC method name. Empty on decode-failure records.
	Method string

	// ID is set when the message is a server request expecting an answer
	// via Respond.
	ID *jsonrpc.RequestID

	// Params is the raw parameter payload.
	Params json.RawMessage

	// Parsed holds the typed decoding of Params: one of the notification
	// structs, or *ApprovalRequest for approval requests. Nil when the
	// method is unknown to this SDK.
	Parsed any

	// Err is set on records describing input that could not be decoded.
	// The wrapped DecodeError or LineTooLongError preserves the raw line.
	Err error
}

// IsRequest reports whether the message expects an answer via Respond.
func (m *ServerMessage) IsRequest() bool { return m.ID != nil }

// callResult is the resolution of one outbound request.
type callResult struct {
	result json.RawMessage
	err    error
}

// serverRequest tracks an inbound server request until it is answered.
type serverRequest struct {
	method   string
	answered bool
}

// Conn multiplexes a single app-server connection. It correlates outbound
// requests with their responses, routes notifications and server requests
// onto the message stream, and broadcasts transport failure to every
// waiter exactly once.
//
// The connection must be started with Start() before use and manages its
// own goroutine for reading and routing messages.
type Conn struct {
	log       *slog.Logger
	transport Transport

	defaultTimeout  time.Duration
	stringIDs       bool
	approvalHandler ApprovalHandler
	observe         func(method string)

	// Outbound request id allocation
	idCounter atomic.Int64

	// Request tracking
	pendingMu sync.RWMutex
	pending   map[jsonrpc.RequestID]chan callResult

	// Server-initiated requests awaiting an answer
	inboundMu sync.Mutex
	inbound   map[jsonrpc.RequestID]*serverRequest

	// Inbound message stream
	queue *messageQueue

	// Fatal error handling - stores error and broadcasts via done channel
	errMu      sync.RWMutex
	fatalErr   error
	cancelRead context.CancelFunc

	// Lifecycle management
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewConn creates a new connection over transport.
//
// The logger receives debug, warn, and error messages during protocol
// operations. The transport must be connected before calling Start().
func NewConn(log *slog.Logger, transport Transport, cfg ConnConfig) *Conn {
	return &Conn{
		log:             log.With("component", "protocol"),
		transport:       transport,
		defaultTimeout:  cfg.DefaultTimeout,
		stringIDs:       cfg.StringRequestIDs,
		approvalHandler: cfg.ApprovalHandler,
		observe:         cfg.Observe,
		pending:         make(map[jsonrpc.RequestID]chan callResult, 10),
		inbound:         make(map[jsonrpc.RequestID]*serverRequest, 10),
		queue:           newMessageQueue(),
		done:            make(chan struct{}),
	}
}

// closeDone safely closes the done channel exactly once.
func (c *Conn) closeDone() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// fail records the first fatal error, broadcasts it by closing done, and
// seals the message stream. Later calls keep the original error.
func (c *Conn) fail(err error) {
	c.errMu.Lock()

	if c.fatalErr == nil {
		c.fatalErr = err
	}
	cancel := c.cancelRead

	c.errMu.Unlock()

	c.closeDone()

	if cancel != nil {
		cancel()
	}

	cause := c.closeCause()

	c.queue.Close(cause)

	// Resolve every request still outstanding, including handles the
	// caller abandoned without awaiting. Entries left in the map have
	// never been sent to, so the buffered send cannot block.
	c.pendingMu.Lock()

	for id, ch := range c.pending {
		delete(c.pending, id)
		ch <- callResult{err: cause}
	}

	c.pendingMu.Unlock()
}

// FatalError returns the error that terminated the connection, if any.
func (c *Conn) FatalError() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()

	return c.fatalErr
}

// closeCause returns the terminal error surfaced to callers after the
// connection closes. It always matches errors.ErrConnClosed.
func (c *Conn) closeCause() error {
	err := c.FatalError()

	switch {
	case err == nil:
		return errors.ErrConnClosed
	case stderrors.Is(err, errors.ErrConnClosed):
		return err
	default:
		return fmt.Errorf("%w: %w", errors.ErrConnClosed, err)
	}
}

// Done returns a channel that is closed when the connection terminates.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Start begins reading messages from the transport and routing them.
//
// Start must be called before Call, Send, Notify, or Next will make
// progress.
func (c *Conn) Start(ctx context.Context) error {
	c.log.Debug("Starting connection")

	readCtx, cancel := context.WithCancel(ctx)

	c.errMu.Lock()
	c.cancelRead = cancel
	c.errMu.Unlock()

	messages, errs := c.transport.ReadMessages(readCtx)

	c.wg.Add(1)

	go c.readLoop(readCtx, messages, errs)

	return nil
}

// Close terminates the connection, failing every outstanding request
// with a connection-closed error. Safe to call multiple times.
func (c *Conn) Close() {
	c.log.Debug("Closing connection")

	c.fail(errors.ErrConnClosed)
	c.wg.Wait()
}

// nextRequestID allocates the next outbound request id.
func (c *Conn) nextRequestID() jsonrpc.RequestID {
	if c.stringIDs {
		return jsonrpc.StringID(ulid.Make().String())
	}

	return jsonrpc.IntID(c.idCounter.Add(1))
}

// Pending is one live outbound request awaiting its response. Await
// resolves it exactly once; a Pending is not reusable afterwards.
type Pending struct {
	id      jsonrpc.RequestID
	method  string
	ch      chan callResult
	timeout time.Duration
	conn    *Conn
}

// ID returns the request id assigned to this request.
func (p *Pending) ID() jsonrpc.RequestID { return p.id }

// Await blocks until the response arrives, the timeout elapses, ctx is
// done, or the connection fails. A timeout fails only this request; the
// server is not interrupted and a late response is logged and dropped.
func (p *Pending) Await(ctx context.Context) (json.RawMessage, error) {
	var timeoutCh <-chan time.Time
	if p.timeout > 0 {
		timeoutCh = time.After(p.timeout)
	}

	select {
	case res := <-p.ch:
		if res.err != nil {
			p.conn.log.Warn("Request returned error", "request_id", p.id, "method", p.method, "error", res.err)

			return nil, res.err
		}

		return res.result, nil

	case <-p.conn.done:
		if !p.conn.unregister(p.id) {
			// The response claimed the entry first; take it.
			res := <-p.ch

			return res.result, res.err
		}

		err := p.conn.closeCause()
		p.conn.log.Warn("Connection closed during request", "request_id", p.id, "method", p.method, "error", err)

		return nil, err

	case <-timeoutCh:
		if !p.conn.unregister(p.id) {
			res := <-p.ch

			return res.result, res.err
		}

		p.conn.log.Warn("Request timed out", "request_id", p.id, "method", p.method, "timeout", p.timeout)

		return nil, fmt.Errorf("%w after %s", errors.ErrRequestTimeout, p.timeout)

	case <-ctx.Done():
		if !p.conn.unregister(p.id) {
			res := <-p.ch

			return res.result, res.err
		}

		return nil, ctx.Err()
	}
}

// Send registers and writes a request, returning a Pending that resolves
// with the response. The pending entry is registered before the write so
// the response can never arrive unmatched, however quickly the server
// answers.
func (c *Conn) Send(ctx context.Context, method string, params any) (*Pending, error) {
	select {
	case <-c.done:
		return nil, c.closeCause()
	default:
	}

	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", method, err)
	}

	id := c.nextRequestID()

	c.log.Debug("Sending request", "request_id", id, "method", method)

	ch := make(chan callResult, 1)

	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	data, err := jsonrpc.Encode(&jsonrpc.Request{ID: id, Method: method, Params: raw})
	if err != nil {
		c.unregister(id)

		return nil, fmt.Errorf("encode request: %w", err)
	}

	if err := c.transport.SendMessage(ctx, data); err != nil {
		c.unregister(id)
		c.log.Error("Failed to send request", "request_id", id, "method", method, "error", err)

		if ctx.Err() == nil {
			c.fail(fmt.Errorf("send %s: %w", method, err))
		}

		return nil, fmt.Errorf("send request: %w", err)
	}

	return &Pending{id: id, method: method, ch: ch, timeout: c.defaultTimeout, conn: c}, nil
}

// Call sends a request and waits for its response.
func (c *Conn) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	pending, err := c.Send(ctx, method, params)
	if err != nil {
		return nil, err
	}

	return pending.Await(ctx)
}

// Notify sends a notification; no response is expected.
func (c *Conn) Notify(ctx context.Context, method string, params any) error {
	select {
	case <-c.done:
		return c.closeCause()
	default:
	}

	raw, err := marshalParams(params)
	if err != nil {
		return fmt.Errorf("marshal %s params: %w", method, err)
	}

	c.log.Debug("Sending notification", "method", method)

	data, err := jsonrpc.Encode(&jsonrpc.Notification{Method: method, Params: raw})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	if err := c.transport.SendMessage(ctx, data); err != nil {
		c.log.Error("Failed to send notification", "method", method, "error", err)

		if ctx.Err() == nil {
			c.fail(fmt.Errorf("send %s: %w", method, err))
		}

		return fmt.Errorf("send notification: %w", err)
	}

	return nil
}

// Respond answers a server request with a result payload. Each request
// may be answered exactly once; unknown ids are rejected.
func (c *Conn) Respond(ctx context.Context, id jsonrpc.RequestID, result any) error {
	if err := c.claimInbound(id); err != nil {
		return err
	}

	raw, err := marshalParams(result)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	c.log.Debug("Sending response", "request_id", id)

	data, err := jsonrpc.Encode(&jsonrpc.Response{ID: id, Result: raw})
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	if err := c.transport.SendMessage(ctx, data); err != nil {
		c.log.Error("Failed to send response", "request_id", id, "error", err)

		if ctx.Err() == nil {
			c.fail(fmt.Errorf("send response: %w", err))
		}

		return fmt.Errorf("send response: %w", err)
	}

	return nil
}

// RespondError answers a server request with an error.
func (c *Conn) RespondError(ctx context.Context, id jsonrpc.RequestID, message string) error {
	if err := c.claimInbound(id); err != nil {
		return err
	}

	c.log.Debug("Sending error response", "request_id", id)

	data, err := jsonrpc.Encode(&jsonrpc.ErrorResponse{
		ID:  id,
		Err: &jsonrpc.ErrorObject{Code: codeInternalError, Message: message},
	})
	if err != nil {
		return fmt.Errorf("encode error response: %w", err)
	}

	if err := c.transport.SendMessage(ctx, data); err != nil {
		c.log.Error("Failed to send error response", "request_id", id, "error", err)

		if ctx.Err() == nil {
			c.fail(fmt.Errorf("send error response: %w", err))
		}

		return fmt.Errorf("send error response: %w", err)
	}

	return nil
}

// Next returns the next inbound server message, blocking until one
// arrives. After the connection terminates it drains messages received
// before the failure and then returns the close cause.
func (c *Conn) Next(ctx context.Context) (*ServerMessage, error) {
	return c.queue.Pop(ctx)
}

// claimInbound validates a server request id and marks it answered.
func (c *Conn) claimInbound(id jsonrpc.RequestID) error {
	c.inboundMu.Lock()
	defer c.inboundMu.Unlock()

	req, ok := c.inbound[id]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownRequest, id)
	}

	if req.answered {
		return fmt.Errorf("%w: %s", errors.ErrAlreadyResponded, id)
	}
	req.answered = true

	return nil
}

// unregister removes a pending entry, reporting whether it was still
// registered. A false return means the response already claimed it and a
// result is in the buffer.
func (c *Conn) unregister(id jsonrpc.RequestID) bool {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	if _, ok := c.pending[id]; !ok {
		return false
	}
	delete(c.pending, id)

	return true
}

// readLoop reads messages from the transport and routes them until the
// transport ends or the connection is closed. Every exit path fails the
// connection so no waiter is left hanging.
func (c *Conn) readLoop(ctx context.Context, messages <-chan jsonrpc.Message, errs <-chan error) {
	defer c.wg.Done()
	defer c.log.Debug("Connection read loop stopped")

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				c.log.Debug("Message channel closed")
				c.fail(c.terminalError(errs))

				return
			}

			c.dispatch(ctx, msg)

		case err, ok := <-errs:
			if !ok {
				errs = nil

				continue
			}

			if fatal := c.handleReadError(err); fatal {
				return
			}

		case <-c.done:
			c.log.Debug("Connection stop signal received")

			return

		case <-ctx.Done():
			c.log.Debug("Context cancelled in read loop")
			c.fail(ctx.Err())

			return
		}
	}
}

// terminalError drains errors queued behind the closed message channel.
// Decode and framing records still reach the stream; the first genuinely
// terminal error becomes the close cause. A clean end of stream maps to
// a plain connection-closed error.
func (c *Conn) terminalError(errs <-chan error) error {
	for errs != nil {
		select {
		case err, ok := <-errs:
			if !ok || err == nil {
				return errors.ErrConnClosed
			}

			if fatal := c.handleReadError(err); fatal {
				return err
			}

		default:
			return errors.ErrConnClosed
		}
	}

	return errors.ErrConnClosed
}

// handleReadError classifies a read-side error. Decode failures and
// oversized lines become stream records and reading continues; every
// other error terminates the session. Returns true when fatal.
func (c *Conn) handleReadError(err error) bool {
	if _, ok := stderrors.AsType[*errors.DecodeError](err); ok {
		c.log.Warn("Received undecodable line", "error", err)
		c.queue.Push(&ServerMessage{Err: err})

		return false
	}

	if tooLong, ok := stderrors.AsType[*errors.LineTooLongError](err); ok {
		c.log.Warn("Received oversized line", "limit", tooLong.Limit)
		c.queue.Push(&ServerMessage{Err: err})

		return false
	}

	c.log.Debug("Transport error", "error", err)
	c.fail(err)

	return true
}

// dispatch routes one inbound message by envelope shape.
func (c *Conn) dispatch(ctx context.Context, msg jsonrpc.Message) {
	switch m := msg.(type) {
	case *jsonrpc.Response:
		c.resolve(m.ID, callResult{result: m.Result})
	case *jsonrpc.ErrorResponse:
		c.resolve(m.ID, callResult{err: rpcError(m.Err)})
	case *jsonrpc.Notification:
		c.handleNotification(m)
	case *jsonrpc.Request:
		c.handleServerRequest(ctx, m)
	}
}

// resolve completes the pending request for id. The entry is claimed and
// deleted under the lock before the result is delivered, so each request
// resolves exactly once no matter how waiters race.
func (c *Conn) resolve(id jsonrpc.RequestID, res callResult) {
	c.pendingMu.Lock()

	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}

	c.pendingMu.Unlock()

	if !ok {
		c.log.Warn("No pending request for response", "request_id", id)

		return
	}

	// We own the entry now; the channel is buffered so this never blocks.
	ch <- res
}

// handleNotification parses and queues a notification. The observer runs
// before the queue push so phase changes are visible by the time a
// consumer reads the notification.
func (c *Conn) handleNotification(n *jsonrpc.Notification) {
	c.log.Debug("Received notification", "method", n.Method)

	if c.observe != nil {
		c.observe(n.Method)
	}

	parsed, err := ParseNotification(n.Method, n.Params)

	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrUnknownMethod):
		c.log.Debug("Unknown notification method", "method", n.Method)
	default:
		c.log.Warn("Malformed notification params", "method", n.Method, "error", err)
		c.queue.Push(&ServerMessage{Method: n.Method, Params: n.Params, Err: err})

		return
	}

	c.queue.Push(&ServerMessage{Method: n.Method, Params: n.Params, Parsed: parsed})
}

// handleServerRequest registers an inbound request and either dispatches
// it to the approval handler or queues it for manual answering.
func (c *Conn) handleServerRequest(ctx context.Context, r *jsonrpc.Request) {
	c.log.Debug("Received server request", "request_id", r.ID, "method", r.Method)

	c.inboundMu.Lock()

	if prev, exists := c.inbound[r.ID]; exists && !prev.answered {
		c.log.Warn("Server reused an unanswered request id", "request_id", r.ID, "method", prev.method)
	}
	c.inbound[r.ID] = &serverRequest{method: r.Method}

	c.inboundMu.Unlock()

	id := r.ID

	req, err := ParseServerRequest(r.ID, r.Method, r.Params)
	if err != nil {
		if stderrors.Is(err, errors.ErrUnknownMethod) {
			c.log.Debug("Unknown server request method", "method", r.Method)
			c.queue.Push(&ServerMessage{ID: &id, Method: r.Method, Params: r.Params})

			return
		}

		c.log.Warn("Malformed server request params", "method", r.Method, "error", err)
		c.queue.Push(&ServerMessage{ID: &id, Method: r.Method, Params: r.Params, Err: err})

		return
	}

	if c.approvalHandler == nil {
		c.queue.Push(&ServerMessage{ID: &id, Method: r.Method, Params: r.Params, Parsed: req})

		return
	}

	// Run the handler in a goroutine so the read loop keeps draining
	// while the handler decides.
	handler := c.approvalHandler

	c.wg.Go(func() {
		decision, err := handler(ctx, req)
		if err != nil {
			c.log.Warn("Approval handler returned error", "request_id", req.ID, "error", err)

			if respErr := c.RespondError(ctx, req.ID, err.Error()); respErr != nil {
				c.log.Error("Failed to send error response", "request_id", req.ID, "error", respErr)
			}

			return
		}

		if err := c.Respond(ctx, req.ID, &ApprovalResponse{Decision: decision}); err != nil {
			c.log.Error("Failed to send approval response", "request_id", req.ID, "error", err)
		}
	})
}

// rpcError converts a wire error object into an RPCError.
func rpcError(obj *jsonrpc.ErrorObject) error {
	if obj == nil {
		return &errors.RPCError{Code: codeInternalError, Message: "missing error object"}
	}

	return &errors.RPCError{Code: obj.Code, Message: obj.Message, Data: obj.Data}
}

// marshalParams serializes a params or result value, passing through raw
// JSON and leaving nil as an absent payload.
func marshalParams(v any) (json.RawMessage, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	case []byte:
		return json.RawMessage(p), nil
	default:
		return json.Marshal(v)
	}
}

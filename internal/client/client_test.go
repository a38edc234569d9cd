package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/codex-agent-sdk-go/internal/config"
	"github.com/wagiedev/codex-agent-sdk-go/internal/errors"
	"github.com/wagiedev/codex-agent-sdk-go/internal/jsonrpc"
	"github.com/wagiedev/codex-agent-sdk-go/internal/protocol"
)

// mockTransport implements config.Transport for testing. A script, when
// set, builds the server's reaction to each outbound request; push
// injects unsolicited notifications and server requests.
type mockTransport struct {
	mu      sync.Mutex
	started bool
	closed  bool
	sent    []jsonrpc.Message
	sendErr error
	script  func(req *jsonrpc.Request) []jsonrpc.Message
	msgChan chan jsonrpc.Message
	errChan chan error
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		msgChan: make(chan jsonrpc.Message, 100),
		errChan: make(chan error, 10),
	}
}

func (m *mockTransport) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = true

	return nil
}

func (m *mockTransport) ReadMessages(_ context.Context) (<-chan jsonrpc.Message, <-chan error) {
	return m.msgChan, m.errChan
}

func (m *mockTransport) SendMessage(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}

	msg, err := jsonrpc.Decode(data)
	if err != nil {
		return err
	}

	m.sent = append(m.sent, msg)

	// Scripted replies go out synchronously so wire order is
	// deterministic; the channel buffer keeps this from blocking.
	if req, ok := msg.(*jsonrpc.Request); ok && m.script != nil {
		for _, reply := range m.script(req) {
			if !m.closed {
				m.msgChan <- reply
			}
		}
	}

	return nil
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
		close(m.errChan)
	}

	return nil
}

func (m *mockTransport) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.started && !m.closed
}

func (m *mockTransport) EndInput() error {
	return nil
}

// push injects a server-to-client message onto the wire.
func (m *mockTransport) push(msg jsonrpc.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.msgChan <- msg
	}
}

// crash simulates the subprocess dying: a process error followed by
// channel closure, in the order the real transport produces them.
func (m *mockTransport) crash(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.closed = true
	m.errChan <- err
	close(m.msgChan)
	close(m.errChan)
}

func (m *mockTransport) getSent() []jsonrpc.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]jsonrpc.Message, len(m.sent))
	copy(out, m.sent)

	return out
}

// sentRequests filters the wire log down to requests for method.
func (m *mockTransport) sentRequests(method string) []*jsonrpc.Request {
	var out []*jsonrpc.Request

	for _, msg := range m.getSent() {
		if req, ok := msg.(*jsonrpc.Request); ok && req.Method == method {
			out = append(out, req)
		}
	}

	return out
}

// sentResponses filters the wire log down to responses with id.
func (m *mockTransport) sentResponses(id jsonrpc.RequestID) []*jsonrpc.Response {
	var out []*jsonrpc.Response

	for _, msg := range m.getSent() {
		if resp, ok := msg.(*jsonrpc.Response); ok && resp.ID == id {
			out = append(out, resp)
		}
	}

	return out
}

func response(id jsonrpc.RequestID, result string) *jsonrpc.Response {
	return &jsonrpc.Response{ID: id, Result: json.RawMessage(result)}
}

func notification(method, params string) *jsonrpc.Notification {
	return &jsonrpc.Notification{Method: method, Params: json.RawMessage(params)}
}

func serverRequest(id int64, method, params string) *jsonrpc.Request {
	return &jsonrpc.Request{ID: jsonrpc.IntID(id), Method: method, Params: json.RawMessage(params)}
}

// appServerScript acks the handshake and thread/turn requests the way a
// live app-server would. Notifications stay under test control via push.
func appServerScript(threadID string) func(*jsonrpc.Request) []jsonrpc.Message {
	return func(req *jsonrpc.Request) []jsonrpc.Message {
		switch req.Method {
		case protocol.MethodInitialize:
			return []jsonrpc.Message{response(req.ID, `{"userAgent":"codex/0.104.0"}`)}
		case protocol.MethodThreadStart:
			return []jsonrpc.Message{response(req.ID, fmt.Sprintf(`{"threadId":%q}`, threadID))}
		case protocol.MethodThreadArchive,
			protocol.MethodTurnStart,
			protocol.MethodTurnSteer,
			protocol.MethodTurnInterrupt:
			return []jsonrpc.Message{response(req.ID, `{}`)}
		default:
			return nil
		}
	}
}

// startedClient runs the full handshake against a scripted transport.
func startedClient(t *testing.T, transport *mockTransport, opts *config.Options) *Client {
	t.Helper()

	if opts == nil {
		opts = &config.Options{}
	}

	opts.Logger = slog.Default()
	opts.Transport = transport

	c := New()
	require.NoError(t, c.Start(context.Background(), opts))
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestClient_StartHandshake(t *testing.T) {
	transport := newMockTransport()
	transport.script = appServerScript(uuid.NewString())

	var hookUA string

	c := startedClient(t, transport, &config.Options{
		VersionHook: func(userAgent string) { hookUA = userAgent },
	})

	assert.Equal(t, protocol.PhaseReady, c.Phase())
	assert.Equal(t, "codex/0.104.0", c.UserAgent())
	assert.Equal(t, "codex/0.104.0", hookUA)

	// The wire carries the initialize request and then the initialized
	// notification, nothing else.
	sent := transport.getSent()
	require.Len(t, sent, 2)

	init, ok := sent[0].(*jsonrpc.Request)
	require.True(t, ok)
	assert.Equal(t, protocol.MethodInitialize, init.Method)
	assert.Equal(t, jsonrpc.IntID(1), init.ID)

	var params protocol.InitializeParams
	require.NoError(t, json.Unmarshal(init.Params, &params))
	assert.Equal(t, "codex-sdk-go", params.ClientInfo.Name)

	note, ok := sent[1].(*jsonrpc.Notification)
	require.True(t, ok)
	assert.Equal(t, protocol.MethodInitialized, note.Method)
}

func TestClient_SpawnThenManualInitialize(t *testing.T) {
	transport := newMockTransport()
	transport.script = appServerScript(uuid.NewString())

	c := New()
	require.NoError(t, c.Spawn(context.Background(), &config.Options{
		Logger:    slog.Default(),
		Transport: transport,
	}))
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, protocol.PhaseInitializing, c.Phase())

	// Thread operations are rejected until the handshake runs.
	_, err := c.ThreadStart(context.Background(), nil)
	phaseErr, ok := stderrors.AsType[*errors.PhaseError](err)
	require.True(t, ok)
	assert.Equal(t, "thread/start", phaseErr.Op)
	assert.Empty(t, transport.getSent())

	resp, err := c.Initialize(context.Background(), &protocol.InitializeParams{
		ClientInfo: protocol.ClientInfo{Name: "myapp", Version: "2.0.0"},
	})
	require.NoError(t, err)
	assert.Equal(t, "codex/0.104.0", resp.UserAgent)
	assert.Equal(t, protocol.PhaseReady, c.Phase())

	init := transport.sentRequests(protocol.MethodInitialize)
	require.Len(t, init, 1)

	var params protocol.InitializeParams
	require.NoError(t, json.Unmarshal(init[0].Params, &params))
	assert.Equal(t, "myapp", params.ClientInfo.Name)
}

// TestClient_FullTurnWalkthrough drives a whole conversation: handshake,
// thread start, then a turn whose first delta overtakes the turn/start
// response on the wire. The turn/completed notification, not the
// response, ends the turn.
func TestClient_FullTurnWalkthrough(t *testing.T) {
	threadID := uuid.NewString()
	transport := newMockTransport()
	transport.script = func(req *jsonrpc.Request) []jsonrpc.Message {
		switch req.Method {
		case protocol.MethodInitialize:
			return []jsonrpc.Message{response(req.ID, `{"userAgent":"codex/0.104.0"}`)}
		case protocol.MethodThreadStart:
			return []jsonrpc.Message{response(req.ID, fmt.Sprintf(`{"threadId":%q}`, threadID))}
		case protocol.MethodTurnStart:
			// The first delta lands before the turn/start response.
			return []jsonrpc.Message{
				notification(protocol.MethodAgentMessageDelta,
					fmt.Sprintf(`{"threadId":%q,"itemId":"item_0","delta":"4"}`, threadID)),
				response(req.ID, `{}`),
			}
		default:
			return nil
		}
	}

	c := startedClient(t, transport, nil)
	ctx := context.Background()

	resp, err := c.ThreadStart(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, threadID, resp.ThreadID)
	assert.Equal(t, threadID, c.ThreadID())
	assert.Equal(t, protocol.PhaseThreadActive, c.Phase())

	err = c.TurnStart(ctx, &protocol.TurnStartParams{
		ThreadID: threadID,
		Input:    []protocol.UserInput{protocol.TextInput("What is 2+2?")},
	})
	require.NoError(t, err)

	// The response alone does not end the turn.
	assert.Equal(t, protocol.PhaseTurnActive, c.Phase())

	msg, err := c.NextMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol.MethodAgentMessageDelta, msg.Method)

	delta, ok := msg.Parsed.(*protocol.ItemDeltaNotification)
	require.True(t, ok)
	assert.Equal(t, "4", delta.Delta)
	assert.Equal(t, protocol.PhaseTurnActive, c.Phase())

	transport.push(notification(protocol.MethodTurnCompleted, fmt.Sprintf(
		`{"threadId":%q,"turnId":"turn_1","turn":{"id":"turn_1","items":[],"status":"completed"}}`, threadID)))

	msg, err = c.NextMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol.MethodTurnCompleted, msg.Method)

	completed, ok := msg.Parsed.(*protocol.TurnCompletedNotification)
	require.True(t, ok)
	assert.Equal(t, protocol.TurnStatusCompleted, completed.Turn.Status)

	// The phase flipped before the notification was handed out.
	assert.Equal(t, protocol.PhaseThreadActive, c.Phase())

	// Request ids were allocated in send order.
	sent := transport.getSent()
	ids := make([]jsonrpc.RequestID, 0, 3)

	for _, m := range sent {
		if req, ok := m.(*jsonrpc.Request); ok {
			ids = append(ids, req.ID)
		}
	}

	assert.Equal(t, []jsonrpc.RequestID{jsonrpc.IntID(1), jsonrpc.IntID(2), jsonrpc.IntID(3)}, ids)
}

func TestClient_TurnBeforeThreadWritesNothing(t *testing.T) {
	transport := newMockTransport()
	transport.script = appServerScript(uuid.NewString())

	c := startedClient(t, transport, nil)
	before := len(transport.getSent())

	err := c.TurnStart(context.Background(), &protocol.TurnStartParams{
		Input: []protocol.UserInput{protocol.TextInput("hi")},
	})

	phaseErr, ok := stderrors.AsType[*errors.PhaseError](err)
	require.True(t, ok)
	assert.Equal(t, "turn/start", phaseErr.Op)
	assert.Equal(t, protocol.PhaseReady, c.Phase())

	// The rejected call never reached the transport.
	assert.Len(t, transport.getSent(), before)
}

func TestClient_TurnStartRejectionRollsBack(t *testing.T) {
	threadID := uuid.NewString()
	transport := newMockTransport()
	transport.script = func(req *jsonrpc.Request) []jsonrpc.Message {
		switch req.Method {
		case protocol.MethodInitialize:
			return []jsonrpc.Message{response(req.ID, `{"userAgent":"codex/0.104.0"}`)}
		case protocol.MethodThreadStart:
			return []jsonrpc.Message{response(req.ID, fmt.Sprintf(`{"threadId":%q}`, threadID))}
		case protocol.MethodTurnStart:
			return []jsonrpc.Message{&jsonrpc.ErrorResponse{
				ID:  req.ID,
				Err: &jsonrpc.ErrorObject{Code: -32602, Message: "no such thread"},
			}}
		default:
			return nil
		}
	}

	c := startedClient(t, transport, nil)
	ctx := context.Background()

	_, err := c.ThreadStart(ctx, nil)
	require.NoError(t, err)

	err = c.TurnStart(ctx, &protocol.TurnStartParams{
		ThreadID: threadID,
		Input:    []protocol.UserInput{protocol.TextInput("hi")},
	})
	require.Error(t, err)

	rpcErr, ok := stderrors.AsType[*errors.RPCError](err)
	require.True(t, ok)
	assert.Equal(t, int64(-32602), rpcErr.Code)

	// The server rejected the turn, so no turn is in flight.
	assert.Equal(t, protocol.PhaseThreadActive, c.Phase())
}

func TestClient_InterruptEndsTurnViaNotification(t *testing.T) {
	threadID := uuid.NewString()
	transport := newMockTransport()
	transport.script = appServerScript(threadID)

	c := startedClient(t, transport, nil)
	ctx := context.Background()

	_, err := c.ThreadStart(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, c.TurnStart(ctx, &protocol.TurnStartParams{
		ThreadID: threadID,
		Input:    []protocol.UserInput{protocol.TextInput("count to a billion")},
	}))
	assert.Equal(t, protocol.PhaseTurnActive, c.Phase())

	require.NoError(t, c.TurnInterrupt(ctx, threadID))

	// The interrupt ack does not end the turn; the notification does.
	assert.Equal(t, protocol.PhaseTurnActive, c.Phase())

	transport.push(notification(protocol.MethodTurnCompleted, fmt.Sprintf(
		`{"threadId":%q,"turnId":"turn_1","turn":{"id":"turn_1","items":[],"status":"interrupted"}}`, threadID)))

	require.Eventually(t, func() bool {
		return c.Phase() == protocol.PhaseThreadActive
	}, time.Second, 10*time.Millisecond)
}

func TestClient_TurnSteerRequiresActiveTurn(t *testing.T) {
	threadID := uuid.NewString()
	transport := newMockTransport()
	transport.script = appServerScript(threadID)

	c := startedClient(t, transport, nil)
	ctx := context.Background()

	_, err := c.ThreadStart(ctx, nil)
	require.NoError(t, err)

	steer := &protocol.TurnSteerParams{
		ThreadID: threadID,
		Input:    []protocol.UserInput{protocol.TextInput("also check the tests")},
	}

	err = c.TurnSteer(ctx, steer)
	phaseErr, ok := stderrors.AsType[*errors.PhaseError](err)
	require.True(t, ok)
	assert.Equal(t, "turn/steer", phaseErr.Op)

	require.NoError(t, c.TurnStart(ctx, &protocol.TurnStartParams{
		ThreadID: threadID,
		Input:    []protocol.UserInput{protocol.TextInput("fix the bug")},
	}))

	require.NoError(t, c.TurnSteer(ctx, steer))
	require.Len(t, transport.sentRequests(protocol.MethodTurnSteer), 1)
}

func TestClient_ThreadArchiveReturnsToReady(t *testing.T) {
	threadID := uuid.NewString()
	transport := newMockTransport()
	transport.script = appServerScript(threadID)

	c := startedClient(t, transport, nil)
	ctx := context.Background()

	_, err := c.ThreadStart(ctx, nil)
	require.NoError(t, err)

	// Archiving an unrelated thread leaves the tracked one active.
	require.NoError(t, c.ThreadArchive(ctx, uuid.NewString()))
	assert.Equal(t, protocol.PhaseThreadActive, c.Phase())
	assert.Equal(t, threadID, c.ThreadID())

	require.NoError(t, c.ThreadArchive(ctx, threadID))
	assert.Equal(t, protocol.PhaseReady, c.Phase())
	assert.Empty(t, c.ThreadID())
}

func TestClient_KillMidSessionFailsAllPending(t *testing.T) {
	transport := newMockTransport()
	transport.script = appServerScript(uuid.NewString())

	c := startedClient(t, transport, nil)
	ctx := context.Background()

	// The script does not answer thread/list, so these stay pending.
	pendings := make([]*protocol.Pending, 0, 3)

	for range 3 {
		p, err := c.Send(ctx, "thread/list", nil)
		require.NoError(t, err)

		pendings = append(pendings, p)
	}

	transport.crash(&errors.ProcessError{ExitCode: 137, Err: stderrors.New("signal: killed")})

	// Every pending resolves with the transport-closed cause, once each.
	for _, p := range pendings {
		_, err := p.Await(ctx)
		require.ErrorIs(t, err, errors.ErrConnClosed)

		procErr, ok := stderrors.AsType[*errors.ProcessError](err)
		require.True(t, ok)
		assert.Equal(t, 137, procErr.ExitCode)
	}

	// The session closes itself once the connection dies.
	require.Eventually(t, func() bool {
		return c.Phase() == protocol.PhaseClosed
	}, time.Second, 10*time.Millisecond)

	_, err := c.Send(ctx, "thread/list", nil)
	require.ErrorIs(t, err, errors.ErrConnClosed)

	// Shutdown after the crash is a no-op success, as is a second one.
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.Send(ctx, "thread/list", nil)
	require.ErrorIs(t, err, errors.ErrClientClosed)
}

func TestClient_RespondToApprovalExactlyOnce(t *testing.T) {
	threadID := uuid.NewString()
	transport := newMockTransport()
	transport.script = appServerScript(threadID)

	c := startedClient(t, transport, nil)
	ctx := context.Background()

	transport.push(serverRequest(7, protocol.MethodCommandApproval, fmt.Sprintf(
		`{"threadId":%q,"turnId":"turn_1","callId":"call_1","command":"rm -rf build","cwd":"/work"}`, threadID)))

	msg, err := c.NextMessage(ctx)
	require.NoError(t, err)
	require.True(t, msg.IsRequest())

	approval, ok := msg.Parsed.(*protocol.ApprovalRequest)
	require.True(t, ok)
	assert.Equal(t, protocol.ApprovalKindCommand, approval.Kind)
	assert.Equal(t, "rm -rf build", approval.Command)

	require.NoError(t, c.Respond(ctx, *msg.ID, &protocol.ApprovalResponse{
		Decision: protocol.ApprovalDecline,
	}))

	// Exactly one response line with that id went out.
	responses := transport.sentResponses(jsonrpc.IntID(7))
	require.Len(t, responses, 1)
	assert.JSONEq(t, `{"decision":"decline"}`, string(responses[0].Result))

	err = c.Respond(ctx, *msg.ID, &protocol.ApprovalResponse{
		Decision: protocol.ApprovalAccept,
	})
	require.ErrorIs(t, err, errors.ErrAlreadyResponded)
	require.Len(t, transport.sentResponses(jsonrpc.IntID(7)), 1)
}

func TestClient_ApprovalHandlerAnswersAutomatically(t *testing.T) {
	threadID := uuid.NewString()
	transport := newMockTransport()
	transport.script = appServerScript(threadID)

	c := startedClient(t, transport, &config.Options{
		ApprovalHandler: func(_ context.Context, _ *protocol.ApprovalRequest) (protocol.ApprovalDecision, error) {
			return protocol.ApprovalAcceptForSession, nil
		},
	})

	transport.push(serverRequest(9, protocol.MethodCommandApproval, fmt.Sprintf(
		`{"threadId":%q,"turnId":"turn_1","callId":"call_1","command":"go test ./...","cwd":"/work"}`, threadID)))

	require.Eventually(t, func() bool {
		return len(transport.sentResponses(jsonrpc.IntID(9))) == 1
	}, time.Second, 10*time.Millisecond)

	assert.JSONEq(t, `{"decision":"acceptForSession"}`,
		string(transport.sentResponses(jsonrpc.IntID(9))[0].Result))

	// Handled approvals never reach the message stream.
	shortCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.NextMessage(shortCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_OperationsBeforeSpawn(t *testing.T) {
	c := New()
	ctx := context.Background()

	_, err := c.ThreadStart(ctx, nil)
	require.ErrorIs(t, err, errors.ErrClientNotStarted)

	require.ErrorIs(t, c.TurnStart(ctx, nil), errors.ErrClientNotStarted)
	require.ErrorIs(t, c.Notify(ctx, protocol.MethodInitialized, nil), errors.ErrClientNotStarted)
	require.ErrorIs(t, c.Respond(ctx, jsonrpc.IntID(1), nil), errors.ErrClientNotStarted)

	_, err = c.NextMessage(ctx)
	require.ErrorIs(t, err, errors.ErrClientNotStarted)

	assert.Equal(t, protocol.PhaseUninitialized, c.Phase())
	assert.False(t, c.isStarted())
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	transport := newMockTransport()
	transport.script = appServerScript(uuid.NewString())

	c := startedClient(t, transport, nil)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.Equal(t, protocol.PhaseClosed, c.Phase())
	assert.False(t, c.isStarted())

	_, err := c.ThreadStart(context.Background(), nil)
	require.ErrorIs(t, err, errors.ErrClientClosed)

	// The read side reports the closed connection rather than a
	// lifecycle error, so drained sessions end consistently.
	_, err = c.NextMessage(context.Background())
	require.ErrorIs(t, err, errors.ErrConnClosed)
}

func TestClient_CloseWithoutStartIsNoOp(t *testing.T) {
	c := New()

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, protocol.PhaseClosed, c.Phase())

	require.ErrorIs(t, c.Spawn(context.Background(), nil), errors.ErrClientClosed)
}

func TestClient_MessagesEndsCleanlyOnClose(t *testing.T) {
	threadID := uuid.NewString()
	transport := newMockTransport()
	transport.script = appServerScript(threadID)

	c := startedClient(t, transport, nil)

	transport.push(notification(protocol.MethodThreadStarted,
		fmt.Sprintf(`{"threadId":%q}`, threadID)))
	transport.push(notification(protocol.MethodAgentMessageDelta,
		fmt.Sprintf(`{"threadId":%q,"itemId":"item_0","delta":"hi"}`, threadID)))

	var (
		got  []*protocol.ServerMessage
		errs []error
	)

	for msg, err := range c.Messages(context.Background()) {
		if err != nil {
			errs = append(errs, err)

			continue
		}

		got = append(got, msg)

		if len(got) == 2 {
			require.NoError(t, c.Close())
		}
	}

	require.Len(t, got, 2)
	assert.Equal(t, protocol.MethodThreadStarted, got[0].Method)
	assert.Equal(t, protocol.MethodAgentMessageDelta, got[1].Method)
	assert.Empty(t, errs, "deliberate shutdown should not surface an error")
}

func TestClient_MessagesSurfacesCrash(t *testing.T) {
	transport := newMockTransport()
	transport.script = appServerScript(uuid.NewString())

	c := startedClient(t, transport, nil)

	transport.crash(&errors.ProcessError{ExitCode: 1, Err: stderrors.New("exit status 1")})

	var errs []error

	for msg, err := range c.Messages(context.Background()) {
		require.Nil(t, msg)

		errs = append(errs, err)
	}

	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], errors.ErrConnClosed)

	procErr, ok := stderrors.AsType[*errors.ProcessError](errs[0])
	require.True(t, ok)
	assert.Equal(t, 1, procErr.ExitCode)
}

// TestClient_StartContextCancellation verifies that the client survives
// its startup context: the connection and subprocess belong to the
// client's lifecycle, not to the context Start happened to get.
func TestClient_StartContextCancellation(t *testing.T) {
	transport := newMockTransport()
	transport.script = appServerScript(uuid.NewString())

	ctx, cancel := context.WithCancel(context.Background())

	c := New()
	require.NoError(t, c.Start(ctx, &config.Options{
		Logger:    slog.Default(),
		Transport: transport,
	}))
	t.Cleanup(func() { _ = c.Close() })

	cancel()
	time.Sleep(50 * time.Millisecond)

	assert.True(t, c.isStarted(), "client should remain usable after ctx cancel")

	// Operations keep working with a fresh context.
	resp, err := c.ThreadStart(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ThreadID)

	require.NoError(t, c.Close())
}

func TestClient_GenericCallDecodesResult(t *testing.T) {
	transport := newMockTransport()
	transport.script = func(req *jsonrpc.Request) []jsonrpc.Message {
		switch req.Method {
		case protocol.MethodInitialize:
			return []jsonrpc.Message{response(req.ID, `{"userAgent":"codex/0.104.0"}`)}
		case "thread/list":
			return []jsonrpc.Message{response(req.ID, `{"threads":["th_1","th_2"]}`)}
		default:
			return nil
		}
	}

	c := startedClient(t, transport, nil)

	var result struct {
		Threads []string `json:"threads"`
	}

	require.NoError(t, c.Call(context.Background(), "thread/list", nil, &result))
	assert.Equal(t, []string{"th_1", "th_2"}, result.Threads)

	// A nil result pointer skips decoding entirely.
	require.NoError(t, c.Call(context.Background(), "thread/list", nil, nil))
}

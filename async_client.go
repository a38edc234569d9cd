package codexsdk

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/wagiedev/codex-agent-sdk-go/internal/protocol"
)

// AsyncClient extends Client with non-blocking request submission.
// Multiple calls can be in flight over the single app-server connection;
// responses are matched to callers by request id, so completion order
// follows the server, not submission order.
//
// Example usage:
//
//	client := NewAsyncClient()
//	defer client.Close()
//
//	if err := client.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	listModels, err := client.Send(ctx, "model/list", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... do other work, or send more requests ...
//
//	var models json.RawMessage
//	if err := listModels.Await(ctx, &models); err != nil {
//	    log.Fatal(err)
//	}
type AsyncClient interface {
	Client

	// Send writes a request and returns without waiting for the
	// response. The returned PendingCall resolves when the response
	// arrives. If the connection fails, every in-flight call resolves
	// with the same terminal error.
	Send(ctx context.Context, method string, params any) (*PendingCall, error)
}

// NewAsyncClient creates a new interactive client with non-blocking
// request submission. The embedded Client surface behaves exactly like
// NewClient().
func NewAsyncClient() AsyncClient {
	return &asyncWrapper{clientWrapper: newClientImpl()}
}

// asyncWrapper adds Send on top of the synchronous wrapper.
type asyncWrapper struct {
	*clientWrapper
}

// Compile-time check that *asyncWrapper implements the AsyncClient interface.
var _ AsyncClient = (*asyncWrapper)(nil)

// Send writes a request and returns a PendingCall for its response.
func (c *asyncWrapper) Send(ctx context.Context, method string, params any) (*PendingCall, error) {
	pending, err := c.impl.Send(ctx, method, params)
	if err != nil {
		return nil, err
	}

	return &PendingCall{pending: pending, done: make(chan struct{})}, nil
}

// PendingCall is one in-flight request. It resolves exactly once; Await
// and Done may be called any number of times, from any goroutine, and
// observe the same outcome.
type PendingCall struct {
	pending *protocol.Pending

	once sync.Once
	done chan struct{}
	raw  json.RawMessage
	err  error
}

// ID returns the request id assigned to this call.
func (p *PendingCall) ID() RequestID {
	return p.pending.ID()
}

// Done returns a channel that is closed when the call has resolved,
// for use in select statements. After Done is closed, Await returns
// immediately.
func (p *PendingCall) Done() <-chan struct{} {
	p.resolve()

	return p.done
}

// Await blocks until the response arrives and decodes the result into
// result, which may be nil to discard it. The configured request
// timeout applies from submission, not from the Await call. Cancelling
// ctx abandons this wait only; the call itself stays in flight and a
// later Await observes its outcome.
func (p *PendingCall) Await(ctx context.Context, result any) error {
	p.resolve()

	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if p.err != nil {
		return p.err
	}

	if result == nil || len(p.raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(p.raw, result); err != nil {
		return &DecodeError{Raw: string(p.raw), Err: err}
	}

	return nil
}

// resolve starts the single background wait for the response. The wait
// always terminates: a response, a connection failure, or the request
// timeout resolves the underlying pending entry.
func (p *PendingCall) resolve() {
	p.once.Do(func() {
		go func() {
			p.raw, p.err = p.pending.Await(context.Background())
			close(p.done)
		}()
	})
}

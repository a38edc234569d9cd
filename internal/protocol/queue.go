package protocol

import (
	"context"
	"sync"
)

// messageQueue is an unbounded FIFO of inbound server messages. The read
// loop pushes without ever blocking; consumers pop with context support.
// Closing records a terminal cause; pops drain messages received before
// the close and then return the cause.
type messageQueue struct {
	mu     sync.Mutex
	items  []*ServerMessage
	wake   chan struct{}
	done   chan struct{}
	closed bool
	cause  error
}

func newMessageQueue() *messageQueue {
	return &messageQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Push appends a message. Messages pushed after Close are dropped.
func (q *messageQueue) Push(msg *ServerMessage) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()

		return
	}
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pop returns the oldest message, blocking until one arrives, the queue
// closes, or ctx is done. After Close it drains the backlog and then
// returns the close cause.
func (q *messageQueue) Pop(ctx context.Context) (*ServerMessage, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items = q.items[1:]
			remaining := len(q.items) > 0
			q.mu.Unlock()

			// Pass the wakeup along so concurrent consumers see the
			// backlog too.
			if remaining {
				select {
				case q.wake <- struct{}{}:
				default:
				}
			}

			return msg, nil
		}
		if q.closed {
			cause := q.cause
			q.mu.Unlock()

			return nil, cause
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-q.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close records cause and wakes all blocked consumers. Only the first
// call takes effect.
func (q *messageQueue) Close(cause error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()

		return
	}
	q.closed = true
	q.cause = cause
	q.mu.Unlock()

	close(q.done)
}

// Len reports the number of queued messages.
func (q *messageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

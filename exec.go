package codexsdk

import (
	"context"
	"fmt"
	"iter"

	"github.com/wagiedev/codex-agent-sdk-go/internal/client"
	"github.com/wagiedev/codex-agent-sdk-go/internal/protocol"
)

// declineAllApprovals is the approval policy for unattended Exec runs
// with no configured handler.
func declineAllApprovals(ctx context.Context, req *ApprovalRequest) (ApprovalDecision, error) {
	return ApprovalDecline, nil
}

// Exec runs a single prompt against a fresh app-server and returns an
// iterator of messages: it spawns the server, starts a thread, submits
// the prompt, yields messages until the turn ends, then shuts the
// server down.
//
// By default, logging is disabled. Use WithLogger to enable logging:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	for msg, err := range Exec(ctx, "What is 2+2?",
//	    WithLogger(logger),
//	) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    // handle msg
//	}
//
// The iterator yields messages as they arrive, including item updates,
// streaming deltas, and the final turn/completed or turn/failed
// notification, after which iteration stops. Any errors during setup or
// execution are yielded inline with messages, allowing callers to
// handle all error conditions.
//
// Approval requests go through the handler configured with
// WithApprovalHandler. Without one, Exec declines every approval so an
// unattended run can never hang waiting for an answer.
//
// Example usage:
//
//	ctx := context.Background()
//	for msg, err := range Exec(ctx, "What is 2+2?") {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    switch n := msg.Parsed.(type) {
//	    case *ItemDeltaNotification:
//	        fmt.Print(n.Delta)
//	    case *TurnCompletedNotification:
//	        // Handle final turn record
//	    }
//	}
//
// Error Handling:
//
// Errors are yielded inline as the second return value. The iterator
// distinguishes between recoverable and fatal errors:
//
//   - Decode errors: A line from the server that cannot be decoded is
//     yielded as a message with its Err field set, and iteration
//     continues with the next line.
//
//   - Fatal errors: Spawn failures, process exits, and context
//     cancellation cause iteration to stop after yielding the error.
//
// Callers can always stop iteration early by breaking from the loop,
// regardless of error type.
func Exec(
	ctx context.Context,
	prompt string,
	opts ...Option,
) iter.Seq2[*ServerMessage, error] {
	return func(yield func(*ServerMessage, error) bool) {
		// Apply options
		options := applyOptions(opts)

		// An unattended run must not block on an approval request.
		if options.ApprovalHandler == nil {
			options.ApprovalHandler = declineAllApprovals
		}

		// Use provided logger or silent logger
		log := options.Logger
		if log == nil {
			log = NopLogger()
		}

		log = log.With("component", "exec")
		log.Debug("Starting one-shot execution")

		c := client.New()

		if err := c.Start(ctx, options); err != nil {
			log.Error("Failed to start app-server", "error", err)
			yield(nil, err)

			return
		}

		defer func() {
			if closeErr := c.Close(); closeErr != nil {
				log.Warn("failed to close client", "error", closeErr)
			}
		}()

		thread, err := c.ThreadStart(ctx, nil)
		if err != nil {
			yield(nil, fmt.Errorf("start thread: %w", err))

			return
		}

		err = c.TurnStart(ctx, &protocol.TurnStartParams{
			ThreadID: thread.ThreadID,
			Input:    []protocol.UserInput{protocol.TextInput(prompt)},
		})
		if err != nil {
			yield(nil, fmt.Errorf("start turn: %w", err))

			return
		}

		log.Debug("Reading messages until the turn ends")

		for {
			msg, err := c.NextMessage(ctx)
			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(msg, nil) {
				log.Debug("Yield returned false, stopping iteration")

				return
			}

			// The turn-ending notification is the last message
			if msg.Method == protocol.MethodTurnCompleted || msg.Method == protocol.MethodTurnFailed {
				return
			}
		}
	}
}

//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	codexsdk "github.com/wagiedev/codex-agent-sdk-go"
)

// runTurn starts a turn with the given prompt and drains messages until
// it ends, returning the final turn record.
func runTurn(t *testing.T, ctx context.Context, client codexsdk.Client, prompt string) *codexsdk.Turn {
	t.Helper()

	err := client.TurnStart(ctx, &codexsdk.TurnStartParams{
		ThreadID: client.ThreadID(),
		Input:    []codexsdk.UserInput{codexsdk.TextInput(prompt)},
	})
	require.NoError(t, err, "TurnStart should succeed")

	var final *codexsdk.Turn

	for msg, err := range client.ReceiveTurn(ctx) {
		require.NoError(t, err, "ReceiveTurn should not fail")

		switch n := msg.Parsed.(type) {
		case *codexsdk.TurnCompletedNotification:
			final = &n.Turn
		case *codexsdk.TurnFailedNotification:
			final = &n.Turn
		}
	}

	require.NotNil(t, final, "Turn should end with a final record")

	return final
}

// TestTurn_MultiTurnConversation tests that context carries across
// turns on the same thread.
func TestTurn_MultiTurnConversation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	client := startClient(t, ctx)

	_, err := client.ThreadStart(ctx, nil)
	require.NoError(t, err)

	first := runTurn(t, ctx, client, "Remember this number: 4. Confirm you have it.")
	require.Equal(t, codexsdk.TurnStatusCompleted, first.Status)

	second := runTurn(t, ctx, client, "What number did I ask you to remember? Reply with just the number.")
	require.Equal(t, codexsdk.TurnStatusCompleted, second.Status)

	answer := agentText(second)
	t.Logf("Second turn answer: %q", answer)

	require.True(t, contains4(answer), "Thread should retain context: %q", answer)

	// The session is back between turns, not closed.
	require.Equal(t, codexsdk.PhaseThreadActive, client.Phase())
}

// TestTurn_Interrupt tests that turn/interrupt ends a running turn with
// the interrupted status.
func TestTurn_Interrupt(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	client := startClient(t, ctx)

	thread, err := client.ThreadStart(ctx, nil)
	require.NoError(t, err)

	err = client.TurnStart(ctx, &codexsdk.TurnStartParams{
		ThreadID: thread.ThreadID,
		Input: []codexsdk.UserInput{
			codexsdk.TextInput("Count from 1 to 1000, one number per line."),
		},
	})
	require.NoError(t, err, "TurnStart should succeed")

	timer := time.AfterFunc(5*time.Second, func() {
		if err := client.TurnInterrupt(ctx, thread.ThreadID); err != nil {
			t.Logf("TurnInterrupt failed: %v", err)
		}
	})
	defer timer.Stop()

	var final *codexsdk.Turn

	for msg, err := range client.ReceiveTurn(ctx) {
		require.NoError(t, err, "ReceiveTurn should not fail")

		if n, ok := msg.Parsed.(*codexsdk.TurnCompletedNotification); ok {
			final = &n.Turn
		}
	}

	require.NotNil(t, final, "Interrupted turn should still produce a final record")
	require.Equal(t, codexsdk.TurnStatusInterrupted, final.Status)
	require.Equal(t, codexsdk.PhaseThreadActive, client.Phase(),
		"Session should accept new turns after an interrupt")
}

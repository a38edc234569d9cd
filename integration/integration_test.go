//go:build integration

package integration

import (
	"context"
	"errors"
	"strings"
	"testing"

	codexsdk "github.com/wagiedev/codex-agent-sdk-go"
)

// skipIfCodexNotInstalled skips the test if the error indicates the
// codex binary is not found.
func skipIfCodexNotInstalled(t *testing.T, err error) {
	t.Helper()

	if _, ok := errors.AsType[*codexsdk.CodexNotFoundError](err); ok {
		t.Skip("codex binary not installed")
	}
}

// startClient starts an interactive client or skips the test when no
// codex binary is available. The client is closed when the test ends.
func startClient(t *testing.T, ctx context.Context, opts ...codexsdk.Option) codexsdk.Client {
	t.Helper()

	client := codexsdk.NewClient()
	t.Cleanup(func() { client.Close() })

	if err := client.Start(ctx, opts...); err != nil {
		skipIfCodexNotInstalled(t, err)
		t.Fatalf("Start failed: %v", err)
	}

	return client
}

// contains4 checks if a string contains "4" in various formats.
func contains4(s string) bool {
	lower := strings.ToLower(s)

	return strings.Contains(lower, "4") || strings.Contains(lower, "four")
}

// agentText concatenates the text of every agent message item in a turn.
func agentText(turn *codexsdk.Turn) string {
	var sb strings.Builder

	for _, item := range turn.Items {
		if agent, ok := item.(*codexsdk.AgentMessageItem); ok {
			sb.WriteString(agent.Text)
		}
	}

	return sb.String()
}

package codexsdk_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	codexsdk "github.com/wagiedev/codex-agent-sdk-go"
)

func TestWithClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := codexsdk.WithClient(ctx, func(c codexsdk.Client) error {
		called = true

		return nil
	}, codexsdk.WithLogger(codexsdk.NopLogger()))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called, "callback must not run when the context is already cancelled")
}

func TestWithClient_StartFailurePropagates(t *testing.T) {
	called := false
	err := codexsdk.WithClient(context.Background(), func(c codexsdk.Client) error {
		called = true

		return nil
	},
		codexsdk.WithCodexPath("/nonexistent/path/to/codex"),
		codexsdk.WithLogger(codexsdk.NopLogger()),
	)

	require.Error(t, err)

	_, ok := errors.AsType[*codexsdk.CodexNotFoundError](err)
	assert.True(t, ok)
	assert.False(t, called, "callback must not run when the client fails to start")
}

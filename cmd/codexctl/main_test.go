package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	codexsdk "github.com/wagiedev/codex-agent-sdk-go"
)

func TestValidateOptions(t *testing.T) {
	assert.NoError(t, validateOptions(&options{}))

	for _, effort := range []string{"minimal", "low", "medium", "high", "xhigh"} {
		assert.NoError(t, validateOptions(&options{Effort: effort}), effort)
	}

	for _, sandbox := range []string{"read-only", "workspace-write", "danger-full-access"} {
		assert.NoError(t, validateOptions(&options{Sandbox: sandbox}), sandbox)
	}

	err := validateOptions(&options{Effort: "extreme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown effort "extreme"`)

	err = validateOptions(&options{Sandbox: "none"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown sandbox "none"`)
}

func TestTurnParams(t *testing.T) {
	opts := &options{Model: "gpt-5.1-codex", Effort: "high", Sandbox: "workspace-write"}

	params := turnParams(opts, "th_1", "list the files")
	assert.Equal(t, "th_1", params.ThreadID)
	assert.Equal(t, []codexsdk.UserInput{codexsdk.TextInput("list the files")}, params.Input)
	assert.Equal(t, "gpt-5.1-codex", params.Model)
	assert.Equal(t, codexsdk.ReasoningEffortHigh, params.ReasoningEffort)
	assert.JSONEq(t, `{"mode":"workspace-write"}`, string(params.SandboxPolicy))
}

func TestTurnParams_BareDefaults(t *testing.T) {
	params := turnParams(&options{}, "th_1", "hi")

	assert.Empty(t, params.Model)
	assert.Empty(t, params.ReasoningEffort)
	assert.Nil(t, params.SandboxPolicy)
}

func applyClientOptions(t *testing.T, clientOpts []codexsdk.Option) *codexsdk.Options {
	t.Helper()

	applied := &codexsdk.Options{}
	for _, opt := range clientOpts {
		opt(applied)
	}

	return applied
}

func TestClientOptions(t *testing.T) {
	opts := &options{
		CodexPath:       "/opt/codex",
		Cwd:             "/srv/repo",
		ConfigOverrides: map[string]string{"model_verbosity": `"low"`},
		Timeout:         30 * time.Second,
		Verbose:         true,
	}

	applied := applyClientOptions(t, clientOptions(opts))

	assert.Equal(t, "/opt/codex", applied.CodexPath)
	assert.Equal(t, "/srv/repo", applied.Cwd)
	assert.Equal(t, map[string]string{"model_verbosity": `"low"`}, applied.ConfigOverrides)
	require.NotNil(t, applied.RequestTimeout)
	assert.Equal(t, 30*time.Second, *applied.RequestTimeout)
	assert.NotNil(t, applied.Logger)
	require.NotNil(t, applied.ClientInfo)
	assert.Equal(t, "codexctl", applied.ClientInfo.Name)
	assert.Equal(t, version, applied.ClientInfo.Version)
}

func TestClientOptions_Defaults(t *testing.T) {
	applied := applyClientOptions(t, clientOptions(&options{}))

	assert.Empty(t, applied.CodexPath)
	assert.Empty(t, applied.Cwd)
	assert.Nil(t, applied.ConfigOverrides)
	assert.Nil(t, applied.RequestTimeout)
	assert.Nil(t, applied.Logger)
	require.NotNil(t, applied.ClientInfo)
	assert.Equal(t, "codexctl", applied.ClientInfo.Name)
}

func TestFormatClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil",
			err:  nil,
			want: "",
		},
		{
			name: "cancelled",
			err:  fmt.Errorf("read messages: %w", context.Canceled),
			want: "cancelled",
		},
		{
			name: "timeout",
			err:  fmt.Errorf("initialize: %w", codexsdk.ErrRequestTimeout),
			want: "request timed out; raise --timeout or set it to 0",
		},
		{
			name: "not found",
			err: fmt.Errorf("start transport: %w", &codexsdk.CodexNotFoundError{
				SearchedPaths: []string{"$PATH", "/usr/local/bin/codex"},
			}),
			want: "codex binary not found (searched $PATH, /usr/local/bin/codex); install codex or pass --codex",
		},
		{
			name: "process with stderr",
			err:  &codexsdk.ProcessError{ExitCode: 137, Stderr: "killed\n"},
			want: "codex exited with status 137: killed",
		},
		{
			name: "process without stderr",
			err:  &codexsdk.ProcessError{ExitCode: 1},
			want: "codex exited with status 1",
		},
		{
			name: "rpc",
			err:  fmt.Errorf("turn/start: %w", &codexsdk.RPCError{Code: -32600, Message: "bad request"}),
			want: "server rejected the request: bad request (code -32600)",
		},
		{
			name: "plain",
			err:  errors.New("something else"),
			want: "something else",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatClientError(tt.err))
		})
	}
}

func TestSessionDead(t *testing.T) {
	assert.True(t, sessionDead(fmt.Errorf("send: %w", codexsdk.ErrConnClosed)))
	assert.True(t, sessionDead(codexsdk.ErrClientClosed))
	assert.True(t, sessionDead(codexsdk.ErrClientNotStarted))

	assert.False(t, sessionDead(&codexsdk.RPCError{Code: -32600, Message: "bad request"}))
	assert.False(t, sessionDead(errors.New("other")))
}

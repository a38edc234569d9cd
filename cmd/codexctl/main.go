package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	codexsdk "github.com/wagiedev/codex-agent-sdk-go"
)

// version is the codexctl build version.
const version = "0.1.0"

// options holds the CLI flags shared by all codexctl commands.
type options struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string
	// CodexPath is an explicit path to the codex binary.
	CodexPath string
	// Cwd is the working directory for the app-server process.
	Cwd string
	// ConfigOverrides are -c key=value settings passed to codex verbatim.
	ConfigOverrides map[string]string
	// Model overrides the model for each turn.
	Model string
	// Effort selects the reasoning effort preset for each turn.
	Effort string
	// Sandbox selects the sandbox policy preset for each turn.
	Sandbox string
	// AutoApprove accepts every approval request without prompting.
	AutoApprove bool
	// Timeout bounds each request/response round trip.
	Timeout time.Duration
	// Verbose enables debug logging to stderr.
	Verbose bool
}

// main wires Cobra and executes the CLI.
func main() {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:          "codexctl",
		Short:        "Drive a codex app-server from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadFileConfig(cmd.Flags(), opts); err != nil {
				return err
			}

			return validateOptions(opts)
		},
	}

	applyFlags(rootCmd.PersistentFlags(), opts)

	rootCmd.AddCommand(replCommand(opts))
	rootCmd.AddCommand(execCommand(opts))
	rootCmd.AddCommand(versionCommand(opts))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyFlags defines the flags shared by every codexctl command.
func applyFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVar(&opts.ConfigPath, "config", "", "Config file (default ~/.config/codexctl/config.toml)")
	flags.StringVar(&opts.CodexPath, "codex", "", "Path to the codex binary")
	flags.StringVar(&opts.Cwd, "cwd", "", "Working directory for the app-server")
	flags.StringVar(&opts.Model, "model", "", "Model for each turn")
	flags.StringVar(&opts.Effort, "effort", "", "Reasoning effort (minimal|low|medium|high|xhigh)")
	flags.StringVar(&opts.Sandbox, "sandbox", "", "Sandbox policy (read-only|workspace-write|danger-full-access)")
	flags.BoolVar(&opts.AutoApprove, "auto-approve", false, "Accept every approval request without asking")
	flags.DurationVar(&opts.Timeout, "timeout", 0, "Per-request timeout, 0 disables")
	flags.BoolVar(&opts.Verbose, "verbose", false, "Debug logging to stderr")
}

// validateOptions rejects effort and sandbox values the server would not
// recognize, before any process is spawned.
func validateOptions(opts *options) error {
	switch codexsdk.ReasoningEffort(opts.Effort) {
	case "", codexsdk.ReasoningEffortMinimal, codexsdk.ReasoningEffortLow,
		codexsdk.ReasoningEffortMedium, codexsdk.ReasoningEffortHigh, codexsdk.ReasoningEffortXHigh:
	default:
		return fmt.Errorf("unknown effort %q (want minimal|low|medium|high|xhigh)", opts.Effort)
	}

	switch codexsdk.SandboxMode(opts.Sandbox) {
	case "", codexsdk.SandboxModeReadOnly, codexsdk.SandboxModeWorkspaceWrite,
		codexsdk.SandboxModeDangerFullAccess:
	default:
		return fmt.Errorf("unknown sandbox %q (want read-only|workspace-write|danger-full-access)", opts.Sandbox)
	}

	return nil
}

// clientOptions maps CLI options onto SDK options.
func clientOptions(opts *options) []codexsdk.Option {
	clientOpts := []codexsdk.Option{
		codexsdk.WithClientInfo(&codexsdk.ClientInfo{Name: "codexctl", Version: version}),
	}

	if opts.CodexPath != "" {
		clientOpts = append(clientOpts, codexsdk.WithCodexPath(opts.CodexPath))
	}

	if opts.Cwd != "" {
		clientOpts = append(clientOpts, codexsdk.WithCwd(opts.Cwd))
	}

	if len(opts.ConfigOverrides) > 0 {
		clientOpts = append(clientOpts, codexsdk.WithConfigOverrides(opts.ConfigOverrides))
	}

	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, codexsdk.WithRequestTimeout(opts.Timeout))
	}

	if opts.Verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		clientOpts = append(clientOpts, codexsdk.WithLogger(slog.New(handler)))
	}

	return clientOpts
}

// turnParams builds the turn/start payload for one prompt from the model,
// effort, and sandbox settings in effect.
func turnParams(opts *options, threadID string, prompt string) *codexsdk.TurnStartParams {
	params := &codexsdk.TurnStartParams{
		ThreadID: threadID,
		Input:    []codexsdk.UserInput{codexsdk.TextInput(prompt)},
		Model:    opts.Model,
	}

	if opts.Effort != "" {
		params.ReasoningEffort = codexsdk.ReasoningEffort(opts.Effort)
	}

	if opts.Sandbox != "" {
		params.SandboxPolicy = json.RawMessage(fmt.Sprintf(`{"mode":%q}`, opts.Sandbox))
	}

	return params
}

// versionCommand reports codexctl's own version and the codex binary
// found on this machine.
func versionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print codexctl and codex versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Printf("codexctl %s (tested against codex %s)\n", version, codexsdk.TestedCodexVersion)

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			probed, err := codexsdk.ProbeCodexVersion(ctx, opts.CodexPath)
			if err != nil {
				fmt.Printf("codex: %s\n", formatClientError(err))

				return nil
			}

			fmt.Printf("codex %s\n", probed)

			return nil
		},
	}
}

// acceptAllApprovals is the approval policy behind --auto-approve.
func acceptAllApprovals(_ context.Context, _ *codexsdk.ApprovalRequest) (codexsdk.ApprovalDecision, error) {
	return codexsdk.ApprovalAccept, nil
}

// sessionDead reports whether the client can still serve another prompt.
func sessionDead(err error) bool {
	return errors.Is(err, codexsdk.ErrConnClosed) ||
		errors.Is(err, codexsdk.ErrClientClosed) ||
		errors.Is(err, codexsdk.ErrClientNotStarted)
}

// withInterrupt builds a context that is cancelled on SIGINT.
func withInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	done := make(chan struct{})

	go func() {
		select {
		case <-interrupt:
			cancel()
		case <-done:
		}
	}()

	return ctx, func() {
		close(done)
		signal.Stop(interrupt)
		cancel()
	}
}

// formatClientError normalizes SDK errors for terminal output.
func formatClientError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, codexsdk.ErrRequestTimeout):
		return "request timed out; raise --timeout or set it to 0"
	}

	if nfErr, ok := errors.AsType[*codexsdk.CodexNotFoundError](err); ok {
		return fmt.Sprintf("codex binary not found (searched %s); install codex or pass --codex",
			strings.Join(nfErr.SearchedPaths, ", "))
	}

	if procErr, ok := errors.AsType[*codexsdk.ProcessError](err); ok {
		if stderr := strings.TrimSpace(procErr.Stderr); stderr != "" {
			return fmt.Sprintf("codex exited with status %d: %s", procErr.ExitCode, stderr)
		}

		return fmt.Sprintf("codex exited with status %d", procErr.ExitCode)
	}

	if rpcErr, ok := errors.AsType[*codexsdk.RPCError](err); ok {
		return fmt.Sprintf("server rejected the request: %s (code %d)", rpcErr.Message, rpcErr.Code)
	}

	return err.Error()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	codexsdk "github.com/wagiedev/codex-agent-sdk-go"
)

// execCommand runs a single prompt and exits.
func execCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   `exec "prompt"`,
		Short: "Run one prompt and print the streamed reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), opts, args[0])
		},
	}
}

// runExec drives one unattended turn. The process exit status follows
// the turn status: zero only when the turn completed.
func runExec(ctx context.Context, opts *options, prompt string) error {
	ctx, stop := withInterrupt(ctx)
	defer stop()

	execOpts := clientOptions(opts)

	// The one-shot path starts its turn with default params, so turn
	// settings travel as codex config overrides instead.
	if opts.Model != "" {
		execOpts = append(execOpts, codexsdk.WithConfigOverride("model", strconv.Quote(opts.Model)))
	}

	if opts.Effort != "" {
		execOpts = append(execOpts, codexsdk.WithConfigOverride("model_reasoning_effort", strconv.Quote(opts.Effort)))
	}

	if opts.Sandbox != "" {
		execOpts = append(execOpts, codexsdk.WithConfigOverride("sandbox_mode", strconv.Quote(opts.Sandbox)))
	}

	if opts.AutoApprove {
		execOpts = append(execOpts, codexsdk.WithApprovalHandler(acceptAllApprovals))
	}

	out := newTurnRenderer(os.Stdout)

	var final *codexsdk.Turn

	for msg, err := range codexsdk.Exec(ctx, prompt, execOpts...) {
		if err != nil {
			out.EnsureNewline()

			return errors.New(formatClientError(err))
		}

		out.Render(msg)

		switch n := msg.Parsed.(type) {
		case *codexsdk.TurnCompletedNotification:
			final = &n.Turn
		case *codexsdk.TurnFailedNotification:
			final = &n.Turn
		}
	}

	if final == nil {
		return errors.New("turn ended without a final status")
	}

	if final.Status != codexsdk.TurnStatusCompleted {
		return fmt.Errorf("turn %s", final.Status)
	}

	return nil
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	codexsdk "github.com/wagiedev/codex-agent-sdk-go"
)

// replCommand runs an interactive session over one persistent thread.
func replCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive session over a persistent thread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd.Context(), opts)
		},
	}
}

// replSession holds the live state of one REPL run.
type replSession struct {
	opts     *options
	client   codexsdk.Client
	threadID string
	in       *bufio.Scanner
	out      *turnRenderer
}

// runRepl spawns the app-server, opens a thread, and loops over prompts
// until exit or EOF.
func runRepl(ctx context.Context, opts *options) error {
	client := codexsdk.NewClient()
	defer client.Close()

	clientOpts := clientOptions(opts)
	if opts.AutoApprove {
		clientOpts = append(clientOpts, codexsdk.WithApprovalHandler(acceptAllApprovals))
	}

	if err := client.Start(ctx, clientOpts...); err != nil {
		return errors.New(formatClientError(err))
	}

	thread, err := client.ThreadStart(ctx, nil)
	if err != nil {
		return fmt.Errorf("start thread: %s", formatClientError(err))
	}

	session := &replSession{
		opts:     opts,
		client:   client,
		threadID: thread.ThreadID,
		in:       bufio.NewScanner(os.Stdin),
		out:      newTurnRenderer(os.Stdout),
	}
	session.banner()

	for {
		fmt.Print("> ")

		if !session.in.Scan() {
			fmt.Println()

			return session.in.Err()
		}

		line := strings.TrimSpace(session.in.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := session.runTurn(ctx, line); err != nil {
			return err
		}
	}
}

// banner prints the session header once the handshake is done.
func (s *replSession) banner() {
	s.out.Notice(fmt.Sprintf("connected to %s, thread %s", s.client.UserAgent(), s.threadID))
	s.out.Notice(`type a prompt, or "exit" to quit; Ctrl-C interrupts a running turn`)
}

// runTurn submits one prompt and streams output until the turn ends.
// Failures that leave the session usable are printed, not returned, so
// the prompt loop continues.
func (s *replSession) runTurn(ctx context.Context, prompt string) error {
	if err := s.client.TurnStart(ctx, turnParams(s.opts, s.threadID, prompt)); err != nil {
		if sessionDead(err) {
			return errors.New(formatClientError(err))
		}

		s.out.Error(formatClientError(err))

		return nil
	}

	s.out.Reset()

	return s.streamTurn(ctx)
}

// streamTurn drains messages for the running turn, answering approval
// requests inline. Ctrl-C asks the server to interrupt; the stream still
// runs to the turn's final notification.
func (s *replSession) streamTurn(ctx context.Context) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-interrupt:
			fmt.Fprintln(os.Stderr, "interrupting turn")

			if err := s.client.TurnInterrupt(ctx, s.threadID); err != nil {
				fmt.Fprintln(os.Stderr, formatClientError(err))
			}
		case <-done:
		}
	}()

	for msg, err := range s.client.ReceiveTurn(ctx) {
		if err != nil {
			return errors.New(formatClientError(err))
		}

		if msg.IsRequest() {
			if err := s.answerRequest(ctx, msg); err != nil {
				return errors.New(formatClientError(err))
			}

			continue
		}

		s.out.Render(msg)
	}

	return nil
}

// answerRequest resolves one server-initiated request from the stream.
func (s *replSession) answerRequest(ctx context.Context, msg *codexsdk.ServerMessage) error {
	req, ok := msg.Parsed.(*codexsdk.ApprovalRequest)
	if !ok {
		// Requests this build does not understand still need an answer.
		return s.client.RespondError(ctx, *msg.ID, fmt.Sprintf("codexctl cannot answer %s", msg.Method))
	}

	decision := s.promptApproval(req)

	return s.client.Respond(ctx, *msg.ID, &codexsdk.ApprovalResponse{Decision: decision})
}

// promptApproval asks the user to decide one approval request. EOF on
// stdin declines.
func (s *replSession) promptApproval(req *codexsdk.ApprovalRequest) codexsdk.ApprovalDecision {
	s.out.EnsureNewline()

	switch req.Kind {
	case codexsdk.ApprovalKindFileChange:
		s.out.Banner("approval: apply file changes")
	default:
		s.out.Banner("approval: run " + req.Command)

		if req.Cwd != "" {
			s.out.Notice("in " + req.Cwd)
		}
	}

	if req.Reason != "" {
		s.out.Notice(req.Reason)
	}

	fmt.Print("[y]es / [s]ession / [N]o > ")

	if !s.in.Scan() {
		return codexsdk.ApprovalDecline
	}

	switch strings.ToLower(strings.TrimSpace(s.in.Text())) {
	case "y", "yes":
		return codexsdk.ApprovalAccept
	case "s", "session":
		return codexsdk.ApprovalAcceptForSession
	default:
		return codexsdk.ApprovalDecline
	}
}

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	codexsdk "github.com/wagiedev/codex-agent-sdk-go"
)

// Styles for streamed turn output. Agent text stays unstyled; reasoning
// is dimmed, command banners are cyan, errors are red.
var (
	reasoningStyle = lipgloss.NewStyle().Faint(true)
	bannerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// turnRenderer prints streamed turn output, tracking whether a delta line
// is still open so banners never land mid-line.
type turnRenderer struct {
	// out is the destination writer for all rendered output.
	out io.Writer
	// lineOpen reports whether the last delta ended without a newline.
	lineOpen bool
	// streamed records item ids whose agent text already went out as
	// deltas, so the completed item is not printed a second time.
	streamed map[string]bool
}

// newTurnRenderer builds a renderer writing to out.
func newTurnRenderer(out io.Writer) *turnRenderer {
	return &turnRenderer{out: out, streamed: make(map[string]bool)}
}

// Reset clears per-turn state before a new turn begins.
func (r *turnRenderer) Reset() {
	r.lineOpen = false
	r.streamed = make(map[string]bool)
}

// EnsureNewline terminates a streaming line if one is in progress.
func (r *turnRenderer) EnsureNewline() {
	if !r.lineOpen {
		return
	}

	fmt.Fprintln(r.out)
	r.lineOpen = false
}

// Banner prints a highlighted single-line marker.
func (r *turnRenderer) Banner(text string) {
	r.EnsureNewline()
	fmt.Fprintln(r.out, bannerStyle.Render(text))
}

// Notice prints a dimmed informational line.
func (r *turnRenderer) Notice(text string) {
	r.EnsureNewline()
	fmt.Fprintln(r.out, noticeStyle.Render(text))
}

// Error prints a highlighted error line.
func (r *turnRenderer) Error(text string) {
	r.EnsureNewline()
	fmt.Fprintln(r.out, errorStyle.Render(text))
}

// Render prints one streamed message. Notifications this renderer has no
// display for are skipped.
func (r *turnRenderer) Render(msg *codexsdk.ServerMessage) {
	if msg.Err != nil {
		r.Notice("skipped undecodable server output: " + msg.Err.Error())

		return
	}

	switch n := msg.Parsed.(type) {
	case *codexsdk.ItemDeltaNotification:
		r.renderDelta(msg.Method, n)
	case *codexsdk.ItemStartedNotification:
		r.renderItemStarted(n.Item)
	case *codexsdk.ItemCompletedNotification:
		r.renderItemCompleted(n.Item)
	case *codexsdk.ErrorNotification:
		text := n.Error
		if n.WillRetry {
			text += " (retrying)"
		}

		r.Error(text)
	case *codexsdk.TurnCompletedNotification:
		r.renderTurnEnd(&n.Turn)
	case *codexsdk.TurnFailedNotification:
		r.renderTurnEnd(&n.Turn)
	}
}

// renderDelta streams one text chunk in the style of its channel.
func (r *turnRenderer) renderDelta(method string, n *codexsdk.ItemDeltaNotification) {
	switch method {
	case codexsdk.MethodAgentMessageDelta:
		r.streamed[n.ItemID] = true
		fmt.Fprint(r.out, n.Delta)
	case codexsdk.MethodReasoningSummaryDelta:
		fmt.Fprint(r.out, reasoningStyle.Render(n.Delta))
	case codexsdk.MethodCommandOutputDelta, codexsdk.MethodFileChangeOutputDelta:
		fmt.Fprint(r.out, n.Delta)
	default:
		return
	}

	r.lineOpen = !strings.HasSuffix(n.Delta, "\n")
}

// renderItemStarted prints a banner when a long-running item begins.
func (r *turnRenderer) renderItemStarted(item codexsdk.ThreadItem) {
	switch it := item.(type) {
	case *codexsdk.CommandExecutionItem:
		r.Banner("$ " + it.Command)
	case *codexsdk.FileChangeItem:
		r.Banner(fmt.Sprintf("applying %d file change(s)", len(it.Changes)))
	case *codexsdk.McpToolCallItem:
		r.Banner(fmt.Sprintf("tool %s/%s", it.Server, it.Tool))
	case *codexsdk.WebSearchItem:
		r.Banner("searching: " + it.Query)
	}
}

// renderItemCompleted reports item outcomes, plus agent text that never
// went out as deltas.
func (r *turnRenderer) renderItemCompleted(item codexsdk.ThreadItem) {
	switch it := item.(type) {
	case *codexsdk.AgentMessageItem:
		if r.streamed[it.ID] || it.Text == "" {
			return
		}

		r.EnsureNewline()
		fmt.Fprintln(r.out, it.Text)
	case *codexsdk.CommandExecutionItem:
		switch it.Status {
		case codexsdk.CommandStatusFailed:
			exit := "?"
			if it.ExitCode != nil {
				exit = strconv.Itoa(*it.ExitCode)
			}

			r.Error("command failed (exit " + exit + ")")
		case codexsdk.CommandStatusDeclined:
			r.Notice("command declined")
		}
	case *codexsdk.FileChangeItem:
		if it.Status == codexsdk.FileChangeFailed {
			r.Error("file changes failed")

			return
		}

		for _, change := range it.Changes {
			r.Notice(fmt.Sprintf("%s %s", change.Kind, change.Path))
		}
	case *codexsdk.ErrorItem:
		r.Error(it.Message)
	}
}

// renderTurnEnd closes the stream and reports non-success statuses.
func (r *turnRenderer) renderTurnEnd(turn *codexsdk.Turn) {
	r.EnsureNewline()

	switch turn.Status {
	case codexsdk.TurnStatusCompleted:
	case codexsdk.TurnStatusInterrupted:
		r.Notice("turn interrupted")
	default:
		text := "turn failed"
		if turn.Error != nil && turn.Error.Message != "" {
			text = "turn failed: " + turn.Error.Message
		}

		r.Error(text)
	}
}

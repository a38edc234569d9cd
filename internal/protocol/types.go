package protocol

import (
	"context"
	"encoding/json"

	"github.com/wagiedev/codex-agent-sdk-go/internal/jsonrpc"
)

// ClientInfo identifies the client application during the initialize
// handshake.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Title   string `json:"title,omitempty"`
}

// InitializeCapabilities selects optional protocol behavior. The app server
// reads these fields in snake_case.
type InitializeCapabilities struct {
	ExperimentalAPI           bool     `json:"experimental_api,omitempty"`
	OptOutNotificationMethods []string `json:"opt_out_notification_methods,omitempty"`
}

// InitializeParams is the payload of the initialize request.
type InitializeParams struct {
	ClientInfo   ClientInfo              `json:"clientInfo"`
	Capabilities *InitializeCapabilities `json:"capabilities,omitempty"`
}

// InitializeResponse is the result of the initialize request.
type InitializeResponse struct {
	UserAgent string `json:"userAgent"`
}

// Input item types.
const (
	InputTypeText  = "text"
	InputTypeImage = "image"
)

// UserInput is one element of a turn's input. Text inputs carry Text,
// image inputs carry Data (a data URL or base64 payload).
type UserInput struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Data string `json:"data,omitempty"`
}

// TextInput returns a text input item.
func TextInput(text string) UserInput {
	return UserInput{Type: InputTypeText, Text: text}
}

// ImageInput returns an image input item.
func ImageInput(data string) UserInput {
	return UserInput{Type: InputTypeImage, Data: data}
}

// ThreadStartParams is the payload of the thread/start request. Tools are
// serialized tool specifications passed through to the server verbatim.
type ThreadStartParams struct {
	Instructions string            `json:"instructions,omitempty"`
	Tools        []json.RawMessage `json:"tools,omitempty"`
}

// ThreadStartResponse is the result of the thread/start request.
type ThreadStartResponse struct {
	ThreadID string `json:"threadId"`
}

// ThreadArchiveParams is the payload of the thread/archive request.
type ThreadArchiveParams struct {
	ThreadID string `json:"threadId"`
}

// ReasoningEffort controls how much reasoning the model applies to a turn.
type ReasoningEffort string

const (
	ReasoningEffortMinimal ReasoningEffort = "minimal"
	ReasoningEffortLow     ReasoningEffort = "low"
	ReasoningEffortMedium  ReasoningEffort = "medium"
	ReasoningEffortHigh    ReasoningEffort = "high"
	ReasoningEffortXHigh   ReasoningEffort = "xhigh"
)

// SandboxMode names the sandbox policy presets understood by the server.
type SandboxMode string

const (
	SandboxModeReadOnly         SandboxMode = "read-only"
	SandboxModeWorkspaceWrite   SandboxMode = "workspace-write"
	SandboxModeDangerFullAccess SandboxMode = "danger-full-access"
)

// TurnStartParams is the payload of the turn/start request.
type TurnStartParams struct {
	ThreadID        string          `json:"threadId"`
	Input           []UserInput     `json:"input"`
	Model           string          `json:"model,omitempty"`
	ReasoningEffort ReasoningEffort `json:"reasoningEffort,omitempty"`
	SandboxPolicy   json.RawMessage `json:"sandboxPolicy,omitempty"`
}

// TurnSteerParams is the payload of the turn/steer request, which injects
// additional input into a running turn.
type TurnSteerParams struct {
	ThreadID string      `json:"threadId"`
	Input    []UserInput `json:"input"`
}

// TurnInterruptParams is the payload of the turn/interrupt request.
type TurnInterruptParams struct {
	ThreadID string `json:"threadId"`
}

// TurnStatus is the lifecycle state of a turn.
type TurnStatus string

const (
	TurnStatusInProgress  TurnStatus = "inProgress"
	TurnStatusCompleted   TurnStatus = "completed"
	TurnStatusInterrupted TurnStatus = "interrupted"
	TurnStatusFailed      TurnStatus = "failed"
)

// ThreadStatus is the lifecycle state of a thread.
type ThreadStatus string

const (
	ThreadStatusNotLoaded   ThreadStatus = "notLoaded"
	ThreadStatusIdle        ThreadStatus = "idle"
	ThreadStatusActive      ThreadStatus = "active"
	ThreadStatusSystemError ThreadStatus = "systemError"
)

// TurnError describes why a turn failed.
type TurnError struct {
	Message        string          `json:"message"`
	CodexErrorInfo json.RawMessage `json:"codexErrorInfo,omitempty"`
}

// Turn is the record of one completed or failed turn, including the items
// it produced.
type Turn struct {
	ID     string       `json:"id"`
	Items  []ThreadItem `json:"items"`
	Status TurnStatus   `json:"status"`
	Error  *TurnError   `json:"error,omitempty"`
}

// UnmarshalJSON decodes the items array through the item union.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     string            `json:"id"`
		Items  []json.RawMessage `json:"items"`
		Status TurnStatus        `json:"status"`
		Error  *TurnError        `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	items := make([]ThreadItem, 0, len(raw.Items))
	for _, rawItem := range raw.Items {
		item, err := UnmarshalThreadItem(rawItem)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	t.ID = raw.ID
	t.Items = items
	t.Status = raw.Status
	t.Error = raw.Error

	return nil
}

// TokenUsage reports cumulative token consumption for a thread.
type TokenUsage struct {
	InputTokens       int64 `json:"inputTokens"`
	OutputTokens      int64 `json:"outputTokens"`
	CachedInputTokens int64 `json:"cachedInputTokens"`
}

// ThreadStartedNotification is the payload of thread/started.
type ThreadStartedNotification struct {
	ThreadID string `json:"threadId"`
}

// ThreadStatusChangedNotification is the payload of thread/status/changed.
type ThreadStatusChangedNotification struct {
	ThreadID string       `json:"threadId"`
	Status   ThreadStatus `json:"status"`
}

// ThreadTokenUsageNotification is the payload of thread/tokenUsage/updated.
type ThreadTokenUsageNotification struct {
	ThreadID string     `json:"threadId"`
	Usage    TokenUsage `json:"usage"`
}

// TurnStartedNotification is the payload of turn/started.
type TurnStartedNotification struct {
	ThreadID string `json:"threadId"`
	TurnID   string `json:"turnId"`
}

// TurnCompletedNotification is the payload of turn/completed. The embedded
// turn carries the final status, which may be interrupted or failed.
type TurnCompletedNotification struct {
	ThreadID string `json:"threadId"`
	TurnID   string `json:"turnId"`
	Turn     Turn   `json:"turn"`
}

// TurnFailedNotification is the payload of turn/failed.
type TurnFailedNotification struct {
	ThreadID string `json:"threadId"`
	TurnID   string `json:"turnId"`
	Turn     Turn   `json:"turn"`
}

// ItemStartedNotification is the payload of item/started.
type ItemStartedNotification struct {
	ThreadID string     `json:"threadId"`
	TurnID   string     `json:"turnId"`
	Item     ThreadItem `json:"item"`
}

// UnmarshalJSON decodes the embedded item through the item union.
func (n *ItemStartedNotification) UnmarshalJSON(data []byte) error {
	var raw struct {
		ThreadID string          `json:"threadId"`
		TurnID   string          `json:"turnId"`
		Item     json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	item, err := UnmarshalThreadItem(raw.Item)
	if err != nil {
		return err
	}

	n.ThreadID = raw.ThreadID
	n.TurnID = raw.TurnID
	n.Item = item

	return nil
}

// ItemCompletedNotification is the payload of item/completed.
type ItemCompletedNotification struct {
	ThreadID string     `json:"threadId"`
	TurnID   string     `json:"turnId"`
	Item     ThreadItem `json:"item"`
}

// UnmarshalJSON decodes the embedded item through the item union.
func (n *ItemCompletedNotification) UnmarshalJSON(data []byte) error {
	var raw struct {
		ThreadID string          `json:"threadId"`
		TurnID   string          `json:"turnId"`
		Item     json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	item, err := UnmarshalThreadItem(raw.Item)
	if err != nil {
		return err
	}

	n.ThreadID = raw.ThreadID
	n.TurnID = raw.TurnID
	n.Item = item

	return nil
}

// ItemDeltaNotification is the shared payload of the streaming delta
// notifications: item/agentMessage/delta, item/commandExecution/outputDelta,
// item/fileChange/outputDelta and item/reasoning/summaryTextDelta.
type ItemDeltaNotification struct {
	ThreadID string `json:"threadId"`
	ItemID   string `json:"itemId"`
	Delta    string `json:"delta"`
}

// ErrorNotification is the payload of the error notification. WillRetry
// reports whether the server intends to retry the failed operation.
type ErrorNotification struct {
	Error     string `json:"error"`
	ThreadID  string `json:"threadId,omitempty"`
	TurnID    string `json:"turnId,omitempty"`
	WillRetry bool   `json:"willRetry"`
}

// CommandApprovalParams is the payload of the
// item/commandExecution/requestApproval server request.
type CommandApprovalParams struct {
	ThreadID string `json:"threadId"`
	TurnID   string `json:"turnId"`
	CallID   string `json:"callId"`
	Command  string `json:"command"`
	Cwd      string `json:"cwd"`
	Reason   string `json:"reason,omitempty"`
}

// FileChangeApprovalParams is the payload of the
// item/fileChange/requestApproval server request. Changes is the proposed
// change set, passed through verbatim.
type FileChangeApprovalParams struct {
	ThreadID string          `json:"threadId"`
	TurnID   string          `json:"turnId"`
	CallID   string          `json:"callId"`
	Changes  json.RawMessage `json:"changes"`
	Reason   string          `json:"reason,omitempty"`
}

// ApprovalDecision is the client's answer to an approval request.
type ApprovalDecision string

const (
	ApprovalAccept           ApprovalDecision = "accept"
	ApprovalAcceptForSession ApprovalDecision = "acceptForSession"
	ApprovalDecline          ApprovalDecision = "decline"
	ApprovalCancel           ApprovalDecision = "cancel"
)

// ApprovalResponse is the result payload sent back for an approval request.
type ApprovalResponse struct {
	Decision ApprovalDecision `json:"decision"`
}

// ApprovalKind distinguishes the two approval request flavors.
type ApprovalKind string

const (
	ApprovalKindCommand    ApprovalKind = "commandExecution"
	ApprovalKindFileChange ApprovalKind = "fileChange"
)

// ApprovalRequest is the unified view of a server-initiated approval
// request. Command and Cwd are set for command approvals, Changes for file
// change approvals.
type ApprovalRequest struct {
	ID       jsonrpc.RequestID
	Kind     ApprovalKind
	ThreadID string
	TurnID   string
	CallID   string
	Command  string
	Cwd      string
	Changes  json.RawMessage
	Reason   string
}

// ApprovalHandler answers approval requests automatically. When nil,
// approval requests are delivered on the message stream and must be
// answered with Respond. A handler error declines the request and reports
// the error to the server.
type ApprovalHandler func(ctx context.Context, req *ApprovalRequest) (ApprovalDecision, error)

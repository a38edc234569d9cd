package codexsdk

import (
	"github.com/wagiedev/codex-agent-sdk-go/internal/config"
	"github.com/wagiedev/codex-agent-sdk-go/internal/jsonrpc"
	"github.com/wagiedev/codex-agent-sdk-go/internal/protocol"
)

// Re-export types from internal packages

// ===== Options and Configuration =====

// Options configures the behavior of the SDK client.
type Options = config.Options

// ClientInfo identifies the client application during the initialize
// handshake.
type ClientInfo = protocol.ClientInfo

// InitializeCapabilities selects optional protocol behavior.
type InitializeCapabilities = protocol.InitializeCapabilities

// InitializeParams is the payload of the initialize request.
type InitializeParams = protocol.InitializeParams

// InitializeResponse is the result of the initialize request, carrying
// the server's self-reported identity.
type InitializeResponse = protocol.InitializeResponse

// ===== Request IDs =====

// RequestID identifies a request/response pair on the wire. The
// app-server accepts both integer and string ids.
type RequestID = jsonrpc.RequestID

// IntID returns an integer request id.
var IntID = jsonrpc.IntID

// StringID returns a string request id.
var StringID = jsonrpc.StringID

// ===== Turn Input =====

// UserInput is one element of a turn's input.
type UserInput = protocol.UserInput

// TextInput returns a text input item.
var TextInput = protocol.TextInput

// ImageInput returns an image input item.
var ImageInput = protocol.ImageInput

// ===== Thread and Turn Operations =====

// ThreadStartParams is the payload of the thread/start request.
type ThreadStartParams = protocol.ThreadStartParams

// ThreadStartResponse is the result of the thread/start request.
type ThreadStartResponse = protocol.ThreadStartResponse

// ThreadArchiveParams is the payload of the thread/archive request.
type ThreadArchiveParams = protocol.ThreadArchiveParams

// TurnStartParams is the payload of the turn/start request.
type TurnStartParams = protocol.TurnStartParams

// TurnSteerParams is the payload of the turn/steer request.
type TurnSteerParams = protocol.TurnSteerParams

// TurnInterruptParams is the payload of the turn/interrupt request.
type TurnInterruptParams = protocol.TurnInterruptParams

// ReasoningEffort controls how much reasoning the model applies to a turn.
type ReasoningEffort = protocol.ReasoningEffort

const (
	// ReasoningEffortMinimal applies minimal reasoning.
	ReasoningEffortMinimal = protocol.ReasoningEffortMinimal
	// ReasoningEffortLow applies light reasoning.
	ReasoningEffortLow = protocol.ReasoningEffortLow
	// ReasoningEffortMedium applies moderate reasoning.
	ReasoningEffortMedium = protocol.ReasoningEffortMedium
	// ReasoningEffortHigh applies deep reasoning.
	ReasoningEffortHigh = protocol.ReasoningEffortHigh
	// ReasoningEffortXHigh applies maximum reasoning depth.
	ReasoningEffortXHigh = protocol.ReasoningEffortXHigh
)

// SandboxMode names the sandbox policy presets understood by the server.
type SandboxMode = protocol.SandboxMode

const (
	// SandboxModeReadOnly allows reads only.
	SandboxModeReadOnly = protocol.SandboxModeReadOnly
	// SandboxModeWorkspaceWrite allows writes inside the workspace.
	SandboxModeWorkspaceWrite = protocol.SandboxModeWorkspaceWrite
	// SandboxModeDangerFullAccess disables sandboxing entirely.
	SandboxModeDangerFullAccess = protocol.SandboxModeDangerFullAccess
)

// ===== Turn and Thread State =====

// TurnStatus is the lifecycle state of a turn.
type TurnStatus = protocol.TurnStatus

const (
	// TurnStatusInProgress means the turn is still running.
	TurnStatusInProgress = protocol.TurnStatusInProgress
	// TurnStatusCompleted means the turn finished normally.
	TurnStatusCompleted = protocol.TurnStatusCompleted
	// TurnStatusInterrupted means the turn was interrupted by the client.
	TurnStatusInterrupted = protocol.TurnStatusInterrupted
	// TurnStatusFailed means the turn ended with an error.
	TurnStatusFailed = protocol.TurnStatusFailed
)

// ThreadStatus is the lifecycle state of a thread.
type ThreadStatus = protocol.ThreadStatus

const (
	// ThreadStatusNotLoaded means the thread exists but is not in memory.
	ThreadStatusNotLoaded = protocol.ThreadStatusNotLoaded
	// ThreadStatusIdle means the thread is loaded with no running turn.
	ThreadStatusIdle = protocol.ThreadStatusIdle
	// ThreadStatusActive means a turn is running on the thread.
	ThreadStatusActive = protocol.ThreadStatusActive
	// ThreadStatusSystemError means the thread hit a server-side error.
	ThreadStatusSystemError = protocol.ThreadStatusSystemError
)

// Turn is the record of one completed or failed turn.
type Turn = protocol.Turn

// TurnError describes why a turn failed.
type TurnError = protocol.TurnError

// TokenUsage reports cumulative token consumption for a thread.
type TokenUsage = protocol.TokenUsage

// ===== Notifications =====

// ThreadStartedNotification is the payload of thread/started.
type ThreadStartedNotification = protocol.ThreadStartedNotification

// ThreadStatusChangedNotification is the payload of thread/status/changed.
type ThreadStatusChangedNotification = protocol.ThreadStatusChangedNotification

// ThreadTokenUsageNotification is the payload of thread/tokenUsage/updated.
type ThreadTokenUsageNotification = protocol.ThreadTokenUsageNotification

// TurnStartedNotification is the payload of turn/started.
type TurnStartedNotification = protocol.TurnStartedNotification

// TurnCompletedNotification is the payload of turn/completed.
type TurnCompletedNotification = protocol.TurnCompletedNotification

// TurnFailedNotification is the payload of turn/failed.
type TurnFailedNotification = protocol.TurnFailedNotification

// ItemStartedNotification is the payload of item/started.
type ItemStartedNotification = protocol.ItemStartedNotification

// ItemCompletedNotification is the payload of item/completed.
type ItemCompletedNotification = protocol.ItemCompletedNotification

// ItemDeltaNotification is the shared payload of the streaming delta
// notifications.
type ItemDeltaNotification = protocol.ItemDeltaNotification

// ErrorNotification is the payload of the error notification.
type ErrorNotification = protocol.ErrorNotification

// ===== Thread Items =====

// ThreadItem represents one item produced during a turn.
type ThreadItem = protocol.ThreadItem

// AgentMessageItem is a message from the agent to the user.
type AgentMessageItem = protocol.AgentMessageItem

// ReasoningItem is a summary of the agent's reasoning.
type ReasoningItem = protocol.ReasoningItem

// CommandExecutionItem records a shell command run by the agent.
type CommandExecutionItem = protocol.CommandExecutionItem

// CommandExecutionStatus is the lifecycle state of a command execution.
type CommandExecutionStatus = protocol.CommandExecutionStatus

const (
	// CommandStatusInProgress means the command is still running.
	CommandStatusInProgress = protocol.CommandStatusInProgress
	// CommandStatusCompleted means the command finished.
	CommandStatusCompleted = protocol.CommandStatusCompleted
	// CommandStatusFailed means the command failed.
	CommandStatusFailed = protocol.CommandStatusFailed
	// CommandStatusDeclined means the client declined the command.
	CommandStatusDeclined = protocol.CommandStatusDeclined
)

// FileChangeItem records a set of file modifications made by the agent.
type FileChangeItem = protocol.FileChangeItem

// FileChange is one entry in a file change set.
type FileChange = protocol.FileChange

// FileChangeKind names the kind of change applied to a file.
type FileChangeKind = protocol.FileChangeKind

const (
	// FileChangeAdd creates a new file.
	FileChangeAdd = protocol.FileChangeAdd
	// FileChangeDelete removes a file.
	FileChangeDelete = protocol.FileChangeDelete
	// FileChangeUpdate modifies an existing file.
	FileChangeUpdate = protocol.FileChangeUpdate
)

// FileChangeStatus is the outcome of applying a file change set.
type FileChangeStatus = protocol.FileChangeStatus

const (
	// FileChangeCompleted means the changes were applied.
	FileChangeCompleted = protocol.FileChangeCompleted
	// FileChangeFailed means the changes could not be applied.
	FileChangeFailed = protocol.FileChangeFailed
)

// McpToolCallItem records an MCP tool invocation made by the agent.
type McpToolCallItem = protocol.McpToolCallItem

// McpToolCallStatus is the lifecycle state of an MCP tool call.
type McpToolCallStatus = protocol.McpToolCallStatus

const (
	// McpToolCallInProgress means the tool call is still running.
	McpToolCallInProgress = protocol.McpToolCallInProgress
	// McpToolCallCompleted means the tool call finished.
	McpToolCallCompleted = protocol.McpToolCallCompleted
	// McpToolCallFailed means the tool call failed.
	McpToolCallFailed = protocol.McpToolCallFailed
)

// McpToolCallResult is the result payload of an MCP tool call.
type McpToolCallResult = protocol.McpToolCallResult

// McpToolCallError describes a failed MCP tool call.
type McpToolCallError = protocol.McpToolCallError

// WebSearchItem records a web search performed by the agent.
type WebSearchItem = protocol.WebSearchItem

// TodoListItem records the agent's current plan.
type TodoListItem = protocol.TodoListItem

// TodoEntry is one entry of a todo list item.
type TodoEntry = protocol.TodoEntry

// ErrorItem records a non-fatal error surfaced during a turn.
type ErrorItem = protocol.ErrorItem

// UnknownItem preserves an item whose type this SDK does not know about.
type UnknownItem = protocol.UnknownItem

// Item type discriminators, as carried in each item's "type" field.
const (
	ItemTypeAgentMessage     = protocol.ItemTypeAgentMessage
	ItemTypeReasoning        = protocol.ItemTypeReasoning
	ItemTypeCommandExecution = protocol.ItemTypeCommandExecution
	ItemTypeFileChange       = protocol.ItemTypeFileChange
	ItemTypeMcpToolCall      = protocol.ItemTypeMcpToolCall
	ItemTypeWebSearch        = protocol.ItemTypeWebSearch
	ItemTypeTodoList         = protocol.ItemTypeTodoList
	ItemTypeError            = protocol.ItemTypeError
)

// UnmarshalThreadItem decodes a raw thread item into its concrete type.
// Unrecognized item types decode into UnknownItem.
var UnmarshalThreadItem = protocol.UnmarshalThreadItem

// ===== Approvals =====

// ApprovalRequest is the unified view of a server-initiated approval
// request.
type ApprovalRequest = protocol.ApprovalRequest

// ApprovalResponse is the result payload sent back for an approval
// request.
type ApprovalResponse = protocol.ApprovalResponse

// ApprovalDecision is the client's answer to an approval request.
type ApprovalDecision = protocol.ApprovalDecision

const (
	// ApprovalAccept approves the request once.
	ApprovalAccept = protocol.ApprovalAccept
	// ApprovalAcceptForSession approves the request and similar ones for
	// the rest of the session.
	ApprovalAcceptForSession = protocol.ApprovalAcceptForSession
	// ApprovalDecline rejects the request.
	ApprovalDecline = protocol.ApprovalDecline
	// ApprovalCancel aborts the operation the request belongs to.
	ApprovalCancel = protocol.ApprovalCancel
)

// ApprovalKind distinguishes the two approval request flavors.
type ApprovalKind = protocol.ApprovalKind

const (
	// ApprovalKindCommand is a command execution approval.
	ApprovalKindCommand = protocol.ApprovalKindCommand
	// ApprovalKindFileChange is a file change approval.
	ApprovalKindFileChange = protocol.ApprovalKindFileChange
)

// ApprovalHandler answers approval requests automatically.
type ApprovalHandler = protocol.ApprovalHandler

// CommandApprovalParams is the raw payload of a command approval request.
type CommandApprovalParams = protocol.CommandApprovalParams

// FileChangeApprovalParams is the raw payload of a file change approval
// request.
type FileChangeApprovalParams = protocol.FileChangeApprovalParams

// ===== Message Stream =====

// ServerMessage is one inbound message surfaced to consumers: a
// notification, a server request awaiting an answer, or a record of a
// line that could not be decoded.
type ServerMessage = protocol.ServerMessage

// ===== Session Phase =====

// Phase is the lifecycle state of an app-server session.
type Phase = protocol.Phase

const (
	// PhaseUninitialized is the state before the subprocess is spawned.
	PhaseUninitialized = protocol.PhaseUninitialized
	// PhaseInitializing covers the window between spawn and the completed
	// initialize handshake.
	PhaseInitializing = protocol.PhaseInitializing
	// PhaseReady means the handshake finished and no thread is active.
	PhaseReady = protocol.PhaseReady
	// PhaseThreadActive means a thread exists and no turn is running.
	PhaseThreadActive = protocol.PhaseThreadActive
	// PhaseTurnActive means a turn is currently running.
	PhaseTurnActive = protocol.PhaseTurnActive
	// PhaseClosed is terminal; no further operations are accepted.
	PhaseClosed = protocol.PhaseClosed
)

// ===== Wire Methods =====

// Server notification method names, usable for matching
// ServerMessage.Method.
const (
	MethodThreadStarted           = protocol.MethodThreadStarted
	MethodThreadStatusChanged     = protocol.MethodThreadStatusChanged
	MethodThreadTokenUsageUpdated = protocol.MethodThreadTokenUsageUpdated
	MethodTurnStarted             = protocol.MethodTurnStarted
	MethodTurnCompleted           = protocol.MethodTurnCompleted
	MethodTurnFailed              = protocol.MethodTurnFailed
	MethodItemStarted             = protocol.MethodItemStarted
	MethodItemCompleted           = protocol.MethodItemCompleted
	MethodAgentMessageDelta       = protocol.MethodAgentMessageDelta
	MethodCommandOutputDelta      = protocol.MethodCommandOutputDelta
	MethodFileChangeOutputDelta   = protocol.MethodFileChangeOutputDelta
	MethodReasoningSummaryDelta   = protocol.MethodReasoningSummaryDelta
	MethodError                   = protocol.MethodError
	MethodCommandApproval         = protocol.MethodCommandApproval
	MethodFileChangeApproval      = protocol.MethodFileChangeApproval
)

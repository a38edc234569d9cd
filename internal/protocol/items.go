package protocol

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Thread item type constants. The server emits both these snake_case names
// and camelCase aliases; decoding normalizes to the snake_case form.
const (
	ItemTypeAgentMessage     = "agent_message"
	ItemTypeReasoning        = "reasoning"
	ItemTypeCommandExecution = "command_execution"
	ItemTypeFileChange       = "file_change"
	ItemTypeMcpToolCall      = "mcp_tool_call"
	ItemTypeWebSearch        = "web_search"
	ItemTypeTodoList         = "todo_list"
	ItemTypeError            = "error"
)

// ThreadItem represents one item produced during a turn.
type ThreadItem interface {
	ItemType() string
}

// Compile-time verification that all item types implement ThreadItem.
var (
	_ ThreadItem = (*AgentMessageItem)(nil)
	_ ThreadItem = (*ReasoningItem)(nil)
	_ ThreadItem = (*CommandExecutionItem)(nil)
	_ ThreadItem = (*FileChangeItem)(nil)
	_ ThreadItem = (*McpToolCallItem)(nil)
	_ ThreadItem = (*WebSearchItem)(nil)
	_ ThreadItem = (*TodoListItem)(nil)
	_ ThreadItem = (*ErrorItem)(nil)
	_ ThreadItem = (*UnknownItem)(nil)
)

// AgentMessageItem is a message from the agent to the user.
type AgentMessageItem struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ItemType implements the ThreadItem interface.
func (i *AgentMessageItem) ItemType() string { return ItemTypeAgentMessage }

// ReasoningItem is a summary of the agent's reasoning.
type ReasoningItem struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ItemType implements the ThreadItem interface.
func (i *ReasoningItem) ItemType() string { return ItemTypeReasoning }

// CommandExecutionStatus is the lifecycle state of a command execution item.
type CommandExecutionStatus string

const (
	CommandStatusInProgress CommandExecutionStatus = "in_progress"
	CommandStatusCompleted  CommandExecutionStatus = "completed"
	CommandStatusFailed     CommandExecutionStatus = "failed"
	CommandStatusDeclined   CommandExecutionStatus = "declined"
)

// UnmarshalJSON implements json.Unmarshaler, accepting camelCase aliases.
func (s *CommandExecutionStatus) UnmarshalJSON(data []byte) error {
	value, err := unmarshalEnum(data)
	if err != nil {
		return err
	}

	*s = CommandExecutionStatus(value)

	return nil
}

// CommandExecutionItem records a shell command run by the agent.
//
//nolint:tagliatelle // the Codex app server uses snake_case for item fields
type CommandExecutionItem struct {
	Type             string                 `json:"type"`
	ID               string                 `json:"id"`
	Command          string                 `json:"command"`
	AggregatedOutput string                 `json:"aggregated_output"`
	ExitCode         *int                   `json:"exit_code,omitempty"`
	Status           CommandExecutionStatus `json:"status"`
}

// ItemType implements the ThreadItem interface.
func (i *CommandExecutionItem) ItemType() string { return ItemTypeCommandExecution }

// FileChangeStatus is the outcome of applying a file change set.
type FileChangeStatus string

const (
	FileChangeCompleted FileChangeStatus = "completed"
	FileChangeFailed    FileChangeStatus = "failed"
)

// UnmarshalJSON implements json.Unmarshaler, accepting camelCase aliases.
func (s *FileChangeStatus) UnmarshalJSON(data []byte) error {
	value, err := unmarshalEnum(data)
	if err != nil {
		return err
	}

	*s = FileChangeStatus(value)

	return nil
}

// FileChangeKind names the kind of change applied to a file.
type FileChangeKind string

const (
	FileChangeAdd    FileChangeKind = "add"
	FileChangeDelete FileChangeKind = "delete"
	FileChangeUpdate FileChangeKind = "update"
)

// FileChange is one entry in a file change set.
type FileChange struct {
	Path string         `json:"path"`
	Kind FileChangeKind `json:"kind"`
}

// FileChangeItem records a set of file modifications made by the agent.
type FileChangeItem struct {
	Type    string           `json:"type"`
	ID      string           `json:"id"`
	Changes []FileChange     `json:"changes"`
	Status  FileChangeStatus `json:"status"`
}

// ItemType implements the ThreadItem interface.
func (i *FileChangeItem) ItemType() string { return ItemTypeFileChange }

// McpToolCallStatus is the lifecycle state of an MCP tool call item.
type McpToolCallStatus string

const (
	McpToolCallInProgress McpToolCallStatus = "in_progress"
	McpToolCallCompleted  McpToolCallStatus = "completed"
	McpToolCallFailed     McpToolCallStatus = "failed"
)

// UnmarshalJSON implements json.Unmarshaler, accepting camelCase aliases.
func (s *McpToolCallStatus) UnmarshalJSON(data []byte) error {
	value, err := unmarshalEnum(data)
	if err != nil {
		return err
	}

	*s = McpToolCallStatus(value)

	return nil
}

// McpToolCallResult is the payload returned by a successful MCP tool call.
//
//nolint:tagliatelle // the Codex app server uses snake_case for item fields
type McpToolCallResult struct {
	Content           []json.RawMessage `json:"content,omitempty"`
	StructuredContent json.RawMessage   `json:"structured_content,omitempty"`
}

// McpToolCallError describes a failed MCP tool call.
type McpToolCallError struct {
	Message string `json:"message"`
}

// McpToolCallItem records an MCP tool invocation made by the agent.
type McpToolCallItem struct {
	Type      string             `json:"type"`
	ID        string             `json:"id"`
	Server    string             `json:"server"`
	Tool      string             `json:"tool"`
	Arguments json.RawMessage    `json:"arguments,omitempty"`
	Result    *McpToolCallResult `json:"result,omitempty"`
	Error     *McpToolCallError  `json:"error,omitempty"`
	Status    McpToolCallStatus  `json:"status"`
}

// ItemType implements the ThreadItem interface.
func (i *McpToolCallItem) ItemType() string { return ItemTypeMcpToolCall }

// WebSearchItem records a web search performed by the agent.
type WebSearchItem struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Query string `json:"query"`
}

// ItemType implements the ThreadItem interface.
func (i *WebSearchItem) ItemType() string { return ItemTypeWebSearch }

// TodoEntry is one entry of a todo list item.
type TodoEntry struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TodoListItem records the agent's current plan.
type TodoListItem struct {
	Type  string      `json:"type"`
	ID    string      `json:"id"`
	Items []TodoEntry `json:"items"`
}

// ItemType implements the ThreadItem interface.
func (i *TodoListItem) ItemType() string { return ItemTypeTodoList }

// ErrorItem records a non-fatal error surfaced during a turn.
type ErrorItem struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ItemType implements the ThreadItem interface.
func (i *ErrorItem) ItemType() string { return ItemTypeError }

// UnknownItem preserves an item whose type this SDK does not know about.
// The raw JSON is kept verbatim so newer server output survives a
// round-trip.
type UnknownItem struct {
	Type string
	Raw  json.RawMessage
}

// ItemType implements the ThreadItem interface.
func (i *UnknownItem) ItemType() string { return i.Type }

// MarshalJSON implements json.Marshaler.
func (i *UnknownItem) MarshalJSON() ([]byte, error) {
	return i.Raw, nil
}

// UnmarshalThreadItem unmarshals a single thread item from JSON.
func UnmarshalThreadItem(data []byte) (ThreadItem, error) {
	var typeHolder struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &typeHolder); err != nil {
		return nil, err
	}

	switch camelToSnake(typeHolder.Type) {
	case ItemTypeAgentMessage:
		var item AgentMessageItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		item.Type = ItemTypeAgentMessage

		return &item, nil
	case ItemTypeReasoning:
		var item ReasoningItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		item.Type = ItemTypeReasoning

		return &item, nil
	case ItemTypeCommandExecution:
		var item CommandExecutionItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		item.Type = ItemTypeCommandExecution

		return &item, nil
	case ItemTypeFileChange:
		var item FileChangeItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		item.Type = ItemTypeFileChange

		return &item, nil
	case ItemTypeMcpToolCall:
		var item McpToolCallItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		item.Type = ItemTypeMcpToolCall

		return &item, nil
	case ItemTypeWebSearch:
		var item WebSearchItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		item.Type = ItemTypeWebSearch

		return &item, nil
	case ItemTypeTodoList:
		var item TodoListItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		item.Type = ItemTypeTodoList

		return &item, nil
	case ItemTypeError:
		var item ErrorItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		item.Type = ItemTypeError

		return &item, nil
	default:
		// Preserve unknown item types rather than failing the whole turn.
		raw := make(json.RawMessage, len(data))
		copy(raw, data)

		return &UnknownItem{Type: typeHolder.Type, Raw: raw}, nil
	}
}

// unmarshalEnum decodes a JSON string and normalizes camelCase spellings
// to snake_case.
func unmarshalEnum(data []byte) (string, error) {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return "", err
	}

	return camelToSnake(value), nil
}

// camelToSnake converts camelCase identifiers to snake_case. Identifiers
// already in snake_case pass through unchanged.
func camelToSnake(s string) string {
	var b strings.Builder

	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))

			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

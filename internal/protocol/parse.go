package protocol

import (
	"encoding/json"

	"github.com/wagiedev/codex-agent-sdk-go/internal/errors"
	"github.com/wagiedev/codex-agent-sdk-go/internal/jsonrpc"
)

// ParseNotification decodes the params of a server notification into its
// typed form. The returned value is a pointer to the notification struct
// for the method. Unknown methods return errors.ErrUnknownMethod so
// callers can decide whether to drop or surface the raw message.
func ParseNotification(method string, params json.RawMessage) (any, error) {
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	switch method {
	case MethodThreadStarted:
		var n ThreadStartedNotification
		if err := unmarshalParams(params, &n); err != nil {
			return nil, err
		}

		return &n, nil
	case MethodThreadStatusChanged:
		var n ThreadStatusChangedNotification
		if err := unmarshalParams(params, &n); err != nil {
			return nil, err
		}

		return &n, nil
	case MethodThreadTokenUsageUpdated:
		var n ThreadTokenUsageNotification
		if err := unmarshalParams(params, &n); err != nil {
			return nil, err
		}

		return &n, nil
	case MethodTurnStarted:
		var n TurnStartedNotification
		if err := unmarshalParams(params, &n); err != nil {
			return nil, err
		}

		return &n, nil
	case MethodTurnCompleted:
		var n TurnCompletedNotification
		if err := unmarshalParams(params, &n); err != nil {
			return nil, err
		}

		return &n, nil
	case MethodTurnFailed:
		var n TurnFailedNotification
		if err := unmarshalParams(params, &n); err != nil {
			return nil, err
		}

		return &n, nil
	case MethodItemStarted:
		var n ItemStartedNotification
		if err := unmarshalParams(params, &n); err != nil {
			return nil, err
		}

		return &n, nil
	case MethodItemCompleted:
		var n ItemCompletedNotification
		if err := unmarshalParams(params, &n); err != nil {
			return nil, err
		}

		return &n, nil
	case MethodAgentMessageDelta, MethodCommandOutputDelta,
		MethodFileChangeOutputDelta, MethodReasoningSummaryDelta:
		var n ItemDeltaNotification
		if err := unmarshalParams(params, &n); err != nil {
			return nil, err
		}

		return &n, nil
	case MethodError:
		var n ErrorNotification
		if err := unmarshalParams(params, &n); err != nil {
			return nil, err
		}

		return &n, nil
	default:
		return nil, errors.ErrUnknownMethod
	}
}

// ParseServerRequest decodes a server-initiated request into the unified
// approval view. Unknown methods return errors.ErrUnknownMethod; the
// request id remains answerable either way.
func ParseServerRequest(id jsonrpc.RequestID, method string, params json.RawMessage) (*ApprovalRequest, error) {
	switch method {
	case MethodCommandApproval:
		var p CommandApprovalParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}

		return &ApprovalRequest{
			ID:       id,
			Kind:     ApprovalKindCommand,
			ThreadID: p.ThreadID,
			TurnID:   p.TurnID,
			CallID:   p.CallID,
			Command:  p.Command,
			Cwd:      p.Cwd,
			Reason:   p.Reason,
		}, nil
	case MethodFileChangeApproval:
		var p FileChangeApprovalParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}

		return &ApprovalRequest{
			ID:       id,
			Kind:     ApprovalKindFileChange,
			ThreadID: p.ThreadID,
			TurnID:   p.TurnID,
			CallID:   p.CallID,
			Changes:  p.Changes,
			Reason:   p.Reason,
		}, nil
	default:
		return nil, errors.ErrUnknownMethod
	}
}

// unmarshalParams decodes params into v, wrapping failures in a
// DecodeError that preserves the raw payload.
func unmarshalParams(params json.RawMessage, v any) error {
	if err := json.Unmarshal(params, v); err != nil {
		return &errors.DecodeError{Raw: string(params), Err: err}
	}

	return nil
}

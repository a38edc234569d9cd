package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"

	sdkerrors "github.com/wagiedev/codex-agent-sdk-go/internal/errors"
)

// ErrUnrecognizedEnvelope indicates a line parsed as JSON but matched none of
// the four envelope shapes. Wrapped inside the DecodeError returned by Decode.
var ErrUnrecognizedEnvelope = errors.New("unrecognized message envelope")

// Message is one decoded wire envelope: *Request, *Response, *ErrorResponse,
// or *Notification.
type Message interface {
	isMessage()
}

// Compile-time verification of the envelope set.
var (
	_ Message = (*Request)(nil)
	_ Message = (*Response)(nil)
	_ Message = (*ErrorResponse)(nil)
	_ Message = (*Notification)(nil)
)

// Request is a message that expects a response: client-originated calls and
// server-originated approval requests share this shape.
type Request struct {
	ID     RequestID       `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

func (*Request) isMessage() {}

// Response is a successful reply to a Request.
type Response struct {
	ID     RequestID       `json:"id"`
	Result json.RawMessage `json:"result"`
}

func (*Response) isMessage() {}

// ErrorObject is the error payload within an ErrorResponse.
type ErrorObject struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ErrorResponse is a failed reply to a Request.
type ErrorResponse struct {
	ID  RequestID    `json:"id"`
	Err *ErrorObject `json:"error"`
}

func (*ErrorResponse) isMessage() {}

// Notification is a one-way message with no response expected.
type Notification struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

func (*Notification) isMessage() {}

// Encode serializes a message to a single line of JSON without a trailing
// newline. The app-server does not use the "jsonrpc" version field, so none
// is written.
func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// wireProbe captures the discriminating fields of every envelope shape in
// one pass. Pointer and RawMessage fields distinguish absent from null.
type wireProbe struct {
	ID     *RequestID      `json:"id"`
	Method *string         `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *ErrorObject    `json:"error"`
	Params json.RawMessage `json:"params"`
}

// Decode classifies one line into an envelope by field presence: id+method
// is a Request, id+error an ErrorResponse, id+result a Response (a literal
// null result still counts), and method alone a Notification.
//
// Lines that fail to parse get a second chance starting from the first `{`
// byte, which strips ANSI escape sequences and other terminal noise some
// environments prepend. Failures of both passes, and well-formed JSON that
// matches no envelope, come back as a *DecodeError carrying the raw line
// verbatim.
func Decode(line []byte) (Message, error) {
	payload := line

	var probe wireProbe
	if err := json.Unmarshal(payload, &probe); err != nil {
		i := bytes.IndexByte(line, '{')
		if i <= 0 {
			return nil, &sdkerrors.DecodeError{Raw: string(line), Err: err}
		}

		payload = line[i:]
		probe = wireProbe{}
		if err2 := json.Unmarshal(payload, &probe); err2 != nil {
			return nil, &sdkerrors.DecodeError{Raw: string(line), Err: err}
		}
	}

	switch {
	case probe.ID != nil && probe.Method != nil:
		return &Request{ID: *probe.ID, Method: *probe.Method, Params: probe.Params}, nil
	case probe.ID != nil && probe.Error != nil:
		return &ErrorResponse{ID: *probe.ID, Err: probe.Error}, nil
	case probe.ID != nil && probe.Result != nil:
		return &Response{ID: *probe.ID, Result: probe.Result}, nil
	case probe.Method != nil:
		return &Notification{Method: *probe.Method, Params: probe.Params}, nil
	}

	var value any
	_ = json.Unmarshal(payload, &value)

	return nil, &sdkerrors.DecodeError{
		Raw:   string(line),
		Value: value,
		Err:   ErrUnrecognizedEnvelope,
	}
}

// Package jsonrpc implements the wire envelope for the codex app-server
// protocol: JSON-RPC shaped messages over newline-delimited JSON, without
// the "jsonrpc" version field the standard prescribes.
//
// The four envelope shapes are distinguished purely by field presence:
//
//   - Request: id + method (+ optional params)
//   - Response: id + result
//   - ErrorResponse: id + error{code, message}
//   - Notification: method only (+ optional params)
//
// Request ids may be integers or strings; RequestID preserves the flavor
// across a round trip.
package jsonrpc

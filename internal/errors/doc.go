// Package errors defines error types for the Codex SDK.
//
// This package provides structured error types that wrap different failure
// scenarios when driving the codex app-server. All error types support
// error unwrapping and can be checked using errors.Is, errors.As, and errors.AsType.
package errors

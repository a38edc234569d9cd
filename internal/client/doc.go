// Package client implements the engine behind the SDK's client facades.
//
// The client package composes the subprocess transport, the protocol
// connection, and the session phase machine into one stateful object
// that drives a codex app-server across its whole lifecycle:
//   - Spawning and supervising the subprocess
//   - The initialize handshake
//   - Thread and turn operations, gated by the session phase
//   - The pull-based stream of notifications and approval requests
//   - Idempotent teardown that kills and reaps the process
//
// Every operation validates the session phase before any I/O, so a call
// issued in the wrong phase fails without writing to the subprocess.
package client

// Package subprocess provides subprocess-based transport for the codex
// app-server.
//
// This package implements the Transport interface by spawning the codex
// app-server as a child process and communicating over newline-delimited
// JSON on stdin/stdout. It handles process lifecycle management, line
// framing with a configurable size cap, and error handling.
package subprocess

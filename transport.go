package codexsdk

import "github.com/wagiedev/codex-agent-sdk-go/internal/config"

// Transport defines the interface for app-server communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., remote connections).
//
// The default implementation spawns a codex app-server subprocess and
// exchanges newline-delimited JSON over its stdio pipes. Custom
// transports can be injected via Options.Transport.
type Transport = config.Transport

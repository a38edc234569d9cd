package config

import (
	"log/slog"
	"time"

	"github.com/wagiedev/codex-agent-sdk-go/internal/protocol"
)

const (
	// DefaultRequestTimeout is the default deadline for a single request
	// awaiting its response. Applied when Options.RequestTimeout is nil.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultMaxLineBytes is the default cap for a single line of
	// app-server stdout. Lines above the cap are rejected without
	// corrupting subsequent reads.
	DefaultMaxLineBytes = 10 * 1024 * 1024 // 10MB
)

// Options configures the behavior of the Codex client.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// CodexPath is the explicit path to the codex binary.
	// If empty, the binary will be searched in PATH and common locations.
	CodexPath string

	// Cwd sets the working directory for the app-server process.
	Cwd string

	// Env provides additional environment variables for the app-server process.
	Env map[string]string

	// ConfigOverrides are codex config values passed as -c key=value flags.
	// Values are passed verbatim, so quote TOML strings as needed
	// (e.g. `model_reasoning_effort="high"`).
	ConfigOverrides map[string]string

	// ExtraArgs are additional command line arguments appended verbatim
	// after the standard app-server arguments.
	ExtraArgs []string

	// ClientInfo identifies this client during the initialize handshake.
	// If nil, a default identity for this SDK is sent.
	ClientInfo *protocol.ClientInfo

	// ExperimentalAPI opts in to app-server methods and fields that are
	// not yet covered by compatibility guarantees.
	ExperimentalAPI bool

	// OptOutNotificationMethods lists notification methods the server
	// should not deliver to this client.
	OptOutNotificationMethods []string

	// ApprovalHandler, when set, answers command execution and file change
	// approval requests automatically. When nil, approval requests are
	// delivered on the message stream and must be answered via Respond.
	ApprovalHandler protocol.ApprovalHandler

	// VersionHook, when set, receives the server's self-reported identity
	// from the initialize response. Compatibility policy belongs to the
	// caller; the SDK itself only warns about version skew at launch.
	VersionHook func(userAgent string)

	// RequestTimeout bounds how long a single request waits for its
	// response. If nil, DefaultRequestTimeout applies. An explicit zero
	// disables the deadline. A timed-out request fails only for its
	// caller; the app-server is not interrupted.
	RequestTimeout *time.Duration

	// MaxLineBytes caps a single line of app-server stdout.
	// If zero, DefaultMaxLineBytes applies.
	MaxLineBytes int

	// StringRequestIDs switches outgoing request IDs from a numeric
	// counter to ULID strings. The server echoes whichever form it
	// received, so this is mostly useful for log correlation.
	StringRequestIDs bool

	// Stderr is a callback function for handling stderr output.
	Stderr func(string)

	// SkipVersionCheck skips the codex version probe during startup.
	// Can also be controlled via the CODEX_SDK_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Transport allows injecting a custom transport implementation.
	// If nil, the default AppServer transport is created automatically.
	// This field is not serialized to JSON.
	Transport Transport `json:"-"`
}

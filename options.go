package codexsdk

import (
	"log/slog"
	"time"

	"github.com/wagiedev/codex-agent-sdk-go/internal/config"
)

// Option configures Options using the functional options pattern.
// This is the primary option type for configuring clients and Exec calls.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithCodexPath sets the explicit path to the codex binary.
// If not set, the binary will be searched in PATH and common locations.
func WithCodexPath(path string) Option {
	return func(o *Options) {
		o.CodexPath = path
	}
}

// WithCwd sets the working directory for the app-server process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithEnv provides additional environment variables for the app-server
// process.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithConfigOverride passes one codex config value as a -c key=value flag.
// Values are passed verbatim, so quote TOML strings as needed
// (e.g. `model_reasoning_effort="high"`).
func WithConfigOverride(key, value string) Option {
	return func(o *Options) {
		if o.ConfigOverrides == nil {
			o.ConfigOverrides = make(map[string]string, 1)
		}

		o.ConfigOverrides[key] = value
	}
}

// WithConfigOverrides passes codex config values as -c key=value flags.
func WithConfigOverrides(overrides map[string]string) Option {
	return func(o *Options) {
		o.ConfigOverrides = overrides
	}
}

// WithExtraArgs appends additional command line arguments verbatim after
// the standard app-server arguments.
func WithExtraArgs(args ...string) Option {
	return func(o *Options) {
		o.ExtraArgs = args
	}
}

// ===== Handshake =====

// WithClientInfo sets the identity sent during the initialize handshake.
// If not set, a default identity for this SDK is sent.
func WithClientInfo(info *ClientInfo) Option {
	return func(o *Options) {
		o.ClientInfo = info
	}
}

// WithExperimentalAPI opts in to app-server methods and fields that are
// not yet covered by compatibility guarantees.
func WithExperimentalAPI(enable bool) Option {
	return func(o *Options) {
		o.ExperimentalAPI = enable
	}
}

// WithOptOutNotifications lists notification methods the server should
// not deliver to this client.
func WithOptOutNotifications(methods ...string) Option {
	return func(o *Options) {
		o.OptOutNotificationMethods = methods
	}
}

// WithVersionHook sets a callback that receives the server's
// self-reported identity from the initialize response.
func WithVersionHook(hook func(userAgent string)) Option {
	return func(o *Options) {
		o.VersionHook = hook
	}
}

// WithSkipVersionCheck skips the codex version probe during startup.
func WithSkipVersionCheck(skip bool) Option {
	return func(o *Options) {
		o.SkipVersionCheck = skip
	}
}

// ===== Approvals =====

// WithApprovalHandler answers command execution and file change approval
// requests automatically. Without a handler, approval requests are
// delivered on the message stream and must be answered via Respond.
func WithApprovalHandler(handler ApprovalHandler) Option {
	return func(o *Options) {
		o.ApprovalHandler = handler
	}
}

// ===== Wire Behavior =====

// WithRequestTimeout bounds how long a single request waits for its
// response. Zero disables the deadline. A timed-out request fails only
// for its caller; the app-server is not interrupted.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.RequestTimeout = &timeout
	}
}

// WithMaxLineBytes caps a single line of app-server stdout. Oversized
// lines are reported and skipped without corrupting subsequent reads.
func WithMaxLineBytes(limit int) Option {
	return func(o *Options) {
		o.MaxLineBytes = limit
	}
}

// WithStringRequestIDs switches outgoing request IDs from a numeric
// counter to ULID strings. The server echoes whichever form it received,
// so this is mostly useful for log correlation.
func WithStringRequestIDs(enable bool) Option {
	return func(o *Options) {
		o.StringRequestIDs = enable
	}
}

// WithStderr sets a callback function for handling stderr output.
func WithStderr(handler func(string)) Option {
	return func(o *Options) {
		o.Stderr = handler
	}
}

// ===== Advanced =====

// WithTransport injects a custom transport implementation.
// The transport must implement the Transport interface.
func WithTransport(transport config.Transport) Option {
	return func(o *Options) {
		o.Transport = transport
	}
}

package launcher

import (
	"fmt"
	"os"
	"slices"

	"github.com/wagiedev/codex-agent-sdk-go/internal/config"
)

// Command represents the app-server command to execute.
type Command struct {
	// Args are the command line arguments.
	Args []string

	// Env are the environment variables.
	Env []string
}

// BuildArgs constructs the app-server command arguments.
//
// The server is always launched as `codex app-server --listen stdio://`.
// Config overrides are passed as -c key=value flags in sorted key order
// so that repeated launches are reproducible, followed by any extra
// arguments verbatim.
func BuildArgs(options *config.Options) []string {
	args := []string{"app-server", "--listen", "stdio://"}

	keys := make([]string, 0, len(options.ConfigOverrides))
	for key := range options.ConfigOverrides {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		args = append(args, "-c", fmt.Sprintf("%s=%s", key, options.ConfigOverrides[key]))
	}

	args = append(args, options.ExtraArgs...)

	return args
}

// BuildEnvironment constructs the environment variables for the app-server process.
func BuildEnvironment(options *config.Options) []string {
	// Start with current environment
	env := os.Environ()

	// Add or override with user-provided environment variables
	for key, value := range options.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}

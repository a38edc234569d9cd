package codexsdk

import (
	"context"

	"github.com/wagiedev/codex-agent-sdk-go/internal/launcher"
)

// TestedCodexVersion is the codex release this SDK was tested against.
// Newer servers usually work, but may carry protocol additions this SDK
// does not understand yet.
const TestedCodexVersion = launcher.TestedVersion

// ProbeCodexVersion locates the codex binary and reports the version it
// prints for --version. An empty codexPath uses the same discovery order
// as Start: $PATH first, then common install locations.
func ProbeCodexVersion(ctx context.Context, codexPath string) (string, error) {
	disc := launcher.NewDiscoverer(&launcher.Config{
		CodexPath:        codexPath,
		SkipVersionCheck: true,
	})

	path, err := disc.Discover(ctx)
	if err != nil {
		return "", err
	}

	return launcher.ProbeVersion(ctx, path)
}

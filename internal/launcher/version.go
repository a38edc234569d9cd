package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// TestedVersion is the codex version this SDK was tested against.
	// Newer servers usually work, but may carry protocol additions this
	// SDK does not understand yet.
	TestedVersion = "0.104.0"

	// versionProbeTimeout is the timeout for the version probe command.
	versionProbeTimeout = 2 * time.Second
)

// warnOnce ensures the newer-version warning is printed at most once per
// process, no matter how many clients are created.
var warnOnce sync.Once

// ProbeVersion runs `codex --version` and parses the reported version.
//
// The probe output looks like "codex-cli 0.104.0"; the version is the
// last whitespace-separated token of the first line.
func ProbeVersion(ctx context.Context, codexPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, codexPath, "--version")

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("run version probe: %w", err)
	}

	return parseVersionOutput(string(output))
}

// parseVersionOutput extracts the version token from probe output.
func parseVersionOutput(output string) (string, error) {
	firstLine, _, _ := strings.Cut(output, "\n")

	fields := strings.Fields(firstLine)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty version output")
	}

	version := fields[len(fields)-1]
	if version == "" || version[0] < '0' || version[0] > '9' {
		return "", fmt.Errorf("unrecognized version output %q", firstLine)
	}

	return version, nil
}

// WarnIfNewer warns at most once per process when the probed codex
// version is newer than TestedVersion. The warning is informational;
// newer servers are still used.
func WarnIfNewer(log *slog.Logger, version string) {
	if compareVersions(version, TestedVersion) <= 0 {
		log.Debug("codex version check passed", "version", version, "tested", TestedVersion)

		return
	}

	warnOnce.Do(func() {
		log.Warn("codex is newer than the version this SDK was tested against",
			"version", version,
			"tested_version", TestedVersion,
		)

		fmt.Fprintf(os.Stderr,
			"Warning: codex version %s is newer than the version this SDK was tested against (%s). "+
				"Some features may not work as expected.\n",
			version, TestedVersion,
		)
	})
}

// compareVersions compares two dotted numeric versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range max(len(aParts), len(bParts)) {
		aNum := 0
		bNum := 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}

package launcher

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/wagiedev/codex-agent-sdk-go/internal/errors"
)

// Config holds configuration for codex binary discovery.
type Config struct {
	// CodexPath is an explicit binary path that skips PATH search.
	// If empty, discovery will search PATH and common locations.
	CodexPath string

	// SkipVersionCheck skips the version probe during discovery.
	// Can also be controlled via the CODEX_SDK_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates and probes the codex binary.
type Discoverer interface {
	// Discover locates the codex binary and probes its version.
	// Returns the absolute path to the binary or an error.
	Discover(ctx context.Context) (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new codex discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the codex binary and probes its version.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	d.log.Debug("Discovering codex binary")

	codexPath, err := d.findCodex()
	if err != nil {
		d.log.Error("Failed to find codex binary", "error", err)

		return "", err
	}

	d.log.Debug("Found codex binary", "codex_path", codexPath)

	// Probe version unless skipped
	d.checkVersion(ctx, codexPath)

	return codexPath, nil
}

// findCodex locates the codex binary.
func (d *discoverer) findCodex() (string, error) {
	// If explicit path provided, use it and only it
	if d.cfg.CodexPath != "" {
		d.log.Debug("Using explicit codex path", "codex_path", d.cfg.CodexPath)

		if _, err := os.Stat(d.cfg.CodexPath); err == nil {
			return d.cfg.CodexPath, nil
		}

		d.log.Debug("Explicit codex path not found", "codex_path", d.cfg.CodexPath)

		return "", &errors.CodexNotFoundError{SearchedPaths: []string{d.cfg.CodexPath}}
	}

	searchedPaths := make([]string, 0, 4)

	// Search in PATH
	d.log.Debug("Searching for 'codex' in PATH")

	if path, err := exec.LookPath("codex"); err == nil {
		d.log.Debug("Found 'codex' in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	// Check common locations
	commonPaths := []string{
		"/usr/local/bin/codex",
		"/usr/bin/codex",
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(homeDir, ".local/bin/codex"))
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)
		d.log.Debug("Checking common path", "path", path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found codex at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("codex binary not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.CodexNotFoundError{SearchedPaths: searchedPaths}
}

// checkVersion probes the codex version and warns when it is newer than
// the version this SDK was tested against. Errors are silently ignored.
func (d *discoverer) checkVersion(ctx context.Context, codexPath string) {
	// Skip if configured
	if d.cfg.SkipVersionCheck {
		d.log.Debug("Skipping codex version check (configured)")

		return
	}

	// Skip if env var is set
	if os.Getenv("CODEX_SDK_SKIP_VERSION_CHECK") != "" {
		d.log.Debug("Skipping codex version check (CODEX_SDK_SKIP_VERSION_CHECK set)")

		return
	}

	version, err := ProbeVersion(ctx, codexPath)
	if err != nil {
		// Silently ignore errors
		d.log.Debug("codex version probe failed", "error", err)

		return
	}

	WarnIfNewer(d.log, version)
}

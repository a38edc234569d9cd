// Package launcher provides binary discovery, version probing, and command
// building for the codex app-server.
//
// This package provides three main capabilities:
//
// # Binary Discovery
//
// The Discoverer interface locates the codex binary:
//
//	discoverer := launcher.NewDiscoverer(&launcher.Config{
//	    CodexPath: "",           // Optional explicit path
//	    Logger:    slog.Default(),
//	})
//	codexPath, err := discoverer.Discover(ctx)
//
// Discovery searches in the following order:
//  1. Explicit path in Config.CodexPath (if provided)
//  2. System PATH
//  3. Common installation directories (/usr/local/bin, /usr/bin, ~/.local/bin)
//
// # Version Probing
//
// During discovery, `codex --version` is probed and compared against
// TestedVersion. A warning is printed at most once per process when the
// installed codex is newer; the probe never fails discovery. Probing can
// be skipped via Config.SkipVersionCheck or the CODEX_SDK_SKIP_VERSION_CHECK
// environment variable.
//
// # Command Building
//
// The package provides functions to build app-server arguments and environment:
//
//	args := launcher.BuildArgs(options)
//	env := launcher.BuildEnvironment(options)
package launcher

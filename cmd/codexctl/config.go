package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// codexFileConfig is the [codex] table of config.toml.
type codexFileConfig struct {
	Path       string            `toml:"path"`
	WorkingDir string            `toml:"working_dir"`
	Config     map[string]string `toml:"config"`
}

// defaultsFileConfig is the [defaults] table of config.toml.
type defaultsFileConfig struct {
	Model       string `toml:"model"`
	Effort      string `toml:"effort"`
	Sandbox     string `toml:"sandbox"`
	AutoApprove bool   `toml:"auto_approve"`
	Timeout     string `toml:"timeout"`
}

// fileConfig maps config.toml onto CLI options.
type fileConfig struct {
	Codex    codexFileConfig    `toml:"codex"`
	Defaults defaultsFileConfig `toml:"defaults"`
}

// defaultConfigPath returns ~/.config/codexctl/config.toml, or "" when
// the home directory is unknown.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "codexctl", "config.toml")
}

// loadFileConfig overlays config.toml onto opts. Values set by flags win
// over file values. A missing default config file is not an error; a
// missing --config path is.
func loadFileConfig(flags *pflag.FlagSet, opts *options) error {
	path := opts.ConfigPath
	explicit := path != ""

	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return nil
		}
	}

	var raw fileConfig

	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("load codexctl config: %w", err)
	}

	if meta.IsDefined("codex", "path") && !flags.Changed("codex") {
		opts.CodexPath = strings.TrimSpace(raw.Codex.Path)
	}

	if meta.IsDefined("codex", "working_dir") && !flags.Changed("cwd") {
		opts.Cwd = strings.TrimSpace(raw.Codex.WorkingDir)
	}

	if meta.IsDefined("codex", "config") {
		opts.ConfigOverrides = raw.Codex.Config
	}

	if meta.IsDefined("defaults", "model") && !flags.Changed("model") {
		opts.Model = strings.TrimSpace(raw.Defaults.Model)
	}

	if meta.IsDefined("defaults", "effort") && !flags.Changed("effort") {
		opts.Effort = strings.TrimSpace(raw.Defaults.Effort)
	}

	if meta.IsDefined("defaults", "sandbox") && !flags.Changed("sandbox") {
		opts.Sandbox = strings.TrimSpace(raw.Defaults.Sandbox)
	}

	if meta.IsDefined("defaults", "auto_approve") && !flags.Changed("auto-approve") {
		opts.AutoApprove = raw.Defaults.AutoApprove
	}

	if meta.IsDefined("defaults", "timeout") && !flags.Changed("timeout") {
		timeout, err := time.ParseDuration(strings.TrimSpace(raw.Defaults.Timeout))
		if err != nil {
			return fmt.Errorf("load codexctl config: defaults.timeout: %w", err)
		}

		opts.Timeout = timeout
	}

	return nil
}

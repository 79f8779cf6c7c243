package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

//go:embed default_config.toml
var defaultConfig string

// ErrExists is returned by Init when the target file is already there.
var ErrExists = errors.New("config file already exists")

const redacted = "<redacted>"

// Init writes the annotated starter config to path, creating parent
// directories. An existing file is only replaced when overwrite is set. The
// content goes to a temporary sibling first and is renamed into place, so an
// interrupted write leaves any previous config intact.
func Init(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sweepr-config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.WriteString(tmp, defaultConfig); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Redacted returns a copy of c with both tokens masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.Plex.Token != "" {
		out.Plex.Token = redacted
	}
	if out.PlexTV.Token != "" {
		out.PlexTV.Token = redacted
	}
	return out
}

// Encode writes the effective configuration as TOML with tokens masked.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c.Redacted())
}

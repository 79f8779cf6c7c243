package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigPath names the variable that points at an explicit config file.
const EnvConfigPath = "SWEEPR_CONFIG"

// ErrNotFound is returned when no config file exists in any search location.
var ErrNotFound = errors.New("config not found")

// Source records where a config path came from.
type Source string

const (
	SourceFlag    Source = "--config flag"
	SourceEnv     Source = EnvConfigPath
	SourceWorkDir Source = "working directory"
	SourceUser    Source = "user config directory"
	SourceSystem  Source = "system config directory"
)

// Location is a config file path together with its origin.
type Location struct {
	Path   string
	Source Source
}

func (l Location) String() string {
	return fmt.Sprintf("%s (from %s)", l.Path, l.Source)
}

// DefaultPath returns the per-user config path under $XDG_CONFIG_HOME, which
// is where `sweepr config init` writes by default.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "sweepr", "config.toml")
}

// searchPath lists the implicit locations in priority order.
func searchPath() []Location {
	return []Location{
		{Path: "config.toml", Source: SourceWorkDir},
		{Path: DefaultPath(), Source: SourceUser},
		{Path: "/etc/sweepr/config.toml", Source: SourceSystem},
	}
}

// Resolve picks the config file to load. An explicit path wins and is not
// checked here; otherwise the search of Discover applies.
func Resolve(explicit string) (Location, error) {
	if explicit != "" {
		return Location{Path: explicit, Source: SourceFlag}, nil
	}
	return Discover()
}

// Discover looks at $SWEEPR_CONFIG first and then at the working directory,
// the user config directory and /etc/sweepr, returning the first file found.
// A set but unreadable $SWEEPR_CONFIG is an error rather than a fallthrough.
func Discover() (Location, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		if _, err := os.Stat(p); err != nil {
			return Location{}, fmt.Errorf("%s=%s: %w", EnvConfigPath, p, err)
		}
		return Location{Path: p, Source: SourceEnv}, nil
	}

	candidates := searchPath()
	checked := make([]string, len(candidates))
	for i, loc := range candidates {
		if _, err := os.Stat(loc.Path); err == nil {
			return loc, nil
		}
		checked[i] = loc.Path
	}
	return Location{}, fmt.Errorf("%w (checked %s)", ErrNotFound, strings.Join(checked, ", "))
}

// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Plex      PlexConfig      `toml:"plex"`
	PlexTV    PlexTVConfig    `toml:"plextv"`
	Cache     CacheConfig     `toml:"cache"`
	Evaluator EvaluatorConfig `toml:"evaluator"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type PlexConfig struct {
	URL               string        `toml:"url"`
	Token             string        `toml:"token"`
	Timeout           time.Duration `toml:"timeout"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Burst             int           `toml:"burst"`
	Retries           int           `toml:"retries"`
	RetryDelay        time.Duration `toml:"retry_delay"`
	Breaker           BreakerConfig `toml:"breaker"`
}

type BreakerConfig struct {
	MaxRequests  uint32        `toml:"max_requests"`
	Interval     time.Duration `toml:"interval"`
	Timeout      time.Duration `toml:"timeout"`
	MinRequests  uint32        `toml:"min_requests"`
	FailureRatio float64       `toml:"failure_ratio"`
}

// PlexTVConfig points at the plex.tv account directory. An empty token
// falls back to the server token.
type PlexTVConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

type CacheConfig struct {
	Enabled bool          `toml:"enabled"`
	Path    string        `toml:"path"`
	TTL     time.Duration `toml:"ttl"`
}

type EvaluatorConfig struct {
	Application string `toml:"application"`
	Concurrency int    `toml:"concurrency"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Plex: PlexConfig{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 10,
			Burst:             5,
			Retries:           3,
			RetryDelay:        500 * time.Millisecond,
			Breaker: BreakerConfig{
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      2 * time.Minute,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		PlexTV: PlexTVConfig{URL: "https://plex.tv"},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "./data/sweepr.db",
			TTL:     10 * time.Minute,
		},
		Evaluator: EvaluatorConfig{Application: "plex", Concurrency: 4},
	}
}

// Load reads, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	cfg, err := parse(content)
	if err != nil {
		return nil, err
	}

	if err := cfg.check(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, leaving
// unresolved variables in place and skipping validation.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, _ := substituteEnvVars(string(data))
	return parse(content)
}

func parse(content string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.PlexTV.Token == "" {
		cfg.PlexTV.Token = cfg.Plex.Token
	}
	return &cfg, nil
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars expands environment references. Unresolvable references
// are left unchanged and reported, ${VAR:?message} ones with their message.
func substituteEnvVars(content string) (string, []string) {
	var missing []string

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, op, arg := groups[1], groups[2], groups[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case "-":
			if value != "" {
				return value
			}
			return arg
		case "?":
			if value != "" {
				return value
			}
			missing = append(missing, name+": "+arg)
			return match
		default:
			if ok {
				return value
			}
			missing = append(missing, name)
			return match
		}
	})
	return out, missing
}

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ConfigError reports every problem found while loading one config file:
// variables the file references but the environment leaves unset, and
// settings that fail Validate.
type ConfigError struct {
	Path    string
	Missing []string
	Errors  []string
}

// Problems lists the unset variables first, then the validation failures.
func (e *ConfigError) Problems() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Errors))
	for _, m := range e.Missing {
		out = append(out, "unset variable "+m)
	}
	return append(out, e.Errors...)
}

func (e *ConfigError) Error() string {
	problems := e.Problems()
	switch len(problems) {
	case 0:
		return fmt.Sprintf("config %s: ok", e.Path)
	case 1:
		return fmt.Sprintf("config %s: %s", e.Path, problems[0])
	}
	return fmt.Sprintf("config %s: %d problems:\n  - %s", e.Path, len(problems), strings.Join(problems, "\n  - "))
}

// check wraps the result of Validate for path, or returns nil when valid.
func (c *Config) check(path string) error {
	if errs := c.Validate(); len(errs) > 0 {
		return &ConfigError{Path: path, Errors: errs}
	}
	return nil
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if !validLogFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format: must be one of text, json; got %q", c.Log.Format))
	}

	errs = append(errs, validateURL("plex.url", c.Plex.URL)...)
	if c.Plex.Token == "" {
		errs = append(errs, "plex.token: required")
	}
	if c.Plex.Timeout < 0 {
		errs = append(errs, "plex.timeout: must not be negative")
	}
	if c.Plex.RequestsPerSecond < 0 {
		errs = append(errs, "plex.requests_per_second: must not be negative (0 disables limiting)")
	}
	if c.Plex.Burst < 0 {
		errs = append(errs, "plex.burst: must not be negative")
	}
	if c.Plex.Retries < 0 {
		errs = append(errs, fmt.Sprintf("plex.retries: must not be negative, got %d", c.Plex.Retries))
	}
	if r := c.Plex.Breaker.FailureRatio; r < 0 || r > 1 {
		errs = append(errs, fmt.Sprintf("plex.breaker.failure_ratio: must be between 0 and 1, got %g", r))
	}

	errs = append(errs, validateURL("plextv.url", c.PlexTV.URL)...)

	if c.Cache.Enabled {
		if c.Cache.Path == "" {
			errs = append(errs, "cache.path: required when cache is enabled")
		}
		if c.Cache.TTL <= 0 {
			errs = append(errs, "cache.ttl: must be positive when cache is enabled")
		}
	}

	if c.Evaluator.Application == "" {
		errs = append(errs, "evaluator.application: required")
	}
	if c.Evaluator.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("evaluator.concurrency: must be at least 1, got %d", c.Evaluator.Concurrency))
	}

	return errs
}

func validateURL(field, raw string) []string {
	if raw == "" {
		return []string{field + ": required"}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return []string{fmt.Sprintf("%s: must be an http(s) URL, got %q", field, raw)}
	}
	return nil
}

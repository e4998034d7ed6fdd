// Package config loads project configuration: which issue kinds are
// enabled, which paths to ignore or treat as tests, the plugin/banned-
// function lists, and the incremental-diff toggle. A single struct is
// unmarshaled from either JSON or YAML, validated, then defaulted.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/slackhq/hakana-sub001/internal/issue"
)

// Config is the top-level project configuration .
type Config struct {
	// IgnoredIssueKinds disables these diagnostics entirely.
	IgnoredIssueKinds []string `json:"ignored_issue_kinds,omitempty" yaml:"ignored_issue_kinds,omitempty"`

	// IgnorePaths are glob patterns excluded from analysis altogether.
	IgnorePaths []string `json:"ignore_paths,omitempty" yaml:"ignore_paths,omitempty"`

	// TestPaths are glob patterns whose files are analyzed but exempt
	// from unused-code reporting ("framework entry points").
	TestPaths []string `json:"test_paths,omitempty" yaml:"test_paths,omitempty"`

	// Plugins names additional rule plugins to load; the core itself
	// doesn't interpret these beyond carrying the list through.
	Plugins []string `json:"plugins,omitempty" yaml:"plugins,omitempty"`

	// BannedFunctions maps a fully-qualified function name to the
	// message emitted when it's called.
	BannedFunctions map[string]string `json:"banned_functions,omitempty" yaml:"banned_functions,omitempty"`

	// IncrementalDiff enables caching keyed on a content hash of changed
	// files only , instead of a full reanalysis.
	IncrementalDiff bool `json:"incremental_diff,omitempty" yaml:"incremental_diff,omitempty"`

	ignoredKinds map[issue.Kind]bool
}

var kindsByName = func() map[string]issue.Kind {
	m := make(map[string]issue.Kind)
	for k := issue.NullableReturnStatement; k <= issue.InvalidDependencies; k++ {
		m[k.String()] = k
	}
	return m
}()

// Load reads path, dispatching on extension (.json vs .yaml/.yml),
// validates the result, then computes defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses config content from bytes; path is used only to pick the
// format and for error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	ext := strings.ToLower(filepath.Ext(path))
	var err error
	switch ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.index()
	return &cfg, nil
}

// Find walks up from dir looking for hakana.json, hakana.yaml, or
// hakana.yml, mirroring funxy.yaml's directory-walk discovery. Returns
// "" with a nil error when none is found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	names := []string{"hakana.json", "hakana.yaml", "hakana.yml"}
	for {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	for _, name := range c.IgnoredIssueKinds {
		if _, ok := kindsByName[name]; !ok {
			return fmt.Errorf("%s: ignored_issue_kinds: unknown issue kind %q", path, name)
		}
	}
	return nil
}

func (c *Config) index() {
	c.ignoredKinds = make(map[issue.Kind]bool, len(c.IgnoredIssueKinds))
	for _, name := range c.IgnoredIssueKinds {
		if k, ok := kindsByName[name]; ok {
			c.ignoredKinds[k] = true
		}
	}
}

// Enabled reports whether k should be reported under this config.
func (c *Config) Enabled(k issue.Kind) bool {
	if c == nil {
		return true
	}
	return !c.ignoredKinds[k]
}

// Filter drops every issue whose kind is disabled.
func (c *Config) Filter(issues []issue.Issue) []issue.Issue {
	if c == nil {
		return issues
	}
	out := issues[:0:0]
	for _, iss := range issues {
		if c.Enabled(iss.Kind) {
			out = append(out, iss)
		}
	}
	return out
}

// IsIgnoredPath reports whether relPath matches one of IgnorePaths.
func (c *Config) IsIgnoredPath(relPath string) bool {
	return matchesAny(c.IgnorePaths, relPath)
}

// IsTestPath reports whether relPath matches one of TestPaths.
func (c *Config) IsTestPath(relPath string) bool {
	return matchesAny(c.TestPaths, relPath)
}

func matchesAny(patterns []string, relPath string) bool {
	for _, pat := range patterns {
		if ok, err := filepath.Match(pat, relPath); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pat, filepath.Base(relPath)); err == nil && ok {
			return true
		}
	}
	return false
}

// Default returns an empty, permissive configuration (nothing ignored,
// no incremental diff).
func Default() *Config {
	return &Config{ignoredKinds: map[issue.Kind]bool{}}
}

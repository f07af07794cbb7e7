// Package config loads the resolver's workspace configuration: the
// workspace root, its source directory, worker parallelism, and a verbose
// logging switch. The teacher has no config loader of its own (dwscript's
// CLI takes everything as flags); goccy/go-yaml is already an indirect
// dependency of the teacher's go.mod (pulled in by go-snaps) and is
// promoted to direct here for an optional moss.yaml override file,
// following SPEC_FULL.md §2/§6.
package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Config holds everything cmd/moss needs to construct an Interpreter and
// its Scheduler.
type Config struct {
	Workspace   string `yaml:"-"`              // set from the CLI positional arg, never from YAML
	SourceDir   string `yaml:"sourceDir"`       // relative to Workspace; default "src"
	Extension   string `yaml:"extension"`       // source file extension the `mod` builtin appends; default ".ms"
	Parallelism int64  `yaml:"parallelism"`     // 0 means "unbounded" (scheduler default)
	Verbose     bool   `yaml:"verbose"`
}

// Default returns a Config with every SPEC_FULL.md-documented default set.
func Default(workspace string) Config {
	return Config{
		Workspace: workspace,
		SourceDir: "src",
		Extension: ".ms",
	}
}

// Load returns Default(workspace), overridden by workspace/moss.yaml if
// that file exists. A missing file is not an error; a malformed one is.
func Load(workspace string) (Config, error) {
	cfg := Default(workspace)
	path := filepath.Join(workspace, "moss.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.Workspace = workspace
	return cfg, nil
}

// SourcePath returns the directory the `mod` builtin resolves
// source-relative paths against: SourceDir joined onto Workspace, so it is
// relative whenever Workspace is.
func (c Config) SourcePath() string {
	return filepath.Join(c.Workspace, c.SourceDir)
}

// FilePath appends c.Extension to a source-relative module path (as passed
// to `mod "foo/bar"`) and resolves it under SourcePath.
func (c Config) FilePath(relative string) string {
	return filepath.Join(c.SourcePath(), relative+c.Extension)
}

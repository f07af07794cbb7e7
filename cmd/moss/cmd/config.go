package cmd

import (
	"github.com/mosslang/resolver/internal/config"
)

// workspaceConfig loads workspace/moss.yaml (if present) and overlays
// whichever of --source-dir/--parallelism/--verbose the caller passed, so
// an explicit flag always wins over the file.
func workspaceConfig(workspace string) (config.Config, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return cfg, err
	}
	if flagSourceDir != "" {
		cfg.SourceDir = flagSourceDir
	}
	if flagParallelism != 0 {
		cfg.Parallelism = flagParallelism
	}
	cfg.Verbose = cfg.Verbose || flagVerbose
	return cfg, nil
}

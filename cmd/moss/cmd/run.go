package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mosslang/resolver/internal/diag"
	"github.com/mosslang/resolver/internal/obslog"
	"github.com/mosslang/resolver/internal/store"
	"github.com/mosslang/resolver/interp"
)

var runCmd = &cobra.Command{
	Use:   "run [workspace]",
	Short: "Resolve a workspace's entry module to quiescence and print its bindings",
	Long: `run constructs an Interpreter over the given workspace (default "."),
adds the entry module (src/main.ms), runs it to quiescence, and prints every
root-scope binding's resolved value — or <unresolved> for one still stuck
behind an unresolved dependency or cycle — followed by any diagnostics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, args []string) error {
	workspace := "."
	if len(args) == 1 {
		workspace = args[0]
	}

	cfg, err := workspaceConfig(workspace)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := obslog.New(flagVerbose)
	defer log.Sync() //nolint:errcheck

	ip := interp.New(cfg, log)
	moduleId, err := ip.AddModule(nil)
	if err != nil {
		return fmt.Errorf("loading entry module: %w", err)
	}

	if err := ip.Run(context.Background()); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	module, ok := ip.GetModule(moduleId)
	if !ok || module.Root == nil {
		return fmt.Errorf("entry module has no root scope")
	}
	printScopeBindings(ip, moduleId, *module.Root)

	printDiagnostics(ip, moduleId)
	return nil
}

// printDiagnostics prints every diagnostic attached anywhere in moduleId,
// with one line of source context per finding.
func printDiagnostics(ip *interp.Interpreter, moduleId store.ModuleId) {
	diags := ip.Diagnostics(moduleId)
	if len(diags) == 0 {
		return
	}
	file, _ := ip.FileForModule(moduleId)
	var source, path string
	if file != nil {
		source, path = file.Text, file.Path
	}
	fmt.Println()
	fmt.Println(diag.FormatAll(diags, path, source))
}

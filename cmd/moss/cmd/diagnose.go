package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mosslang/resolver/internal/diag"
	"github.com/mosslang/resolver/internal/obslog"
	"github.com/mosslang/resolver/interp"
)

var (
	flagDiagnoseJSON bool
	flagDiagnoseKind string
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [workspace]",
	Short: "Resolve a workspace and print only its diagnostics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
	diagnoseCmd.Flags().BoolVar(&flagDiagnoseJSON, "json", false, "render diagnostics as a JSON array instead of text")
	diagnoseCmd.Flags().StringVar(&flagDiagnoseKind, "kind", "", "with --json, keep only diagnostics of this kind")
}

func runDiagnose(_ *cobra.Command, args []string) error {
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

	diags := ip.Diagnostics(moduleId)
	if flagDiagnoseJSON {
		return printDiagnosticsJSON(diags)
	}

	file, _ := ip.FileForModule(moduleId)
	var source, path string
	if file != nil {
		source, path = file.Text, file.Path
	}
	for _, d := range diags {
		fmt.Println(d.Format(path, source))
		fmt.Println()
	}
	return nil
}

func printDiagnosticsJSON(diags []diag.Diagnostic) error {
	payload := "[]"
	var err error
	for i, d := range diags {
		prefix := fmt.Sprintf("%d", i)
		payload, err = sjson.Set(payload, prefix+".kind", string(d.Kind))
		if err != nil {
			return err
		}
		payload, err = sjson.Set(payload, prefix+".message", d.Message)
		if err != nil {
			return err
		}
		payload, err = sjson.Set(payload, prefix+".start", d.Start)
		if err != nil {
			return err
		}
		payload, err = sjson.Set(payload, prefix+".end", d.End)
		if err != nil {
			return err
		}
		payload, err = sjson.Set(payload, prefix+".line", d.Pos.Line)
		if err != nil {
			return err
		}
		payload, err = sjson.Set(payload, prefix+".column", d.Pos.Column)
		if err != nil {
			return err
		}
	}

	if flagDiagnoseKind != "" {
		payload = filterByKind(payload, flagDiagnoseKind)
	}
	fmt.Println(payload)
	return nil
}

// filterByKind rebuilds payload keeping only the array elements whose
// "kind" field matches kind, read back with gjson rather than re-walking
// the []diag.Diagnostic that produced it.
func filterByKind(payload, kind string) string {
	kept := "[]"
	gjson.Parse(payload).ForEach(func(_, entry gjson.Result) bool {
		if entry.Get("kind").String() != kind {
			return true
		}
		n := gjson.Parse(kept).Get("#").Int()
		var err error
		kept, err = sjson.SetRaw(kept, fmt.Sprintf("%d", n), entry.Raw)
		return err == nil
	})
	return kept
}

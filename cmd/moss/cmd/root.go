// Package cmd implements the moss CLI with spf13/cobra, modeled on the
// teacher's cmd/dwscript/cmd package shape: a root command carrying
// persistent flags, one file per subcommand, an exitWithError helper.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, overridable by build flags (-ldflags "-X ...").
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	flagParallelism int64
	flagSourceDir   string
	flagVerbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "moss",
	Short: "moss resolves a module-oriented, lazily-evaluated configuration language",
	Long: `moss is the evaluation core of a declarative, lazily-evaluated,
module-oriented configuration/expression language.

Source files contain nested scopes of name = value bindings; values may be
integers, strings, scopes, first-class functions, references to other
bindings, dotted lookups, and calls — including calls to built-ins such as
mod "path", which lazily imports another source file as a scope.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().Int64Var(&flagParallelism, "parallelism", 0, "worker count; 0 means unbounded")
	rootCmd.PersistentFlags().StringVar(&flagSourceDir, "source-dir", "", "source directory relative to the workspace; defaults to \"src\"")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose (debug-level) logging")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

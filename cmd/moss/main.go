// Command moss drives the resolver from the command line: run a workspace
// to quiescence, dump its diagnostics, or inspect the lexer/parser output
// of a single file.
package main

import (
	"fmt"
	"os"

	"github.com/mosslang/resolver/cmd/moss/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

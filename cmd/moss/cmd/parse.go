package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mosslang/resolver/internal/ast"
	"github.com/mosslang/resolver/internal/lexer"
	"github.com/mosslang/resolver/internal/parser"
)

var parseDumpAST bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a moss source file and display its syntax tree",
	Long: `parse runs the lexer and parser alone over a file (or stdin, if no
file is given) and reports either parse errors or, with --dump-ast, an
indented dump of the resulting source_file node.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full syntax tree instead of just reporting errors")
}

func runParse(_ *cobra.Command, args []string) error {
	input, err := readSource(args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	p := parser.New(l)
	file := p.ParseSourceFile()

	if errs := p.LexerErrors(); len(errs) > 0 {
		fmt.Fprintln(os.Stderr, "lexer errors:")
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %s\n", e.Error())
		}
	}
	if errs := p.Errors(); len(errs) > 0 {
		fmt.Fprintln(os.Stderr, "parser errors:")
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %s\n", e.Error())
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	if parseDumpAST {
		dumpNode(file, 0)
		return nil
	}
	fmt.Printf("source_file: %d assignment(s)\n", len(file.Assigns))
	return nil
}

func dumpNode(node ast.Node, indent int) {
	pad := strings.Repeat("  ", indent)
	switch n := node.(type) {
	case *ast.SourceFile:
		fmt.Printf("%ssource_file\n", pad)
		for _, a := range n.Assigns {
			dumpNode(a, indent+1)
		}
	case *ast.Assign:
		fmt.Printf("%sassign %s\n", pad, n.Key.Text)
		dumpNode(n.Value, indent+1)
	case *ast.Scope:
		fmt.Printf("%sscope (%d)\n", pad, len(n.Assigns))
		for _, a := range n.Assigns {
			dumpNode(a, indent+1)
		}
	case *ast.Dict:
		fmt.Printf("%sdict (%d)\n", pad, len(n.Entries))
		for _, a := range n.Entries {
			dumpNode(a, indent+1)
		}
	case *ast.Set:
		fmt.Printf("%sset (%d)\n", pad, len(n.Elements))
		for _, e := range n.Elements {
			dumpNode(e, indent+1)
		}
	case *ast.Bracket:
		fmt.Printf("%sbracket\n", pad)
		dumpNode(n.Inner, indent+1)
	case *ast.Call:
		fmt.Printf("%scall\n", pad)
		dumpNode(n.Func, indent+1)
		dumpNode(n.Arg, indent+1)
	case *ast.Find:
		fmt.Printf("%sfind .%s\n", pad, n.Name.Text)
		dumpNode(n.Target, indent+1)
	case *ast.FindMeta:
		fmt.Printf("%sfind_meta .@%s\n", pad, n.Name.Text)
		dumpNode(n.Target, indent+1)
	case *ast.Meta:
		fmt.Printf("%smeta @%s\n", pad, n.Name.Text)
	case *ast.Function:
		fmt.Printf("%sfunction (%s)\n", pad, n.Param.Text)
		dumpNode(n.Body, indent+1)
	case *ast.Name:
		fmt.Printf("%sname %s\n", pad, n.Text)
	case *ast.Int:
		fmt.Printf("%sint %s\n", pad, n.Text)
	case *ast.String:
		fmt.Printf("%sstring (%d segment(s))\n", pad, len(n.Segments))
	case *ast.Builtin:
		fmt.Printf("%sbuiltin %s\n", pad, n.Text)
	default:
		fmt.Printf("%s%s\n", pad, node.Kind())
	}
}

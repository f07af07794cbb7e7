package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mosslang/resolver/internal/lexer"
)

var (
	lexShowType   bool
	lexOnlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a moss source file and print the resulting tokens",
	Long: `lex runs the lexer alone over a file (or stdin, if no file is given)
and prints one line per token: its literal text and source position,
prefixed with its type when --show-type is set.

Useful for debugging the lexer in isolation from parsing and lowering.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().BoolVar(&lexShowType, "show-type", false, "prefix each line with the token type name")
	lexCmd.Flags().BoolVar(&lexOnlyErrors, "only-errors", false, "print only ILLEGAL tokens")
}

func runLex(_ *cobra.Command, args []string) error {
	input, err := readSource(args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	tokenCount, errorCount := 0, 0
	for {
		tok := l.NextToken()
		if tok.Type == lexer.EOF {
			if !lexOnlyErrors {
				printTokenLine(tok)
			}
			break
		}
		if lexOnlyErrors && tok.Type != lexer.ILLEGAL {
			continue
		}
		tokenCount++
		if tok.Type == lexer.ILLEGAL {
			errorCount++
		}
		printTokenLine(tok)
	}

	if errorCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errorCount)
	}
	_ = tokenCount
	return nil
}

func printTokenLine(tok lexer.Token) {
	if lexShowType {
		fmt.Printf("[%-8s] %q @%s\n", tok.Type, tok.Literal, tok.Pos)
		return
	}
	fmt.Printf("%q @%s\n", tok.Literal, tok.Pos)
}

// readSource reads from args[0] if given, otherwise stdin.
func readSource(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

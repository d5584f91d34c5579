package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xplshn/cfront/pkg/ast"
	"github.com/xplshn/cfront/pkg/cli"
	"github.com/xplshn/cfront/pkg/config"
	"github.com/xplshn/cfront/pkg/lexer"
	"github.com/xplshn/cfront/pkg/parser"
	"github.com/xplshn/cfront/pkg/token"
	"github.com/xplshn/cfront/pkg/util"
)

type outputMode int

const (
	outputDump outputMode = iota
	outputTokens
	outputJSON
)

// errReported marks a failure whose diagnostics were already printed.
var errReported = errors.New("errors reported")

func main() {
	app := cli.NewApp("cfront")
	app.Usage = "[input.c] ..."
	app.Synopsis = "[options] <input.c> ..."
	app.Description = "A front end for a small C-like language. Tokenizes and parses each input and prints its syntax tree."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/cfront>"

	var (
		std         string
		printTokens bool
		printJSON   bool
		interactive bool
		wall        bool
		pedantic    bool
		maxDepth    int
	)

	fs := app.FlagSet
	fs.String(&std, "std", "", "c", "Specify language standard (c, strict)", "std")
	fs.Bool(&printTokens, "tokens", "", false, "Print the token stream instead of the syntax tree.")
	fs.Bool(&printJSON, "json", "", false, "Print the syntax tree as JSON.")
	fs.Bool(&interactive, "interactive", "i", false, "Read declarations and statements from an interactive prompt.")
	fs.Bool(&wall, "Wall", "", false, "Enable all warnings except pedantic.")
	fs.Bool(&pedantic, "pedantic", "", false, "Issue all warnings demanded by the strict standard.")
	fs.Int(&maxDepth, "max-depth", "", config.DefaultMaxDepth, "Maximum nesting of blocks, statements and expressions.", "n")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		if err := cfg.ApplyStd(std); err != nil {
			fmt.Fprintf(os.Stderr, "cfront: error: %v\n", err)
			return errReported
		}
		if wall {
			cfg.ProcessDirectiveFlags("-Wall")
		}
		if pedantic {
			cfg.SetWarning(config.WarnPedantic, true)
		}
		// Explicit -W/-F toggles override the standard preset.
		cfg.ApplyFlagGroups(warningFlags, featureFlags)
		cfg.MaxDepth = maxDepth

		mode := outputDump
		switch {
		case printTokens:
			mode = outputTokens
		case printJSON:
			mode = outputJSON
		}

		if interactive {
			return runREPL(cfg, os.Stdout, os.Stderr)
		}
		if len(inputFiles) == 0 {
			fmt.Fprintln(os.Stderr, "cfront: error: no input files specified.")
			return errReported
		}
		return processFiles(inputFiles, cfg, mode, os.Stdout, os.Stderr)
	}

	if err := app.Run(os.Args[1:]); err != nil && !errors.Is(err, cli.ErrHelp) {
		os.Exit(1)
	}
}

// processFiles handles every input even after a failure so that all files
// get their diagnostics printed.
func processFiles(paths []string, cfg *config.Config, mode outputMode, stdout, stderr io.Writer) error {
	records := make([]util.SourceFileRecord, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "cfront: error: could not read file '%s': %v\n", path, err)
			return errReported
		}
		records = append(records, util.NewSourceFileRecord(path, content))
	}

	color := false
	if f, ok := stderr.(*os.File); ok {
		color = util.UseColor(f)
	}

	failed := false
	for i, rec := range records {
		if len(records) > 1 {
			fmt.Fprintf(stdout, "==> %s <==\n", rec.Name)
		}
		if err := processOne(rec, i, records, cfg, mode, stdout, stderr, color); err != nil {
			failed = true
		}
	}
	if failed {
		return errReported
	}
	return nil
}

func processOne(rec util.SourceFileRecord, fileIndex int, records []util.SourceFileRecord, cfg *config.Config, mode outputMode, stdout, stderr io.Writer, color bool) error {
	tokens, warnings, err := lexer.Tokenize(rec.Content, fileIndex, cfg)
	for _, w := range warnings {
		util.Render(stderr, records, w, color)
	}
	if err != nil {
		reportError(stderr, records, err, color)
		return err
	}

	if mode == outputTokens {
		printTokenStream(stdout, tokens)
		return nil
	}

	stmts, err := parser.NewParser(tokens, cfg).Parse()
	if err != nil {
		reportError(stderr, records, err, color)
		return err
	}
	return printTree(stdout, stmts, mode)
}

func reportError(w io.Writer, records []util.SourceFileRecord, err error, color bool) {
	var diag *util.Diagnostic
	if errors.As(err, &diag) {
		util.Render(w, records, diag, color)
		return
	}
	fmt.Fprintf(w, "cfront: error: %v\n", err)
}

func printTokenStream(w io.Writer, tokens []token.Token) {
	for _, tok := range tokens {
		if tok.Value != "" {
			fmt.Fprintf(w, "%d:%d\t%-18s %q\n", tok.Line, tok.Column, tok.Type, tok.Value)
		} else {
			fmt.Fprintf(w, "%d:%d\t%s\n", tok.Line, tok.Column, tok.Type)
		}
	}
}

func printTree(w io.Writer, stmts []*ast.Node, mode outputMode) error {
	if mode != outputJSON {
		return ast.Dump(w, stmts)
	}
	if stmts == nil {
		stmts = []*ast.Node{}
	}
	data, err := json.MarshalIndent(stmts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal syntax tree: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

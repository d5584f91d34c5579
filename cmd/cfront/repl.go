package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/xplshn/cfront/pkg/ast"
	"github.com/xplshn/cfront/pkg/config"
	"github.com/xplshn/cfront/pkg/parser"
	"github.com/xplshn/cfront/pkg/util"
)

const (
	historyFile = ".cfront_history"
	promptMain  = "cfront> "
	promptCont  = "   ...> "
)

func runREPL(cfg *config.Config, stdout, stderr io.Writer) error {
	fmt.Fprintln(stdout, "cfront interactive mode. Type :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	prompt := func(p string) (string, bool) {
		line, err := ln.Prompt(p)
		if err != nil {
			return "", false
		}
		return line, true
	}

	for {
		src, ok := readUntilComplete(prompt, cfg)
		if !ok {
			fmt.Fprintln(stdout)
			return nil
		}
		trimmed := strings.TrimSpace(src)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, ":"):
			if trimmed == ":quit" || trimmed == ":q" {
				return nil
			}
			fmt.Fprintln(stdout, "unknown command. Type :quit to exit.")
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		evalSnippet(src, cfg, stdout, stderr)
	}
}

// readUntilComplete keeps prompting while the accumulated input fails to
// parse only because it ended too early, e.g. an unclosed '{'.
func readUntilComplete(prompt func(string) (string, bool), cfg *config.Config) (string, bool) {
	var b strings.Builder
	for {
		p := promptMain
		if b.Len() > 0 {
			p = promptCont
		}
		line, ok := prompt(p)
		if !ok {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, err := parser.ParseSource(src, cfg)
		var diag *util.Diagnostic
		if err != nil && errors.As(err, &diag) && diag.AtEOF() {
			continue
		}
		return src, true
	}
}

func evalSnippet(src string, cfg *config.Config, stdout, stderr io.Writer) {
	records := []util.SourceFileRecord{util.NewSourceFileRecord("<stdin>", []byte(src))}
	stmts, err := parser.ParseSource(src, cfg)
	if err != nil {
		reportError(stderr, records, err, false)
		return
	}
	_ = ast.Dump(stdout, stmts)
}

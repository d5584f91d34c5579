package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFlags(t *testing.T) {
	var (
		std     string
		tokens  bool
		depth   int
		include []string
		wall    bool
	)
	fs := NewFlagSet("test")
	fs.String(&std, "std", "", "c", "standard", "std")
	fs.Bool(&tokens, "tokens", "t", false, "tokens")
	fs.Int(&depth, "max-depth", "d", 512, "depth", "n")
	fs.List(&include, "include", "I", []string{}, "include", "path")
	fs.Bool(&wall, "Wall", "", false, "all warnings")

	args := []string{"--std=strict", "-t", "-d", "32", "-Ia", "--include", "b", "-Wall", "x.c", "--", "-y.c"}
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	if std != "strict" || !tokens || depth != 32 || !wall {
		t.Errorf("got std=%q tokens=%v depth=%d wall=%v", std, tokens, depth, wall)
	}
	if diff := cmp.Diff([]string{"a", "b"}, include); diff != "" {
		t.Errorf("include mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x.c", "-y.c"}, fs.Args()); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--nope"}, "unknown flag: --nope"},
		{[]string{"-z"}, "unknown flag: -z"},
		{[]string{"--max-depth"}, "flag needs an argument"},
		{[]string{"--max-depth=deep"}, "invalid integer value"},
	}
	for _, tt := range tests {
		var depth int
		fs := NewFlagSet("test")
		fs.Int(&depth, "max-depth", "d", 1, "depth", "n")
		err := fs.Parse(tt.args)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Parse(%v) = %v, want error containing %q", tt.args, err, tt.want)
		}
	}
}

func TestFlagGroupToggles(t *testing.T) {
	on, off := false, false
	fs := NewFlagSet("test")
	fs.AddFlagGroup("Feature Flags", "toggles", "feature", "Available Features:", []FlagGroupEntry{
		{Name: "float", Prefix: "F", Usage: "floats", Default: true, Enabled: &on, Disabled: &off},
	})
	if err := fs.Parse([]string{"-Fno-float"}); err != nil {
		t.Fatal(err)
	}
	if on || !off {
		t.Errorf("got enabled=%v disabled=%v", on, off)
	}
}

func TestHelpPage(t *testing.T) {
	var out bytes.Buffer
	var std string
	enabled, disabled := false, false

	app := NewApp("cfront")
	app.Usage = "[input.c] ..."
	app.Synopsis = "[options] <input.c>"
	app.Description = "Parses things."
	app.Stdout = &out
	app.FlagSet.String(&std, "std", "", "c", "Specify language standard", "std")
	app.FlagSet.AddFlagGroup("Warning Flags", "warnings", "warning", "Available Warnings:", []FlagGroupEntry{
		{Name: "extra", Prefix: "W", Usage: "Extra warnings", Default: true, Enabled: &enabled, Disabled: &disabled},
	})

	called := false
	app.Action = func([]string) error { called = true; return nil }
	if err := app.Run([]string{"--help"}); !errors.Is(err, ErrHelp) {
		t.Fatalf("Run(--help) = %v, want ErrHelp", err)
	}
	if called {
		t.Errorf("action must not run when help is requested")
	}

	page := out.String()
	for _, want := range []string{
		"Usage: cfront <options> [input.c] ...",
		"cfront <options> <input.c>",
		"Parses things.",
		"--std <std>",
		"|c|",
		"-W<warning>",
		"-Wno-<warning>",
		"Available Warnings:",
		"|x|",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("help page is missing %q:\n%s", want, page)
		}
	}
	if strings.Contains(page, "--Wextra") {
		t.Errorf("group flags should not be listed as options:\n%s", page)
	}
}

func TestUsageOnBadFlag(t *testing.T) {
	var stderr bytes.Buffer
	app := NewApp("cfront")
	app.Stderr = &stderr
	if err := app.Run([]string{"--bogus"}); err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(stderr.String(), "unknown flag: --bogus") || !strings.Contains(stderr.String(), "Run 'cfront --help'") {
		t.Errorf("unexpected stderr:\n%s", stderr.String())
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four", 9)
	if diff := cmp.Diff([]string{"one two", "three", "four"}, got); diff != "" {
		t.Errorf("wrap mismatch (-want +got):\n%s", diff)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("empty text wrapped to %v", got)
	}
}

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func statuses(results []*FileTestResult) map[string]Status {
	out := make(map[string]Status, len(results))
	for _, r := range results {
		out[filepath.Base(r.File)] = r.Status
	}
	return out
}

func TestGenerateThenCompare(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.c":   "int main() { return 0; }\n",
		"b.c":   "x = (1;\n",
		"dup.c": "int main() { return 0; }\n",
	})
	opts := options{patterns: filepath.Join(dir, "*.c"), std: "c", jobs: 2, generate: true}

	results, err := runSuite(opts)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]Status{"a.c": StatusPass, "b.c": StatusPass, "dup.c": StatusSkip}
	if diff := cmp.Diff(want, statuses(results)); diff != "" {
		t.Fatalf("generate statuses (-want +got):\n%s", diff)
	}

	golden, err := os.ReadFile(filepath.Join(dir, ".a.c.ast"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("FuncDecl int main\n  Block\n    Return\n      Number 0\n", string(golden)); diff != "" {
		t.Errorf("golden mismatch (-want +got):\n%s", diff)
	}
	failGolden, err := os.ReadFile(filepath.Join(dir, ".b.c.ast"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(failGolden), "b.c:1:7: error: Expected ')' after expression") {
		t.Errorf("expected-failure golden should hold the diagnostic, got %q", failGolden)
	}

	opts.generate = false
	results, err = runSuite(opts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, statuses(results)); diff != "" {
		t.Fatalf("compare statuses (-want +got):\n%s", diff)
	}
}

func TestCompareDetectsMismatch(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.c":      "x;\n",
		".a.c.ast": "ExprStmt\n  Ident y\n",
		"nogold.c": "y;\n",
	})
	results, err := runSuite(options{patterns: filepath.Join(dir, "*.c"), std: "c", jobs: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]Status{"a.c": StatusFail, "nogold.c": StatusSkip}
	if diff := cmp.Diff(want, statuses(results)); diff != "" {
		t.Fatalf("statuses (-want +got):\n%s", diff)
	}
	for _, r := range results {
		if r.Status == StatusFail && r.Diff == "" {
			t.Errorf("failing result for %s carries no diff", r.File)
		}
	}
	if !hasFailures(TestSuiteResults{"a.c": results[0]}) {
		t.Errorf("hasFailures should report the mismatch")
	}
}

func TestSkipListAndDialect(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"f.c":    "x += 1;\n",
		"skip.c": "y;\n",
	})
	opts := options{
		patterns: filepath.Join(dir, "*.c"),
		skip:     filepath.Join(dir, "skip.c"),
		std:      "strict",
		jobs:     1,
		generate: true,
	}
	results, err := runSuite(opts)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]Status{"f.c": StatusPass, "skip.c": StatusSkip}
	if diff := cmp.Diff(want, statuses(results)); diff != "" {
		t.Fatalf("statuses (-want +got):\n%s", diff)
	}
	// Without compound operators "+=" lexes as '+' '=' and the parse fails.
	golden, err := os.ReadFile(filepath.Join(dir, ".f.c.ast"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(golden), "error: Expected an expression, found '='") {
		t.Errorf("unexpected golden %q", golden)
	}
}

func TestGoldenPath(t *testing.T) {
	if got := goldenPath("/src/tests/hello.c", ""); got != "/src/tests/.hello.c.ast" {
		t.Errorf("got %s", got)
	}
	if got := goldenPath("/src/tests/hello.c", "/gold"); got != "/gold/.hello.c.ast" {
		t.Errorf("got %s", got)
	}
}

func TestRepositoryCorpus(t *testing.T) {
	results, err := runSuite(options{patterns: filepath.Join("..", "..", "tests", "*.c"), std: "c", jobs: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Skip("no corpus files found")
	}
	for _, r := range results {
		if r.Status != StatusPass {
			t.Errorf("%s: %s %s\n%s", r.File, r.Status, r.Message, r.Diff)
		}
	}
}

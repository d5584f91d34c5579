// asttest parses a corpus of source files and compares each syntax tree dump
// against a golden file stored next to the source as .<name>.ast.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/cfront/pkg/ast"
	"github.com/xplshn/cfront/pkg/config"
	"github.com/xplshn/cfront/pkg/lexer"
	"github.com/xplshn/cfront/pkg/parser"
	"github.com/xplshn/cfront/pkg/util"
)

type Status string

const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"
	StatusSkip  Status = "SKIP"
	StatusError Status = "ERROR"
)

type FileTestResult struct {
	File     string        `json:"file"`
	Hash     string        `json:"hash,omitempty"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Diff     string        `json:"diff,omitempty"`
	Duration time.Duration `json:"duration"`
}

type TestSuiteResults map[string]*FileTestResult

type options struct {
	patterns  string
	skip      string
	goldenDir string
	std       string
	flags     string
	jobs      int
	generate  bool
	verbose   bool
}

var (
	testFiles      = flag.String("test-files", "tests/*.c", "Glob pattern(s) for files to test (space-separated).")
	skipFiles      = flag.String("skip-files", "", "Files to skip (space-separated).")
	outputJSON     = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	goldenDir      = flag.String("dir", "", "Directory to store/read golden files (defaults to source file dir).")
	std            = flag.String("std", "c", "Language standard used for every file (c, strict).")
	extraFlags     = flag.String("flags", "", "Extra -W/-F toggles applied to every file, e.g. \"-Fno-float\".")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	generateGolden = flag.Bool("generate-golden", false, "Write golden files instead of comparing against them.")
	verbose        = flag.Bool("v", false, "Enable verbose logging.")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	opts := options{
		patterns:  *testFiles,
		skip:      *skipFiles,
		goldenDir: *goldenDir,
		std:       *std,
		flags:     *extraFlags,
		jobs:      *jobs,
		generate:  *generateGolden,
		verbose:   *verbose,
	}
	if _, err := newConfig(opts); err != nil {
		log.Fatalf("%s[ERROR]%s %v\n", cRed, cNone, err)
	}

	results, err := runSuite(opts)
	if err != nil {
		log.Fatalf("%s[ERROR]%s %v\n", cRed, cNone, err)
	}
	if len(results) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	printSummary(results, opts.verbose)
	resultsMap := writeJSONReport(results, *outputJSON)
	if hasFailures(resultsMap) {
		os.Exit(1)
	}
}

func newConfig(opts options) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := cfg.ApplyStd(opts.std); err != nil {
		return nil, err
	}
	cfg.ProcessDirectiveFlags(opts.flags)
	return cfg, nil
}

func goldenPath(sourceFile, dir string) string {
	name := "." + filepath.Base(sourceFile) + ".ast"
	if dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(filepath.Dir(sourceFile), name)
}

// runSuite feeds every matched file to a pool of workers. Files whose content
// hashes equal an earlier file are skipped.
func runSuite(opts options) ([]*FileTestResult, error) {
	files, err := expandGlobPatterns(opts.patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern(s): %w", err)
	}
	if opts.goldenDir != "" && opts.generate {
		if err := os.MkdirAll(opts.goldenDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", opts.goldenDir, err)
		}
	}

	skipList := make(map[string]bool)
	for _, f := range strings.Fields(opts.skip) {
		if abs, err := filepath.Abs(f); err == nil {
			skipList[abs] = true
		}
	}

	workers := opts.jobs
	if workers < 1 {
		workers = 1
	}

	type task struct {
		file    string
		content []byte
	}
	tasks := make(chan task, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker owns its configuration; lexers and parsers are never shared.
			cfg, err := newConfig(opts)
			for t := range tasks {
				if err != nil {
					resultsChan <- &FileTestResult{File: t.file, Status: StatusError, Message: err.Error()}
					continue
				}
				resultsChan <- testFile(t.file, t.content, cfg, opts)
			}
		}()
	}

	seenHashes := make(map[uint64]string)
	for _, file := range files {
		if skipList[file] {
			resultsChan <- &FileTestResult{File: file, Status: StatusSkip, Message: "Explicitly skipped"}
			continue
		}
		content, err := os.ReadFile(file)
		if err != nil {
			resultsChan <- &FileTestResult{File: file, Status: StatusError, Message: fmt.Sprintf("Failed to read file: %v", err)}
			continue
		}
		hash := xxhash.Sum64(content)
		if originalFile, seen := seenHashes[hash]; seen {
			resultsChan <- &FileTestResult{File: file, Status: StatusSkip, Message: fmt.Sprintf("Content is identical to %s", originalFile)}
			continue
		}
		seenHashes[hash] = file
		tasks <- task{file: file, content: content}
	}
	close(tasks)

	wg.Wait()
	close(resultsChan)

	var allResults []*FileTestResult
	for result := range resultsChan {
		allResults = append(allResults, result)
	}
	sort.Slice(allResults, func(i, j int) bool { return allResults[i].File < allResults[j].File })
	return allResults, nil
}

// render produces the text compared against a golden file: the tree dump on
// success, or the rendered diagnostic for inputs that are expected to fail.
func render(rec util.SourceFileRecord, cfg *config.Config) string {
	records := []util.SourceFileRecord{rec}
	var buf bytes.Buffer

	tokens, _, err := lexer.Tokenize(rec.Content, 0, cfg)
	if err == nil {
		var stmts []*ast.Node
		if stmts, err = parser.NewParser(tokens, cfg).Parse(); err == nil {
			_ = ast.Dump(&buf, stmts)
			return buf.String()
		}
	}

	var diag *util.Diagnostic
	if errors.As(err, &diag) {
		util.Render(&buf, records, diag, false)
	} else {
		fmt.Fprintf(&buf, "error: %v\n", err)
	}
	return buf.String()
}

func testFile(file string, content []byte, cfg *config.Config, opts options) *FileTestResult {
	start := time.Now()
	rec := util.NewSourceFileRecord(filepath.Base(file), content)
	got := render(rec, cfg)
	result := &FileTestResult{File: file, Hash: rec.HashString(), Duration: time.Since(start)}

	golden := goldenPath(file, opts.goldenDir)
	if opts.generate {
		if err := os.WriteFile(golden, []byte(got), 0644); err != nil {
			result.Status, result.Message = StatusError, fmt.Sprintf("Failed to write golden file %s: %v", golden, err)
			return result
		}
		result.Status, result.Message = StatusPass, "Golden file written to "+golden
		return result
	}

	want, err := os.ReadFile(golden)
	if errors.Is(err, os.ErrNotExist) {
		result.Status, result.Message = StatusSkip, "Cannot test without a corresponding .ast golden file"
		return result
	}
	if err != nil {
		result.Status, result.Message = StatusError, fmt.Sprintf("Could not read golden file %s: %v", golden, err)
		return result
	}

	if diff := cmp.Diff(string(want), got); diff != "" {
		result.Status, result.Message, result.Diff = StatusFail, "Syntax tree differs from golden file", diff
		return result
	}
	result.Status, result.Message = StatusPass, "Syntax tree matches golden file"
	return result
}

func printSummary(results []*FileTestResult, verbose bool) {
	var passed, failed, skipped, errored int
	var total time.Duration
	for _, result := range results {
		total += result.Duration
		if verbose || result.Status != StatusPass {
			fmt.Println("----------------------------------------------------------------------")
			fmt.Printf("Testing %s%s%s...\n", cCyan, result.File, cNone)
		}
		switch result.Status {
		case StatusPass:
			passed++
			if verbose {
				fmt.Printf("  [%sPASS%s] %s (%s)\n", cGreen, cNone, result.Message, result.Duration)
			}
		case StatusFail:
			failed++
			fmt.Printf("  [%sFAIL%s] %s\n", cRed, cNone, result.Message)
			fmt.Println(formatDiff(result.Diff))
		case StatusSkip:
			skipped++
			fmt.Printf("  [%sSKIP%s] %s\n", cYellow, cNone, result.Message)
		case StatusError:
			errored++
			fmt.Printf("  [%sERROR%s] %s\n", cRed, cNone, result.Message)
		}
	}
	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("%sTest Summary:%s %s%d Passed%s, %s%d Failed%s, %s%d Skipped%s, %s%d Errored%s, %d Total (%s parsing)\n",
		cBold, cNone, cGreen, passed, cNone, cRed, failed, cNone, cYellow, skipped, cNone, cRed, errored, cNone, len(results), total)
}

func formatDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(diff, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "-"):
			builder.WriteString(cRed)
		case strings.HasPrefix(trimmed, "+"):
			builder.WriteString(cGreen)
		}
		builder.WriteString("    " + line + cNone + "\n")
	}
	return builder.String()
}

func writeJSONReport(results []*FileTestResult, outputFile string) TestSuiteResults {
	resultsMap := make(TestSuiteResults, len(results))
	for _, r := range results {
		resultsMap[r.File] = r
	}
	jsonData, err := json.MarshalIndent(resultsMap, "", "  ")
	if err != nil {
		log.Printf("%s[ERROR]%s Failed to marshal results to JSON: %v\n", cRed, cNone, err)
		return resultsMap
	}
	if err := os.WriteFile(outputFile, jsonData, 0644); err != nil {
		log.Printf("%s[ERROR]%s Failed to write JSON report to %s: %v\n", cRed, cNone, outputFile, err)
	} else {
		fmt.Printf("Full test report saved to %s\n", outputFile)
	}
	return resultsMap
}

func hasFailures(results TestSuiteResults) bool {
	for _, result := range results {
		if result.Status == StatusFail || result.Status == StatusError {
			return true
		}
	}
	return false
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, file := range files {
			absFile, err := filepath.Abs(file)
			if err != nil {
				continue
			}
			if seen[absFile] {
				continue
			}
			if info, err := os.Stat(absFile); err == nil && info.Mode().IsRegular() {
				allFiles = append(allFiles, absFile)
				seen[absFile] = true
			}
		}
	}
	return allFiles, nil
}

package config

import (
	"testing"

	"github.com/xplshn/cfront/pkg/cli"
)

func TestDefaults(t *testing.T) {
	cfg := NewConfig()
	for ft := Feature(0); ft < FeatCount; ft++ {
		if !cfg.IsFeatureEnabled(ft) {
			t.Errorf("feature %s should be enabled by default", cfg.Features[ft].Name)
		}
	}
	if cfg.IsWarningEnabled(WarnPedantic) || cfg.IsWarningEnabled(WarnInvalidChar) {
		t.Errorf("pedantic and invalid-char should start disabled")
	}
	if !cfg.IsWarningEnabled(WarnUnrecognizedEscape) {
		t.Errorf("u-esc should start enabled")
	}
	if cfg.MaxDepth != DefaultMaxDepth || cfg.StdName != "c" {
		t.Errorf("unexpected defaults: depth %d, std %q", cfg.MaxDepth, cfg.StdName)
	}
	if len(cfg.FeatureMap) != int(FeatCount) || len(cfg.WarningMap) != int(WarnCount) {
		t.Errorf("name maps are incomplete")
	}
}

func TestApplyStd(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.ApplyStd("strict"); err != nil {
		t.Fatal(err)
	}
	if cfg.IsFeatureEnabled(FeatFloat) || cfg.IsFeatureEnabled(FeatCompoundOps) {
		t.Errorf("strict should disable float and compound-ops")
	}
	if !cfg.IsWarningEnabled(WarnPedantic) || !cfg.IsWarningEnabled(WarnInvalidChar) {
		t.Errorf("strict should enable pedantic and invalid-char")
	}

	if err := cfg.ApplyStd("c"); err != nil {
		t.Fatal(err)
	}
	if !cfg.IsFeatureEnabled(FeatFloat) || cfg.StdName != "c" {
		t.Errorf("c should re-enable every feature")
	}

	if err := cfg.ApplyStd("c99"); err == nil {
		t.Errorf("expected an error for an unknown standard")
	}
}

func TestProcessDirectiveFlags(t *testing.T) {
	cfg := NewConfig()
	cfg.ProcessDirectiveFlags("-Fno-float -Wno-u-esc -Winvalid-char -Fbogus")
	if cfg.IsFeatureEnabled(FeatFloat) {
		t.Errorf("-Fno-float ignored")
	}
	if cfg.IsWarningEnabled(WarnUnrecognizedEscape) {
		t.Errorf("-Wno-u-esc ignored")
	}
	if !cfg.IsWarningEnabled(WarnInvalidChar) {
		t.Errorf("-Winvalid-char ignored")
	}

	cfg.ProcessDirectiveFlags("-Wno-all")
	for wt := Warning(0); wt < WarnCount; wt++ {
		if cfg.IsWarningEnabled(wt) {
			t.Errorf("warning %s still enabled after -Wno-all", cfg.Warnings[wt].Name)
		}
	}
	cfg.ProcessDirectiveFlags("-Wall")
	if cfg.IsWarningEnabled(WarnPedantic) {
		t.Errorf("-Wall must not enable pedantic")
	}
	if !cfg.IsWarningEnabled(WarnExtra) {
		t.Errorf("-Wall should enable extra")
	}
}

func TestFlagGroups(t *testing.T) {
	cfg := NewConfig()
	fs := cli.NewFlagSet("test")
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)
	if len(warningFlags) != int(WarnCount) || len(featureFlags) != int(FeatCount) {
		t.Fatalf("got %d warning and %d feature entries", len(warningFlags), len(featureFlags))
	}
	if !warningFlags[WarnExtra].Default || warningFlags[WarnPedantic].Default {
		t.Errorf("entry defaults should mirror the configuration")
	}

	if err := fs.Parse([]string{"-Wpedantic", "-Fno-compound-ops", "in.c"}); err != nil {
		t.Fatal(err)
	}
	cfg.ApplyFlagGroups(warningFlags, featureFlags)
	if !cfg.IsWarningEnabled(WarnPedantic) {
		t.Errorf("-Wpedantic not applied")
	}
	if cfg.IsFeatureEnabled(FeatCompoundOps) {
		t.Errorf("-Fno-compound-ops not applied")
	}
	if !cfg.IsFeatureEnabled(FeatFloat) {
		t.Errorf("untouched feature changed")
	}
	if args := fs.Args(); len(args) != 1 || args[0] != "in.c" {
		t.Errorf("positional args: %v", args)
	}
}

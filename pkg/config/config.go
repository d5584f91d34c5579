package config

import (
	"fmt"
	"strings"

	"github.com/xplshn/cfront/pkg/cli"
)

type Feature int

const (
	FeatCComments Feature = iota
	FeatDirectives
	FeatFloat
	FeatCompoundOps
	FeatCount
)

type Warning int

const (
	WarnUnrecognizedEscape Warning = iota
	WarnUnterminatedComment
	WarnUnterminatedString
	WarnInvalidChar
	WarnPedantic
	WarnExtra
	WarnCount
)

// DefaultMaxDepth bounds parser recursion for blocks, statements and expressions.
const DefaultMaxDepth = 512

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	StdName    string
	MaxDepth   int
}

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		StdName:    "c",
		MaxDepth:   DefaultMaxDepth,
	}

	features := map[Feature]Info{
		FeatCComments:   {"c-comments", true, "Recognize '//' line comments and '/* */' block comments."},
		FeatDirectives:  {"directives", true, "Recognize '#include' and other '#' directive lines."},
		FeatFloat:       {"float", true, "Recognize floating-point literals like '1.5'."},
		FeatCompoundOps: {"compound-ops", true, "Recognize compound assignment operators like '+='."},
	}

	warnings := map[Warning]Info{
		WarnUnrecognizedEscape:  {"u-esc", true, "Warn on unrecognized escape sequences in string and character literals."},
		WarnUnterminatedComment: {"unterminated-comment", true, "Warn when a block comment runs to the end of input."},
		WarnUnterminatedString:  {"unterminated-string", true, "Warn when a string literal runs to the end of input."},
		WarnInvalidChar:         {"invalid-char", false, "Warn when the lexer meets a character it cannot classify."},
		WarnPedantic:            {"pedantic", false, "Issue all warnings demanded by the strict standard."},
		WarnExtra:               {"extra", true, "Enable extra miscellaneous warnings."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// ApplyStd switches between the permissive default dialect and the strict one.
func (c *Config) ApplyStd(stdName string) error {
	switch stdName {
	case "c", "":
		c.StdName = "c"
		for ft := Feature(0); ft < FeatCount; ft++ {
			c.SetFeature(ft, true)
		}
	case "strict":
		c.StdName = stdName
		c.SetFeature(FeatCComments, true)
		c.SetFeature(FeatDirectives, true)
		c.SetFeature(FeatFloat, false)
		c.SetFeature(FeatCompoundOps, false)
		c.SetWarning(WarnPedantic, true)
		c.SetWarning(WarnInvalidChar, true)
	default:
		return fmt.Errorf("unsupported standard '%s'. Supported: 'c', 'strict'", stdName)
	}
	return nil
}

func (c *Config) applyFlag(flag string) {
	trimmed := strings.TrimPrefix(flag, "-")
	isNo := strings.HasPrefix(trimmed, "Wno-") || strings.HasPrefix(trimmed, "Fno-")
	enable := !isNo

	var name string
	var isWarning bool

	switch {
	case strings.HasPrefix(trimmed, "W"):
		name = strings.TrimPrefix(trimmed, "W")
		if isNo {
			name = strings.TrimPrefix(name, "no-")
		}
		isWarning = true
	case strings.HasPrefix(trimmed, "F"):
		name = strings.TrimPrefix(trimmed, "F")
		if isNo {
			name = strings.TrimPrefix(name, "no-")
		}
	default:
		name = trimmed
		isWarning = true
	}

	if name == "all" && isWarning {
		for i := Warning(0); i < WarnCount; i++ {
			if i != WarnPedantic {
				c.SetWarning(i, enable)
			}
		}
		return
	}

	if isWarning {
		if w, ok := c.WarningMap[name]; ok {
			c.SetWarning(w, enable)
		}
	} else {
		if f, ok := c.FeatureMap[name]; ok {
			c.SetFeature(f, enable)
		}
	}
}

// ProcessDirectiveFlags applies a whitespace separated list such as "-Wall -Fno-float".
func (c *Config) ProcessDirectiveFlags(flagStr string) {
	for _, flag := range strings.Fields(flagStr) {
		c.applyFlag(flag)
	}
}

// SetupFlagGroups registers -W<warning> and -F<feature> toggles on fs. The
// returned entries are indexed by Warning and Feature respectively.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) ([]cli.FlagGroupEntry, []cli.FlagGroupEntry) {
	warningFlags := make([]cli.FlagGroupEntry, WarnCount)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		enabled, disabled := false, false
		warningFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description, Default: info.Enabled,
			Enabled: &enabled, Disabled: &disabled,
		}
	}
	featureFlags := make([]cli.FlagGroupEntry, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		enabled, disabled := false, false
		featureFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description, Default: info.Enabled,
			Enabled: &enabled, Disabled: &disabled,
		}
	}
	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings", "warning", "Available Warnings:", warningFlags)
	fs.AddFlagGroup("Feature Flags", "Enable or disable lexer features", "feature", "Available Features:", featureFlags)
	return warningFlags, featureFlags
}

// ApplyFlagGroups copies the parsed state of SetupFlagGroups entries into c.
func (c *Config) ApplyFlagGroups(warningFlags, featureFlags []cli.FlagGroupEntry) {
	for i, entry := range warningFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range featureFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}

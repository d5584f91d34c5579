package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"
)

type IndentState struct{ baseUnit int }

func NewIndentState() *IndentState { return &IndentState{baseUnit: 4} }

func (is *IndentState) AtLevel(level int) string {
	return strings.Repeat(" ", is.baseUnit*level)
}

type Value interface {
	String() string
	Set(string) error
	Get() any
}

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }
func (v *stringValue) Get() any           { return *v.p }

type boolValue struct{ p *bool }

func (v *boolValue) Set(s string) error {
	val, err := strconv.ParseBool(s)
	if err != nil && s != "" {
		return fmt.Errorf("invalid boolean value '%s': %w", s, err)
	}
	*v.p = val || s == ""
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }
func (v *boolValue) Get() any       { return *v.p }

type intValue struct{ p *int }

func (v *intValue) Set(s string) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer value '%s': %w", s, err)
	}
	*v.p = val
	return nil
}
func (v *intValue) String() string { return strconv.Itoa(*v.p) }
func (v *intValue) Get() any       { return *v.p }

type listValue struct{ p *[]string }

func (v *listValue) Set(s string) error { *v.p = append(*v.p, s); return nil }
func (v *listValue) String() string     { return strings.Join(*v.p, ", ") }
func (v *listValue) Get() any           { return *v.p }

type Flag struct {
	Name         string
	Shorthand    string
	Usage        string
	Value        Value
	DefValue     string
	ExpectedType string
}

type FlagGroup struct {
	Name                 string
	Description          string
	Flags                []FlagGroupEntry
	GroupType            string
	AvailableFlagsHeader string
}

// FlagGroupEntry is a toggle exposed as -<Prefix><Name> and -<Prefix>no-<Name>.
// Default is only used to mark the entry in the help page.
type FlagGroupEntry struct {
	Name     string
	Prefix   string
	Usage    string
	Default  bool
	Enabled  *bool
	Disabled *bool
}

type FlagSet struct {
	name       string
	flags      map[string]*Flag
	shorthands map[string]*Flag
	args       []string
	flagGroups []FlagGroup
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:       name,
		flags:      make(map[string]*Flag),
		shorthands: make(map[string]*Flag),
	}
}

func (f *FlagSet) Args() []string { return f.args }

func (f *FlagSet) Lookup(name string) *Flag { return f.flags[name] }

func (f *FlagSet) String(p *string, name, shorthand, value, usage, expectedType string) {
	*p = value
	f.Var(&stringValue{p}, name, shorthand, usage, value, expectedType)
}

func (f *FlagSet) Bool(p *bool, name, shorthand string, value bool, usage string) {
	*p = value
	f.Var(&boolValue{p}, name, shorthand, usage, strconv.FormatBool(value), "")
}

func (f *FlagSet) Int(p *int, name, shorthand string, value int, usage, expectedType string) {
	*p = value
	f.Var(&intValue{p}, name, shorthand, usage, strconv.Itoa(value), expectedType)
}

func (f *FlagSet) List(p *[]string, name, shorthand string, value []string, usage, expectedType string) {
	*p = value
	f.Var(&listValue{p}, name, shorthand, usage, fmt.Sprintf("%v", value), expectedType)
}

func (f *FlagSet) DefineGroupFlags(entries []FlagGroupEntry) {
	for i := range entries {
		e := &entries[i]
		if e.Enabled != nil {
			f.Bool(e.Enabled, e.Prefix+e.Name, "", *e.Enabled, e.Usage)
		}
		if e.Disabled != nil {
			f.Bool(e.Disabled, e.Prefix+"no-"+e.Name, "", *e.Disabled, "Disable '"+e.Name+"'")
		}
	}
}

func (f *FlagSet) AddFlagGroup(name, description, groupType, availableFlagsHeader string, entries []FlagGroupEntry) {
	f.DefineGroupFlags(entries)
	f.flagGroups = append(f.flagGroups, FlagGroup{
		Name:                 name,
		Description:          description,
		Flags:                entries,
		GroupType:            groupType,
		AvailableFlagsHeader: availableFlagsHeader,
	})
}

func (f *FlagSet) Var(value Value, name, shorthand, usage, defValue, expectedType string) {
	if name == "" {
		panic("flag name cannot be empty")
	}
	if _, ok := f.flags[name]; ok {
		panic(fmt.Sprintf("flag redefined: %s", name))
	}
	flag := &Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: value, DefValue: defValue, ExpectedType: expectedType}
	f.flags[name] = flag
	if shorthand != "" {
		if _, ok := f.shorthands[shorthand]; ok {
			panic(fmt.Sprintf("shorthand flag redefined: %s", shorthand))
		}
		f.shorthands[shorthand] = flag
	}
}

func isBoolFlag(flag *Flag) bool {
	_, ok := flag.Value.(*boolValue)
	return ok
}

// setFlag assigns an explicit "=value", a bool toggle, or the next argument.
func setFlag(flag *Flag, display string, inline *string, arguments []string, i *int) error {
	if inline != nil {
		return flag.Value.Set(*inline)
	}
	if isBoolFlag(flag) {
		return flag.Value.Set("")
	}
	if *i+1 >= len(arguments) {
		return fmt.Errorf("flag needs an argument: %s", display)
	}
	*i++
	return flag.Value.Set(arguments[*i])
}

// Parse accepts --name, --name=value, -name (for multi-letter flags such as
// -Wall), -x, -xvalue and -x value. Everything else is positional.
func (f *FlagSet) Parse(arguments []string) error {
	f.args = []string{}
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		if len(arg) < 2 || arg[0] != '-' {
			f.args = append(f.args, arg)
			continue
		}
		if arg == "--" {
			f.args = append(f.args, arguments[i+1:]...)
			break
		}

		body := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
		if body == "" {
			return fmt.Errorf("empty flag name")
		}
		name, value, hasValue := strings.Cut(body, "=")
		var inline *string
		if hasValue {
			inline = &value
		}

		if flag, ok := f.flags[name]; ok {
			if err := setFlag(flag, arg, inline, arguments, &i); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(arg, "--") {
			return fmt.Errorf("unknown flag: --%s", name)
		}
		if err := f.parseShortFlag(arg, arguments, &i); err != nil {
			return err
		}
	}
	return nil
}

func (f *FlagSet) parseShortFlag(arg string, arguments []string, i *int) error {
	shorthand := arg[1:2]
	flag, ok := f.shorthands[shorthand]
	if !ok {
		return fmt.Errorf("unknown flag: %s", arg)
	}
	if isBoolFlag(flag) {
		if len(arg) > 2 {
			return fmt.Errorf("unknown flag: %s", arg)
		}
		return flag.Value.Set("")
	}
	if value := arg[2:]; value != "" {
		return flag.Value.Set(value)
	}
	return setFlag(flag, "-"+shorthand, nil, arguments, i)
}

type App struct {
	Name        string
	Usage       string
	Synopsis    string
	Description string
	Authors     []string
	Repository  string
	FlagSet     *FlagSet
	Action      func(args []string) error
	Stdout      io.Writer
	Stderr      io.Writer
}

func NewApp(name string) *App {
	return &App{
		Name:    name,
		FlagSet: NewFlagSet(name),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// ErrHelp is returned by Run after the help page was printed.
var ErrHelp = fmt.Errorf("help requested")

func (a *App) Run(arguments []string) error {
	help := false
	a.FlagSet.Bool(&help, "help", "h", false, "Display this information")

	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintln(a.Stderr, err)
		a.generateUsagePage(a.Stderr)
		return err
	}
	if help {
		a.generateHelpPage(a.Stdout)
		return ErrHelp
	}
	if a.Action != nil {
		return a.Action(a.FlagSet.Args())
	}
	return nil
}

func (a *App) usageLine() string {
	usage := a.Usage
	if usage == "" {
		usage = "[input]"
	}
	return fmt.Sprintf("Usage: %s <options> %s\n", a.Name, usage)
}

func (a *App) generateUsagePage(w io.Writer) {
	var sb strings.Builder
	indent := NewIndentState()
	sb.WriteString(a.usageLine())

	optionFlags := a.getOptionFlags()
	if len(optionFlags) > 0 {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%sOptions\n", indent.AtLevel(1))
		widths := a.measure(optionFlags, nil)
		for _, flag := range optionFlags {
			a.formatFlagLine(&sb, flag, indent, widths)
		}
	}

	fmt.Fprintf(&sb, "\nRun '%s --help' for all available options and flags.\n", a.Name)
	fmt.Fprint(w, sb.String())
}

func (a *App) generateHelpPage(w io.Writer) {
	var sb strings.Builder
	indent := NewIndentState()
	optionFlags := a.getOptionFlags()
	widths := a.measure(optionFlags, a.FlagSet.flagGroups)

	sb.WriteString(a.usageLine())
	if len(a.Authors) > 0 {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%sCopyright (c): %s\n", indent.AtLevel(1), strings.Join(a.Authors, ", ")+" and contributors")
	}
	if a.Repository != "" {
		fmt.Fprintf(&sb, "%sFor more details refer to %s\n", indent.AtLevel(1), a.Repository)
	}
	if a.Synopsis != "" {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%sSynopsis\n", indent.AtLevel(1))
		synopsis := strings.NewReplacer("[", "<", "]", ">").Replace(a.Synopsis)
		fmt.Fprintf(&sb, "%s%s %s\n", indent.AtLevel(2), a.Name, synopsis)
	}
	if a.Description != "" {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%sDescription\n", indent.AtLevel(1))
		for _, line := range wrapText(a.Description, widths.term-len(indent.AtLevel(2))) {
			fmt.Fprintf(&sb, "%s%s\n", indent.AtLevel(2), line)
		}
	}
	if len(optionFlags) > 0 {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%sOptions\n", indent.AtLevel(1))
		for _, flag := range optionFlags {
			a.formatFlagLine(&sb, flag, indent, widths)
		}
	}

	groups := make([]FlagGroup, len(a.FlagSet.flagGroups))
	copy(groups, a.FlagSet.flagGroups)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	for _, group := range groups {
		a.formatFlagGroup(&sb, group, indent, widths)
	}
	fmt.Fprint(w, sb.String())
}

// getOptionFlags returns the non-group flags sorted by name.
func (a *App) getOptionFlags() []*Flag {
	var optionFlags []*Flag
	for _, flag := range a.FlagSet.flags {
		if !a.isGroupFlag(flag.Name) {
			optionFlags = append(optionFlags, flag)
		}
	}
	sort.Slice(optionFlags, func(i, j int) bool { return optionFlags[i].Name < optionFlags[j].Name })
	return optionFlags
}

func (a *App) isGroupFlag(flagName string) bool {
	for _, group := range a.FlagSet.flagGroups {
		for _, entry := range group.Flags {
			if flagName == entry.Prefix+entry.Name || flagName == entry.Prefix+"no-"+entry.Name {
				return true
			}
		}
	}
	return false
}

type columnWidths struct {
	left, usage, term int
}

func (a *App) measure(flags []*Flag, groups []FlagGroup) columnWidths {
	w := columnWidths{term: getTerminalWidth()}
	fit := func(left, usage string) {
		if len(left) > w.left {
			w.left = len(left)
		}
		if len(usage) > w.usage {
			w.usage = len(usage)
		}
	}
	for _, flag := range flags {
		fit(formatFlagString(flag), flag.Usage)
	}
	for _, group := range groups {
		if len(group.Flags) == 0 {
			continue
		}
		prefix := group.Flags[0].Prefix
		fit(fmt.Sprintf("-%sno-<%s>", prefix, group.GroupType), "")
		for _, entry := range group.Flags {
			fit(entry.Name, entry.Usage)
		}
	}
	return w
}

func formatFlagString(flag *Flag) string {
	var sb strings.Builder
	isBool := isBoolFlag(flag)
	if flag.Shorthand != "" {
		fmt.Fprintf(&sb, "-%s, ", flag.Shorthand)
	}
	fmt.Fprintf(&sb, "--%s", flag.Name)
	if !isBool && flag.ExpectedType != "" {
		fmt.Fprintf(&sb, " <%s>", flag.ExpectedType)
	}
	return sb.String()
}

func (a *App) formatEntry(sb *strings.Builder, indent *IndentState, leftPart, usagePart, rightPart string, w columnWidths) {
	indentStr := indent.AtLevel(2)
	maxUsage := w.term - len(indentStr) - w.left - 1 - 2 - len(rightPart)
	if maxUsage < 10 {
		maxUsage = 10
	}
	usageWidth := w.usage
	if usageWidth > maxUsage {
		usageWidth = maxUsage
	}

	lines := wrapText(usagePart, maxUsage)
	first := ""
	if len(lines) > 0 {
		first = lines[0]
	}
	if rightPart != "" {
		fmt.Fprintf(sb, "%s%-*s %-*s  %s\n", indentStr, w.left, leftPart, usageWidth, first, rightPart)
	} else {
		fmt.Fprintf(sb, "%s%-*s %s\n", indentStr, w.left, leftPart, first)
	}
	pad := strings.Repeat(" ", w.left+1)
	for _, line := range lines[min(1, len(lines)):] {
		fmt.Fprintf(sb, "%s%s%s\n", indentStr, pad, line)
	}
}

func (a *App) formatFlagLine(sb *strings.Builder, flag *Flag, indent *IndentState, w columnWidths) {
	rightPart := ""
	if !isBoolFlag(flag) && flag.DefValue != "" && flag.DefValue != "[]" {
		rightPart = fmt.Sprintf("|%s|", flag.DefValue)
	}
	a.formatEntry(sb, indent, formatFlagString(flag), flag.Usage, rightPart, w)
}

func (a *App) formatFlagGroup(sb *strings.Builder, group FlagGroup, indent *IndentState, w columnWidths) {
	if len(group.Flags) == 0 {
		return
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%s%s\n", indent.AtLevel(1), group.Name)

	prefix := group.Flags[0].Prefix
	groupType := group.GroupType
	if groupType == "" {
		groupType = "flag"
	}
	fmt.Fprintf(sb, "%s%-*s Enable a specific %s\n", indent.AtLevel(2), w.left, fmt.Sprintf("-%s<%s>", prefix, groupType), groupType)
	fmt.Fprintf(sb, "%s%-*s Disable a specific %s\n", indent.AtLevel(2), w.left, fmt.Sprintf("-%sno-<%s>", prefix, groupType), groupType)
	if group.AvailableFlagsHeader != "" {
		fmt.Fprintf(sb, "%s%s\n", indent.AtLevel(1), group.AvailableFlagsHeader)
	}

	entries := make([]FlagGroupEntry, len(group.Flags))
	copy(entries, group.Flags)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, entry := range entries {
		mark := "|-|"
		if entry.Default {
			mark = "|x|"
		}
		a.formatEntry(sb, indent, entry.Name, entry.Usage, mark, w)
	}
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	if width < 20 {
		return 20
	}
	return width
}

func wrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > maxWidth {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

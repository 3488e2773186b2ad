package doc

import (
	"fmt"
	"strings"

	"github.com/rubiojr/gnmake/rules"
	"github.com/rubiojr/gnmake/vars"
)

// nameWidth is the column macro names are right-aligned to.
const nameWidth = 25

// FormatMacros lists macros in definition order as "NAME = value".
func FormatMacros(macros []vars.Entry) string {
	if len(macros) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("MACROS:\n\n")
	for _, m := range macros {
		sb.WriteString(strings.Repeat(" ", nameWidth-min(nameWidth-1, len(m.Name))))
		sb.WriteString(m.Name)
		sb.WriteString(" = ")
		sb.WriteString(squeeze(m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatRules lists inference rules, the suffix list and the explicit
// rules.
func FormatRules(r *rules.Rules) string {
	var sb strings.Builder
	if len(r.Implicit) > 0 {
		sb.WriteString("INFERENCE RULES:\n\n")
		for _, ir := range r.Implicit {
			formatImplicit(&sb, ir)
		}
	}
	if len(r.Suffixes) > 0 {
		fmt.Fprintf(&sb, ".SUFFIXES: %s\n\n", strings.Join(r.Suffixes, " "))
	}
	if len(r.Explicit) > 0 {
		sb.WriteString("TARGETS:\n\n")
		for _, rule := range r.Explicit {
			formatRule(&sb, rule)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatImplicit(sb *strings.Builder, ir *rules.ImplicitRule) {
	fmt.Fprintf(sb, ".%s.%s:\n", ir.From, ir.To)
	for i, a := range ir.Actions {
		if i == 0 {
			sb.WriteString("    commands:   ")
		} else {
			sb.WriteString("                ")
		}
		sb.WriteString(squeeze(a.Line.Text))
		sb.WriteString("\n")
		for _, h := range a.HereDocLines {
			fmt.Fprintf(sb, "  <<%s\n", strings.Trim(h.Text, " \t"))
		}
	}
	sb.WriteString("\n")
}

func formatRule(sb *strings.Builder, rule *rules.Rule) {
	fmt.Fprintf(sb, "%s:\n", rule.Target)

	// dependents wrap every five
	sb.WriteString("   dependents: ")
	for i, d := range rule.Dependents {
		if i > 0 && i%5 == 0 {
			sb.WriteString("               ")
		}
		sb.WriteString(d)
		if i+1 < len(rule.Dependents) && (i+1)%5 == 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("\n")

	sb.WriteString("   commands: ")
	if len(rule.Actions) == 0 {
		sb.WriteString("\n")
	}
	for i, a := range rule.Actions {
		if i > 0 {
			sb.WriteString("             ")
		}
		sb.WriteString(strings.Trim(a.Line.Text, " \t"))
		sb.WriteString("\n")
		for _, h := range a.HereDocLines {
			fmt.Fprintf(sb, "                <<%s\n", strings.Trim(h.Text, " \t"))
		}
	}
	sb.WriteString("\n")
}

// squeeze turns runs of blanks into single spaces and trims the ends.
func squeeze(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

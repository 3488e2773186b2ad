// Package rules parses preprocessed makefile lines into explicit
// rules, inference rules and the suffix list.
package rules

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rubiojr/gnmake/log"
	"github.com/rubiojr/gnmake/scanner"
)

var (
	ErrInvalidIndent            = errors.New("invalid indent")
	ErrInvalidSeparator         = errors.New("invalid dependency separator")
	ErrColonMismatch            = errors.New("cannot have : and :: for the same target")
	ErrDuplicateRuleWithActions = errors.New("duplicate rule cannot have actions")
	ErrUnexpectedLineFormat     = errors.New("unexpected line format")
	ErrUnterminatedHereDoc      = errors.New("unterminated here-document")
)

// HereDoc says how a here-document file is handled.
type HereDoc int

const (
	NoHereDoc HereDoc = iota
	// Simple files are deleted after use.
	Simple
	// Keep files are left behind.
	Keep
	// Unicode files are deleted after use.
	Unicode
)

func (h HereDoc) String() string {
	switch h {
	case Simple:
		return "simple"
	case Keep:
		return "keep"
	case Unicode:
		return "unicode"
	}
	return "none"
}

// Action is a command line with its optional here-document body.
type Action struct {
	Line         scanner.Line
	HereDoc      HereDoc
	HereDocLines []scanner.Line
}

// HasHereDoc reports whether the command introduced a here-document.
func (a *Action) HasHereDoc() bool {
	return a.HereDoc != NoHereDoc || len(a.HereDocLines) > 0
}

// ImplicitRule makes a file with extension To from one with
// extension From.
type ImplicitRule struct {
	Line    int
	From    string
	To      string
	Actions []Action
	// Batch is set when the rule was declared with ::.
	Batch bool
}

// Rule is an explicit rule for one target.
type Rule struct {
	// Line is the makefile line of the rule, 0 for synthesized rules.
	Line        int
	Target      string
	Dependents  []string
	Actions     []Action
	DoubleColon bool
	// Locked is set on a single-colon rule that already had actions
	// when it was redefined; it cannot take more.
	Locked bool
}

// Clone returns a copy that shares no slices with r.
func (r *Rule) Clone() Rule {
	c := *r
	c.Dependents = slices.Clone(r.Dependents)
	c.Actions = slices.Clone(r.Actions)
	return c
}

func (r *Rule) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "rule: [%s]<-[%s]", r.Target, strings.Join(r.Dependents, "]["))
	if len(r.Actions) > 0 {
		sb.WriteString(": ")
		for _, a := range r.Actions {
			fmt.Fprintf(&sb, "[%s]", strings.Trim(a.Line.Text, " \t"))
			for _, h := range a.HereDocLines {
				fmt.Fprintf(&sb, "(%s)", strings.Trim(h.Text, " \t"))
			}
		}
	}
	return sb.String()
}

// Rules is everything the makefile says about building targets.
type Rules struct {
	Suffixes []string
	// SuffixesSet is true once the makefile has a .SUFFIXES line.
	SuffixesSet bool
	Implicit    []*ImplicitRule
	Explicit    []*Rule
}

// Find returns copies of the explicit rules for target, in definition
// order. Only double-colon targets have more than one.
func (r *Rules) Find(target string) []Rule {
	var out []Rule
	for _, rule := range r.Explicit {
		if rule.Target == target {
			out = append(out, rule.Clone())
		}
	}
	return out
}

// HasRuleWithActions reports whether some explicit rule for target has
// commands.
func (r *Rules) HasRuleWithActions(target string) bool {
	for _, rule := range r.Explicit {
		if rule.Target == target && len(rule.Actions) > 0 {
			return true
		}
	}
	return false
}

// FindImplicit returns the inference rule for from → to, or nil.
func (r *Rules) FindImplicit(from, to string) *ImplicitRule {
	for _, ir := range r.Implicit {
		if ir.From == from && ir.To == to {
			return ir
		}
	}
	return nil
}

// AddDefaultImplicitRule adds a from → to inference rule running
// command unless the makefile already defines one.
func (r *Rules) AddDefaultImplicitRule(from, to, command string) {
	if r.FindImplicit(from, to) != nil {
		return
	}
	r.Implicit = append(r.Implicit, &ImplicitRule{
		From:    from,
		To:      to,
		Actions: []Action{{Line: scanner.Line{Text: command}}},
	})
}

// FilterImplicit puts the inference rules in suffix-list order of their
// source extension. Rules whose source extension is not a suffix are
// dropped.
func (r *Rules) FilterImplicit() {
	var kept []*ImplicitRule
	used := make(map[*ImplicitRule]bool)
	for _, suffix := range r.Suffixes {
		for _, ir := range r.Implicit {
			if !used[ir] && "."+ir.From == suffix {
				kept = append(kept, ir)
				used[ir] = true
			}
		}
	}
	for _, ir := range r.Implicit {
		if !used[ir] {
			log.Warnf("ignoring inference rule .%s.%s: .%s is not in the suffix list", ir.From, ir.To, ir.From)
		}
	}
	r.Implicit = kept
}

// DefaultTargets returns the targets of the first rule line.
func (r *Rules) DefaultTargets() []string {
	if len(r.Explicit) == 0 {
		return nil
	}
	first := r.Explicit[0].Line
	var out []string
	for _, rule := range r.Explicit {
		if rule.Line == first && !slices.Contains(out, rule.Target) {
			out = append(out, rule.Target)
		}
	}
	return out
}

package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/rubiojr/gnmake/log"
	"github.com/rubiojr/gnmake/scanner"
)

var (
	reAction   = regexp.MustCompile(`^\s+(.*)$`)
	reImplicit = regexp.MustCompile(`^\.([a-zA-Z0-9]+)\.([a-zA-Z0-9]+)\s*(:+)\s*(.*)$`)
	reExplicit = regexp.MustCompile(`^([^:]+)(:+)\s*(.*)$`)
	reSuffixes = regexp.MustCompile(`^\.SUFFIXES\s*:\s*(.*)$`)
)

// ParseError is a rule syntax error on a makefile line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error on line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// current is what action lines attach to: the explicit rules of the
// last header line, or the last inference rule.
type current struct {
	rules    []*Rule
	implicit *ImplicitRule
}

func (c *current) empty() bool {
	return c.implicit == nil && len(c.rules) == 0
}

func (c *current) lastActions() []*Action {
	if c.implicit != nil {
		return []*Action{&c.implicit.Actions[len(c.implicit.Actions)-1]}
	}
	var out []*Action
	for _, r := range c.rules {
		out = append(out, &r.Actions[len(r.Actions)-1])
	}
	return out
}

type parser struct {
	r         *Rules
	cur       current
	inHereDoc bool
}

// Parse builds the rule database from lines not marked Ignore.
func Parse(lines []*scanner.Line) (*Rules, error) {
	p := &parser{r: &Rules{}}
	var last *scanner.Line
	for _, line := range lines {
		if line.Ignore {
			continue
		}
		last = line
		if err := p.line(line); err != nil {
			return nil, &ParseError{Line: line.Num, Text: line.Text, Err: err}
		}
	}
	if p.inHereDoc {
		return nil, &ParseError{Line: last.Num, Text: last.Text, Err: ErrUnterminatedHereDoc}
	}
	return p.r, nil
}

func (p *parser) line(line *scanner.Line) error {
	if p.inHereDoc {
		if strings.HasPrefix(line.Text, "<<") {
			p.closeHereDoc(line.Text)
			p.inHereDoc = false
			return nil
		}
		log.Debugf("rules: heredoc: [%s]", line.Text)
		for _, a := range p.cur.lastActions() {
			a.HereDocLines = append(a.HereDocLines, *line)
		}
		return nil
	}

	if m := reSuffixes.FindStringSubmatch(line.Text); m != nil {
		p.r.SuffixesSet = true
		suffixes := strings.Fields(m[1])
		if len(suffixes) == 0 {
			p.r.Suffixes = nil
		} else {
			p.r.Suffixes = append(p.r.Suffixes, suffixes...)
		}
		log.Debugf("rules: suffixes: %v", p.r.Suffixes)
		return nil
	}

	if m := reImplicit.FindStringSubmatch(line.Expanded); m != nil {
		ir := &ImplicitRule{Line: line.Num, From: m[1], To: m[2], Batch: len(m[3]) >= 2}
		if tail := m[4]; strings.HasPrefix(tail, ";") && len(tail) > 1 {
			ir.Actions = append(ir.Actions, Action{Line: scanner.Line{Num: line.Num, Text: tail[1:]}})
		}
		log.Debugf("rules: implicit: [%s][%s]", ir.From, ir.To)
		p.r.Implicit = append(p.r.Implicit, ir)
		p.cur = current{implicit: ir}
		return nil
	}

	if reAction.MatchString(line.Text) {
		if strings.Trim(line.Text, " \t") == "" {
			return nil
		}
		if p.cur.empty() {
			return ErrInvalidIndent
		}
		p.inHereDoc = strings.Contains(line.Text, "<<")
		return p.addAction(line)
	}

	if reExplicit.MatchString(line.Text) {
		return p.explicit(line)
	}

	if line.Text == "" {
		p.cur = current{}
		return nil
	}
	return fmt.Errorf("%w: [%s][%s]", ErrUnexpectedLineFormat, line.Text, line.Expanded)
}

func (p *parser) explicit(line *scanner.Line) error {
	m := reExplicit.FindStringSubmatch(line.Expanded)
	if m == nil || strings.Trim(m[1], " \t") == "" {
		return fmt.Errorf("%w: invalid rule expansion [%s]", ErrUnexpectedLineFormat, line.Expanded)
	}
	sep := m[2]
	if len(sep) > 2 {
		return ErrInvalidSeparator
	}
	targets := strings.Fields(m[1])
	rhs, inline, hasInline := strings.Cut(m[3], ";")
	dependents := strings.Fields(rhs)
	log.Debugf("rules: explicit: %v %s %v", targets, sep, dependents)

	p.cur = current{}
	for _, target := range targets {
		rule, err := p.addRule(&Rule{
			Line:        line.Num,
			Target:      target,
			Dependents:  dependents,
			DoubleColon: len(sep) == 2,
		})
		if err != nil {
			return err
		}
		if !slices.Contains(p.cur.rules, rule) {
			p.cur.rules = append(p.cur.rules, rule)
		}
	}
	if hasInline && strings.TrimSpace(inline) != "" {
		raw := line.Text
		if i := strings.Index(raw, ";"); i >= 0 {
			raw = raw[i+1:]
		}
		return p.addAction(&scanner.Line{Num: line.Num, Text: raw, Expanded: inline})
	}
	return nil
}

// addRule adds a new rule or merges it into an existing single-colon
// rule for the same target, returning the rule actions now go to.
func (p *parser) addRule(rule *Rule) (*Rule, error) {
	var existing *Rule
	for _, r := range p.r.Explicit {
		if r.Target == rule.Target {
			existing = r
			break
		}
	}
	if existing == nil {
		rule.Dependents = append([]string(nil), rule.Dependents...)
		p.r.Explicit = append(p.r.Explicit, rule)
		return rule, nil
	}
	if existing.DoubleColon != rule.DoubleColon {
		return nil, fmt.Errorf("%w [%s]", ErrColonMismatch, rule.Target)
	}
	if rule.DoubleColon {
		rule.Dependents = append([]string(nil), rule.Dependents...)
		p.r.Explicit = append(p.r.Explicit, rule)
		return rule, nil
	}

	log.Debugf("rules: duplicate rule for [%s] (%d,%d)", rule.Target, existing.Line, rule.Line)
	if len(existing.Actions) > 0 {
		existing.Locked = true
	}
	for _, d := range rule.Dependents {
		if !slices.Contains(existing.Dependents, d) {
			existing.Dependents = append(existing.Dependents, d)
		}
	}
	return existing, nil
}

func (p *parser) addAction(line *scanner.Line) error {
	a := Action{Line: *line}
	if ir := p.cur.implicit; ir != nil {
		ir.Actions = append(ir.Actions, a)
		return nil
	}
	for _, r := range p.cur.rules {
		if r.Locked {
			return fmt.Errorf("%w: duplicate rule for [%s] cannot have actions: previously on line %d",
				ErrDuplicateRuleWithActions, r.Target, r.Actions[0].Line.Num)
		}
	}
	for _, r := range p.cur.rules {
		r.Actions = append(r.Actions, a)
	}
	return nil
}

func (p *parser) closeHereDoc(text string) {
	mode := Simple
	switch {
	case strings.HasPrefix(text, "<<KEEP"):
		mode = Keep
	case strings.HasPrefix(text, "<<UNICODE"):
		mode = Unicode
	}
	for _, a := range p.cur.lastActions() {
		a.HereDoc = mode
	}
}

// Package preprocess applies the makefile directives and macro
// definitions to a list of lines.
//
// Lines in a false conditional branch, directive lines and macro
// assignments are marked Ignore. Every other line gets its first
// expansion pass, with automatic variables left for the build.
package preprocess

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rubiojr/gnmake/expand"
	"github.com/rubiojr/gnmake/expr"
	"github.com/rubiojr/gnmake/log"
	"github.com/rubiojr/gnmake/scanner"
	"github.com/rubiojr/gnmake/vars"
)

var (
	ErrUnbalancedDirective     = errors.New("!if/!endif nesting error")
	ErrDirectiveNotImplemented = errors.New("directive not implemented")
	ErrUnknownDirective        = errors.New("unknown directive")
	ErrUserError               = errors.New("!error")
)

var assignment = regexp.MustCompile(`^(\S+)\s*=\s*(.*)$`)

// Processor evaluates directives and collects macro definitions.
type Processor struct {
	name  string
	x     *expand.Expander
	vars  *vars.Store
	stack stack

	// Out receives !message text. Defaults to os.Stdout.
	Out io.Writer
}

// New returns a Processor for the makefile called name, defining
// macros in v.
func New(name string, x *expand.Expander, v *vars.Store) *Processor {
	return &Processor{name: name, x: x, vars: v, Out: os.Stdout}
}

// Process walks lines in order, updating the macro store and setting
// Ignore and Expanded on each line.
func (p *Processor) Process(lines []*scanner.Line) error {
	p.stack = newStack()
	inHereDoc := false
	for _, line := range lines {
		if strings.HasPrefix(line.Text, "!") {
			line.Ignore = true
			if err := p.directive(line); err != nil {
				return fmt.Errorf("%s(%d): %w", p.name, line.Num, err)
			}
			continue
		}
		if !p.stack.active() {
			line.Ignore = true
			continue
		}

		switch {
		case inHereDoc:
			if strings.HasPrefix(line.Text, "<<") {
				inHereDoc = false
			}
		case isAction(line.Text):
			inHereDoc = strings.Contains(line.Text, "<<")
		default:
			if m := assignment.FindStringSubmatch(line.Text); m != nil {
				p.define(m[1], m[2])
				line.Ignore = true
				continue
			}
		}

		e, err := p.x.ExpandDeferred(line.Text, p.vars, expand.StopList(), true)
		if err != nil {
			return fmt.Errorf("%s(%d): %w", p.name, line.Num, err)
		}
		line.Expanded = e
	}
	if p.stack.depth() > 1 {
		return fmt.Errorf("%s: %w: missing !endif", p.name, ErrUnbalancedDirective)
	}
	return nil
}

// define stores a macro. A reference to the macro itself in its new
// value is replaced by the current value.
func (p *Processor) define(name, value string) {
	if self := "$(" + name + ")"; strings.Contains(value, self) {
		value = strings.ReplaceAll(value, self, p.vars.Get(name))
	} else if len(name) == 1 && strings.Contains(value, "$"+name) {
		value = strings.ReplaceAll(value, "$"+name, p.vars.Get(name))
	}
	p.vars.Set(name, value)
}

func (p *Processor) directive(line *scanner.Line) error {
	rest := strings.TrimLeft(line.Text[1:], " \t")
	keyword := strings.ReplaceAll(strings.ToLower(rest), "\t", " ")

	switch {
	case strings.HasPrefix(keyword, "if "):
		v, err := p.evaluate(rest[3:], p.stack.active())
		if err != nil {
			return err
		}
		p.stack.push(v)
	case strings.HasPrefix(keyword, "ifdef "):
		p.stack.push(p.vars.Has(strings.TrimSpace(rest[6:])))
	case strings.HasPrefix(keyword, "ifndef "):
		p.stack.push(!p.vars.Has(strings.TrimSpace(rest[7:])))
	case strings.HasPrefix(keyword, "elseif "):
		if p.stack.depth() == 1 {
			return fmt.Errorf("%w: !elseif without !if", ErrUnbalancedDirective)
		}
		top := p.stack.top()
		v, err := p.evaluate(rest[7:], top.enabled && !top.done)
		if err != nil {
			return err
		}
		p.stack.set(v)
	case strings.HasPrefix(keyword, "else"):
		if p.stack.depth() == 1 {
			return fmt.Errorf("%w: !else without !if", ErrUnbalancedDirective)
		}
		p.stack.flip()
	case strings.HasPrefix(keyword, "endif"):
		if !p.stack.pop() {
			return ErrUnbalancedDirective
		}
	case !p.stack.active():
	case strings.HasPrefix(keyword, "include"):
		return fmt.Errorf("%w [!%s]", ErrDirectiveNotImplemented, rest)
	case strings.HasPrefix(keyword, "undef "):
		p.vars.Delete(strings.TrimSpace(rest[6:]))
	case strings.HasPrefix(keyword, "message "):
		msg, err := p.x.Expand(strings.TrimSpace(rest[8:]), p.vars, expand.StopList(), true)
		if err != nil {
			return err
		}
		fmt.Fprintln(p.Out, msg)
	case strings.HasPrefix(keyword, "error "):
		msg, err := p.x.Expand(strings.TrimSpace(rest[6:]), p.vars, expand.StopList(), true)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrUserError, msg)
	default:
		return fmt.Errorf("%w [!%s]", ErrUnknownDirective, rest)
	}
	return nil
}

// evaluate returns false without looking at src when the result cannot
// select a branch, so a condition in a skipped region is never an error.
func (p *Processor) evaluate(src string, needed bool) (bool, error) {
	if !needed {
		return false, nil
	}
	n, err := expr.Evaluate(src, p.x, p.vars)
	if err != nil {
		return false, err
	}
	log.Debugf("preprocess: evaluate(%s) -> %d", src, n)
	return n != 0, nil
}

func isAction(text string) bool {
	return text != "" && (text[0] == ' ' || text[0] == '\t')
}

package makefile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rubiojr/gnmake/rules"
)

var (
	ErrNoRuleToMake    = errors.New("no rule to make target")
	ErrDependencyCycle = errors.New("dependency loop")
	ErrCommandFailed   = errors.New("command failed")
	ErrNoDefaultTarget = errors.New("no default target")
)

// NoRuleError is returned for a target that has no rule and no file.
type NoRuleError struct {
	Target string
	// Parent is the target that depends on Target, if any.
	Parent string
	// Line is the makefile line of the parent rule, 0 if unknown.
	Line int
}

func (e *NoRuleError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "don't know how to make [%s]", e.Target)
	if e.Parent != "" {
		fmt.Fprintf(&sb, " as a dependency of [%s]", e.Parent)
		if e.Line != 0 {
			fmt.Fprintf(&sb, " (line %d)", e.Line)
		}
	}
	return sb.String()
}

func (e *NoRuleError) Unwrap() error {
	return ErrNoRuleToMake
}

// CommandError is a command that exited with a nonzero code.
type CommandError struct {
	Target     string
	Dependents []string
	Command    string
	Dir        string
	Line       int
	// HereDoc holds the expanded here-document lines, if any.
	HereDoc  []string
	ExitCode int
	// Err is set when the command could not be started.
	Err error
}

func newCommandError(rule *rules.Rule, line int, cmd, dir string, hereDoc []string, code int, err error) *CommandError {
	e := &CommandError{
		Target:     rule.Target,
		Dependents: rule.Dependents,
		Command:    cmd,
		Dir:        dir,
		Line:       line,
		ExitCode:   code,
		Err:        err,
	}
	for _, h := range hereDoc {
		e.HereDoc = append(e.HereDoc, strings.Join(strings.Fields(h), " "))
	}
	return e
}

func (e *CommandError) Error() string {
	var sb strings.Builder
	if e.Err != nil {
		fmt.Fprintf(&sb, "command could not be started (%v)", e.Err)
	} else {
		fmt.Fprintf(&sb, "command failed with exit code %d", e.ExitCode)
	}
	fmt.Fprintf(&sb, " when running [%s] in [%s] from line %d", e.Command, e.Dir, e.Line)
	if len(e.HereDoc) > 0 {
		sb.WriteString(" with here-document ")
		for _, h := range e.HereDoc {
			fmt.Fprintf(&sb, "(%s)", h)
		}
	}
	fmt.Fprintf(&sb, " to make [%s]", e.Target)
	if len(e.Dependents) > 0 {
		fmt.Fprintf(&sb, " having dependents [%s]", strings.Join(e.Dependents, "]["))
	}
	return sb.String()
}

func (e *CommandError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCommandFailed, e.Err}
	}
	return []error{ErrCommandFailed}
}

package makefile

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/rubiojr/gnmake/expand"
	"github.com/rubiojr/gnmake/log"
	"github.com/rubiojr/gnmake/rules"
	"github.com/rubiojr/gnmake/tempfile"
)

// runActions runs the commands of rule. Rules made from an inference
// rule take their automatic variables from the source file, others from
// the out-of-date dependents in oods.
func (m *Makefile) runActions(ctx context.Context, rule *rules.Rule, inferred bool, oods []string) error {
	if len(rule.Actions) == 0 {
		return nil
	}
	var auto autoVars
	if inferred {
		auto = inferenceVars(rule.Target, rule.Dependents[0])
	} else {
		auto = explicitVars(rule.Target, oods)
	}

	wd := &cwd{dir: m.Dir}
	defer wd.restore()
	for i := range rule.Actions {
		if err := m.runAction(ctx, rule, &rule.Actions[i], inferred, auto, wd, i+1); err != nil {
			return err
		}
	}
	return nil
}

func (m *Makefile) runAction(ctx context.Context, rule *rules.Rule, action *rules.Action, inferred bool, auto autoVars, wd *cwd, n int) error {
	cmd, err := m.expandAction(action.Line.Text, action.Line.Expanded, inferred, auto)
	if err != nil {
		return fmt.Errorf("line %d: %w", action.Line.Num, err)
	}

	var body []string
	for _, l := range action.HereDocLines {
		line, err := m.expandAction(l.Text, l.Expanded, inferred, auto)
		if err != nil {
			return fmt.Errorf("line %d: %w", l.Num, err)
		}
		body = append(body, line)
	}
	if len(body) > 0 {
		f, err := m.writeHereDoc(body, action.HereDoc)
		if err != nil {
			return fmt.Errorf("line %d: %w", action.Line.Num, err)
		}
		defer func() {
			if err := f.Cleanup(); err != nil {
				log.Warnf("removing here-document: %v", err)
			}
		}()
		cmd = strings.ReplaceAll(cmd, "<<", f.Path())
	}

	cmd, ignore, silent := sanitise(cmd)
	ignore = ignore || m.cfg.Ignore
	if strings.Trim(cmd, " \t") == "" {
		return nil
	}
	if m.cfg.DryRun {
		fmt.Fprintf(m.Stdout, "        %s\n", cmd)
		return nil
	}

	trivial := silent && strings.EqualFold(cmd, "rem")
	if m.cfg.LogRunning {
		not := ""
		if trivial {
			not = "(not) "
		}
		log.WithField("target", rule.Target).Infof("running [%s] %sto make [%s] (%d/%d)",
			cmd, not, rule.Target, n, len(rule.Actions))
	}
	if !m.cfg.Silent && !silent {
		fmt.Fprintf(m.Stdout, "        %s\n", cmd)
	}
	if trivial || wd.apply(cmd) {
		return nil
	}

	code, err := m.Shell.Run(ctx, strings.Trim(cmd, " \t"))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err == nil && code == 0 {
		return nil
	}
	if err == nil && ignore {
		log.Infof("make: exit code %d ignored", code)
		return nil
	}
	return newCommandError(rule, action.Line.Num, cmd, wd.String(), body, code, err)
}

// expandAction resolves the remaining macros of a command or
// here-document line. Lines that come from an inference rule were never
// expanded, so they go through the macro store first.
func (m *Makefile) expandAction(raw, expanded string, inferred bool, auto autoVars) (string, error) {
	if inferred {
		s, err := m.x.ExpandDeferred(raw, m.vars, expand.StopList(), true)
		if err != nil {
			return "", err
		}
		return m.x.Expand(s, auto, nil, false)
	}
	return m.x.Expand(expanded, auto, nil, false)
}

func (m *Makefile) writeHereDoc(body []string, mode rules.HereDoc) (*tempfile.File, error) {
	f, err := tempfile.New(m.TempDir, "gnmake", "rsp")
	if err != nil {
		return nil, err
	}
	eol := "\n"
	if runtime.GOOS == "windows" {
		eol = "\r\n"
	}
	if m.cfg.Keep || mode == rules.Keep {
		f.Keep()
	}
	for _, line := range body {
		if err := f.WriteLine(line, eol); err != nil {
			f.Cleanup()
			return nil, fmt.Errorf("writing here-document: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		f.Cleanup()
		return nil, err
	}
	log.Debugf("make: here-document [%s]", f.Path())
	return f, nil
}

// sanitise strips the leading blanks and the - and @ prefixes from cmd,
// and the quotes around a quoted program path with no spaces in it.
func sanitise(cmd string) (out string, ignore, silent bool) {
	i := 0
prefix:
	for ; i < len(cmd); i++ {
		switch cmd[i] {
		case ' ', '\t':
		case '-':
			ignore = true
		case '@':
			silent = true
		default:
			break prefix
		}
	}
	cmd = cmd[i:]

	if len(cmd) > 2 && cmd[0] == '"' {
		if q := strings.IndexByte(cmd[1:], '"') + 1; q > 0 {
			if sp := strings.IndexByte(cmd, ' '); sp < 0 || sp > q {
				log.Debugf("make: stripping quotes from [%s]", cmd)
				cmd = cmd[1:q] + cmd[q+1:]
			}
		}
	}
	return cmd, ignore, silent
}

package makefile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rubiojr/gnmake/log"
	"github.com/rubiojr/gnmake/rules"
)

// MaxDepth is the deepest dependency chain followed before the graph is
// assumed to contain a loop.
const MaxDepth = 30

// future is the timestamp of a target whose age is unknown, typically
// one made by a rule that never creates a file.
var future = time.Unix(9999999999, 0)

// Make brings target up to date. An empty target means every target
// declared on the first rule line of the makefile.
func (m *Makefile) Make(ctx context.Context, target string) error {
	targets := []string{target}
	if target == "" {
		targets = m.rules.DefaultTargets()
		if len(targets) == 0 {
			return ErrNoDefaultTarget
		}
	}
	for _, t := range targets {
		if _, _, err := m.resolve(ctx, t, 0, nil); err != nil {
			return err
		}
	}
	return nil
}

// resolve makes target and reports whether anything was built for it
// and the newest timestamp seen.
func (m *Makefile) resolve(ctx context.Context, target string, depth int, parent *rules.Rule) (bool, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return false, time.Time{}, err
	}
	if depth > MaxDepth {
		return false, time.Time{}, fmt.Errorf("%w for [%s]", ErrDependencyCycle, target)
	}
	indent := strings.Repeat(" ", depth)
	log.Infof("make: %smaking [%s]", indent, target)

	found := m.rules.Find(target)
	if len(found) == 0 {
		log.Debugf("make: no explicit rules for [%s]", target)
		if r, ok := m.inferRule(target); ok {
			found = append(found, r)
		}
	} else {
		for i := range found {
			rule := &found[i]
			if len(rule.Actions) > 0 || rule.DoubleColon {
				continue
			}
			// An explicit rule without commands can add dependents to
			// an inference rule.
			if r, ok := m.inferRule(target); ok {
				rule.Dependents = append([]string{r.Dependents[0]}, rule.Dependents...)
				rule.Actions = r.Actions
				rule.Line = 0
				log.Debugf("make: completed from inference rule: %s", rule)
			}
		}
	}

	if len(found) == 0 {
		t := m.timestamp(target)
		if t.IsZero() {
			e := &NoRuleError{Target: target}
			if parent != nil {
				e.Parent = parent.Target
				e.Line = parent.Line
			}
			return false, t, e
		}
		log.Infof("make: %smaking [%s]: no rule but file exists: %s", indent, target, t.Format(time.RFC3339))
		return false, t, nil
	}

	built := false
	var tmax time.Time
	for i := range found {
		rule := &found[i]
		if err := m.expandRule(rule); err != nil {
			return false, time.Time{}, err
		}
		log.Infof("make: %smaking [%s]: dependents: %s", indent, target, strings.Join(rule.Dependents, " "))

		var oods []string
		depBuilt := false
		for _, dep := range rule.Dependents {
			if dep == "" {
				continue
			}
			b, t, err := m.resolve(ctx, dep, depth+1, rule)
			if err != nil {
				return false, time.Time{}, err
			}
			if t.IsZero() || t.After(m.timestamp(rule.Target)) || b {
				built = true
				oods = append(oods, dep)
			}
			depBuilt = depBuilt || b
			if t.After(tmax) {
				tmax = t
			}
		}

		t := m.timestamp(target)
		if !m.stale(t, tmax, depBuilt) {
			log.Infof("make: %smaking [%s]: already up-to-date: %s >= %s", indent, target,
				t.Format(time.RFC3339), tmax.Format(time.RFC3339))
			continue
		}
		built = true
		if len(rule.Actions) == 0 {
			log.Infof("make: %smaking [%s]: no actions", indent, target)
		} else if err := m.runActions(ctx, rule, rule.Line == 0, oods); err != nil {
			return false, time.Time{}, err
		}
		if fresh := m.timestamp(target); fresh.After(tmax) {
			tmax = fresh
		}
	}
	if tmax.IsZero() {
		tmax = future
	}
	return built, tmax, nil
}

// stale reports whether a target last modified at t must be rebuilt.
// A timestamp equal to the newest dependent counts as out of date.
func (m *Makefile) stale(t, newest time.Time, depBuilt bool) bool {
	return t.IsZero() || !t.After(newest) || depBuilt || m.cfg.All
}

// inferRule makes a rule for target from the first inference rule, in
// suffix order, whose source file exists or is itself a target with
// commands.
func (m *Makefile) inferRule(target string) (rules.Rule, bool) {
	to := ext(target)
	if to == "" {
		return rules.Rule{}, false
	}
	for _, ir := range m.rules.Implicit {
		if ir.To != to {
			continue
		}
		source := stem(target) + "." + ir.From
		if !m.timestamp(source).IsZero() || m.rules.HasRuleWithActions(source) {
			log.Debugf("make: inference rule .%s.%s matches: building from [%s]", ir.From, ir.To, source)
			return rules.Rule{
				Target:     target,
				Dependents: []string{source},
				Actions:    ir.Actions,
			}, true
		}
		log.Debugf("make: inference rule .%s.%s matches but no [%s]", ir.From, ir.To, source)
	}
	return rules.Rule{}, false
}

// expandRule resolves automatic variables in the rule's target and
// dependents.
func (m *Makefile) expandRule(rule *rules.Rule) error {
	auto := targetVars(rule.Target)
	target, err := m.x.Expand(rule.Target, auto, nil, false)
	if err != nil {
		return fmt.Errorf("expanding target [%s]: %w", rule.Target, err)
	}
	deps := make([]string, 0, len(rule.Dependents))
	for _, d := range rule.Dependents {
		e, err := m.x.Expand(d, auto, nil, false)
		if err != nil {
			return fmt.Errorf("expanding dependent [%s] of [%s]: %w", d, rule.Target, err)
		}
		deps = append(deps, e)
	}
	rule.Target = target
	rule.Dependents = deps
	return nil
}

// timestamp is the modification time of path, zero if it does not exist.
func (m *Makefile) timestamp(path string) time.Time {
	t, err := m.FS.ModTime(path)
	if err != nil {
		return time.Time{}
	}
	return t
}

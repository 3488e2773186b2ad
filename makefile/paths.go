package makefile

import (
	"path/filepath"
	"strings"
)

// Path components used by the automatic variables. For "src/app.c":
// stem "src/app", base "app.c", name "app", dir "src".

func stem(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}

func base(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Base(p)
}

func name(p string) string {
	return base(stem(p))
}

// dir is "." for a name with no directory part.
func dir(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Dir(p)
}

// ext returns the extension without its dot.
func ext(p string) string {
	return strings.TrimPrefix(filepath.Ext(p), ".")
}

// autoVars is a set of automatic variables for one rule invocation.
type autoVars map[string]string

func (a autoVars) Lookup(name string) (string, bool) {
	v, ok := a[name]
	return v, ok
}

// targetVars are the variables available in a rule's target and
// dependent list.
func targetVars(target string) autoVars {
	return autoVars{
		"@":  target,
		"@B": name(target),
		"@F": base(target),
		"@D": dir(target),
		"*":  stem(target),
		"*B": name(target),
		"*F": name(target),
		"*D": dir(target),
	}
}

// inferenceVars are the command variables of a rule made from an
// inference rule, where source is the single dependent.
func inferenceVars(target, source string) autoVars {
	return autoVars{
		"*":  stem(source),
		"*B": name(source),
		"*F": name(source),
		"*D": dir(source),
		"@":  target,
		"@B": name(target),
		"@F": base(target),
		"@D": dir(target),
		"<":  source,
		"<B": name(source),
		"<F": base(source),
		"<D": dir(source),
	}
}

// explicitVars are the command variables of an explicit rule. oods are
// the dependents found to be out of date.
func explicitVars(target string, oods []string) autoVars {
	each := func(f func(string) string) string {
		out := make([]string, len(oods))
		for i, o := range oods {
			out[i] = f(o)
		}
		return strings.Join(out, " ")
	}
	return autoVars{
		"*":  stem(target),
		"*B": name(target),
		"*F": name(target),
		"*D": dir(target),
		"@":  target,
		"@B": name(target),
		"@F": base(target),
		"@D": dir(target),
		"?":  strings.Join(oods, " "),
		"?B": each(name),
		"?F": each(base),
		"?D": each(dir),
	}
}

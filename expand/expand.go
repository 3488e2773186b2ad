// Package expand substitutes macro references in makefile text.
//
// A reference is either $X for a single character X or $(NAME), with an
// optional $(NAME:from=to) substitution applied to the expanded value.
// $$ yields a literal dollar.
package expand

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/rubiojr/gnmake/log"
	"github.com/rubiojr/gnmake/system"
)

// MaxDepth is the deepest chain of macro values that will be expanded.
const MaxDepth = 100

var (
	ErrExpansionLoop          = errors.New("expansion loop")
	ErrMissingMacroName       = errors.New("macro name is missing")
	ErrIllegalCharacterInName = errors.New("illegal dollar character in macro name")
)

var reference = regexp.MustCompile(`\$([^(]|\([^)]*\))`)

// Lookuper is the read side of the macro store.
type Lookuper interface {
	Lookup(name string) (string, bool)
}

// Expander expands macro references against a macro store and,
// optionally, the environment.
type Expander struct {
	// ForceEnv makes environment variables take precedence over macros.
	ForceEnv bool
	// Env is consulted for environment lookups. Nil means no environment.
	Env system.Env
}

// New returns an Expander reading the given environment.
func New(env system.Env, forceEnv bool) *Expander {
	return &Expander{Env: env, ForceEnv: forceEnv}
}

// StopList returns the automatic variable names. They are resolved per
// rule invocation, so earlier passes leave them untouched.
func StopList() []string {
	return []string{
		"@", "@B", "@F", "@D",
		"*", "*B", "*F", "*D",
		"<", "<B", "<F", "<D",
		"?", "?B", "?F", "?D",
	}
}

// Expand replaces every macro reference in text. Names in stop are
// copied through unexpanded. With withEnv set, undefined macros fall
// back to environment variables.
func (x *Expander) Expand(text string, vars Lookuper, stop []string, withEnv bool) (string, error) {
	return x.expand(text, vars, stop, withEnv, false)
}

// ExpandDeferred is Expand for a pass whose output will be expanded
// again: $$ is kept as $$ so that the final pass produces a single $.
func (x *Expander) ExpandDeferred(text string, vars Lookuper, stop []string, withEnv bool) (string, error) {
	return x.expand(text, vars, stop, withEnv, true)
}

func (x *Expander) expand(text string, vars Lookuper, stop []string, withEnv, deferred bool) (string, error) {
	if !strings.Contains(text, "$") {
		return text, nil
	}
	out, err := x.expandDepth(text, vars, stop, withEnv, deferred, 1)
	if err != nil {
		return "", err
	}
	if (out != text && log.DebugLevel() >= 2) || log.DebugLevel() >= 3 {
		log.Debugf("expand: [%s] -> [%s]", text, out)
	}
	return out, nil
}

func (x *Expander) expandDepth(s string, vars Lookuper, stop []string, withEnv, deferred bool, depth int) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}
	if depth > MaxDepth {
		return "", fmt.Errorf("%w when expanding [%s]", ErrExpansionLoop, s)
	}

	matches := reference.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s, nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(s[last:m[0]])
		last = m[1]

		ref := s[m[2]:m[3]]
		if ref == "()" {
			return "", fmt.Errorf("%w in [%s]", ErrMissingMacroName, s)
		}
		if ref != "$" && strings.Contains(ref, "$") {
			return "", fmt.Errorf("%w [%s] when expanding [%s]", ErrIllegalCharacterInName, ref, s)
		}

		name := ref
		if len(name) > 1 {
			name = name[1 : len(name)-1]
		}
		var from, to string
		colon := strings.IndexByte(name, ':')
		eq := strings.IndexByte(name, '=')
		if colon >= 0 && eq > colon {
			from = name[colon+1 : eq]
			to = name[eq+1:]
			name = name[:colon]
		}

		switch {
		case slices.Contains(stop, name):
			sb.WriteString("$")
			sb.WriteString(ref)
		case name == "$":
			if deferred {
				sb.WriteString("$$")
			} else {
				sb.WriteString("$")
			}
		default:
			value := x.lookup(name, vars, withEnv)
			value, err := x.expandDepth(value, vars, stop, withEnv, deferred, depth+1)
			if err != nil {
				return "", err
			}
			if from != "" {
				value = strings.ReplaceAll(value, from, to)
			}
			if log.DebugLevel() >= 4 {
				log.Debugf("expand: %s[%s] -> [%s]", strings.Repeat("  ", depth), name, value)
			}
			sb.WriteString(value)
		}
	}
	sb.WriteString(s[last:])
	return sb.String(), nil
}

func (x *Expander) lookup(name string, vars Lookuper, withEnv bool) string {
	var stored string
	var defined bool
	if vars != nil {
		stored, defined = vars.Lookup(name)
	}
	if withEnv && x.ForceEnv {
		if v, ok := x.getenv(name); ok {
			return v
		}
		return stored
	}
	if defined {
		return stored
	}
	if withEnv {
		v, _ := x.getenv(name)
		return v
	}
	return ""
}

func (x *Expander) getenv(name string) (string, bool) {
	if x.Env == nil {
		return "", false
	}
	return x.Env.Lookup(name)
}

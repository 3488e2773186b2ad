// Package makefile brings targets up to date. It resolves each target
// against the rule database, recursing into dependents, and runs the
// commands of every rule found to be out of date.
package makefile

import (
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/gnmake/config"
	"github.com/rubiojr/gnmake/doc"
	"github.com/rubiojr/gnmake/expand"
	"github.com/rubiojr/gnmake/rules"
	"github.com/rubiojr/gnmake/system"
	"github.com/rubiojr/gnmake/vars"
)

// DefaultSuffixes is the suffix list used when the makefile has no
// .SUFFIXES line.
var DefaultSuffixes = []string{".obj", ".asm", ".c", ".cc", ".cpp", ".cxx", ".f", ".f90", ".for", ".rc"}

var defaultRules = []struct {
	from, to, command string
}{
	{"asm", "obj", "$(AS) $(AFLAGS) /c $<"},
	{"asm", "exe", "$(AS) $(AFLAGS) $<"},
	{"c", "obj", "$(CC) $(CFLAGS) /c $<"},
	{"c", "exe", "$(CC) $(CFLAGS) $<"},
	{"cc", "obj", "$(CC) $(CFLAGS) /c $<"},
	{"cc", "exe", "$(CC) $(CFLAGS) $<"},
	{"cpp", "obj", "$(CPP) $(CPPFLAGS) /c $<"},
	{"cpp", "exe", "$(CPP) $(CPPFLAGS) $<"},
	{"cxx", "obj", "$(CXX) $(CXXFLAGS) /c $<"},
	{"cxx", "exe", "$(CXX) $(CXXFLAGS) $<"},
}

// Makefile is a parsed makefile ready to build targets.
type Makefile struct {
	// FS provides target timestamps.
	FS system.FileSystem
	// Shell runs commands.
	Shell system.Shell
	// Dir is changed by cd commands.
	Dir system.WorkDir
	// TempDir holds here-document files. Empty means os.TempDir.
	TempDir string
	// Stdout receives echoed commands.
	Stdout io.Writer

	cfg   *config.Config
	x     *expand.Expander
	vars  *vars.Store
	rules *rules.Rules
}

// New prepares r for building. The suffix list and the built-in
// inference rules are filled in and inference rules whose source
// extension is not a suffix are dropped.
func New(cfg *config.Config, x *expand.Expander, v *vars.Store, r *rules.Rules) (*Makefile, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if r.SuffixesSet {
		for i, s := range r.Suffixes {
			e, err := x.Expand(s, v, nil, false)
			if err != nil {
				return nil, fmt.Errorf("expanding suffix [%s]: %w", s, err)
			}
			r.Suffixes[i] = e
		}
	} else {
		r.Suffixes = append([]string(nil), DefaultSuffixes...)
	}
	for _, d := range defaultRules {
		r.AddDefaultImplicitRule(d.from, d.to, d.command)
	}
	r.FilterImplicit()

	host := system.OS{}
	return &Makefile{
		FS:     host,
		Shell:  host,
		Dir:    host,
		Stdout: os.Stdout,
		cfg:    cfg,
		x:      x,
		vars:   v,
		rules:  r,
	}, nil
}

// Rules returns the rule database being built from.
func (m *Makefile) Rules() *rules.Rules {
	return m.rules
}

// Dump writes the macros, inference rules, suffixes and targets to w.
func (m *Makefile) Dump(w io.Writer) error {
	return doc.Dump(w, m.vars.Entries(), m.rules)
}

// Package doc formats the information dump printed by -p: the macro
// table, the inference rules, the suffix list and the targets.
package doc

import (
	"io"

	"github.com/rubiojr/gnmake/rules"
	"github.com/rubiojr/gnmake/vars"
)

// Dump writes the whole information dump to w.
func Dump(w io.Writer, macros []vars.Entry, r *rules.Rules) error {
	out := FormatMacros(macros)
	if out != "" {
		out += "\n"
	}
	out += FormatRules(r) + "\n"
	_, err := io.WriteString(w, out)
	return err
}

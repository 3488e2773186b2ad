package cmd

import (
	"fmt"
	"strings"
)

// Macro is a NAME=value definition from the command line.
type Macro struct {
	Name  string
	Value string
}

// spliceOptions inserts the options in extra, as found in
// GNMAKE_OPTIONS, after the program name. Underscores become dashes so
// that "__keep" can be written where dashes are awkward.
func spliceOptions(args []string, extra string) []string {
	extra = strings.ReplaceAll(extra, "_", "-")
	more := strings.FieldsFunc(extra, func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(more) == 0 || len(args) == 0 {
		return args
	}
	out := make([]string, 0, len(args)+len(more))
	out = append(out, args[0])
	out = append(out, more...)
	return append(out, args[1:]...)
}

// normalizeArgs rewrites NMAKE style options (/n, /f file, /nologo)
// into the dashed form, and splits -fFILE. It stops at the first
// argument that is not an option.
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	out := []string{args[0]}
	i := 1
	for ; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || (arg[0] != '/' && arg[0] != '-') || arg == "--" {
			break
		}
		opt := strings.ToLower(arg[1:])
		switch {
		case arg[0] == '-' && strings.HasPrefix(arg, "--"):
			out = append(out, arg)
			continue
		case opt == "?" || opt == "help":
			out = append(out, "--help")
			continue
		case opt == "nologo":
			out = append(out, "--nologo")
			continue
		case opt == "f":
			out = append(out, "-f")
			if i+1 < len(args) {
				i++
				out = append(out, args[i])
			}
			continue
		case opt[0] == 'f':
			out = append(out, "-f", arg[2:])
			continue
		case strings.Trim(opt, "pceinas") == "":
			out = append(out, "-"+opt)
			continue
		case arg[0] == '-':
			// left for the flag parser to report
			out = append(out, arg)
			continue
		}
		break
	}
	return append(out, args[i:]...)
}

// splitArgs separates NAME=value macro definitions from targets.
func splitArgs(args []string) ([]Macro, []string, error) {
	var macros []Macro
	var targets []string
	for _, arg := range args {
		if arg == "" || strings.EqualFold(arg, "-nologo") {
			continue
		}
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			targets = append(targets, arg)
			continue
		}
		if name == "" {
			return nil, nil, usageError{fmt.Errorf("invalid macro [%s]", arg)}
		}
		macros = append(macros, Macro{Name: name, Value: value})
	}
	return macros, targets, nil
}

package rules

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rubiojr/gnmake/log"
	"github.com/rubiojr/gnmake/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lines builds preprocessed lines with Expanded equal to Text.
func lines(t *testing.T, src string) []*scanner.Line {
	t.Helper()
	ls, err := scanner.Read(strings.NewReader(src))
	require.NoError(t, err)
	for _, l := range ls {
		l.Expanded = l.Text
	}
	return ls
}

func parse(t *testing.T, src string) *Rules {
	t.Helper()
	r, err := Parse(lines(t, src))
	require.NoError(t, err)
	return r
}

func commands(actions []Action) []string {
	var out []string
	for _, a := range actions {
		out = append(out, strings.TrimSpace(a.Line.Text))
	}
	return out
}

func TestExplicitRules(t *testing.T) {
	r := parse(t, `all: app.exe docs

app.exe: main.obj util.obj
	link /out:app.exe main.obj util.obj
	echo linked
`)
	require.Len(t, r.Explicit, 2)

	all := r.Explicit[0]
	assert.Equal(t, "all", all.Target)
	assert.Equal(t, []string{"app.exe", "docs"}, all.Dependents)
	assert.Empty(t, all.Actions)
	assert.Equal(t, 1, all.Line)

	app := r.Explicit[1]
	assert.Equal(t, []string{"main.obj", "util.obj"}, app.Dependents)
	assert.Equal(t, []string{"link /out:app.exe main.obj util.obj", "echo linked"}, commands(app.Actions))
	assert.Equal(t, 4, app.Actions[0].Line.Num)
	assert.False(t, app.DoubleColon)
}

func TestMultipleTargets(t *testing.T) {
	r := parse(t, "a b: c\n\techo $@\n")
	require.Len(t, r.Explicit, 2)
	for _, rule := range r.Explicit {
		assert.Equal(t, []string{"c"}, rule.Dependents)
		assert.Equal(t, []string{"echo $@"}, commands(rule.Actions))
	}
	assert.Equal(t, []string{"a", "b"}, r.DefaultTargets())
}

func TestSameTargetTwiceOnOneLine(t *testing.T) {
	r := parse(t, "a a: c\n\techo once\n")
	require.Len(t, r.Explicit, 1)
	assert.Len(t, r.Explicit[0].Actions, 1)
}

func TestMergeDependents(t *testing.T) {
	r := parse(t, "t: a b\n\tbuild\n\nt: b c\nt: d a\n")
	require.Len(t, r.Explicit, 1)
	assert.Equal(t, []string{"a", "b", "c", "d"}, r.Explicit[0].Dependents)
	assert.Equal(t, []string{"build"}, commands(r.Explicit[0].Actions))
	assert.True(t, r.Explicit[0].Locked)
}

func TestActionsAfterDependentsOnlyDefinition(t *testing.T) {
	r := parse(t, "t: a\nt: b\n\tbuild\n")
	require.Len(t, r.Explicit, 1)
	assert.Equal(t, []string{"a", "b"}, r.Explicit[0].Dependents)
	assert.Equal(t, []string{"build"}, commands(r.Explicit[0].Actions))
}

func TestDoubleColon(t *testing.T) {
	r := parse(t, "t:: d1\n\tone\n\nt:: d2\n\ttwo\n")
	found := r.Find("t")
	require.Len(t, found, 2)
	assert.Equal(t, []string{"d1"}, found[0].Dependents)
	assert.Equal(t, []string{"one"}, commands(found[0].Actions))
	assert.Equal(t, []string{"d2"}, found[1].Dependents)
	assert.Equal(t, []string{"two"}, commands(found[1].Actions))
	assert.True(t, found[1].DoubleColon)
}

func TestFindReturnsCopies(t *testing.T) {
	r := parse(t, "t: a\n\tcmd\n")
	found := r.Find("t")
	found[0].Dependents[0] = "changed"
	found[0].Actions = nil
	assert.Equal(t, []string{"a"}, r.Explicit[0].Dependents)
	assert.Len(t, r.Explicit[0].Actions, 1)
	assert.True(t, r.HasRuleWithActions("t"))
	assert.False(t, r.HasRuleWithActions("a"))
}

func TestImplicitRules(t *testing.T) {
	r := parse(t, `.SUFFIXES: .obj .c
.c.obj:
	$(CC) /c $<
.cpp.obj:: ; $(CXX) /c $<
`)
	assert.True(t, r.SuffixesSet)
	assert.Equal(t, []string{".obj", ".c"}, r.Suffixes)
	require.Len(t, r.Implicit, 2)

	c := r.Implicit[0]
	assert.Equal(t, "c", c.From)
	assert.Equal(t, "obj", c.To)
	assert.False(t, c.Batch)
	assert.Equal(t, []string{"$(CC) /c $<"}, commands(c.Actions))

	cpp := r.Implicit[1]
	assert.True(t, cpp.Batch)
	assert.Equal(t, []string{"$(CXX) /c $<"}, commands(cpp.Actions))
	assert.Empty(t, r.Explicit)
}

func TestSuffixesClear(t *testing.T) {
	r := parse(t, ".SUFFIXES: .a .b\n.SUFFIXES:\n.SUFFIXES: .c\n")
	assert.Equal(t, []string{".c"}, r.Suffixes)
}

func TestFilterImplicit(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	r := parse(t, ".SUFFIXES: .obj .cpp .c\n.c.obj:\n\tcc\n.y.c:\n\tyacc\n.cpp.obj:\n\tcxx\n")
	r.FilterImplicit()
	require.Len(t, r.Implicit, 2)
	assert.Equal(t, "cpp", r.Implicit[0].From)
	assert.Equal(t, "c", r.Implicit[1].From)
	assert.Contains(t, buf.String(), ".y.c")
}

func TestHereDocs(t *testing.T) {
	r := parse(t, `app.exe: a.obj
	link @<<
/out:app.exe
a.obj
<<KEEP
	echo done
`)
	require.Len(t, r.Explicit, 1)
	actions := r.Explicit[0].Actions
	require.Len(t, actions, 2)
	assert.Equal(t, Keep, actions[0].HereDoc)
	require.Len(t, actions[0].HereDocLines, 2)
	assert.Equal(t, "/out:app.exe", actions[0].HereDocLines[0].Text)
	assert.Equal(t, "a.obj", actions[0].HereDocLines[1].Text)
	assert.Equal(t, NoHereDoc, actions[1].HereDoc)
	assert.False(t, actions[1].HasHereDoc())

	modes := map[string]HereDoc{"<<": Simple, "<<NOKEEP": Simple, "<<UNICODE": Unicode}
	for closer, want := range modes {
		r := parse(t, "t:\n\tcmd <<\nbody\n"+closer+"\n")
		assert.Equal(t, want, r.Explicit[0].Actions[0].HereDoc, closer)
	}
}

func TestInlineCommand(t *testing.T) {
	r := parse(t, "clean: ; rm -f *.obj\n")
	require.Len(t, r.Explicit, 1)
	assert.Empty(t, r.Explicit[0].Dependents)
	assert.Equal(t, []string{"rm -f *.obj"}, commands(r.Explicit[0].Actions))
}

func TestWhitespaceLinesAreNeutral(t *testing.T) {
	r := parse(t, "t:\n\tone\n  \t\n\ttwo\n")
	assert.Equal(t, []string{"one", "two"}, commands(r.Explicit[0].Actions))
}

func TestIgnoredLinesSkipped(t *testing.T) {
	ls := lines(t, "CC = cl\nall:\n")
	ls[0].Ignore = true
	r, err := Parse(ls)
	require.NoError(t, err)
	assert.Equal(t, []string{"all"}, r.DefaultTargets())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
		line int
	}{
		{"indent without rule", "\techo hi\n", ErrInvalidIndent, 1},
		{"indent after blank", "a:\n\techo\n\n\techo\n", ErrInvalidIndent, 4},
		{"triple colon", "a::: b\n", ErrInvalidSeparator, 1},
		{"colon mismatch", "a: b\na:: c\n", ErrColonMismatch, 2},
		{"colon mismatch reversed", "a:: b\na: c\n", ErrColonMismatch, 2},
		{"duplicate actions", "a: b\n\tone\n\na: c\n\ttwo\n", ErrDuplicateRuleWithActions, 5},
		{"bad line", "just words\n", ErrUnexpectedLineFormat, 1},
		{"unterminated heredoc", "a:\n\tcmd <<\nbody\n", ErrUnterminatedHereDoc, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(lines(t, tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestBlankExpansion(t *testing.T) {
	ls := lines(t, "$(EMPTY): b\n")
	ls[0].Expanded = ": b"
	_, err := Parse(ls)
	assert.ErrorIs(t, err, ErrUnexpectedLineFormat)
}

func TestDefaultImplicitRule(t *testing.T) {
	r := parse(t, ".c.obj:\n\tmine\n")
	r.AddDefaultImplicitRule("c", "obj", "$(CC) /c $<")
	r.AddDefaultImplicitRule("c", "exe", "$(CC) $<")
	require.Len(t, r.Implicit, 2)
	assert.Equal(t, []string{"mine"}, commands(r.Implicit[0].Actions))
	assert.Equal(t, []string{"$(CC) $<"}, commands(r.FindImplicit("c", "exe").Actions))
	assert.Nil(t, r.FindImplicit("x", "y"))
}

func TestRuleString(t *testing.T) {
	r := parse(t, "t: a b\n\tcmd <<\nbody\n<<\n")
	assert.Equal(t, "rule: [t]<-[a][b]: [cmd <<](body)", r.Explicit[0].String())
}

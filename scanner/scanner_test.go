package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, src string) []*Line {
	t.Helper()
	lines, err := Read(strings.NewReader(src))
	require.NoError(t, err)
	return lines
}

func TestRead(t *testing.T) {
	src := "CC = cl\r\n" +
		"# a comment\n" +
		"   # indented comment\n" +
		"all: a.obj \\\n" +
		"  b.obj\n" +
		"\techo done\n" +
		"\n" +
		"DIR = c:^\\\n" +
		"last"

	lines := read(t, src)
	require.Len(t, lines, 6)

	assert.Equal(t, &Line{Num: 1, Text: "CC = cl"}, lines[0])
	assert.Equal(t, &Line{Num: 5, Text: "all: a.obj   b.obj"}, lines[1])
	assert.Equal(t, &Line{Num: 6, Text: "\techo done"}, lines[2])
	assert.Equal(t, &Line{Num: 7, Text: ""}, lines[3])
	assert.Equal(t, &Line{Num: 8, Text: `DIR = c:\`}, lines[4])
	assert.Equal(t, &Line{Num: 9, Text: "last"}, lines[5])
}

func TestCommentInsideContinuation(t *testing.T) {
	lines := read(t, "OBJS = a.obj \\\n# b.obj \\\n  c.obj\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "OBJS = a.obj   c.obj", lines[0].Text)
	assert.Equal(t, 3, lines[0].Num)
}

func TestDanglingContinuation(t *testing.T) {
	lines := read(t, "a: b \\\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "a: b ", lines[0].Text)
	assert.Equal(t, 1, lines[0].Num)
}

func TestOnPhysical(t *testing.T) {
	ls := New(strings.NewReader("a \\\nb\n# c\n"))
	var seen []string
	ls.OnPhysical = func(num int, text string) {
		seen = append(seen, text)
	}
	for {
		if _, ok := ls.Next(); !ok {
			break
		}
	}
	require.NoError(t, ls.Err())
	assert.Equal(t, []string{"a \\", "b", "# c"}, seen)
}

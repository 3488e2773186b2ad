package expr

import (
	"testing"

	"github.com/rubiojr/gnmake/expand"
	"github.com/rubiojr/gnmake/system"
	"github.com/rubiojr/gnmake/vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluate(t *testing.T, src string) (int, error) {
	t.Helper()
	v := vars.New(nil)
	v.Set("DEBUG", "1")
	v.Set("CC", "cl")
	v.Set("EMPTY", "")
	x := expand.New(system.MapEnv{"OS": "Windows_NT"}, false)
	return Evaluate(src, x, v)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"", 0},
		{"1", 1},
		{"0", 0},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 2 - 3", 5},
		{"12 / 2 / 3", 2},
		{"!0", 1},
		{"!5", 0},
		{"-3 + 5", 2},
		{"!!7", 1},
		{"0x10", 16},
		{"0XfF", 255},
		{"010", 8},
		{"1 < 2", 1},
		{"2 <= 2", 1},
		{"3 >= 4", 0},
		{"3 > 2 == 1", 1},
		{"6 & 3", 2},
		{"6 | 1", 7},
		{"1 && 0", 0},
		{"0 || 3", 1},
		{"1 || 1 && 0", 1},
		{"1 | 2 == 2", 1},
		{"1==1&&2!=3", 1},
		{`"a" == "a"`, 1},
		{`"a" != "b"`, 1},
		{`"a"`, 1},
		{`""`, 0},
		{`"$(CC)" == "cl"`, 1},
		{`"$(DEBUG)" == "1"`, 1},
		{`"$(EMPTY)"`, 0},
		{`"$(OS)" == "Windows_NT"`, 1},
		{`!"$(EMPTY)"`, 1},
		{`"x" && 1`, 1},
		{"((2))", 2},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := evaluate(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		src string
		err error
	}{
		{"1 / 0", ErrDivideByZero},
		{"(1 + 2", ErrInvalidExpression},
		{"1 + 2)", ErrInvalidExpression},
		{"1 +", ErrInvalidExpression},
		{"* 2", ErrInvalidExpression},
		{"()", ErrInvalidExpression},
		{"1 2", ErrInvalidExpression},
		{"abc", ErrInvalidExpression},
		{`"open`, ErrInvalidExpression},
		{"0x", ErrInvalidNumber},
		{"08", ErrInvalidNumber},
		{"99999999999", ErrInvalidNumber},
		{`"a" + 1`, ErrNotANumber},
		{`-"a"`, ErrNotANumber},
		{`"a" < "b"`, ErrNotANumber},
		{`1 == "a"`, ErrNotANumber},
		{`"a" == 1`, ErrNotAString},
		{`$(` + `X) == 1`, ErrInvalidExpression},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := evaluate(t, tt.src)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize(`!("a"==0x1f)&&-2`, nil)
	require.NoError(t, err)

	var got []string
	for _, tok := range tokens {
		got = append(got, tok.String())
	}
	assert.Equal(t, []string{
		"infix:!", "open:", "string:a", "infix:==", "number:0x1f",
		"close:", "infix:&&", "infix:-", "number:2",
	}, got)
	assert.Equal(t, 2, tokens[2].Pos)
}

func TestParseShape(t *testing.T) {
	parse := func(src string) string {
		tokens, err := Tokenize(src, nil)
		require.NoError(t, err)
		n, err := Parse(tokens, len(src))
		require.NoError(t, err)
		return n.String()
	}
	assert.Equal(t, "(- (- 10 2) 3)", parse("10 - 2 - 3"))
	assert.Equal(t, "(|| 1 (&& 0 1))", parse("1 || 0 && 1"))
	assert.Equal(t, "(- (! 0))", parse("-!0"))
	assert.Equal(t, `(== "x" "y")`, parse(`"x" == "y"`))
}

func TestDump(t *testing.T) {
	tokens, err := Tokenize("1 + 2", nil)
	require.NoError(t, err)
	n, err := Parse(tokens, 5)
	require.NoError(t, err)
	assert.Equal(t, "[+]\n  1\n  2\n", Dump(n))
}

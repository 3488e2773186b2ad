package expand

import (
	"fmt"
	"testing"

	"github.com/rubiojr/gnmake/system"
	"github.com/rubiojr/gnmake/vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func store(kv ...string) *vars.Store {
	s := vars.New(nil)
	for i := 0; i+1 < len(kv); i += 2 {
		s.Set(kv[i], kv[i+1])
	}
	return s
}

func TestExpand(t *testing.T) {
	v := store(
		"FOO", "aardvark",
		"CC", "cl",
		"CFLAGS", "/O2 $(DEFS)",
		"DEFS", "/DNDEBUG",
		"X", "x",
		"OBJS", "a.c b.c",
	)
	x := New(nil, false)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no dollar", "plain text: here", "plain text: here"},
		{"empty", "", ""},
		{"paren", "$(CC) -c", "cl -c"},
		{"single char", "$X$X", "xx"},
		{"recursive", "$(CC) $(CFLAGS)", "cl /O2 /DNDEBUG"},
		{"substitution", "$(FOO:a=b)", "bbrdvbrk"},
		{"substitution on list", "$(OBJS:.c=.obj)", "a.obj b.obj"},
		{"empty from", "$(FOO:=z)", "aardvark"},
		{"double dollar", "cost $$5", "cost $5"},
		{"double dollar not reexpanded", "$$(CC)", "$(CC)"},
		{"undefined", "[$(NOPE)]", "[]"},
		{"trailing dollar", "end$", "end$"},
		{"unclosed paren", "$(CC", "$(CC"},
		{"prefix and suffix", "a $(CC) b $(X) c", "a cl b x c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := x.Expand(tt.in, v, nil, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandStopList(t *testing.T) {
	v := store("X", "1", "@", "bad")
	x := New(nil, false)

	got, err := x.Expand("$(X)", v, []string{"X"}, false)
	require.NoError(t, err)
	assert.Equal(t, "$(X)", got)

	got, err = x.Expand("cc -o $@ $(X) $(@:.exe=.obj) $<F", v, StopList(), false)
	require.NoError(t, err)
	assert.Equal(t, "cc -o $@ 1 $(@:.exe=.obj) $<F", got)
}

func TestExpandDeferred(t *testing.T) {
	v := store("HOME", "/home/me")
	x := New(nil, false)

	first, err := x.ExpandDeferred("echo $$HOME $(HOME) $@", v, StopList(), false)
	require.NoError(t, err)
	assert.Equal(t, "echo $$HOME /home/me $@", first)

	auto := store("@", "all")
	final, err := x.Expand(first, auto, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "echo $HOME /home/me all", final)
}

func TestExpandEnvironment(t *testing.T) {
	env := system.MapEnv{"CC": "gcc", "HOME": "/root"}
	v := store("CC", "cl")

	x := New(env, false)
	got, err := x.Expand("$(CC) $(HOME)", v, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "cl /root", got, "macros win over the environment")

	got, err = x.Expand("$(CC) $(HOME)", v, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "cl ", got, "environment not consulted")

	x = New(env, true)
	got, err = x.Expand("$(CC) $(HOME)", v, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "gcc /root", got, "forced environment wins")

	got, err = x.Expand("$(CC)", v, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "cl", got, "force applies only with the environment")

	delete(env, "CC")
	got, err = x.Expand("$(CC)", v, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "cl", got, "store is the fallback")
}

func TestExpandErrors(t *testing.T) {
	x := New(nil, false)

	_, err := x.Expand("a $() b", store("A", "1"), nil, false)
	assert.ErrorIs(t, err, ErrMissingMacroName)

	_, err = x.Expand("$(A$(B))", store("A", "1"), nil, false)
	assert.ErrorIs(t, err, ErrIllegalCharacterInName)

	_, err = x.Expand("$(LOOP)", store("LOOP", "x$(LOOP)"), nil, false)
	assert.ErrorIs(t, err, ErrExpansionLoop)
}

func TestExpandDepth(t *testing.T) {
	x := New(nil, false)

	chain := func(n int) *vars.Store {
		s := vars.New(nil)
		for i := 1; i < n; i++ {
			s.Set(fmt.Sprintf("V%d", i), fmt.Sprintf("$(V%d)", i+1))
		}
		s.Set(fmt.Sprintf("V%d", n), "end")
		return s
	}

	got, err := x.Expand("$(V1)", chain(99), nil, false)
	require.NoError(t, err)
	assert.Equal(t, "end", got)

	_, err = x.Expand("$(V1)", chain(101), nil, false)
	assert.ErrorIs(t, err, ErrExpansionLoop)
}

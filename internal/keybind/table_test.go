package keybind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goanthy/internal/keys"
)

func TestCommandNames(t *testing.T) {
	for _, cmd := range Commands() {
		parsed, err := ParseCommand(cmd.String())
		require.NoError(t, err)
		assert.Equal(t, cmd, parsed)
	}

	_, err := ParseCommand("no_such_command")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestCandidateDigit(t *testing.T) {
	i, ok := SelectCandidates1.CandidateDigit()
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	i, ok = SelectCandidates0.CandidateDigit()
	assert.True(t, ok)
	assert.Equal(t, 9, i)

	_, ok = Commit.CandidateDigit()
	assert.False(t, ok)
}

func TestBuiltinProfiles(t *testing.T) {
	ps := Profiles()
	require.Contains(t, ps, DefaultProfile)
	require.Contains(t, ps, "atok")

	for name, p := range ps {
		for cmd, names := range p {
			for _, n := range names {
				_, err := keys.ParseName(n)
				assert.NoError(t, err, "%s/%s: %s", name, cmd, n)
			}
		}
	}

	// Returned profiles are copies.
	ps[DefaultProfile][Commit] = nil
	assert.NotEmpty(t, Profiles()[DefaultProfile][Commit])
}

func TestBuildOrdersByDeclaration(t *testing.T) {
	p := Profile{
		SelectNextCandidate: {"space"},
		InsertSpace:         {"space"},
		Convert:             {"space"},
	}
	tbl := Build(p, nil)

	got := tbl.Lookup(parseKey("space"))
	assert.Equal(t, []Command{InsertSpace, Convert, SelectNextCandidate}, got)
}

func TestBuildSkipsBadNames(t *testing.T) {
	p := Profile{
		Commit: {"Return", "Bogus+Key", ""},
	}
	tbl := Build(p, nil)

	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, []Command{Commit}, tbl.Lookup(parseKey("Return")))
}

func TestWithDelta(t *testing.T) {
	base := Build(Profile{
		Commit:  {"Return"},
		Convert: {"space"},
	}, nil)

	next := base.WithDelta(OnOff, []string{"space", "Ctrl+J"}, nil, nil)
	// OnOff precedes Convert in declaration order even though it was added later.
	assert.Equal(t, []Command{OnOff, Convert}, next.Lookup(parseKey("space")))
	assert.Equal(t, []Command{OnOff}, next.Lookup(parseKey("ctrl+j")))

	// The original table is untouched.
	assert.Equal(t, []Command{Convert}, base.Lookup(parseKey("space")))

	removed := next.WithDelta(Convert, nil, []string{"space"}, nil)
	assert.Equal(t, []Command{OnOff}, removed.Lookup(parseKey("space")))

	gone := removed.WithDelta(OnOff, nil, []string{"space", "Ctrl+J"}, nil)
	assert.Empty(t, gone.Lookup(parseKey("space")))
	assert.Equal(t, 1, gone.Len())

	bogus := Command(CommandCount)
	assert.False(t, bogus.Valid())
	assert.Equal(t, "Command(-1)", Command(-1).String())
	same := base.WithDelta(bogus, []string{"space"}, []string{"Return"}, nil)
	assert.Equal(t, []Command{Convert}, same.Lookup(parseKey("space")))
	assert.Equal(t, []Command{Commit}, same.Lookup(parseKey("Return")))
}

func TestBindingsSwap(t *testing.T) {
	b := NewBindings(Profile{Commit: {"Return"}}, nil)
	before := b.Table()

	b.ApplyDelta(Cancel, []string{"Escape"}, nil)
	assert.Equal(t, []Command{Cancel}, b.Lookup(parseKey("Escape")))
	assert.Empty(t, before.Lookup(parseKey("Escape")))

	b.Rebuild(Profile{Cancel: {"Ctrl+G"}})
	assert.Empty(t, b.Lookup(parseKey("Return")))
	assert.Equal(t, []Command{Cancel}, b.Lookup(parseKey("Ctrl+G")))
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile(map[string][]string{
		"commit":  {"Return"},
		"bogus":   {"x"},
		"convert": {"space"},
	})
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Len(t, p, 2)
	assert.Equal(t, []string{"Return"}, p[Commit])
}

func TestDiff(t *testing.T) {
	added, removed := Diff([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"c"}, added)
	assert.Equal(t, []string{"a"}, removed)
}

// parseKey resolves a key name known to be valid.
func parseKey(name string) keys.Key {
	k, err := keys.ParseName(name)
	if err != nil {
		panic(err)
	}
	return k
}

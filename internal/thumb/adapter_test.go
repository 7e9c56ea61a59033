package thumb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goanthy/internal/eventloop"
	"goanthy/internal/keys"
)

type recorder struct {
	inserted []string
	execs    []keys.Key
	bound    map[uint32]bool
	empty    bool
}

func (r *recorder) Insert(s string) { r.inserted = append(r.inserted, s) }

func (r *recorder) Exec(k keys.Key) bool {
	r.execs = append(r.execs, k)
	return r.bound[k.Keyval]
}

func (r *recorder) PreeditEmpty() bool { return r.empty }

func newAdapter(t *testing.T, mutate func(*Config)) (*Adapter, *recorder, *eventloop.Manual) {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	rec := &recorder{bound: map[uint32]bool{}, empty: true}
	sched := eventloop.NewManual()
	return New(cfg, rec, sched, nil), rec, sched
}

func press(a *Adapter, keyval uint32) bool {
	return a.Process(keys.Key{Keyval: keyval}, false)
}

func release(a *Adapter, keyval uint32) bool {
	return a.Process(keys.Key{Keyval: keyval}, true)
}

func TestLoneCharacterResolvesOnT2(t *testing.T) {
	a, rec, sched := newAdapter(t, nil)

	require.True(t, press(a, 'j'))
	assert.Empty(t, rec.inserted)
	assert.Equal(t, uint32('j'), a.State().Pending)

	sched.Advance(DefaultT2 - time.Millisecond)
	assert.Empty(t, rec.inserted)
	sched.Advance(time.Millisecond)
	assert.Equal(t, []string{"と"}, rec.inserted)

	release(a, 'j')
	sched.Advance(time.Second)
	assert.Equal(t, []string{"と"}, rec.inserted, "exactly one insertion")
	assert.Equal(t, State{}, a.State())
}

func TestReleaseResolvesEarly(t *testing.T) {
	a, rec, sched := newAdapter(t, nil)

	press(a, 'k')
	release(a, 'k')
	assert.Equal(t, []string{"き"}, rec.inserted)
	assert.Zero(t, sched.Pending())

	sched.Advance(time.Second)
	assert.Equal(t, []string{"き"}, rec.inserted)
}

func TestCharacterPairs(t *testing.T) {
	t.Run("chord", func(t *testing.T) {
		a, rec, sched := newAdapter(t, func(c *Config) {
			c.Chords = map[Chord]string{MakeChord('j', 'k'): "ゔ"}
		})
		press(a, 'j')
		sched.Advance(DefaultT2 / 2)
		press(a, 'k')

		assert.Equal(t, []string{"ゔ"}, rec.inserted)
		assert.Zero(t, sched.Pending())
		sched.Advance(time.Second)
		assert.Equal(t, []string{"ゔ"}, rec.inserted)
	})

	t.Run("built-in chord", func(t *testing.T) {
		a, rec, sched := newAdapter(t, nil)
		press(a, 'k')
		press(a, 'd')

		assert.Equal(t, []string{"ゔ"}, rec.inserted)
		assert.Zero(t, sched.Pending())
	})

	t.Run("no chord", func(t *testing.T) {
		a, rec, sched := newAdapter(t, nil)
		press(a, 'j')
		press(a, 'k')

		assert.Equal(t, []string{"と"}, rec.inserted)
		assert.Equal(t, uint32('k'), a.State().Pending)
		sched.Advance(DefaultT2)
		assert.Equal(t, []string{"と", "き"}, rec.inserted)
	})
}

func TestCharacterThenThumb(t *testing.T) {
	a, rec, sched := newAdapter(t, nil)

	press(a, 'j')
	press(a, keys.Henkan)
	assert.Equal(t, []string{"お"}, rec.inserted)
	assert.Zero(t, sched.Pending())

	// Auto-repeat of the thumb key repeats the character.
	press(a, keys.Henkan)
	assert.Equal(t, []string{"お", "お"}, rec.inserted)

	release(a, keys.Henkan)
	release(a, 'j')
	press(a, keys.Henkan)
	assert.Len(t, rec.inserted, 2)
	assert.Equal(t, Right, a.State().Side)
}

func TestThumbThenCharacter(t *testing.T) {
	a, rec, sched := newAdapter(t, nil)

	press(a, keys.Muhenkan)
	assert.Equal(t, Left, a.State().Side)
	press(a, 'j')
	assert.Equal(t, []string{"ど"}, rec.inserted)
	assert.Zero(t, sched.Pending())
	assert.Empty(t, rec.execs)

	// Auto-repeat of the character key.
	press(a, 'j')
	assert.Equal(t, []string{"ど", "ど"}, rec.inserted)
}

func TestLoneThumbExecutesCommand(t *testing.T) {
	a, rec, sched := newAdapter(t, nil)

	press(a, keys.Henkan)
	sched.Advance(DefaultT1)
	assert.Equal(t, []keys.Key{{Keyval: keys.Henkan}}, rec.execs)
	assert.Equal(t, Right, a.State().Side, "still held")

	// A character while still held is shifted.
	press(a, 'w')
	assert.Equal(t, []string{"が"}, rec.inserted)

	release(a, keys.Henkan)
	assert.Len(t, rec.execs, 1)
}

func TestThumbReleaseExecutesEarly(t *testing.T) {
	a, rec, sched := newAdapter(t, nil)

	press(a, keys.Muhenkan)
	release(a, keys.Muhenkan)
	assert.Equal(t, []keys.Key{{Keyval: keys.Muhenkan}}, rec.execs)
	sched.Advance(time.Second)
	assert.Len(t, rec.execs, 1)
	assert.Equal(t, State{}, a.State())
}

func TestDoubleThumb(t *testing.T) {
	t.Run("symbol", func(t *testing.T) {
		a, rec, sched := newAdapter(t, func(c *Config) {
			c.Symbols = map[Side]string{Left: "　"}
		})
		press(a, keys.Muhenkan)
		press(a, keys.Henkan)
		assert.Equal(t, []string{"　"}, rec.inserted)
		assert.Empty(t, rec.execs)
		assert.Zero(t, sched.Pending())
	})

	t.Run("command", func(t *testing.T) {
		a, rec, sched := newAdapter(t, nil)
		press(a, keys.Muhenkan)
		press(a, keys.Henkan)
		assert.Equal(t, []keys.Key{{Keyval: keys.Muhenkan}}, rec.execs)
		assert.Equal(t, Right, a.State().Side)

		sched.Advance(DefaultT1)
		assert.Equal(t, []keys.Key{{Keyval: keys.Muhenkan}, {Keyval: keys.Henkan}}, rec.execs)
	})
}

func TestOtherKeyFlushesPending(t *testing.T) {
	a, rec, sched := newAdapter(t, nil)
	rec.bound[keys.Return] = true

	press(a, 'j')
	assert.True(t, press(a, keys.Return))
	assert.Equal(t, []string{"と"}, rec.inserted)
	assert.Equal(t, []keys.Key{{Keyval: 'j'}, {Keyval: keys.Return}}, rec.execs)
	assert.Zero(t, sched.Pending())
}

func TestOtherKeys(t *testing.T) {
	a, rec, _ := newAdapter(t, nil)

	assert.False(t, press(a, keys.F1), "empty preedit passes through")
	rec.empty = false
	assert.True(t, press(a, keys.F1))

	assert.True(t, a.Process(keys.Key{Keyval: '!', Mods: keys.ModShift}, false))
	assert.Equal(t, []string{"!"}, rec.inserted)

	assert.True(t, a.Process(keys.Key{Keyval: 'J', Mods: keys.ModControl | keys.ModShift}, false))
	assert.Equal(t, []string{"!"}, rec.inserted, "control keys never insert")
}

func TestBoundCharacterRunsCommand(t *testing.T) {
	a, rec, sched := newAdapter(t, nil)
	rec.bound['j'] = true

	assert.True(t, press(a, 'j'))
	assert.Zero(t, a.State().Pending)
	assert.Zero(t, sched.Pending())
	assert.Empty(t, rec.inserted)
}

func TestResetDropsPending(t *testing.T) {
	a, rec, sched := newAdapter(t, nil)

	press(a, 'j')
	a.Reset()
	sched.Advance(time.Second)
	assert.Empty(t, rec.inserted)
	assert.Zero(t, sched.Pending())

	rec.execs = nil
	press(a, keys.Henkan)
	a.SetConfig(DefaultConfig())
	sched.Advance(time.Second)
	assert.Empty(t, rec.execs)
}

func TestParseLayoutAndChords(t *testing.T) {
	layout, err := ParseLayout(map[string][]string{"semicolon": {"ん", "っ"}})
	require.NoError(t, err)
	assert.Equal(t, Entry{"ん", "っ", ""}, layout[';'])

	_, err = ParseLayout(map[string][]string{"nosuchkey": {"x"}})
	assert.ErrorIs(t, err, keys.ErrUnknownKey)
	_, err = ParseLayout(map[string][]string{"a": {}})
	assert.Error(t, err)

	chords, err := ParseChords(map[string]string{"k j": "ゔ"})
	require.NoError(t, err)
	assert.Equal(t, "ゔ", chords[MakeChord('j', 'k')])

	_, err = ParseChords(map[string]string{"j": "x"})
	assert.Error(t, err)
}

package ime

import (
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goanthy/internal/config"
	"goanthy/internal/convert"
	"goanthy/internal/dict"
	"goanthy/internal/eventloop"
	"goanthy/internal/kana"
	"goanthy/internal/keybind"
	"goanthy/internal/keys"
	"goanthy/internal/metrics"
)

type recorder struct {
	commits []string

	preedit        string
	attrs          []Attribute
	cursor         uint32
	preeditVisible bool
	preeditCalls   int

	aux        string
	auxVisible bool

	table        LookupTable
	tableVisible bool

	props   []Property
	updated []Property
}

func (r *recorder) CommitText(text string) { r.commits = append(r.commits, text) }

func (r *recorder) UpdatePreedit(text string, attrs []Attribute, cursor uint32, visible bool) {
	r.preedit, r.attrs, r.cursor, r.preeditVisible = text, attrs, cursor, visible
	r.preeditCalls++
}

func (r *recorder) UpdateAuxiliaryText(text string, visible bool) {
	r.aux, r.auxVisible = text, visible
}

func (r *recorder) UpdateLookupTable(table LookupTable, visible bool) {
	r.table, r.tableVisible = table, visible
}

func (r *recorder) RegisterProperties(props []Property) { r.props = props }

func (r *recorder) UpdateProperty(prop Property) { r.updated = append(r.updated, prop) }

func (r *recorder) lastUpdate(key string) (Property, bool) {
	for i := len(r.updated) - 1; i >= 0; i-- {
		if r.updated[i].Key == key {
			return r.updated[i], true
		}
	}
	return Property{}, false
}

type fakeLauncher struct{ launched []keybind.Command }

func (f *fakeLauncher) Launch(cmd keybind.Command) error {
	f.launched = append(f.launched, cmd)
	return nil
}

type harness struct {
	s       *Session
	rec     *recorder
	sched   *eventloop.Manual
	shared  *Shared
	backend *dict.Backend
}

func newHarness(t *testing.T, mutate func(*config.Config), opts ...func(*Options)) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	shared, err := NewShared(cfg, nil)
	require.NoError(t, err)

	h := &harness{
		rec:     &recorder{},
		sched:   eventloop.NewManual(),
		shared:  shared,
		backend: dict.NewLibrary(dict.Default()).NewBackend(nil, nil),
	}
	o := Options{Backend: h.backend, Scheduler: h.sched}
	for _, f := range opts {
		f(&o)
	}
	h.s, err = NewSession(shared, h.rec, o)
	require.NoError(t, err)
	t.Cleanup(h.s.Close)
	return h
}

// typeText sends one press per character, with Shift for capitals.
func (h *harness) typeText(text string) {
	for _, r := range text {
		var mods keys.Modifier
		if unicode.IsUpper(r) {
			mods = keys.ModShift
		}
		h.s.HandleKeyEvent(uint32(r), 0, mods)
	}
}

func (h *harness) press(name string) bool {
	k := parseKey(name)
	return h.s.HandleKeyEvent(k.Keyval, 0, k.Mods)
}

func (h *harness) texts() []string {
	var out []string
	for _, seg := range h.s.Conversion().Segments() {
		out = append(out, seg.Text)
	}
	return out
}

func TestNewSessionRequiresCollaborators(t *testing.T) {
	shared, err := NewShared(nil, nil)
	require.NoError(t, err)
	backend := dict.NewLibrary(dict.Default()).NewBackend(nil, nil)

	_, err = NewSession(shared, nil, Options{Backend: backend, Scheduler: eventloop.NewManual()})
	assert.Error(t, err)
	_, err = NewSession(shared, &recorder{}, Options{Scheduler: eventloop.NewManual()})
	assert.Error(t, err)
	_, err = NewSession(shared, &recorder{}, Options{Backend: backend})
	assert.Error(t, err)
}

func TestConvertAndCommit(t *testing.T) {
	h := newHarness(t, nil)

	h.typeText("nihongonojisho")
	assert.Equal(t, 1, h.sched.RunIdle(), "one redraw per dispatch turn")
	assert.Equal(t, "にほんごのじしょ", h.rec.preedit)
	assert.True(t, h.rec.preeditVisible)
	assert.Equal(t, uint32(8), h.rec.cursor)

	require.True(t, h.press("space"))
	assert.Equal(t, convert.Segments, h.s.Conversion().Mode())
	assert.Equal(t, []string{"日本語", "の", "辞書"}, h.texts())

	h.sched.RunIdle()
	assert.Equal(t, "日本語の辞書", h.rec.preedit)
	assert.Equal(t, highlight(6, 0, 3), h.rec.attrs)
	assert.Equal(t, uint32(0), h.rec.cursor)
	assert.False(t, h.rec.auxVisible)

	require.True(t, h.press("Return"))
	assert.Equal(t, []string{"日本語の辞書"}, h.rec.commits)
	assert.True(t, h.s.Buffer().IsEmpty())
	assert.Equal(t, convert.Off, h.s.Conversion().Mode())

	h.sched.RunIdle()
	assert.Equal(t, "", h.rec.preedit)
	assert.False(t, h.rec.preeditVisible)
}

func TestSegmentNavigationAndResize(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("nihongonojisho")
	require.True(t, h.press("space"))

	require.True(t, h.press("Right"))
	assert.Equal(t, 1, h.s.Conversion().Cursor())
	require.True(t, h.press("End"))
	assert.Equal(t, 2, h.s.Conversion().Cursor())
	require.True(t, h.press("Right"), "moving past the last segment is accepted")
	assert.Equal(t, 2, h.s.Conversion().Cursor())

	require.True(t, h.press("Home"))
	assert.Equal(t, 0, h.s.Conversion().Cursor())

	require.True(t, h.press("Shift+Left"))
	assert.Len(t, h.s.Conversion().Segments(), 4)
	assert.Equal(t, "日本", h.texts()[0])

	require.True(t, h.press("Shift+Right"))
	assert.Equal(t, []string{"日本語", "の", "辞書"}, h.texts())

	h.sched.RunIdle()
	require.True(t, h.press("Right"))
	h.sched.RunIdle()
	assert.Equal(t, highlight(6, 3, 4), h.rec.attrs)
	assert.Equal(t, uint32(3), h.rec.cursor)
}

func TestCandidateSelection(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("nihongonojisho")
	require.True(t, h.press("space"))

	require.True(t, h.press("space"), "second space walks the candidates")
	list := h.s.Conversion().List()
	assert.True(t, list.Visible())
	assert.Equal(t, "にほんご", h.texts()[0])

	h.sched.RunIdle()
	assert.Equal(t, "( 2 / 3 )", h.rec.aux)
	assert.True(t, h.rec.auxVisible)
	assert.True(t, h.rec.tableVisible)
	assert.Equal(t, []string{"日本語", "にほんご", "ニホンゴ"}, h.rec.table.Candidates)
	assert.Equal(t, 1, h.rec.table.Cursor)

	h.s.CandidateClicked(0, 1, 0)
	assert.Equal(t, "日本語", h.texts()[0])
	assert.False(t, list.Visible())
	assert.Equal(t, 1, h.s.Conversion().Cursor(), "selection moves to the next segment")

	require.True(t, h.press("space"))
	require.True(t, h.press("2"))
	assert.Equal(t, []string{"日本語", "ノ", "辞書"}, h.texts())
}

func TestDigitsInsertWithoutCandidates(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("a1")
	text, _ := h.s.Buffer().Render(kana.Hiragana, true)
	assert.Equal(t, "あ１", text, "unmapped characters are widened")
}

func TestPartialCommit(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("nihongonojisho")
	require.True(t, h.press("space"))

	require.True(t, h.press("Shift+Down"))
	assert.Equal(t, []string{"日本語"}, h.rec.commits)
	assert.Equal(t, []string{"の", "辞書"}, h.texts())

	require.True(t, h.press("Return"))
	assert.Equal(t, []string{"日本語", "の辞書"}, h.rec.commits)
	assert.True(t, h.s.Buffer().IsEmpty())
}

func TestBackspaceAndCancel(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("aiu")

	require.True(t, h.press("BackSpace"))
	text, _ := h.s.Buffer().Render(kana.Hiragana, true)
	assert.Equal(t, "あい", text)

	require.True(t, h.press("space"))
	require.True(t, h.press("Escape"))
	assert.Equal(t, convert.Off, h.s.Conversion().Mode())
	assert.False(t, h.s.Buffer().IsEmpty(), "cancel keeps the input")

	require.True(t, h.press("Escape"))
	assert.True(t, h.s.Buffer().IsEmpty())
	assert.False(t, h.press("BackSpace"), "nothing to edit")
	assert.Empty(t, h.rec.commits)
}

func TestCharTypeCycle(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("tokyo")

	require.True(t, h.press("Muhenkan"))
	assert.Equal(t, convert.Katakana, h.s.Conversion().Mode())
	assert.Equal(t, "トキョ", h.s.Conversion().Text())

	require.True(t, h.press("F10"))
	assert.Equal(t, "tokyo", h.s.Conversion().Text())

	h.sched.RunIdle()
	assert.Equal(t, highlight(5, 0, 5), h.rec.attrs)
	assert.Equal(t, uint32(5), h.rec.cursor)

	require.True(t, h.press("Return"))
	assert.Equal(t, []string{"tokyo"}, h.rec.commits)
}

func TestPrediction(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("aka")

	require.True(t, h.press("Tab"))
	assert.Equal(t, convert.Prediction, h.s.Conversion().Mode())
	assert.Equal(t, []string{"赤"}, h.texts())

	require.True(t, h.press("Tab"))
	assert.Equal(t, []string{"紅"}, h.texts())

	require.True(t, h.press("Return"))
	assert.Equal(t, []string{"紅"}, h.rec.commits)
}

func TestLatinModeToggle(t *testing.T) {
	h := newHarness(t, nil)

	require.True(t, h.press("Ctrl+J"))
	assert.Equal(t, Latin, h.s.InputMode())
	prop, ok := h.rec.lastUpdate(InputModeProp)
	require.True(t, ok)
	assert.Equal(t, "_A", prop.Label)

	h.typeText("Tokyo")
	require.True(t, h.press("space"))
	assert.Equal(t, []string{"T", "o", "k", "y", "o", " "}, h.rec.commits)
	assert.True(t, h.s.Buffer().IsEmpty())

	require.True(t, h.press("Ctrl+J"))
	assert.Equal(t, Hiragana, h.s.InputMode())
}

func TestOnOffReturnsToLastKanaMode(t *testing.T) {
	h := newHarness(t, nil)

	h.s.PropertyActivate("InputMode.Katakana", PropChecked)
	require.Equal(t, Katakana, h.s.InputMode())
	require.True(t, h.press("Ctrl+J"))
	require.True(t, h.press("Ctrl+J"))
	assert.Equal(t, Katakana, h.s.InputMode())

	h.typeText("ka")
	h.sched.RunIdle()
	assert.Equal(t, "カ", h.rec.preedit)
}

func TestInputModeCycles(t *testing.T) {
	h := newHarness(t, nil)

	var seen []InputMode
	for range 5 {
		require.True(t, h.press("Ctrl+comma"))
		seen = append(seen, h.s.InputMode())
	}
	assert.Equal(t, []InputMode{Katakana, HalfKatakana, Latin, WideLatin, Hiragana}, seen)

	h.s.PropertyActivate("InputMode.Latin", PropChecked)
	require.True(t, h.press("Ctrl+period"))
	assert.Equal(t, Hiragana, h.s.InputMode(), "kana cycle from latin starts at hiragana")
	require.True(t, h.press("Ctrl+period"))
	require.True(t, h.press("Ctrl+period"))
	require.True(t, h.press("Ctrl+period"))
	assert.Equal(t, Hiragana, h.s.InputMode())
}

func TestWideLatinInput(t *testing.T) {
	h := newHarness(t, nil)
	h.s.PropertyActivate("InputMode.WideLatin", PropChecked)

	h.typeText("ab")
	assert.Equal(t, []string{"ａ", "ｂ"}, h.rec.commits)
}

func TestModeSwitchResets(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("aiu")

	h.s.PropertyActivate("SegmentMode.Single", PropChecked)
	assert.True(t, h.s.Buffer().IsEmpty())
	assert.Equal(t, convert.Single, h.s.SegmentMode())
	assert.Empty(t, h.rec.commits)

	h.s.PropertyActivate("TypingMode.Kana", PropUnchecked)
	assert.Equal(t, kana.Romaji, h.s.TypingMode(), "unchecked radio items are ignored")
	h.s.PropertyActivate("TypingMode.Kana", PropChecked)
	assert.Equal(t, kana.Kana, h.s.TypingMode())
	assert.Equal(t, kana.Kana, h.s.Buffer().TypingMode())

	prop, ok := h.rec.lastUpdate("TypingMode.Kana")
	require.True(t, ok)
	assert.Equal(t, PropChecked, prop.State)
}

func TestSingleSegmentMode(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Common.SegmentMode = "single" })
	h.typeText("nihongonojisho")
	require.True(t, h.press("space"))
	assert.Len(t, h.s.Conversion().Segments(), 1)
}

func TestTypingMethodCycle(t *testing.T) {
	h := newHarness(t, nil)
	var seen []kana.TypingMode
	for range 3 {
		require.True(t, h.press("Ctrl+slash"))
		seen = append(seen, h.s.TypingMode())
	}
	assert.Equal(t, []kana.TypingMode{kana.Kana, kana.ThumbShift, kana.Romaji}, seen)
}

func TestSpaces(t *testing.T) {
	tests := []struct {
		name   string
		half   bool
		mode   string
		key    string
		commit string
	}{
		{"wide by default", false, "hiragana", "space", "　"},
		{"alternate", false, "hiragana", "Shift+space", " "},
		{"half width preference", true, "hiragana", "space", " "},
		{"half katakana", false, "half_katakana", "space", " "},
		{"alternate of half", true, "katakana", "Shift+space", "　"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(c *config.Config) {
				c.Common.HalfWidthSpace = tt.half
				c.Common.InputMode = tt.mode
			})
			require.True(t, h.press(tt.key))
			assert.Equal(t, []string{tt.commit}, h.rec.commits)
		})
	}
}

func TestKanaTypingSpecialKeys(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Common.TypingMethod = "kana" })

	require.True(t, h.s.HandleKeyEvent('0', 0, keys.ModShift))
	require.True(t, h.s.HandleKeyEvent(keys.Backslash, 124, 0))
	raw, _ := h.s.Buffer().Render(kana.Latin, true)
	assert.Equal(t, "~¥", raw)
}

func TestBehaviorOnPeriod(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Common.BehaviorOnPeriod = true })
	h.typeText("nihongo.")
	assert.Equal(t, convert.Segments, h.s.Conversion().Mode())
}

func TestImmediateConversion(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Common.SegmentMode = "immediate_multi" })
	h.typeText("nihongo")
	assert.Equal(t, convert.Segments, h.s.Conversion().Mode())
	assert.Empty(t, h.rec.commits, "immediate mode keeps converting while typing")
}

func TestFocusOut(t *testing.T) {
	tests := []struct {
		behavior string
		commits  []string
		empty    bool
	}{
		{"commit", []string{"あいう"}, true},
		{"clear", nil, true},
		{"retain", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.behavior, func(t *testing.T) {
			h := newHarness(t, func(c *config.Config) { c.Common.BehaviorOnFocusOut = tt.behavior })
			h.typeText("aiu")
			h.s.FocusOut()
			assert.Equal(t, tt.commits, h.rec.commits)
			assert.Equal(t, tt.empty, h.s.Buffer().IsEmpty())
		})
	}
}

func TestFocusInRegistersProperties(t *testing.T) {
	h := newHarness(t, nil, func(o *Options) { o.Launcher = &fakeLauncher{} })
	h.s.FocusIn()
	require.NotEmpty(t, h.rec.props)

	names := make([]string, 0, len(h.rec.props))
	for _, p := range h.rec.props {
		names = append(names, p.Key)
	}
	assert.Equal(t, []string{
		InputModeProp, TypingModeProp, SegmentModeProp, DictModeProp,
		DictAdminProp, AddWordProp, SetupProp,
	}, names)
	assert.Equal(t, "あ", h.rec.props[0].Label)
	assert.Len(t, h.rec.props[0].Sub, int(inputModeCount))
	assert.Equal(t, "default", h.rec.props[3].Label)
}

func TestResetAndDisable(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("aiu")
	h.press("space")
	h.s.Reset()
	assert.True(t, h.s.Buffer().IsEmpty())
	assert.Equal(t, convert.Off, h.s.Conversion().Mode())

	h.typeText("ka")
	h.s.Disable()
	assert.True(t, h.s.Buffer().IsEmpty())
	assert.Empty(t, h.rec.commits)
}

func TestReconvert(t *testing.T) {
	h := newHarness(t, nil)
	assert.False(t, h.press("Shift+Henkan"), "no selection")

	h.s.SetSurroundingText("これはにほんごです", 7, 3)
	require.True(t, h.press("Shift+Henkan"))
	assert.Equal(t, convert.Segments, h.s.Conversion().Mode())
	assert.Equal(t, "日本語", h.texts()[0])
}

func TestHelpers(t *testing.T) {
	launcher := &fakeLauncher{}
	h := newHarness(t, nil, func(o *Options) { o.Launcher = launcher })

	require.True(t, h.press("F11"))
	h.s.PropertyActivate(AddWordProp, PropUnchecked)
	assert.Equal(t, []keybind.Command{keybind.DictAdmin, keybind.AddWord}, launcher.launched)

	h.typeText("a")
	h.press("F11")
	assert.Len(t, launcher.launched, 2, "helpers only start on empty input")
}

func TestDictionaryPersonality(t *testing.T) {
	extra, err := dict.Parse([]byte("name: tech\nwords:\n  ヘンカン: [変換器]\n"))
	require.NoError(t, err)
	backend := dict.NewLibrary(dict.Default(), extra).NewBackend(nil, nil)
	h := newHarness(t, nil, func(o *Options) { o.Backend = backend })

	require.True(t, h.press("Alt+Henkan"))
	assert.Equal(t, "tech", backend.Personality())
	prop, ok := h.rec.lastUpdate(DictModeProp)
	require.True(t, ok)
	assert.Equal(t, "tech", prop.Label)

	h.s.PropertyActivate(DictModeProp, PropUnchecked)
	assert.Equal(t, "default", backend.Personality())
}

func TestThumbShiftTyping(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Common.TypingMethod = "thumb_shift" })

	require.True(t, h.s.HandleKeyEvent('k', 0, 0))
	require.True(t, h.s.HandleKeyEvent(keys.Henkan, 0, 0))
	h.s.HandleKeyEvent('k', 0, keys.ModRelease)
	h.s.HandleKeyEvent(keys.Henkan, 0, keys.ModRelease)

	require.True(t, h.s.HandleKeyEvent('j', 0, 0))
	h.sched.Advance(time.Second)
	text, _ := h.s.Buffer().Render(kana.Hiragana, true)
	assert.Equal(t, "のと", text)

	h.s.PropertyActivate("InputMode.Latin", PropChecked)
	h.typeText("x")
	assert.Equal(t, []string{"x"}, h.rec.commits, "latin input bypasses thumb shift")
}

func TestModeSwitchCancelsThumbTimer(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Common.TypingMethod = "thumb_shift" })

	require.True(t, h.s.HandleKeyEvent('j', 0, 0))
	require.Equal(t, 1, h.sched.Pending())
	h.s.PropertyActivate("InputMode.Katakana", PropChecked)
	assert.Zero(t, h.sched.Pending())
	h.sched.Advance(time.Second)
	assert.True(t, h.s.Buffer().IsEmpty())
}

func TestRedrawSkipsUnchangedOutput(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("a")
	h.sched.RunIdle()
	require.Equal(t, 1, h.rec.preeditCalls)

	require.True(t, h.press("End"))
	assert.Equal(t, 1, h.sched.RunIdle())
	assert.Equal(t, 1, h.rec.preeditCalls, "identical preedit is not pushed again")

	h.s.FocusIn()
	h.sched.RunIdle()
	assert.Equal(t, 2, h.rec.preeditCalls, "focus in forces a full redraw")
}

type panicBackend struct {
	*dict.Backend
	armed bool
}

func (p *panicBackend) SetSourceText(text string) error {
	if p.armed {
		panic("backend exploded")
	}
	return p.Backend.SetSourceText(text)
}

func TestPanicRestoresState(t *testing.T) {
	backend := &panicBackend{Backend: dict.NewLibrary(dict.Default()).NewBackend(nil, nil)}
	m := metrics.NewEngineMetrics(metrics.NewRegistry("test"))
	h := newHarness(t, nil, func(o *Options) {
		o.Backend = backend
		o.Metrics = m
	})

	h.typeText("aiu")
	backend.armed = true
	assert.False(t, h.press("space"))
	assert.Equal(t, uint64(1), m.KeysFaulted.Value())

	assert.Equal(t, convert.Off, h.s.Conversion().Mode())
	text, _ := h.s.Buffer().Render(kana.Hiragana, true)
	assert.Equal(t, "あいう", text)
	assert.Empty(t, h.rec.commits)

	backend.armed = false
	require.True(t, h.press("space"))
	require.True(t, h.press("Return"))
	assert.Len(t, h.rec.commits, 1)
	assert.Equal(t, uint64(1), m.Commits.Value())
	assert.Equal(t, uint64(1), m.Conversions.Value())
}

func TestPanicDropsPendingCommits(t *testing.T) {
	backend := &panicBackend{Backend: dict.NewLibrary(dict.Default()).NewBackend(nil, nil)}
	h := newHarness(t, func(c *config.Config) { c.Common.BehaviorOnPeriod = true },
		func(o *Options) { o.Backend = backend })

	h.typeText("nihongo")
	require.True(t, h.press("space"))
	backend.armed = true

	// The period commits the conversion, then converting the period panics.
	h.typeText(".")
	assert.Empty(t, h.rec.commits)
	assert.Equal(t, convert.Segments, h.s.Conversion().Mode())
	assert.Equal(t, "日本語", h.texts()[0])
}

func TestSessionFollowsPreferenceChanges(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("a")

	require.NoError(t, h.shared.Apply([]config.Change{
		{Section: "common", Key: "input_mode", Value: "katakana"},
		{Section: "common", Key: "page_size", Value: 5},
	}))
	assert.Equal(t, Katakana, h.s.InputMode())
	assert.True(t, h.s.Buffer().IsEmpty(), "mode change resets")
	assert.Equal(t, 5, h.s.Conversion().List().PageSize())

	h.s.Close()
	require.NoError(t, h.shared.Apply([]config.Change{
		{Section: "common", Key: "input_mode", Value: "hiragana"},
	}))
	assert.Equal(t, Katakana, h.s.InputMode(), "closed sessions stop listening")
}

func TestThumbChordsFollowPreferences(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Common.TypingMethod = "thumb_shift" })

	require.True(t, h.s.HandleKeyEvent('d', 0, 0))
	require.True(t, h.s.HandleKeyEvent('k', 0, 0))
	assert.Zero(t, h.sched.Pending(), "a chord resolves without waiting")
	text, _ := h.s.Buffer().Render(kana.Hiragana, true)
	assert.Equal(t, "ゔ", text)

	require.NoError(t, h.shared.Apply([]config.Change{
		{Section: "thumb", Key: "chords", Value: map[string]string{"j k": "ゐ"}},
	}))
	require.True(t, h.s.HandleKeyEvent('j', 0, 0))
	require.True(t, h.s.HandleKeyEvent('k', 0, 0))
	h.sched.Advance(time.Second)
	text, _ = h.s.Buffer().Render(kana.Hiragana, true)
	assert.Equal(t, "ゔゐ", text, "configured chords add to the built-in ones")
}

package ime

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"goanthy/internal/config"
	"goanthy/internal/convert"
	"goanthy/internal/eventloop"
	"goanthy/internal/kana"
	"goanthy/internal/keybind"
	"goanthy/internal/keys"
	"goanthy/internal/logging"
	"goanthy/internal/metrics"
	"goanthy/internal/thumb"
)

// Options carry a session's collaborators. Backend and Scheduler are
// required.
type Options struct {
	Backend   convert.Backend
	Scheduler eventloop.Scheduler
	Logger    *logging.Logger
	Metrics   *metrics.EngineMetrics
	Crash     *logging.CrashHandler
	Launcher  Launcher
	// Post runs f on the session's goroutine. Nil runs f immediately.
	Post func(f func())
}

// Session is the per-context input method state. All methods must be
// called from the goroutine that runs the scheduler's callbacks.
type Session struct {
	shared   *Shared
	host     Host
	backend  convert.Backend
	sched    eventloop.Scheduler
	log      *logging.Logger
	metrics  *metrics.EngineMetrics
	crash    *logging.CrashHandler
	launcher Launcher

	buf   *kana.Buffer
	conv  *convert.Machine
	thumb *thumb.Adapter

	input    InputMode
	lastKana InputMode
	typing   kana.TypingMode

	surrounding []rune
	cursorPos   uint32
	anchorPos   uint32

	handlers [keybind.CommandCount]handler

	// inEvent holds commits back until the event completes.
	inEvent bool
	pending []string

	dirty bool
	idle  eventloop.Timer
	shown *frame

	unsubscribe func()
}

// NewSession creates a session configured from shared.
func NewSession(shared *Shared, host Host, opts Options) (*Session, error) {
	if shared == nil || host == nil {
		return nil, errors.New("ime: session needs shared state and a host")
	}
	if opts.Backend == nil || opts.Scheduler == nil {
		return nil, errors.New("ime: session needs a backend and a scheduler")
	}
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}
	log = log.WithComponent("session")

	cfg := shared.Config()
	s := &Session{
		shared:   shared,
		host:     host,
		backend:  opts.Backend,
		sched:    opts.Scheduler,
		log:      log,
		metrics:  opts.Metrics,
		crash:    opts.Crash,
		launcher: opts.Launcher,
	}

	input, err := ParseInputMode(cfg.Common.InputMode)
	if err != nil {
		log.Warn("bad input mode, using hiragana", "error", err)
	}
	typing, err := ParseTypingMode(cfg.Common.TypingMethod)
	if err != nil {
		log.Warn("bad typing method, using romaji", "error", err)
	}
	segMode, err := ParseSegmentMode(cfg.Common.SegmentMode)
	if err != nil {
		log.Warn("bad segment mode, using multi", "error", err)
	}
	s.input, s.typing = input, typing
	s.lastKana = Hiragana
	if input.Kana() {
		s.lastKana = input
	}

	s.buf = kana.NewBuffer(typing)
	s.conv = convert.New(s.buf, opts.Backend, s.emit, convert.Options{
		SegmentMode: segMode,
		PageSize:    cfg.Common.PageSize,
		Normalize:   shared.Normalizer(),
		Logger:      log.Logger,
	})
	s.thumb = thumb.New(shared.Thumb(), thumbHost{s}, guardedScheduler{s}, log.Logger)
	s.handlers = s.commandTable()

	post := opts.Post
	if post == nil {
		post = func(f func()) { f() }
	}
	s.unsubscribe = shared.Subscribe(func(ch config.Change) {
		post(func() { s.ApplyChange(ch) })
	})
	s.metrics.SessionOpened()
	return s, nil
}

// Close detaches the session from the shared state and cancels its timers.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
		s.metrics.SessionClosed()
	}
	s.thumb.Reset()
	if s.idle != nil {
		s.idle.Stop()
		s.idle = nil
	}
}

// InputMode returns the input mode.
func (s *Session) InputMode() InputMode { return s.input }

// TypingMode returns the typing method.
func (s *Session) TypingMode() kana.TypingMode { return s.typing }

// SegmentMode returns the segment flags.
func (s *Session) SegmentMode() convert.SegmentMode { return s.conv.SegmentMode() }

// Conversion exposes the conversion state machine.
func (s *Session) Conversion() *convert.Machine { return s.conv }

// Buffer exposes the raw input buffer.
func (s *Session) Buffer() *kana.Buffer { return s.buf }

type snapshot struct {
	buf      *kana.Buffer
	conv     convert.Snapshot
	segMode  convert.SegmentMode
	input    InputMode
	lastKana InputMode
	typing   kana.TypingMode
}

func (s *Session) snapshot() snapshot {
	return snapshot{
		buf:      s.buf.Clone(),
		conv:     s.conv.Snapshot(),
		segMode:  s.conv.SegmentMode(),
		input:    s.input,
		lastKana: s.lastKana,
		typing:   s.typing,
	}
}

func (s *Session) restore(snap snapshot) {
	*s.buf = *snap.buf
	s.conv.Restore(snap.conv)
	s.conv.SetSegmentMode(snap.segMode)
	s.input, s.lastKana, s.typing = snap.input, snap.lastKana, snap.typing
	s.thumb.Reset()
}

// guard runs one event. Commits are delivered only if f returns normally;
// a panic rolls the session back to its state before the event.
func (s *Session) guard(event string, f func() bool) (handled, faulted bool) {
	if s.inEvent {
		return f(), false
	}
	snap := s.snapshot()
	s.inEvent = true
	defer func() {
		s.inEvent = false
		pending := s.pending
		s.pending = nil
		if r := recover(); r != nil {
			s.restore(snap)
			s.fault(event, r)
			handled, faulted = false, true
			return
		}
		for _, text := range pending {
			s.commit(text)
		}
	}()
	return f(), false
}

func (s *Session) fault(event string, r any) {
	info := map[string]string{
		"event":      event,
		"input_mode": s.input.String(),
		"typing":     s.typing.String(),
		"conversion": s.conv.Mode().String(),
	}
	if s.crash != nil {
		s.crash.HandlePanic(r, info)
	} else {
		s.log.Error("event faulted", "event", event, "panic", fmt.Sprint(r))
	}
	s.invalidate()
}

func (s *Session) emit(text string) {
	if text == "" {
		return
	}
	if s.inEvent {
		s.pending = append(s.pending, text)
		return
	}
	s.commit(text)
}

func (s *Session) commit(text string) {
	s.log.Debug("commit", "commit", text)
	s.host.CommitText(text)
	s.metrics.Commit()
}

// HandleKeyEvent processes one key event and reports whether it was
// consumed.
func (s *Session) HandleKeyEvent(keyval, keycode uint32, state keys.Modifier) bool {
	start := time.Now()
	handled, faulted := s.guard("key", func() bool {
		return s.processKey(keyval, keycode, state)
	})
	s.metrics.KeyEvent(handled, faulted, time.Since(start))
	return handled
}

func (s *Session) processKey(keyval, keycode uint32, state keys.Modifier) bool {
	cfg := s.shared.Config()
	release := state.Has(keys.ModRelease)
	k := keys.Normalize(keyval, state, keys.Options{RemapKeypad: cfg.Common.TenKeyMode})

	if s.typing == kana.ThumbShift && s.input.Kana() {
		return s.thumb.Process(k, release)
	}
	if release || keys.IsModifier(k.Keyval) {
		return false
	}
	if s.exec(k) {
		return true
	}
	if k.Mods&(keys.ModControl|keys.ModAlt) != 0 {
		return false
	}

	if keys.IsPrintable(k.Keyval) {
		kv := k.Keyval
		if s.typing == kana.Kana {
			switch {
			case kv == '0' && k.Mods == keys.ModShift:
				kv = keys.Asciitilde
			case kv == keys.Backslash && (keycode == 124 || keycode == 125):
				kv = keys.Yen
			}
		}
		return s.insertChar(keys.KeyvalToRune(kv))
	}
	return !s.buf.IsEmpty()
}

// exec runs the commands bound to k until one handles it.
func (s *Session) exec(k keys.Key) bool {
	for _, cmd := range s.shared.Bindings().Lookup(k) {
		if s.run(cmd) {
			s.log.Debug("command", "key", k.String(), "command", cmd.String())
			return true
		}
	}
	return false
}

// insertChar is the common insertion path for typed characters.
func (s *Session) insertChar(r rune) bool {
	switch s.input {
	case Latin:
		s.emit(string(r))
		return true
	case WideLatin:
		s.emit(kana.ToWide(string(r)))
		return true
	}
	s.conv.CommitForInput()
	s.buf.Insert(r)
	return s.afterInsert(string(r))
}

// insertKana inserts text already transliterated by the thumb-shift
// layout.
func (s *Session) insertKana(text string) {
	s.conv.CommitForInput()
	s.buf.InsertKana(text)
	s.afterInsert(text)
}

func (s *Session) afterInsert(text string) bool {
	if s.conv.SegmentMode()&convert.Immediate != 0 && s.conv.Begin() {
		s.metrics.Conversion()
	}
	s.invalidate()
	if s.shared.Config().Common.BehaviorOnPeriod && strings.ContainsAny(text, ",.、。") {
		s.run(keybind.Convert)
	}
	return true
}

// ApplyChange reacts to a preference change.
func (s *Session) ApplyChange(ch config.Change) {
	cfg := s.shared.Config()
	switch {
	case ch.Section == "common" && ch.Key == "input_mode":
		if m, err := ParseInputMode(cfg.Common.InputMode); err == nil {
			s.setInputMode(m)
		}
	case ch.Section == "common" && ch.Key == "typing_method":
		if m, err := ParseTypingMode(cfg.Common.TypingMethod); err == nil {
			s.setTypingMode(m)
		}
	case ch.Section == "common" && ch.Key == "segment_mode":
		if m, err := ParseSegmentMode(cfg.Common.SegmentMode); err == nil {
			s.setSegmentMode(m)
		}
	case ch.Section == "common" && ch.Key == "page_size":
		s.conv.SetPageSize(cfg.Common.PageSize)
		s.invalidate()
	case ch.Section == "common" && ch.Key == "normalization":
		s.conv.SetNormalizer(s.shared.Normalizer())
	case ch.Section == "thumb":
		s.thumb.SetConfig(s.shared.Thumb())
	}
}

// reset clears all composition state and cancels timers.
func (s *Session) reset() {
	s.thumb.Reset()
	s.conv.Reset()
	s.invalidate()
}

// FocusIn registers the panel properties and redraws everything.
func (s *Session) FocusIn() {
	s.host.RegisterProperties(s.properties())
	s.shown = nil
	s.invalidate()
}

// FocusOut applies the configured focus-out behaviour.
func (s *Session) FocusOut() {
	s.guard("focus_out", func() bool {
		s.thumb.Reset()
		switch s.shared.Config().Common.BehaviorOnFocusOut {
		case "commit":
			s.conv.Commit(s.input.Form())
			s.reset()
		case "clear":
			s.reset()
		default:
			s.invalidate()
		}
		return true
	})
}

// Reset clears all state.
func (s *Session) Reset() {
	s.reset()
}

// Disable clears all state when the engine is switched off.
func (s *Session) Disable() {
	s.reset()
}

// SetSurroundingText records the text around the cursor; the selection
// between anchor and cursor seeds reconversion.
func (s *Session) SetSurroundingText(text string, cursorPos, anchorPos uint32) {
	s.surrounding = []rune(text)
	s.cursorPos, s.anchorPos = cursorPos, anchorPos
}

func (s *Session) selection() string {
	lo, hi := min(s.cursorPos, s.anchorPos), max(s.cursorPos, s.anchorPos)
	if int(hi) > len(s.surrounding) {
		return ""
	}
	return string(s.surrounding[lo:hi])
}

// CandidateClicked selects entry index of the visible page.
func (s *Session) CandidateClicked(index, button, state uint32) {
	if index > 9 {
		return
	}
	s.guard("candidate_clicked", func() bool {
		return s.run(keybind.SelectCandidates1 + keybind.Command(index))
	})
}

// PageUp moves the candidate window one page up.
func (s *Session) PageUp() { s.lookupEvent("page_up", s.conv.PageUp) }

// PageDown moves the candidate window one page down.
func (s *Session) PageDown() { s.lookupEvent("page_down", s.conv.PageDown) }

// CursorUp moves the candidate cursor up.
func (s *Session) CursorUp() { s.lookupEvent("cursor_up", s.conv.CursorUp) }

// CursorDown moves the candidate cursor down.
func (s *Session) CursorDown() { s.lookupEvent("cursor_down", s.conv.CursorDown) }

func (s *Session) lookupEvent(name string, f func() bool) {
	s.guard(name, func() bool {
		if f() {
			s.invalidate()
			return true
		}
		return false
	})
}

// invalidate schedules one idle redraw.
func (s *Session) invalidate() {
	s.dirty = true
	if s.idle == nil {
		s.idle = s.sched.Idle(s.redraw)
	}
}

type preedit struct {
	text    string
	attrs   []Attribute
	cursor  uint32
	visible bool
}

type aux struct {
	text    string
	visible bool
}

type frame struct {
	preedit      preedit
	aux          aux
	table        LookupTable
	tableVisible bool
}

func (s *Session) redraw() {
	s.idle = nil
	if !s.dirty {
		return
	}
	s.dirty = false

	f := s.render()
	prev := s.shown
	if prev == nil || !reflect.DeepEqual(prev.preedit, f.preedit) {
		s.host.UpdatePreedit(f.preedit.text, f.preedit.attrs, f.preedit.cursor, f.preedit.visible)
	}
	if prev == nil || prev.aux != f.aux {
		s.host.UpdateAuxiliaryText(f.aux.text, f.aux.visible)
	}
	if prev == nil || prev.tableVisible != f.tableVisible || !reflect.DeepEqual(prev.table, f.table) {
		s.host.UpdateLookupTable(f.table, f.tableVisible)
	}
	s.shown = &f
}

func (s *Session) render() frame {
	list := s.conv.List()
	f := frame{
		table: LookupTable{
			Candidates:    slices.Clone(list.Items()),
			PageSize:      list.PageSize(),
			Cursor:        list.Cursor(),
			CursorVisible: true,
		},
		tableVisible: list.Visible(),
	}

	switch mode := s.conv.Mode(); mode {
	case convert.Off:
		text, cursor := s.buf.Render(s.input.Form(), false)
		n := uint32(utf8.RuneCountInString(text))
		f.preedit = preedit{
			text:    text,
			attrs:   []Attribute{{Type: AttrUnderline, Value: UnderlineSingle, Start: 0, End: n}},
			cursor:  uint32(cursor),
			visible: !s.buf.IsEmpty(),
		}
	case convert.Segments, convert.Prediction:
		var sb strings.Builder
		var pos, size uint32
		for i, seg := range s.conv.Segments() {
			n := uint32(utf8.RuneCountInString(seg.Text))
			switch {
			case i < s.conv.Cursor():
				pos += n
			case i == s.conv.Cursor():
				size = n
			}
			sb.WriteString(seg.Text)
		}
		text := sb.String()
		f.preedit = preedit{
			text:    text,
			attrs:   highlight(uint32(utf8.RuneCountInString(text)), pos, pos+size),
			cursor:  pos,
			visible: true,
		}
		f.aux = aux{
			text:    fmt.Sprintf("( %d / %d )", list.Cursor()+1, list.Len()),
			visible: list.Visible(),
		}
	default:
		text := s.conv.Text()
		n := uint32(utf8.RuneCountInString(text))
		f.preedit = preedit{text: text, attrs: highlight(n, 0, n), cursor: n, visible: true}
	}
	return f
}

// highlight underlines [0, n) and marks [start, end) as the active part.
func highlight(n, start, end uint32) []Attribute {
	return []Attribute{
		{Type: AttrUnderline, Value: UnderlineSingle, Start: 0, End: n},
		{Type: AttrBackground, Value: ActiveSegmentColor, Start: start, End: end},
		{Type: AttrForeground, Value: RGB(0, 0, 0), Start: start, End: end},
	}
}

// thumbHost feeds the thumb-shift adapter's output into the session.
type thumbHost struct{ s *Session }

func (h thumbHost) Insert(text string) { h.s.insertKana(text) }

func (h thumbHost) Exec(k keys.Key) bool { return h.s.exec(k) }

func (h thumbHost) PreeditEmpty() bool { return h.s.buf.IsEmpty() }

// guardedScheduler runs timer callbacks as session events.
type guardedScheduler struct{ s *Session }

func (g guardedScheduler) AfterFunc(d time.Duration, f func()) eventloop.Timer {
	return g.s.sched.AfterFunc(d, func() {
		g.s.guard("timer", func() bool {
			f()
			return true
		})
	})
}

func (g guardedScheduler) Idle(f func()) eventloop.Timer {
	return g.s.sched.Idle(f)
}

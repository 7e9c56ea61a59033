// Package convert implements the conversion state machine: it owns the
// conversion mode, the segment list and the active segment, and drives the
// candidate list and conversion backend together.
package convert

import (
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"goanthy/internal/candidate"
	"goanthy/internal/kana"
)

// Options configure a Machine.
type Options struct {
	SegmentMode SegmentMode
	PageSize    int
	// Normalize rewrites hiragana before it reaches the backend. Nil leaves
	// the text unchanged.
	Normalize func(string) string
	Logger    *slog.Logger
}

// Machine is the segment state machine. It is not safe for concurrent use.
type Machine struct {
	buf     Buffer
	backend Backend
	list    *candidate.List
	emit    func(string)

	segMode   SegmentMode
	normalize func(string) string
	log       *slog.Logger

	mode     Mode
	segments []Segment
	cursor   int
	// offset counts backend segments already committed by a partial commit.
	offset int
}

// New creates a machine in Off mode. emit receives committed text.
func New(buf Buffer, backend Backend, emit func(string), opts Options) *Machine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Machine{
		buf:       buf,
		backend:   backend,
		list:      candidate.New(opts.PageSize),
		emit:      emit,
		segMode:   opts.SegmentMode,
		normalize: opts.Normalize,
		log:       log,
	}
}

// Mode returns the conversion mode.
func (m *Machine) Mode() Mode { return m.mode }

// Segments returns a copy of the segment list.
func (m *Machine) Segments() []Segment { return slices.Clone(m.segments) }

// Cursor returns the active segment index.
func (m *Machine) Cursor() int { return m.cursor }

// List returns the candidate list.
func (m *Machine) List() *candidate.List { return m.list }

// SegmentMode returns the segment flags.
func (m *Machine) SegmentMode() SegmentMode { return m.segMode }

// SetSegmentMode changes the segment flags.
func (m *Machine) SetSegmentMode(s SegmentMode) { m.segMode = s }

// SetPageSize changes the candidate page size.
func (m *Machine) SetPageSize(n int) { m.list.SetPageSize(n) }

// SetNormalizer replaces the input normalization function.
func (m *Machine) SetNormalizer(f func(string) string) { m.normalize = f }

// Snapshot captures the machine state for Restore.
type Snapshot struct {
	mode     Mode
	segments []Segment
	cursor   int
	offset   int
	list     *candidate.List
}

// Snapshot captures the current state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		mode:     m.mode,
		segments: slices.Clone(m.segments),
		cursor:   m.cursor,
		offset:   m.offset,
		list:     m.list.Clone(),
	}
}

// Restore rolls the machine back to s.
func (m *Machine) Restore(s Snapshot) {
	m.mode = s.mode
	m.segments = s.segments
	m.cursor = s.cursor
	m.offset = s.offset
	m.list = s.list
}

func (m *Machine) source() string {
	text, _ := m.buf.Render(kana.Hiragana, true)
	if m.normalize != nil {
		text = m.normalize(text)
	}
	return text
}

func (m *Machine) segmentCount() int {
	return m.backend.SegmentCount() - m.offset
}

// derive reads segments [from, count) from the backend at their top
// candidate.
func (m *Machine) derive(from int) []Segment {
	n := m.segmentCount()
	out := make([]Segment, 0, max(n-from, 0))
	for i := from; i < n; i++ {
		out = append(out, Segment{Choice: Candidate(0), Text: m.backend.CandidateText(m.offset+i, 0)})
	}
	return out
}

// Begin starts segment conversion of the buffer.
func (m *Machine) Begin() bool {
	if m.buf.IsEmpty() {
		return false
	}
	if m.segMode&Immediate != 0 {
		m.End()
	}
	if m.mode == Segments {
		return true
	}

	text := m.source()
	if err := m.backend.SetSourceText(text); err != nil {
		m.log.Warn("set conversion source", "error", err)
		return false
	}
	if m.segMode&Single != 0 {
		m.joinAll(utf8.RuneCountInString(text))
	}
	if m.backend.SegmentCount() == 0 {
		return false
	}

	m.offset = 0
	m.mode = Segments
	m.segments = m.derive(0)
	m.cursor = 0
	if m.segMode&Immediate != 0 {
		m.cursor = len(m.segments) - 1
	}
	m.fill()
	return true
}

// joinAll grows the first segment until it spans the whole source.
func (m *Machine) joinAll(limit int) {
	for i := 0; i < limit && m.backend.SegmentCount() > 1; i++ {
		m.backend.ResizeSegment(0, 1)
	}
}

// End discards the conversion and returns to raw input editing. The buffer
// is left untouched.
func (m *Machine) End() {
	m.mode = Off
	m.segments = nil
	m.cursor = 0
	m.offset = 0
	m.list.Clear()
}

// Reset ends any conversion and empties the buffer.
func (m *Machine) Reset() {
	m.End()
	m.buf.Reset()
}

func (m *Machine) fill() {
	if m.mode == Prediction {
		m.list.Fill(m.backend.Predictions())
		return
	}
	seg := m.offset + m.cursor
	n := m.backend.CandidateCount(seg)
	items := make([]string, n)
	for i := range items {
		items[i] = m.backend.CandidateText(seg, i)
	}
	m.list.Fill(items)
}

// Text returns the concatenated preedit text of the current conversion.
func (m *Machine) Text() string {
	switch {
	case m.mode == Segments || m.mode == Prediction:
		var sb strings.Builder
		for _, s := range m.segments {
			sb.WriteString(s.Text)
		}
		return sb.String()
	case m.mode.Direct():
		return m.directText()
	}
	return ""
}

func (m *Machine) directText() string {
	text, _ := m.buf.Render(m.mode.Form(), true)
	return applyCase(m.mode, text)
}

func applyCase(mode Mode, s string) string {
	switch mode {
	case LatinLower, WideLatinLower:
		return strings.ToLower(s)
	case LatinUpper, WideLatinUpper:
		return strings.ToUpper(s)
	case LatinCapitalized, WideLatinCapitalized:
		return capitalize(s)
	}
	return s
}

// capitalize upper-cases the first character and lower-cases the rest.
func capitalize(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}

// Commit emits the current text and resets to Off. In Off the buffer is
// committed rendered as form.
func (m *Machine) Commit(form kana.Form) bool {
	if m.buf.IsEmpty() && m.mode == Off {
		return false
	}

	var text string
	switch {
	case m.mode == Off:
		text, _ = m.buf.Render(form, true)
	case m.mode == Segments:
		for i, s := range m.segments {
			if err := m.backend.CommitSegment(m.offset+i, s.Choice); err != nil {
				m.log.Warn("commit segment", "segment", m.offset+i, "error", err)
			}
		}
		text = m.Text()
	case m.mode == Prediction:
		if i, ok := m.segments[0].Choice.Index(); ok {
			if err := m.backend.CommitPrediction(i); err != nil {
				m.log.Warn("commit prediction", "index", i, "error", err)
			}
		}
		text = m.Text()
	default:
		text = m.directText()
	}

	m.Reset()
	m.emit(text)
	return true
}

// CommitForInput commits a pending conversion before new input is
// inserted. Immediate mode keeps the conversion.
func (m *Machine) CommitForInput() {
	if m.segMode&Immediate != 0 || m.mode == Off {
		return
	}
	m.Commit(kana.Hiragana)
}

// PartialCommit commits segments [0, n] one by one and keeps converting
// the rest.
func (m *Machine) PartialCommit(n int) bool {
	if m.mode != Segments || n < 0 || n >= len(m.segments) {
		return false
	}

	consumed := 0
	for i := 0; i <= n; i++ {
		seg := m.offset + i
		if err := m.backend.CommitSegment(seg, m.segments[i].Choice); err != nil {
			m.log.Warn("commit segment", "segment", seg, "error", err)
		}
		consumed += utf8.RuneCountInString(m.backend.SegmentView(seg, Unconverted))
		m.emit(m.segments[i].Text)
	}
	m.buf.DropPrefix(consumed)
	m.segments = slices.Clone(m.segments[n+1:])
	m.offset += n + 1

	if len(m.segments) == 0 {
		m.Reset()
		return true
	}
	if m.cursor > n {
		m.cursor -= n + 1
	} else {
		m.cursor = 0
	}
	m.fill()
	return true
}

// SelectSegment makes segment i active. Out-of-range requests are
// accepted without effect.
func (m *Machine) SelectSegment(i int) bool {
	if i >= 0 && i < len(m.segments) && i != m.cursor {
		m.cursor = i
		m.fill()
	}
	return true
}

// SelectNextSegment moves to the following segment.
func (m *Machine) SelectNextSegment() bool { return m.SelectSegment(m.cursor + 1) }

// SelectPrevSegment moves to the preceding segment.
func (m *Machine) SelectPrevSegment() bool { return m.SelectSegment(m.cursor - 1) }

// SelectFirstSegment moves to the first segment.
func (m *Machine) SelectFirstSegment() bool { return m.SelectSegment(0) }

// SelectLastSegment moves to the last segment.
func (m *Machine) SelectLastSegment() bool { return m.SelectSegment(len(m.segments) - 1) }

// Resize grows or shrinks the active segment by delta characters and
// re-derives it and every following segment.
func (m *Machine) Resize(delta int) bool {
	if m.mode != Segments {
		return false
	}
	m.backend.ResizeSegment(m.offset+m.cursor, delta)
	m.segments = append(m.segments[:m.cursor:m.cursor], m.derive(m.cursor)...)
	if m.cursor >= len(m.segments) {
		m.cursor = max(len(m.segments)-1, 0)
	}
	m.fill()
	return true
}

func (m *Machine) converting() bool {
	return m.mode == Segments || m.mode == Prediction
}

func (m *Machine) takeListChoice() {
	i, text, ok := m.list.Current()
	if !ok {
		return
	}
	m.segments[m.cursor] = Segment{Choice: Candidate(i), Text: text}
}

// CandidateNext reveals the candidate list and moves to the next candidate.
func (m *Machine) CandidateNext() bool {
	if m.buf.IsEmpty() {
		return false
	}
	m.list.Show()
	if m.converting() && m.list.CursorDown() {
		m.takeListChoice()
	}
	return true
}

// CandidatePrev reveals the candidate list and moves to the previous one.
func (m *Machine) CandidatePrev() bool {
	if m.buf.IsEmpty() {
		return false
	}
	m.list.Show()
	if m.converting() && m.list.CursorUp() {
		m.takeListChoice()
	}
	return true
}

// CursorDown moves the candidate cursor without revealing the list.
func (m *Machine) CursorDown() bool {
	if !m.converting() || !m.list.CursorDown() {
		return false
	}
	m.takeListChoice()
	return true
}

// CursorUp moves the candidate cursor without revealing the list.
func (m *Machine) CursorUp() bool {
	if !m.converting() || !m.list.CursorUp() {
		return false
	}
	m.takeListChoice()
	return true
}

// PageDown moves the visible candidate list one page down.
func (m *Machine) PageDown() bool {
	if m.buf.IsEmpty() {
		return false
	}
	if m.list.Visible() && m.converting() && m.list.PageDown() {
		m.takeListChoice()
	}
	return true
}

// PageUp moves the visible candidate list one page up.
func (m *Machine) PageUp() bool {
	if m.buf.IsEmpty() {
		return false
	}
	if m.list.Visible() && m.converting() && m.list.PageUp() {
		m.takeListChoice()
	}
	return true
}

// SelectInPage picks entry i of the visible page, hides the list and moves
// on to the next segment.
func (m *Machine) SelectInPage(i int) bool {
	if !m.converting() || !m.list.Visible() || !m.list.Select(i) {
		return false
	}
	m.takeListChoice()
	m.list.Hide()
	if m.mode == Segments && m.cursor+1 < len(m.segments) {
		m.cursor++
		m.fill()
	}
	return true
}

// SelectLastInPage picks the last entry of the visible page.
func (m *Machine) SelectLastInPage() bool {
	page, _ := m.list.Page()
	return m.SelectInPage(len(page) - 1)
}

// Backspace steps back out of the conversion: a visible list resets to
// the top candidate, a converted segment reverts to its reading, and
// anything else ends the conversion.
func (m *Machine) Backspace() bool {
	switch {
	case m.mode == Off:
		return false
	case m.mode.Direct():
		m.End()
	case m.list.Visible():
		m.list.SetCursor(0)
		m.takeListChoice()
		m.list.Hide()
	case m.mode == Segments && !m.segments[m.cursor].Choice.Is(Unconverted):
		m.segments[m.cursor] = Segment{
			Choice: Phonetic(Unconverted),
			Text:   m.backend.SegmentView(m.offset+m.cursor, Unconverted),
		}
	default:
		m.End()
	}
	return true
}

// Predict replaces the buffer view with the backend's top prediction.
func (m *Machine) Predict() bool {
	if m.buf.IsEmpty() {
		return false
	}
	if err := m.backend.SetPredictionText(m.source()); err != nil {
		m.log.Warn("set prediction source", "error", err)
		return false
	}
	preds := m.backend.Predictions()
	if len(preds) == 0 {
		return false
	}
	m.End()
	m.mode = Prediction
	m.segments = []Segment{{Choice: Candidate(0), Text: preds[0]}}
	m.fill()
	return true
}

// SetDirect switches to a direct rendering. Repeating a latin or
// wide-latin request advances its case cycle.
func (m *Machine) SetDirect(target Mode) bool {
	if m.buf.IsEmpty() || !target.Direct() {
		return false
	}
	if m.converting() {
		m.End()
	}

	switch {
	case target.Latin() && m.mode.Latin(), target.WideLatin() && m.mode.WideLatin():
		m.mode = m.mode.nextCase()
	case target.Latin(), target.WideLatin():
		m.mode = target
		if raw, _ := m.buf.Render(target.Form(), true); raw == strings.ToLower(raw) {
			m.mode = m.mode.skipAsTyped()
		}
	default:
		m.mode = target
	}
	return true
}

// CharTypeForward moves to the next character type, per segment while
// converting.
func (m *Machine) CharTypeForward() bool {
	if m.mode == Segments {
		c := m.segments[m.cursor].Choice
		switch {
		case c.Is(HiraganaView):
			return m.SegmentToView(KatakanaView)
		case c.Is(KatakanaView):
			return m.SegmentToView(HalfKatakanaView)
		case c.Is(HalfKatakanaView):
			return m.SegmentToView(LatinView)
		case c.Is(LatinView):
			return m.SegmentToView(WideLatinView)
		}
		return m.SegmentToView(HiraganaView)
	}
	return m.SetDirect(m.mode.Forward())
}

// CharTypeBackward moves to the previous character type.
func (m *Machine) CharTypeBackward() bool {
	if m.mode == Segments {
		c := m.segments[m.cursor].Choice
		switch {
		case c.Is(KatakanaView):
			return m.SegmentToView(HiraganaView)
		case c.Is(HalfKatakanaView):
			return m.SegmentToView(KatakanaView)
		case c.Is(LatinView):
			return m.SegmentToView(HalfKatakanaView)
		case c.Is(WideLatinView):
			return m.SegmentToView(LatinView)
		}
		return m.SegmentToView(WideLatinView)
	}
	return m.SetDirect(m.mode.Backward())
}

// SegmentToView shows the active segment in a phonetic view.
func (m *Machine) SegmentToView(v View) bool {
	if m.mode != Segments {
		return false
	}
	var text string
	switch v {
	case LatinView, WideLatinView:
		text = m.segmentLatin(v)
	default:
		text = m.backend.SegmentView(m.offset+m.cursor, v)
	}
	m.segments[m.cursor] = Segment{Choice: Phonetic(v), Text: text}
	m.list.Hide()
	return true
}

// segmentLatin returns the typed characters of the active segment, cycling
// their case when the segment already shows v.
func (m *Machine) segmentLatin(v View) string {
	start := 0
	for i := 0; i < m.cursor; i++ {
		start += utf8.RuneCountInString(m.backend.SegmentView(m.offset+i, Unconverted))
	}
	end := start + utf8.RuneCountInString(m.backend.SegmentView(m.offset+m.cursor, Unconverted))

	raw := m.buf.Raw(start, end)
	if v == WideLatinView {
		raw = kana.ToWide(raw)
	}
	cur := m.segments[m.cursor]
	if !cur.Choice.Is(v) {
		return raw
	}
	switch s := cur.Text; {
	case s == strings.ToLower(raw):
		return strings.ToUpper(raw)
	case s == strings.ToUpper(raw):
		return capitalize(raw)
	case s == raw, s == capitalize(raw):
		return strings.ToLower(raw)
	}
	return raw
}

// ToHiragana renders the active segment, or the whole buffer, as hiragana.
func (m *Machine) ToHiragana() bool {
	if m.mode == Segments {
		return m.SegmentToView(HiraganaView)
	}
	return m.SetDirect(Hiragana)
}

// ToKatakana renders as katakana.
func (m *Machine) ToKatakana() bool {
	if m.mode == Segments {
		return m.SegmentToView(KatakanaView)
	}
	return m.SetDirect(Katakana)
}

// ToHalfKatakana renders as half-width katakana.
func (m *Machine) ToHalfKatakana() bool {
	if m.mode == Segments {
		return m.SegmentToView(HalfKatakanaView)
	}
	return m.SetDirect(HalfKatakana)
}

// ToHalf renders as the half-width form of the current rendering: latin
// stays latin, anything else becomes half-width katakana.
func (m *Machine) ToHalf() bool {
	if m.mode == Segments {
		c := m.segments[m.cursor].Choice
		if c.Is(LatinView) || c.Is(WideLatinView) {
			return m.SegmentToView(LatinView)
		}
		return m.SegmentToView(HalfKatakanaView)
	}
	if m.mode.Latin() || m.mode.WideLatin() {
		return m.SetDirect(LatinAsTyped)
	}
	return m.SetDirect(HalfKatakana)
}

// ToLatin renders as latin.
func (m *Machine) ToLatin() bool {
	if m.mode == Segments {
		return m.SegmentToView(LatinView)
	}
	return m.SetDirect(LatinAsTyped)
}

// ToWideLatin renders as wide latin.
func (m *Machine) ToWideLatin() bool {
	if m.mode == Segments {
		return m.SegmentToView(WideLatinView)
	}
	return m.SetDirect(WideLatinAsTyped)
}

// Reconvert seeds a conversion from already committed text. The text
// replaces the buffer contents.
func (m *Machine) Reconvert(text string, insert func(string)) bool {
	if text == "" {
		return false
	}
	m.Reset()
	insert(text)
	return m.Begin()
}

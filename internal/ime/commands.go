package ime

import (
	"goanthy/internal/convert"
	"goanthy/internal/kana"
	"goanthy/internal/keybind"
)

// gate is the set of session states a command may run in.
type gate uint8

const (
	gateEmpty gate = 1 << iota
	gateInput
	gateSegments
	gatePrediction
	gateDirect
	gateCandidates

	gateEditing = gateInput | gateSegments | gatePrediction | gateDirect | gateCandidates
)

type handler struct {
	gate gate
	fn   func() bool
}

// state returns the gate bit matching the current session state.
func (s *Session) state() gate {
	if s.conv.List().Visible() {
		return gateCandidates
	}
	switch mode := s.conv.Mode(); {
	case mode == convert.Segments:
		return gateSegments
	case mode == convert.Prediction:
		return gatePrediction
	case mode.Direct():
		return gateDirect
	case s.buf.IsEmpty():
		return gateEmpty
	}
	return gateInput
}

// run executes cmd if its gate admits the current state.
func (s *Session) run(cmd keybind.Command) bool {
	if int(cmd) < 0 || int(cmd) >= keybind.CommandCount {
		return false
	}
	h := s.handlers[cmd]
	if h.fn == nil || (h.gate != 0 && h.gate&s.state() == 0) {
		return false
	}
	if !h.fn() {
		return false
	}
	s.invalidate()
	return true
}

func (s *Session) commandTable() [keybind.CommandCount]handler {
	var t [keybind.CommandCount]handler
	set := func(g gate, fn func() bool, cmds ...keybind.Command) {
		for _, c := range cmds {
			t[c] = handler{gate: g, fn: fn}
		}
	}

	set(gateEmpty, s.onOff, keybind.OnOff)
	set(gateEmpty, s.circleInputMode, keybind.CircleInputMode)
	set(gateEmpty, s.circleKanaMode, keybind.CircleKanaMode)
	set(gateEmpty, s.inputModeCmd(Latin), keybind.LatinMode)
	set(gateEmpty, s.inputModeCmd(WideLatin), keybind.WideLatinMode)
	set(gateEmpty, s.inputModeCmd(Hiragana), keybind.HiraganaMode)
	set(gateEmpty, s.inputModeCmd(Katakana), keybind.KatakanaMode)
	set(gateEmpty, s.inputModeCmd(HalfKatakana), keybind.HalfKatakana)
	set(gateEmpty, s.circleTypingMethod, keybind.CircleTypingMethod)
	set(gateEmpty, s.circleDictMethod, keybind.CircleDictMethod)

	set(gateEmpty, func() bool { return s.space(s.halfSpace()) }, keybind.InsertSpace)
	set(gateEmpty, func() bool { return s.space(!s.halfSpace()) }, keybind.InsertAlternateSpace)
	set(gateEmpty, func() bool { return s.space(true) }, keybind.InsertHalfSpace)
	set(gateEmpty, func() bool { return s.space(false) }, keybind.InsertWideSpace)

	set(gateEditing, s.backspace, keybind.Backspace)
	set(gateEditing, s.delete, keybind.Delete)
	set(gateEditing, func() bool { return s.conv.Commit(s.input.Form()) }, keybind.Commit)
	set(gateInput|gateDirect, s.convert, keybind.Convert)
	set(gateInput|gateDirect, s.predict, keybind.Predict)
	set(gateEditing, s.cancel, keybind.Cancel)
	set(gateEditing, s.cancelAll, keybind.CancelAll)
	set(0, s.reconvert, keybind.Reconvert)

	set(gateInput, s.moveCaret(-1, true), keybind.MoveCaretFirst)
	set(gateInput, s.moveCaret(1, true), keybind.MoveCaretLast)
	set(gateInput, s.moveCaret(1, false), keybind.MoveCaretForward)
	set(gateInput, s.moveCaret(-1, false), keybind.MoveCaretBackward)

	segs := gateSegments | gateCandidates
	set(segs, s.segmentCmd(s.conv.SelectFirstSegment), keybind.SelectFirstSegment)
	set(segs, s.segmentCmd(s.conv.SelectLastSegment), keybind.SelectLastSegment)
	set(segs, s.segmentCmd(s.conv.SelectNextSegment), keybind.SelectNextSegment)
	set(segs, s.segmentCmd(s.conv.SelectPrevSegment), keybind.SelectPrevSegment)
	set(segs, func() bool { return s.conv.Resize(-1) }, keybind.ShrinkSegment)
	set(segs, func() bool { return s.conv.Resize(1) }, keybind.ExpandSegment)
	set(segs, func() bool { return s.conv.PartialCommit(0) }, keybind.CommitFirstSegment)
	set(segs, func() bool { return s.conv.PartialCommit(s.conv.Cursor()) }, keybind.CommitSelectedSegment)

	set(gateCandidates, func() bool { return s.conv.SelectInPage(0) }, keybind.SelectFirstCandidate)
	set(gateCandidates, s.conv.SelectLastInPage, keybind.SelectLastCandidate)
	cands := gateSegments | gatePrediction | gateCandidates
	set(cands, s.conv.CandidateNext, keybind.SelectNextCandidate)
	set(cands, s.conv.CandidatePrev, keybind.SelectPrevCandidate)
	set(gateCandidates, s.conv.PageUp, keybind.CandidatesPageUp)
	set(gateCandidates, s.conv.PageDown, keybind.CandidatesPageDown)
	for c := keybind.SelectCandidates1; c <= keybind.SelectCandidates0; c++ {
		i, _ := c.CandidateDigit()
		set(gateCandidates, func() bool { return s.conv.SelectInPage(i) }, c)
	}

	set(gateEditing, s.conv.CharTypeForward, keybind.ConvertToCharTypeForward)
	set(gateEditing, s.conv.CharTypeBackward, keybind.ConvertToCharTypeBackward)
	set(gateEditing, s.conv.ToHiragana, keybind.ConvertToHiragana)
	set(gateEditing, s.conv.ToKatakana, keybind.ConvertToKatakana)
	set(gateEditing, s.conv.ToHalf, keybind.ConvertToHalf)
	set(gateEditing, s.conv.ToHalfKatakana, keybind.ConvertToHalfKatakana)
	set(gateEditing, s.conv.ToWideLatin, keybind.ConvertToWideLatin)
	set(gateEditing, s.conv.ToLatin, keybind.ConvertToLatin)

	for _, c := range []keybind.Command{keybind.DictAdmin, keybind.AddWord, keybind.StartSetup} {
		set(gateEmpty, s.launchCmd(c), c)
	}
	return t
}

func (s *Session) onOff() bool {
	if s.input == Latin {
		s.setInputMode(s.lastKana)
	} else {
		s.setInputMode(Latin)
	}
	return true
}

func (s *Session) circleInputMode() bool {
	s.setInputMode((s.input + 1) % inputModeCount)
	return true
}

func (s *Session) circleKanaMode() bool {
	next := Hiragana
	if s.input.Kana() {
		next = (s.input + 1) % (HalfKatakana + 1)
	}
	s.setInputMode(next)
	return true
}

func (s *Session) inputModeCmd(m InputMode) func() bool {
	return func() bool {
		s.setInputMode(m)
		return true
	}
}

func (s *Session) circleTypingMethod() bool {
	s.setTypingMode((s.typing + 1) % kana.TypingMode(len(typingModes)))
	return true
}

// personalities is implemented by backends with switchable dictionaries.
type personalities interface {
	Personality() string
	CyclePersonality() string
}

func (s *Session) circleDictMethod() bool {
	p, ok := s.backend.(personalities)
	if !ok {
		return false
	}
	name := p.CyclePersonality()
	s.log.Info("dictionary personality", "personality", name)
	s.host.UpdateProperty(s.dictProperty())
	return true
}

func (s *Session) halfSpace() bool {
	return s.shared.Config().Common.HalfWidthSpace || s.input == Latin || s.input == HalfKatakana
}

func (s *Session) space(half bool) bool {
	if half {
		s.emit(" ")
	} else {
		s.emit("\u3000")
	}
	return true
}

func (s *Session) backspace() bool {
	if s.conv.Mode() == convert.Off {
		s.buf.RemoveBefore()
		return true
	}
	return s.conv.Backspace()
}

func (s *Session) delete() bool {
	if s.conv.Mode() == convert.Off {
		s.buf.RemoveAfter()
	} else {
		s.conv.End()
	}
	return true
}

func (s *Session) convert() bool {
	if !s.conv.Begin() {
		return false
	}
	s.metrics.Conversion()
	return true
}

func (s *Session) predict() bool {
	if !s.conv.Predict() {
		return false
	}
	s.metrics.Prediction()
	return true
}

func (s *Session) cancel() bool {
	if s.conv.Mode() == convert.Off {
		s.conv.Reset()
	} else {
		s.conv.End()
	}
	return true
}

func (s *Session) cancelAll() bool {
	s.conv.Reset()
	return true
}

func (s *Session) reconvert() bool {
	if !s.buf.IsEmpty() {
		return false
	}
	sel := s.selection()
	if sel == "" {
		return false
	}
	if !s.conv.Reconvert(sel, s.buf.InsertKana) {
		s.conv.Reset()
		return false
	}
	s.metrics.Conversion()
	return true
}

// moveCaret returns a caret motion; whole moves to the buffer edge.
func (s *Session) moveCaret(dir int, whole bool) func() bool {
	return func() bool {
		delta := dir
		if whole {
			delta *= s.buf.Len()
		}
		s.buf.MoveCursor(delta)
		return true
	}
}

func (s *Session) segmentCmd(f func() bool) func() bool {
	return func() bool {
		if !f() {
			return false
		}
		s.conv.List().Hide()
		return true
	}
}

func (s *Session) launchCmd(cmd keybind.Command) func() bool {
	return func() bool {
		if s.launcher == nil {
			return false
		}
		if err := s.launcher.Launch(cmd); err != nil {
			s.log.Warn("launch helper", "command", cmd.String(), "error", err)
		}
		return true
	}
}

func (s *Session) setInputMode(m InputMode) {
	if m < 0 || m >= inputModeCount {
		return
	}
	s.reset()
	s.input = m
	if m.Kana() {
		s.lastKana = m
	}
	s.updateModeProperty(InputModeProp, inputModes[:], int(m))
}

func (s *Session) setTypingMode(m kana.TypingMode) {
	if m < 0 || int(m) >= len(typingModes) {
		return
	}
	s.reset()
	s.typing = m
	s.buf.SetTypingMode(m)
	s.updateModeProperty(TypingModeProp, typingModes[:], int(m))
}

func (s *Session) setSegmentMode(m convert.SegmentMode) {
	if int(m) >= len(segmentModes) {
		return
	}
	s.reset()
	s.conv.SetSegmentMode(m)
	s.updateModeProperty(SegmentModeProp, segmentModes[:], int(m))
}

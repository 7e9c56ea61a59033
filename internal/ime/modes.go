package ime

import (
	"fmt"
	"strings"

	"goanthy/internal/convert"
	"goanthy/internal/kana"
)

// InputMode selects how typed characters are rendered in the preedit.
type InputMode int

const (
	Hiragana InputMode = iota
	Katakana
	HalfKatakana
	Latin
	WideLatin

	inputModeCount
)

type modeInfo struct {
	config string // value used in the config file
	prop   string // suffix of the property name
	label  string
	title  string // menu entry text
}

var inputModes = [inputModeCount]modeInfo{
	Hiragana:     {"hiragana", "Hiragana", "あ", "Hiragana"},
	Katakana:     {"katakana", "Katakana", "ア", "Katakana"},
	HalfKatakana: {"half_katakana", "HalfWidthKatakana", "_ｱ", "Halfwidth Katakana"},
	Latin:        {"latin", "Latin", "_A", "Latin"},
	WideLatin:    {"wide_latin", "WideLatin", "Ａ", "Wide Latin"},
}

var typingModes = [...]modeInfo{
	kana.Romaji:     {"romaji", "Romaji", "R", "Romaji"},
	kana.Kana:       {"kana", "Kana", "か", "Kana"},
	kana.ThumbShift: {"thumb_shift", "ThumbShift", "親", "Thumb shift"},
}

// segmentModes is indexed by convert.SegmentMode.
var segmentModes = [...]modeInfo{
	{"multi", "Multi", "連", "Multiple segment"},
	{"single", "Single", "単", "Single segment"},
	{"immediate_multi", "ImmediateMulti", "逐|連", "Immediate conversion (multiple segment)"},
	{"immediate_single", "ImmediateSingle", "逐|単", "Immediate conversion (single segment)"},
}

func (m InputMode) String() string {
	if m < 0 || m >= inputModeCount {
		return "unknown"
	}
	return inputModes[m].config
}

// Form returns the buffer rendering of the input mode.
func (m InputMode) Form() kana.Form {
	switch m {
	case Katakana:
		return kana.Katakana
	case HalfKatakana:
		return kana.HalfKatakana
	case Latin:
		return kana.Latin
	case WideLatin:
		return kana.WideLatin
	}
	return kana.Hiragana
}

// Label returns the property label shown for the mode.
func (m InputMode) Label() string { return inputModes[m].label }

// Kana reports whether the mode composes Japanese text.
func (m InputMode) Kana() bool { return m <= HalfKatakana }

// ParseInputMode parses a config value such as "half_katakana".
func ParseInputMode(s string) (InputMode, error) {
	for i, info := range inputModes {
		if info.config == s {
			return InputMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown input mode %q", s)
}

// ParseTypingMode parses a config value such as "thumb_shift".
func ParseTypingMode(s string) (kana.TypingMode, error) {
	for i, info := range typingModes {
		if info.config == s {
			return kana.TypingMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown typing method %q", s)
}

// ParseSegmentMode parses a config value such as "immediate_single".
func ParseSegmentMode(s string) (convert.SegmentMode, error) {
	for i, info := range segmentModes {
		if info.config == s {
			return convert.SegmentMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown segment mode %q", s)
}

// Property name prefixes.
const (
	InputModeProp   = "InputMode"
	TypingModeProp  = "TypingMode"
	SegmentModeProp = "SegmentMode"
	DictModeProp    = "DictMode"
	DictAdminProp   = "setup-dict-kasumi"
	AddWordProp     = "add-word-kasumi"
	SetupProp       = "setup"
)

// parseProp splits "InputMode.Hiragana" and resolves the mode index in
// table.
func parseProp(name, prefix string, table []modeInfo) (int, bool) {
	suffix, ok := strings.CutPrefix(name, prefix+".")
	if !ok {
		return 0, false
	}
	for i, info := range table {
		if info.prop == suffix {
			return i, true
		}
	}
	return 0, false
}

func propName(prefix string, info modeInfo) string {
	return prefix + "." + info.prop
}

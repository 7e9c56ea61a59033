package convert

import "goanthy/internal/kana"

// Mode is the conversion mode. Latin and wide-latin renderings have one
// variant per case-cycle step.
type Mode int

const (
	Off Mode = iota
	Segments
	Prediction
	Hiragana
	Katakana
	HalfKatakana
	LatinAsTyped
	LatinLower
	LatinUpper
	LatinCapitalized
	WideLatinAsTyped
	WideLatinLower
	WideLatinUpper
	WideLatinCapitalized
)

var modeNames = [...]string{
	Off:                  "off",
	Segments:             "segments",
	Prediction:           "prediction",
	Hiragana:             "hiragana",
	Katakana:             "katakana",
	HalfKatakana:         "half_katakana",
	LatinAsTyped:         "latin_as_typed",
	LatinLower:           "latin_lower",
	LatinUpper:           "latin_upper",
	LatinCapitalized:     "latin_capitalized",
	WideLatinAsTyped:     "wide_latin_as_typed",
	WideLatinLower:       "wide_latin_lower",
	WideLatinUpper:       "wide_latin_upper",
	WideLatinCapitalized: "wide_latin_capitalized",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// Direct reports whether m renders straight from the input buffer.
func (m Mode) Direct() bool {
	return m >= Hiragana
}

// Latin reports whether m is a step of the latin case cycle.
func (m Mode) Latin() bool {
	return m >= LatinAsTyped && m <= LatinCapitalized
}

// WideLatin reports whether m is a step of the wide-latin case cycle.
func (m Mode) WideLatin() bool {
	return m >= WideLatinAsTyped && m <= WideLatinCapitalized
}

// nextCase advances a latin or wide-latin step: as-typed, lower, upper,
// capitalized, then back to lower.
func (m Mode) nextCase() Mode {
	switch m {
	case LatinAsTyped:
		return LatinLower
	case LatinLower:
		return LatinUpper
	case LatinUpper:
		return LatinCapitalized
	case LatinCapitalized:
		return LatinLower
	case WideLatinAsTyped:
		return WideLatinLower
	case WideLatinLower:
		return WideLatinUpper
	case WideLatinUpper:
		return WideLatinCapitalized
	case WideLatinCapitalized:
		return WideLatinLower
	}
	return m
}

// skipAsTyped moves an as-typed step to lower.
func (m Mode) skipAsTyped() Mode {
	switch m {
	case LatinAsTyped:
		return LatinLower
	case WideLatinAsTyped:
		return WideLatinLower
	}
	return m
}

// Form returns the buffer rendering a direct mode is based on.
func (m Mode) Form() kana.Form {
	switch {
	case m == Katakana:
		return kana.Katakana
	case m == HalfKatakana:
		return kana.HalfKatakana
	case m.Latin():
		return kana.Latin
	case m.WideLatin():
		return kana.WideLatin
	}
	return kana.Hiragana
}

// Forward returns the next character type in the forward cycle:
// hiragana, katakana, half-width katakana, latin, wide latin.
func (m Mode) Forward() Mode {
	switch {
	case m == Katakana:
		return HalfKatakana
	case m == HalfKatakana:
		return LatinAsTyped
	case m.Latin():
		return WideLatinAsTyped
	case m.WideLatin():
		return Hiragana
	}
	return Katakana
}

// Backward returns the previous character type.
func (m Mode) Backward() Mode {
	switch {
	case m == Katakana:
		return Hiragana
	case m == HalfKatakana:
		return Katakana
	case m.Latin():
		return HalfKatakana
	case m.WideLatin():
		return LatinAsTyped
	}
	return WideLatinAsTyped
}

// SegmentMode holds the segment behaviour flags.
type SegmentMode uint8

const (
	// Single merges all segments into one.
	Single SegmentMode = 1 << iota
	// Immediate converts after every inserted character.
	Immediate
)

// Multi is the default segment mode.
const Multi SegmentMode = 0

func (s SegmentMode) String() string {
	switch s {
	case Multi:
		return "multi"
	case Single:
		return "single"
	case Immediate:
		return "immediate_multi"
	case Immediate | Single:
		return "immediate_single"
	}
	return "unknown"
}

package thumb

import (
	"fmt"
	"strings"
	"time"

	"goanthy/internal/keys"
)

// Side identifies a thumb shift key.
type Side int

const (
	NoSide Side = iota
	Right
	Left
)

func (s Side) String() string {
	switch s {
	case Right:
		return "right"
	case Left:
		return "left"
	}
	return "none"
}

// Entry holds the characters of one layout key: unshifted, with the right
// thumb key and with the left thumb key. An empty string means no output.
type Entry [3]string

// Char returns the character for side.
func (e Entry) Char(s Side) string {
	if s < NoSide || s > Left {
		return ""
	}
	return e[s]
}

// Layout maps character keyvals to their entries.
type Layout map[uint32]Entry

// Chord is an unordered pair of character keys.
type Chord [2]uint32

// MakeChord returns the chord of a and b in canonical order.
func MakeChord(a, b uint32) Chord {
	if a > b {
		a, b = b, a
	}
	return Chord{a, b}
}

// Config describes a thumb-shift keyboard.
type Config struct {
	LS, RS uint32
	// T1 resolves a lone thumb key, T2 a lone character key.
	T1, T2 time.Duration
	Layout Layout
	// Chords are character pairs producing one character.
	Chords map[Chord]string
	// Symbols are inserted when the other thumb key joins a pending one.
	// Sides without a symbol execute the pending key's command instead.
	Symbols map[Side]string
}

// Default timings and thumb keys.
const (
	DefaultT1 = 100 * time.Millisecond
	DefaultT2 = 75 * time.Millisecond
)

// DefaultConfig returns a NICOLA keyboard on Muhenkan and Henkan.
func DefaultConfig() Config {
	return Config{
		LS:     keys.Muhenkan,
		RS:     keys.Henkan,
		T1:     DefaultT1,
		T2:     DefaultT2,
		Layout: NICOLA(),
		Chords: DefaultChords(),
	}
}

// DefaultChords returns the character pairs for kana the NICOLA layout
// has no key for.
func DefaultChords() map[Chord]string {
	return map[Chord]string{
		MakeChord('d', 'k'): "ゔ",
		MakeChord('s', 'l'): "ゎ",
	}
}

// side returns which thumb key keyval is.
func (c *Config) side(keyval uint32) Side {
	switch keyval {
	case c.RS:
		return Right
	case c.LS:
		return Left
	}
	return NoSide
}

// key returns the thumb keyval for s.
func (c *Config) key(s Side) uint32 {
	if s == Right {
		return c.RS
	}
	return c.LS
}

// NICOLA returns the standard NICOLA layout for a JIS keyboard.
func NICOLA() Layout {
	return Layout{
		'1': {"1", "", "?"},
		'2': {"2", "", "/"},
		'3': {"3", "", "~"},
		'4': {"4", "", "「"},
		'5': {"5", "", "」"},
		'6': {"6", "[", ""},
		'7': {"7", "]", ""},
		'8': {"8", "(", ""},
		'9': {"9", ")", ""},
		'0': {"0", "『", ""},
		'-': {"-", "』", ""},

		'q': {"。", "", "ぁ"},
		'w': {"か", "が", "え"},
		'e': {"た", "だ", "り"},
		'r': {"こ", "ご", "ゃ"},
		't': {"さ", "ざ", "れ"},
		'y': {"ら", "よ", "ぱ"},
		'u': {"ち", "に", "ぢ"},
		'i': {"く", "る", "ぐ"},
		'o': {"つ", "ま", "づ"},
		'p': {"，", "ぇ", "ぴ"},
		'@': {"、", "", ""},
		'[': {"゛", "゜", ""},

		'a': {"う", "", "を"},
		's': {"し", "じ", "あ"},
		'd': {"て", "で", "な"},
		'f': {"け", "げ", "ゅ"},
		'g': {"せ", "ぜ", "も"},
		'h': {"は", "み", "ば"},
		'j': {"と", "お", "ど"},
		'k': {"き", "の", "ぎ"},
		'l': {"い", "ょ", "ぽ"},
		';': {"ん", "っ", ""},

		'z': {"．", "", "ぅ"},
		'x': {"ひ", "び", "ー"},
		'c': {"す", "ず", "ろ"},
		'v': {"ふ", "ぶ", "や"},
		'b': {"へ", "べ", "ぃ"},
		'n': {"め", "ぬ", "ぷ"},
		'm': {"そ", "ゆ", "ぞ"},
		',': {"ね", "む", "ぺ"},
		'.': {"ほ", "わ", "ぼ"},
		'/': {"・", "ぉ", ""},
	}
}

// ParseLayout builds layout overrides from key names mapped to one to
// three characters.
func ParseLayout(raw map[string][]string) (Layout, error) {
	out := make(Layout, len(raw))
	for name, chars := range raw {
		kv, ok := keys.KeyvalFromName(name)
		if !ok {
			return nil, fmt.Errorf("layout key %q: %w", name, keys.ErrUnknownKey)
		}
		if len(chars) == 0 || len(chars) > 3 {
			return nil, fmt.Errorf("layout key %q: want 1 to 3 characters, got %d", name, len(chars))
		}
		var e Entry
		copy(e[:], chars)
		out[kv] = e
	}
	return out, nil
}

// ParseChords builds a chord table from "a b" style key pairs.
func ParseChords(raw map[string]string) (map[Chord]string, error) {
	out := make(map[Chord]string, len(raw))
	for pair, text := range raw {
		names := strings.Fields(pair)
		if len(names) != 2 {
			return nil, fmt.Errorf("chord %q: want two keys", pair)
		}
		a, ok := keys.KeyvalFromName(names[0])
		b, ok2 := keys.KeyvalFromName(names[1])
		if !ok || !ok2 {
			return nil, fmt.Errorf("chord %q: %w", pair, keys.ErrUnknownKey)
		}
		out[MakeChord(a, b)] = text
	}
	return out, nil
}

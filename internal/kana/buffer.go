// Package kana implements the raw input buffer: it turns typed keys into
// kana and renders the buffered text in each phonetic form.
package kana

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// TypingMode selects how typed characters become kana.
type TypingMode int

const (
	Romaji TypingMode = iota
	Kana
	ThumbShift
)

func (m TypingMode) String() string {
	switch m {
	case Romaji:
		return "romaji"
	case Kana:
		return "kana"
	case ThumbShift:
		return "thumb_shift"
	}
	return "unknown"
}

// Form is a rendering of buffered text.
type Form int

const (
	Hiragana Form = iota
	Katakana
	HalfKatakana
	Latin
	WideLatin
)

func (f Form) String() string {
	switch f {
	case Hiragana:
		return "hiragana"
	case Katakana:
		return "katakana"
	case HalfKatakana:
		return "half_katakana"
	case Latin:
		return "latin"
	case WideLatin:
		return "wide_latin"
	}
	return "unknown"
}

// unit is one transliterated piece of input. A unit with empty kana is an
// incomplete romaji sequence.
type unit struct {
	raw  string
	kana string
}

func (u unit) pending() bool { return u.kana == "" }

func (u unit) hiragana(finalize bool) string {
	if !u.pending() {
		return u.kana
	}
	if finalize && strings.EqualFold(u.raw, "n") {
		return "ん"
	}
	return u.raw
}

// Buffer holds un-converted input and a cursor measured in units.
type Buffer struct {
	mode   TypingMode
	units  []unit
	cursor int
}

// NewBuffer creates an empty buffer.
func NewBuffer(mode TypingMode) *Buffer {
	return &Buffer{mode: mode}
}

// TypingMode returns the typing mode.
func (b *Buffer) TypingMode() TypingMode { return b.mode }

// SetTypingMode changes the typing mode, finalizing any pending romaji.
func (b *Buffer) SetTypingMode(m TypingMode) {
	b.finalizePending()
	b.mode = m
}

// Clone returns an independent copy.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{mode: b.mode, units: slices.Clone(b.units), cursor: b.cursor}
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.units = nil
	b.cursor = 0
}

// IsEmpty reports whether nothing is buffered.
func (b *Buffer) IsEmpty() bool { return len(b.units) == 0 }

// Len returns the number of units.
func (b *Buffer) Len() int { return len(b.units) }

// Cursor returns the cursor position in units.
func (b *Buffer) Cursor() int { return b.cursor }

// Insert adds one typed character at the cursor.
func (b *Buffer) Insert(r rune) {
	switch b.mode {
	case Romaji:
		b.insertRomaji(r)
	case Kana:
		if k, ok := kanaTable[string(r)]; ok {
			b.insertKana(string(r), k)
			return
		}
		b.put(unit{raw: string(r), kana: width.Widen.String(string(r))})
	default:
		b.insertKana(string(r), string(r))
	}
}

// InsertKana adds already transliterated text, as produced by a thumb-shift
// layout.
func (b *Buffer) InsertKana(s string) {
	for _, r := range s {
		b.insertKana(string(r), string(r))
	}
}

func (b *Buffer) insertRomaji(r rune) {
	var prefix string
	if b.cursor > 0 && b.units[b.cursor-1].pending() {
		prefix = b.units[b.cursor-1].raw
		b.units = slices.Delete(b.units, b.cursor-1, b.cursor)
		b.cursor--
	}
	raw := prefix + string(r)
	key := strings.ToLower(raw)

	if k, ok := romaji[key]; ok {
		b.put(unit{raw: raw, kana: k})
		return
	}
	if romajiPrefix[key] {
		b.put(unit{raw: raw})
		return
	}
	if prefix == "" {
		b.put(unit{raw: raw, kana: width.Widen.String(raw)})
		return
	}

	lp := strings.ToLower(prefix)
	switch {
	case lp == "n":
		b.put(unit{raw: prefix, kana: "ん"})
	case len(lp) == 1 && lp[0] == byte(unicode.ToLower(r)) && isConsonant(r):
		b.put(unit{raw: prefix, kana: "っ"})
	case romaji[lp] != "":
		b.put(unit{raw: prefix, kana: romaji[lp]})
	default:
		b.put(unit{raw: prefix, kana: prefix})
	}
	b.insertRomaji(r)
}

func isConsonant(r rune) bool {
	r = unicode.ToLower(r)
	return r >= 'a' && r <= 'z' && !strings.ContainsRune("aiueon", r)
}

// insertKana inserts k, folding voiced marks into the preceding kana.
func (b *Buffer) insertKana(raw, k string) {
	if (k == "゛" || k == "゜") && b.cursor > 0 {
		prev := b.units[b.cursor-1]
		mark := "\u3099"
		if k == "゜" {
			mark = "\u309a"
		}
		last, size := utf8.DecodeLastRuneInString(prev.kana)
		if composed := norm.NFC.String(string(last) + mark); utf8.RuneCountInString(composed) == 1 {
			prev.kana = prev.kana[:len(prev.kana)-size] + composed
			prev.raw += raw
			b.units[b.cursor-1] = prev
			return
		}
	}
	b.put(unit{raw: raw, kana: k})
}

func (b *Buffer) put(u unit) {
	b.units = slices.Insert(b.units, b.cursor, u)
	b.cursor++
}

func (b *Buffer) finalizePending() {
	for i, u := range b.units {
		if u.pending() {
			b.units[i].kana = u.hiragana(true)
		}
	}
}

// RemoveBefore deletes the character before the cursor. A pending romaji
// sequence loses its last letter.
func (b *Buffer) RemoveBefore() {
	if b.cursor == 0 {
		return
	}
	u := b.units[b.cursor-1]
	if u.pending() && utf8.RuneCountInString(u.raw) > 1 {
		_, size := utf8.DecodeLastRuneInString(u.raw)
		b.units[b.cursor-1].raw = u.raw[:len(u.raw)-size]
		return
	}
	b.units = slices.Delete(b.units, b.cursor-1, b.cursor)
	b.cursor--
}

// RemoveAfter deletes the character after the cursor.
func (b *Buffer) RemoveAfter() {
	if b.cursor >= len(b.units) {
		return
	}
	b.units = slices.Delete(b.units, b.cursor, b.cursor+1)
}

// MoveCursor moves the cursor by delta units, clamped to the buffer.
func (b *Buffer) MoveCursor(delta int) {
	b.finalizePending()
	b.cursor = min(max(b.cursor+delta, 0), len(b.units))
}

// Render returns the buffer in the given form and the cursor offset in
// characters of that form.
func (b *Buffer) Render(f Form, finalize bool) (string, int) {
	var before, after strings.Builder
	for i, u := range b.units {
		dst := &after
		if i < b.cursor {
			dst = &before
		}
		dst.WriteString(renderUnit(u, f, finalize))
	}
	head := before.String()
	return head + after.String(), utf8.RuneCountInString(head)
}

func renderUnit(u unit, f Form, finalize bool) string {
	switch f {
	case Katakana:
		return ToKatakana(u.hiragana(finalize))
	case HalfKatakana:
		return ToHalfKatakana(u.hiragana(finalize))
	case Latin:
		return u.raw
	case WideLatin:
		return width.Widen.String(u.raw)
	}
	return u.hiragana(finalize)
}

// Raw returns the typed characters behind hiragana characters [start, end).
// A unit that straddles either bound contributes only its share.
func (b *Buffer) Raw(start, end int) string {
	c := b.Clone()
	i := c.splitAt(start)
	j := c.splitAt(end)
	var sb strings.Builder
	for _, u := range c.units[i:j] {
		sb.WriteString(u.raw)
	}
	return sb.String()
}

// DropPrefix removes the input behind the first n hiragana characters and
// shifts the cursor accordingly.
func (b *Buffer) DropPrefix(n int) {
	i := b.splitAt(n)
	b.units = slices.Delete(b.units, 0, i)
	b.cursor = max(b.cursor-i, 0)
}

// splitAt makes a unit boundary at hiragana character n and returns the
// index of the first unit at or after it.
func (b *Buffer) splitAt(n int) int {
	pos := 0
	for i, u := range b.units {
		if pos >= n {
			return i
		}
		h := []rune(u.hiragana(true))
		if pos+len(h) > n {
			head, tail := splitUnit(u, h, n-pos)
			b.units = slices.Replace(b.units, i, i+1, head, tail)
			if b.cursor > i {
				b.cursor++
			}
			return i + 1
		}
		pos += len(h)
	}
	return len(b.units)
}

// splitUnit divides u after its k-th kana. The head keeps the longest
// typed prefix that spells its kana; otherwise the tail takes one typed
// character per kana from the end, so "kya" splits into "ky" and "a".
func splitUnit(u unit, kana []rune, k int) (unit, unit) {
	head, tail := string(kana[:k]), string(kana[k:])
	raw := []rune(u.raw)
	cut := len(raw) - min(len(kana)-k, len(raw)-1)
	for p := len(raw) - 1; p > 0; p-- {
		if romaji[strings.ToLower(string(raw[:p]))] == head {
			cut = p
			break
		}
	}
	return unit{raw: string(raw[:cut]), kana: head}, unit{raw: string(raw[cut:]), kana: tail}
}

// ToKatakana converts hiragana to katakana, leaving other runes alone.
func ToKatakana(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'ぁ' && r <= 'ゖ', r == 'ゝ', r == 'ゞ':
			return r + 0x60
		}
		return r
	}, s)
}

// ToHiragana converts katakana to hiragana, leaving other runes alone.
func ToHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'ァ' && r <= 'ヶ', r == 'ヽ', r == 'ヾ':
			return r - 0x60
		}
		return r
	}, s)
}

// ToHalfKatakana converts hiragana or katakana to half-width katakana.
// Voiced kana decompose into a base and a half-width voiced mark.
func ToHalfKatakana(s string) string {
	return width.Narrow.String(norm.NFD.String(ToKatakana(s)))
}

// ToWide converts ASCII to its full-width form.
func ToWide(s string) string {
	return width.Widen.String(s)
}

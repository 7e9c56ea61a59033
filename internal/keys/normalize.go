// Package keys turns raw IBus key events into canonical key identities.
//
// A canonical Key is what keybinding tables are indexed by and what the
// direct-insertion path consumes. Normalize is pure and never fails.
package keys

import (
	"strconv"
	"strings"
)

// Modifier is an IBus modifier state bitmask.
type Modifier uint32

// IBus modifier masks.
const (
	ModShift   Modifier = 1 << 0
	ModLock    Modifier = 1 << 1
	ModControl Modifier = 1 << 2
	ModAlt     Modifier = 1 << 3 // Mod1
	ModSuper   Modifier = 1 << 6 // Mod4
	ModRelease Modifier = 1 << 30

	// ModMask holds the bits that survive normalization.
	ModMask = ModShift | ModControl | ModAlt
)

// Has reports whether all bits of o are set in m.
func (m Modifier) Has(o Modifier) bool {
	return m&o == o
}

// ctrlPunct lists characters that gain Shift when typed with Control or Alt.
const ctrlPunct = "!\"#$%^'()*+,-./:;<=>?@[\\]^_`{|}~"

// Key is a canonical key identity.
type Key struct {
	Keyval uint32
	Mods   Modifier
}

// Options control normalization.
type Options struct {
	// RemapKeypad maps KP_* keys to their main-keyboard equivalents.
	RemapKeypad bool
}

// Normalize maps a raw keyval and modifier state into a canonical Key.
// All modifier bits except Shift, Control and Alt are stripped. With
// Control or Alt held, letters are upper-cased with Shift asserted and
// punctuation asserts Shift, so "Ctrl+j", "Ctrl+J" and "Ctrl+Shift+j" all
// name the same key.
func Normalize(keyval uint32, state Modifier, opts Options) Key {
	mods := state & ModMask
	if opts.RemapKeypad {
		if v, ok := keypad[keyval]; ok {
			keyval = v
		}
	}
	if mods&(ModControl|ModAlt) != 0 {
		switch {
		case keyval >= 'a' && keyval <= 'z':
			keyval -= 'a' - 'A'
			mods |= ModShift
		case keyval >= 'A' && keyval <= 'Z':
			mods |= ModShift
		case keyval < 0x80 && strings.ContainsRune(ctrlPunct, rune(keyval)):
			mods |= ModShift
		}
	}
	return Key{Keyval: keyval, Mods: mods}
}

// Plain reports whether the key carries no modifiers at all.
func (k Key) Plain() bool {
	return k.Mods == 0
}

// Rune returns the character a printable key inserts, or 0.
func (k Key) Rune() rune {
	return KeyvalToRune(k.Keyval)
}

// KeyvalToRune converts a printable keysym to its character.
func KeyvalToRune(keyval uint32) rune {
	switch {
	case keyval >= 0x20 && keyval <= 0x7e:
		return rune(keyval)
	case keyval >= 0xa0 && keyval <= 0xff:
		return rune(keyval)
	case keyval&0xff000000 == 0x01000000:
		// Unicode keysyms.
		return rune(keyval & 0x00ffffff)
	}
	return 0
}

// String renders the key in the same syntax ParseName accepts.
func (k Key) String() string {
	var b strings.Builder
	if k.Mods.Has(ModControl) {
		b.WriteString("Ctrl+")
	}
	if k.Mods.Has(ModAlt) {
		b.WriteString("Alt+")
	}
	if k.Mods.Has(ModShift) {
		b.WriteString("Shift+")
	}
	b.WriteString(KeyvalName(k.Keyval))
	return b.String()
}

// KeyvalName returns the keysym name for keyval.
func KeyvalName(keyval uint32) string {
	if name, ok := keyvalNames[keyval]; ok {
		return name
	}
	if r := KeyvalToRune(keyval); r > 0x20 {
		return string(r)
	}
	return "0x" + strconv.FormatUint(uint64(keyval), 16)
}

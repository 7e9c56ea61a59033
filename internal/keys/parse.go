package keys

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parse errors.
var (
	ErrEmptyName  = errors.New("keys: empty key name")
	ErrUnknownKey = errors.New("keys: unknown key")
)

// modifierNames maps a modifier prefix to its mask.
var modifierNames = map[string]Modifier{
	"shift":   ModShift,
	"ctrl":    ModControl,
	"control": ModControl,
	"alt":     ModAlt,
	"mod1":    ModAlt,
}

// ParseName parses a key name such as "Ctrl+Shift+comma", "Henkan" or "F7"
// and returns its canonical Key. Keypad keys are kept as written.
func ParseName(name string) (Key, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Key{}, ErrEmptyName
	}

	if name == "+" {
		return Key{Keyval: '+'}, nil
	}

	parts := strings.Split(name, "+")
	// "Ctrl++" binds the plus key.
	if strings.HasSuffix(name, "++") {
		parts = append(parts[:len(parts)-2], "+")
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		m, ok := modifierNames[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return Key{}, fmt.Errorf("%w: modifier %q in %q", ErrUnknownKey, p, name)
		}
		mods |= m
	}

	keyval, ok := KeyvalFromName(strings.TrimSpace(parts[len(parts)-1]))
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return Normalize(keyval, mods, Options{}), nil
}

// KeyvalFromName resolves a keysym name to a keyval.
func KeyvalFromName(name string) (uint32, bool) {
	if v, ok := names[name]; ok {
		return v, true
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		if r > 0x20 && r <= 0xff {
			return uint32(r), true
		}
		if r > 0xff {
			return 0x01000000 | uint32(r), true
		}
	}
	if strings.HasPrefix(name, "KP_") && len(name) == 4 && name[3] >= '0' && name[3] <= '9' {
		return KP0 + uint32(name[3]-'0'), true
	}
	if strings.HasPrefix(name, "F") {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= 12 {
			return F1 + uint32(n-1), true
		}
	}
	if strings.HasPrefix(name, "0x") {
		if v, err := strconv.ParseUint(name[2:], 16, 32); err == nil {
			return uint32(v), true
		}
	}
	return 0, false
}

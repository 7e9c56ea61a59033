package keys

import "strconv"

// X11 keysyms used by the engine. Printable Latin-1 keys use their code point.
const (
	Space       uint32 = 0x0020
	Backslash   uint32 = 0x005c
	Asciitilde  uint32 = 0x007e
	Yen         uint32 = 0x00a5
	ISOLeftTab  uint32 = 0xfe20
	BackSpace   uint32 = 0xff08
	Tab         uint32 = 0xff09
	Return      uint32 = 0xff0d
	Escape      uint32 = 0xff1b
	Kanji       uint32 = 0xff21
	Muhenkan    uint32 = 0xff22
	Henkan      uint32 = 0xff23
	Romaji      uint32 = 0xff24
	Hiragana    uint32 = 0xff25
	Katakana    uint32 = 0xff26
	HiraKata    uint32 = 0xff27
	Zenkaku     uint32 = 0xff28
	Hankaku     uint32 = 0xff29
	ZenHan      uint32 = 0xff2a
	EisuToggle  uint32 = 0xff30
	Home        uint32 = 0xff50
	Left        uint32 = 0xff51
	Up          uint32 = 0xff52
	Right       uint32 = 0xff53
	Down        uint32 = 0xff54
	PageUp      uint32 = 0xff55
	PageDown    uint32 = 0xff56
	End         uint32 = 0xff57
	Insert      uint32 = 0xff63
	KPSpace     uint32 = 0xff80
	KPTab       uint32 = 0xff89
	KPEnter     uint32 = 0xff8d
	KPHome      uint32 = 0xff95
	KPLeft      uint32 = 0xff96
	KPUp        uint32 = 0xff97
	KPRight     uint32 = 0xff98
	KPDown      uint32 = 0xff99
	KPPageUp    uint32 = 0xff9a
	KPPageDown  uint32 = 0xff9b
	KPEnd       uint32 = 0xff9c
	KPInsert    uint32 = 0xff9e
	KPDelete    uint32 = 0xff9f
	KPMultiply  uint32 = 0xffaa
	KPAdd       uint32 = 0xffab
	KPSeparator uint32 = 0xffac
	KPSubtract  uint32 = 0xffad
	KPDecimal   uint32 = 0xffae
	KPDivide    uint32 = 0xffaf
	KP0         uint32 = 0xffb0
	KP9         uint32 = 0xffb9
	KPEqual     uint32 = 0xffbd
	F1          uint32 = 0xffbe
	F12         uint32 = 0xffc9
	ShiftL      uint32 = 0xffe1
	ShiftR      uint32 = 0xffe2
	ControlL    uint32 = 0xffe3
	ControlR    uint32 = 0xffe4
	CapsLock    uint32 = 0xffe5
	MetaL       uint32 = 0xffe7
	MetaR       uint32 = 0xffe8
	AltL        uint32 = 0xffe9
	AltR        uint32 = 0xffea
	SuperL      uint32 = 0xffeb
	SuperR      uint32 = 0xffec
	Delete      uint32 = 0xffff
)

// names maps keysym names to keyvals. Single printable characters are
// resolved directly by KeyvalFromName and need no entry here.
var names = map[string]uint32{
	"space":             Space,
	"exclam":            '!',
	"quotedbl":          '"',
	"numbersign":        '#',
	"dollar":            '$',
	"percent":           '%',
	"ampersand":         '&',
	"apostrophe":        '\'',
	"parenleft":         '(',
	"parenright":        ')',
	"asterisk":          '*',
	"plus":              '+',
	"comma":             ',',
	"minus":             '-',
	"period":            '.',
	"slash":             '/',
	"colon":             ':',
	"semicolon":         ';',
	"less":              '<',
	"equal":             '=',
	"greater":           '>',
	"question":          '?',
	"at":                '@',
	"bracketleft":       '[',
	"backslash":         Backslash,
	"bracketright":      ']',
	"asciicircum":       '^',
	"underscore":        '_',
	"grave":             '`',
	"braceleft":         '{',
	"bar":               '|',
	"braceright":        '}',
	"asciitilde":        Asciitilde,
	"yen":               Yen,
	"ISO_Left_Tab":      ISOLeftTab,
	"BackSpace":         BackSpace,
	"Tab":               Tab,
	"Return":            Return,
	"Escape":            Escape,
	"Kanji":             Kanji,
	"Muhenkan":          Muhenkan,
	"Henkan":            Henkan,
	"Henkan_Mode":       Henkan,
	"Romaji":            Romaji,
	"Hiragana":          Hiragana,
	"Katakana":          Katakana,
	"Hiragana_Katakana": HiraKata,
	"Zenkaku":           Zenkaku,
	"Hankaku":           Hankaku,
	"Zenkaku_Hankaku":   ZenHan,
	"Eisu_toggle":       EisuToggle,
	"Home":              Home,
	"Left":              Left,
	"Up":                Up,
	"Right":             Right,
	"Down":              Down,
	"Page_Up":           PageUp,
	"Prior":             PageUp,
	"Page_Down":         PageDown,
	"Next":              PageDown,
	"End":               End,
	"Insert":            Insert,
	"KP_Space":          KPSpace,
	"KP_Tab":            KPTab,
	"KP_Enter":          KPEnter,
	"KP_Home":           KPHome,
	"KP_Left":           KPLeft,
	"KP_Up":             KPUp,
	"KP_Right":          KPRight,
	"KP_Down":           KPDown,
	"KP_Page_Up":        KPPageUp,
	"KP_Prior":          KPPageUp,
	"KP_Page_Down":      KPPageDown,
	"KP_Next":           KPPageDown,
	"KP_End":            KPEnd,
	"KP_Insert":         KPInsert,
	"KP_Delete":         KPDelete,
	"KP_Multiply":       KPMultiply,
	"KP_Add":            KPAdd,
	"KP_Separator":      KPSeparator,
	"KP_Subtract":       KPSubtract,
	"KP_Decimal":        KPDecimal,
	"KP_Divide":         KPDivide,
	"KP_Equal":          KPEqual,
	"Shift_L":           ShiftL,
	"Shift_R":           ShiftR,
	"Control_L":         ControlL,
	"Control_R":         ControlR,
	"Caps_Lock":         CapsLock,
	"Meta_L":            MetaL,
	"Meta_R":            MetaR,
	"Alt_L":             AltL,
	"Alt_R":             AltR,
	"Super_L":           SuperL,
	"Super_R":           SuperR,
	"Delete":            Delete,
}

// keyvalNames is the reverse of names, preferring the canonical spelling.
var keyvalNames = func() map[uint32]string {
	m := make(map[uint32]string, len(names))
	for name, v := range names {
		if cur, ok := m[v]; !ok || preferName(name, cur) {
			m[v] = name
		}
	}
	for i := uint32(0); i < 10; i++ {
		m[KP0+i] = "KP_" + string(rune('0'+i))
	}
	for i := uint32(0); i < 12; i++ {
		m[F1+i] = "F" + strconv.Itoa(int(i)+1)
	}
	return m
}()

// preferName picks a stable canonical name among aliases.
func preferName(candidate, current string) bool {
	switch candidate {
	case "Henkan", "Page_Up", "Page_Down", "KP_Page_Up", "KP_Page_Down":
		return true
	}
	switch current {
	case "Henkan", "Page_Up", "Page_Down", "KP_Page_Up", "KP_Page_Down":
		return false
	}
	return candidate < current
}

// keypad maps numeric-keypad keyvals to their main-keyboard equivalents.
var keypad = func() map[uint32]uint32 {
	m := map[uint32]uint32{
		KPSpace:     Space,
		KPTab:       Tab,
		KPEnter:     Return,
		KPHome:      Home,
		KPLeft:      Left,
		KPUp:        Up,
		KPRight:     Right,
		KPDown:      Down,
		KPPageUp:    PageUp,
		KPPageDown:  PageDown,
		KPEnd:       End,
		KPInsert:    Insert,
		KPDelete:    Delete,
		KPMultiply:  '*',
		KPAdd:       '+',
		KPSeparator: ',',
		KPSubtract:  '-',
		KPDecimal:   '.',
		KPDivide:    '/',
		KPEqual:     '=',
	}
	for i := uint32(0); i < 10; i++ {
		m[KP0+i] = '0' + i
	}
	return m
}()

// IsModifier reports whether keyval is a bare modifier key.
func IsModifier(keyval uint32) bool {
	switch keyval {
	case ShiftL, ShiftR, ControlL, ControlR, CapsLock, MetaL, MetaR, AltL, AltR, SuperL, SuperR:
		return true
	}
	return false
}

// IsPrintable reports whether keyval inserts a printable ASCII character
// or the yen sign.
func IsPrintable(keyval uint32) bool {
	return (keyval >= 0x21 && keyval <= 0x7e) || keyval == Yen
}

package ime

// AttrType is an IBus text attribute type.
type AttrType uint32

const (
	AttrUnderline  AttrType = 1
	AttrForeground AttrType = 2
	AttrBackground AttrType = 3
)

// Underline styles.
const (
	UnderlineNone   uint32 = 0
	UnderlineSingle uint32 = 1
)

// Attribute decorates the characters [Start, End) of a text.
type Attribute struct {
	Type  AttrType
	Value uint32
	Start uint32
	End   uint32
}

// RGB packs a colour the way IBus attributes expect it.
func RGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// ActiveSegmentColor highlights the segment being converted.
var ActiveSegmentColor = RGB(200, 200, 240)

// LookupTable is the candidate window content.
type LookupTable struct {
	Candidates    []string
	PageSize      int
	Cursor        int
	CursorVisible bool
}

// PropType is an IBus property type.
type PropType uint32

const (
	PropNormal PropType = 0
	PropToggle PropType = 1
	PropRadio  PropType = 2
	PropMenu   PropType = 3
)

// PropState is an IBus property state.
type PropState uint32

const (
	PropUnchecked PropState = 0
	PropChecked   PropState = 1
)

// Property is a panel menu entry.
type Property struct {
	Key     string
	Type    PropType
	Label   string
	Tooltip string
	State   PropState
	Visible bool
	Sub     []Property
}

// Host receives everything a session shows or commits. Calls happen on the
// session's goroutine.
type Host interface {
	CommitText(text string)
	UpdatePreedit(text string, attrs []Attribute, cursor uint32, visible bool)
	UpdateAuxiliaryText(text string, visible bool)
	UpdateLookupTable(table LookupTable, visible bool)
	RegisterProperties(props []Property)
	UpdateProperty(prop Property)
}

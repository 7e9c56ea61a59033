package convert

import "fmt"

// View is a phonetic rendering of an unconverted segment.
type View int

const (
	Unconverted View = iota
	HiraganaView
	KatakanaView
	HalfKatakanaView
	LatinView
	WideLatinView
)

func (v View) String() string {
	switch v {
	case Unconverted:
		return "unconverted"
	case HiraganaView:
		return "hiragana"
	case KatakanaView:
		return "katakana"
	case HalfKatakanaView:
		return "half_katakana"
	case LatinView:
		return "latin"
	case WideLatinView:
		return "wide_latin"
	}
	return "unknown"
}

// Choice is what a segment currently shows: either a backend candidate
// index or a phonetic view of the unconverted text.
type Choice struct {
	view   View
	index  int
	isView bool
}

// Candidate returns a Choice for backend candidate i.
func Candidate(i int) Choice {
	return Choice{index: i}
}

// Phonetic returns a Choice for view v.
func Phonetic(v View) Choice {
	return Choice{view: v, isView: true}
}

// Index returns the backend candidate index, if c is one.
func (c Choice) Index() (int, bool) {
	return c.index, !c.isView
}

// View returns the phonetic view, if c is one.
func (c Choice) View() (View, bool) {
	return c.view, c.isView
}

// Is reports whether c is the phonetic view v.
func (c Choice) Is(v View) bool {
	return c.isView && c.view == v
}

func (c Choice) String() string {
	if c.isView {
		return c.view.String()
	}
	return fmt.Sprintf("candidate(%d)", c.index)
}

// Segment is one converted span.
type Segment struct {
	Choice Choice
	Text   string
}

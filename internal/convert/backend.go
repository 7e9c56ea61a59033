package convert

import "goanthy/internal/kana"

// Backend is the linguistic conversion engine. Segment indexes are
// relative to the source text last passed to SetSourceText.
type Backend interface {
	SetSourceText(text string) error
	SegmentCount() int
	CandidateCount(seg int) int
	CandidateText(seg, index int) string
	// SegmentView returns the unconverted text of seg in a phonetic view.
	// Only Unconverted, HiraganaView, KatakanaView and HalfKatakanaView are
	// requested.
	SegmentView(seg int, v View) string
	ResizeSegment(seg, delta int)
	CommitSegment(seg int, c Choice) error

	SetPredictionText(text string) error
	Predictions() []string
	CommitPrediction(index int) error
}

// Buffer is the raw input buffer the machine renders from.
type Buffer interface {
	IsEmpty() bool
	Render(f kana.Form, finalize bool) (string, int)
	// Raw returns the typed characters behind hiragana characters
	// [start, end).
	Raw(start, end int) string
	// DropPrefix removes the input behind the first n hiragana characters.
	DropPrefix(n int)
	Reset()
}

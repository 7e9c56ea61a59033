// Package dict is the reference conversion backend: greedy longest-match
// segmentation over yaml dictionaries, with candidate ranking and phrase
// prediction learned in the sqlite store.
package dict

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"goanthy/internal/convert"
	"goanthy/internal/kana"
	"goanthy/internal/store"
)

// ErrNoSource is returned when conversion or prediction starts from empty
// text.
var ErrNoSource = errors.New("dict: empty source text")

// DefaultPredictLimit caps learned predictions per query.
const DefaultPredictLimit = 20

// Learner persists user choices. *store.Store implements it.
type Learner interface {
	RecordSelection(reading, word string) error
	Ranked(reading string) ([]store.Selection, error)
	RecordPhrase(reading, text string) error
	Predict(prefix string, limit int) ([]store.Phrase, error)
}

// Library is the read-only set of dictionaries shared by all sessions.
// Personality 0 is the base dictionary; every extra dictionary forms one
// more personality layered over it.
type Library struct {
	personalities []*Dictionary
}

// NewLibrary builds a library from base and optional extra dictionaries.
func NewLibrary(base *Dictionary, extra ...*Dictionary) *Library {
	if base.Name == "" {
		base.Name = "default"
	}
	l := &Library{personalities: []*Dictionary{base}}
	for _, e := range extra {
		l.personalities = append(l.personalities, base.Merge(e))
	}
	return l
}

// LoadLibrary merges files into the built-in dictionary and adds one
// personality per entry of personalities. Unreadable personalities are
// skipped with a warning; an unreadable merge file is an error.
func LoadLibrary(files, personalities []string, log *slog.Logger) (*Library, error) {
	if log == nil {
		log = slog.Default()
	}
	base := Default()
	for _, path := range files {
		d, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		merged := base.Merge(d)
		merged.Name = base.Name
		base = merged
	}

	var extra []*Dictionary
	for _, path := range personalities {
		d, err := LoadFile(path)
		if err != nil {
			log.Warn("skip dictionary personality", "path", path, "error", err)
			continue
		}
		extra = append(extra, d)
	}
	return NewLibrary(base, extra...), nil
}

// Names returns the personality names in cycle order.
func (l *Library) Names() []string {
	out := make([]string, len(l.personalities))
	for i, d := range l.personalities {
		out[i] = d.Name
	}
	return out
}

// Backend is one session's conversion context. It implements
// convert.Backend and is not safe for concurrent use.
type Backend struct {
	lib   *Library
	dict  *Dictionary
	pers  int
	learn Learner
	log   *slog.Logger

	source  []rune
	lengths []int
	cands   map[int][]string

	phraseReading strings.Builder
	phraseText    strings.Builder
	phraseOK      bool

	predReadings []string
	preds        []string
}

var _ convert.Backend = (*Backend)(nil)

// NewBackend creates a backend on the base personality. learn may be nil.
func (l *Library) NewBackend(learn Learner, log *slog.Logger) *Backend {
	if log == nil {
		log = slog.Default()
	}
	return &Backend{
		lib:   l,
		dict:  l.personalities[0],
		learn: learn,
		log:   log,
		cands: map[int][]string{},
	}
}

// Personality returns the active personality name.
func (b *Backend) Personality() string { return b.dict.Name }

// CyclePersonality switches to the next personality and returns its name.
// The current source is re-segmented.
func (b *Backend) CyclePersonality() string {
	b.pers = (b.pers + 1) % len(b.lib.personalities)
	b.dict = b.lib.personalities[b.pers]
	if len(b.source) > 0 {
		b.lengths = b.segmentFrom(0)
		clear(b.cands)
	}
	return b.dict.Name
}

// SetSourceText starts a new conversion of text.
func (b *Backend) SetSourceText(text string) error {
	if text == "" {
		return ErrNoSource
	}
	b.source = []rune(text)
	b.lengths = b.segmentFrom(0)
	clear(b.cands)
	b.phraseReading.Reset()
	b.phraseText.Reset()
	b.phraseOK = true
	return nil
}

// segmentFrom splits source[pos:] greedily. Runs of characters no reading
// starts at form one segment.
func (b *Backend) segmentFrom(pos int) []int {
	var out []int
	for pos < len(b.source) {
		if n := b.dict.Longest(b.source[pos:]); n > 0 {
			out = append(out, n)
			pos += n
			continue
		}
		start := pos
		for pos < len(b.source) && b.dict.Longest(b.source[pos:]) == 0 {
			pos++
		}
		out = append(out, pos-start)
	}
	return out
}

// SegmentCount implements convert.Backend.
func (b *Backend) SegmentCount() int { return len(b.lengths) }

func (b *Backend) start(seg int) int {
	n := 0
	for _, l := range b.lengths[:seg] {
		n += l
	}
	return n
}

func (b *Backend) valid(seg int) bool { return seg >= 0 && seg < len(b.lengths) }

func (b *Backend) reading(seg int) string {
	if !b.valid(seg) {
		return ""
	}
	s := b.start(seg)
	return string(b.source[s : s+b.lengths[seg]])
}

// candidates lists learned words, then dictionary words, then the reading
// in hiragana and katakana.
func (b *Backend) candidates(seg int) []string {
	if c, ok := b.cands[seg]; ok {
		return c
	}
	r := b.reading(seg)
	var out []string
	push := func(w string) {
		if w != "" && !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	if b.learn != nil {
		ranked, err := b.learn.Ranked(r)
		if err != nil {
			b.log.Warn("load learned candidates", "error", err)
		}
		for _, s := range ranked {
			push(s.Word)
		}
	}
	for _, w := range b.dict.Lookup(r) {
		push(w)
	}
	push(r)
	push(kana.ToKatakana(r))
	b.cands[seg] = out
	return out
}

// CandidateCount implements convert.Backend.
func (b *Backend) CandidateCount(seg int) int {
	if !b.valid(seg) {
		return 0
	}
	return len(b.candidates(seg))
}

// CandidateText implements convert.Backend.
func (b *Backend) CandidateText(seg, index int) string {
	if !b.valid(seg) {
		return ""
	}
	c := b.candidates(seg)
	if index < 0 || index >= len(c) {
		return ""
	}
	return c[index]
}

// SegmentView implements convert.Backend.
func (b *Backend) SegmentView(seg int, v convert.View) string {
	r := b.reading(seg)
	switch v {
	case convert.KatakanaView:
		return kana.ToKatakana(r)
	case convert.HalfKatakanaView:
		return kana.ToHalfKatakana(r)
	}
	return r
}

// ResizeSegment implements convert.Backend. Segments before seg keep their
// boundaries; everything after is segmented again.
func (b *Backend) ResizeSegment(seg, delta int) {
	if !b.valid(seg) {
		return
	}
	start := b.start(seg)
	n := b.lengths[seg] + delta
	if n < 1 || start+n > len(b.source) {
		return
	}
	b.lengths = append(b.lengths[:seg:seg], n)
	b.lengths = append(b.lengths, b.segmentFrom(start+n)...)
	for k := range b.cands {
		if k >= seg {
			delete(b.cands, k)
		}
	}
}

// CommitSegment implements convert.Backend. Candidate choices are learned;
// committing the last segment records the whole phrase.
func (b *Backend) CommitSegment(seg int, c convert.Choice) error {
	if !b.valid(seg) {
		return fmt.Errorf("commit segment %d of %d", seg, len(b.lengths))
	}
	r := b.reading(seg)

	var word string
	if i, ok := c.Index(); ok {
		word = b.CandidateText(seg, i)
		if b.learn != nil && word != "" {
			if err := b.learn.RecordSelection(r, word); err != nil {
				return fmt.Errorf("learn selection: %w", err)
			}
		}
	} else if v, _ := c.View(); v == convert.LatinView || v == convert.WideLatinView {
		b.phraseOK = false
	} else {
		word = b.SegmentView(seg, v)
	}
	b.phraseReading.WriteString(r)
	b.phraseText.WriteString(word)

	if seg == len(b.lengths)-1 && b.phraseOK && b.learn != nil {
		if err := b.learn.RecordPhrase(b.phraseReading.String(), b.phraseText.String()); err != nil {
			return fmt.Errorf("learn phrase: %w", err)
		}
	}
	return nil
}

// SetPredictionText implements convert.Backend.
func (b *Backend) SetPredictionText(text string) error {
	if text == "" {
		return ErrNoSource
	}
	b.preds, b.predReadings = nil, nil
	push := func(reading, w string) {
		if w != "" && !slices.Contains(b.preds, w) {
			b.preds = append(b.preds, w)
			b.predReadings = append(b.predReadings, reading)
		}
	}
	if b.learn != nil {
		phrases, err := b.learn.Predict(text, DefaultPredictLimit)
		if err != nil {
			b.log.Warn("load learned phrases", "error", err)
		}
		for _, p := range phrases {
			push(p.Reading, p.Text)
		}
	}
	for _, r := range b.dict.Prefixed(text) {
		for _, w := range b.dict.Lookup(r) {
			push(r, w)
		}
	}
	return nil
}

// Predictions implements convert.Backend.
func (b *Backend) Predictions() []string { return slices.Clone(b.preds) }

// CommitPrediction implements convert.Backend.
func (b *Backend) CommitPrediction(index int) error {
	if index < 0 || index >= len(b.preds) {
		return fmt.Errorf("commit prediction %d of %d", index, len(b.preds))
	}
	if b.learn == nil {
		return nil
	}
	if err := b.learn.RecordPhrase(b.predReadings[index], b.preds[index]); err != nil {
		return fmt.Errorf("learn phrase: %w", err)
	}
	return nil
}

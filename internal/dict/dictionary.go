package dict

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"goanthy/internal/kana"
)

//go:embed default.yaml
var defaultYAML []byte

// Dictionary maps readings to words in preference order.
type Dictionary struct {
	Name   string
	words  map[string][]string
	maxLen int
}

type dictFile struct {
	Name  string              `yaml:"name"`
	Words map[string][]string `yaml:"words"`
}

// Parse decodes a yaml dictionary document. Katakana readings are folded to
// hiragana.
func Parse(data []byte) (*Dictionary, error) {
	var f dictFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	d := &Dictionary{Name: f.Name, words: make(map[string][]string, len(f.Words))}
	for reading, words := range f.Words {
		reading = kana.ToHiragana(strings.TrimSpace(reading))
		if reading == "" {
			return nil, fmt.Errorf("parse dictionary %q: empty reading", f.Name)
		}
		d.add(reading, words)
	}
	return d, nil
}

// LoadFile reads a yaml dictionary from disk. A file without a name is
// named after the file.
func LoadFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = path
	}
	return d, nil
}

// Default returns the built-in dictionary.
func Default() *Dictionary {
	d, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dictionary) add(reading string, words []string) {
	have := d.words[reading]
	for _, w := range words {
		if w != "" && !slices.Contains(have, w) {
			have = append(have, w)
		}
	}
	d.words[reading] = have
	d.maxLen = max(d.maxLen, utf8.RuneCountInString(reading))
}

// Merge returns a dictionary holding d's words followed by o's.
func (d *Dictionary) Merge(o *Dictionary) *Dictionary {
	out := &Dictionary{Name: o.Name, words: make(map[string][]string, len(d.words)+len(o.words))}
	for r, w := range d.words {
		out.add(r, w)
	}
	for r, w := range o.words {
		out.add(r, w)
	}
	return out
}

// Len returns the number of readings.
func (d *Dictionary) Len() int { return len(d.words) }

// Lookup returns the words for reading.
func (d *Dictionary) Lookup(reading string) []string {
	return d.words[reading]
}

// Longest returns the length in characters of the longest reading that
// prefixes src, or 0.
func (d *Dictionary) Longest(src []rune) int {
	for n := min(d.maxLen, len(src)); n > 0; n-- {
		if _, ok := d.words[string(src[:n])]; ok {
			return n
		}
	}
	return 0
}

// Prefixed returns the readings that start with prefix, shortest first.
func (d *Dictionary) Prefixed(prefix string) []string {
	var out []string
	for r := range d.words {
		if strings.HasPrefix(r, prefix) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		if c := len(a) - len(b); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return out
}

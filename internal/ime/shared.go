package ime

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"goanthy/internal/config"
	"goanthy/internal/keybind"
	"goanthy/internal/keys"
	"goanthy/internal/thumb"
)

// Shared is the state every session reads: the preferences snapshot, the
// key binding table, the thumb-shift keyboard and the normalization table.
// Snapshots are replaced wholesale so readers never see a partial update.
type Shared struct {
	log      *slog.Logger
	bindings *keybind.Bindings
	utf8     bool

	mu     sync.Mutex // serializes Apply
	cfg    atomic.Pointer[config.Config]
	thumb  atomic.Pointer[thumb.Config]
	normal atomic.Pointer[strings.Replacer]

	subMu  sync.Mutex
	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(config.Change)
}

// NewShared builds the shared state from cfg. A nil cfg uses the defaults.
func NewShared(cfg *config.Config, log *slog.Logger) (*Shared, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.Clone()

	tc, err := ThumbConfig(cfg.Thumb)
	if err != nil {
		return nil, err
	}
	profile, err := EffectiveProfile(cfg)
	if err != nil {
		log.Warn("shortcut overrides", "error", err)
	}

	s := &Shared{
		log:      log,
		bindings: keybind.NewBindings(profile, log),
		utf8:     utf8Locale(),
	}
	s.cfg.Store(cfg)
	s.thumb.Store(&tc)
	s.normal.Store(s.replacer(cfg))
	return s, nil
}

// Config returns the current preferences. The result must not be
// modified.
func (s *Shared) Config() *config.Config { return s.cfg.Load() }

// Bindings returns the shared key binding table.
func (s *Shared) Bindings() *keybind.Bindings { return s.bindings }

// Thumb returns the current thumb-shift keyboard.
func (s *Shared) Thumb() thumb.Config { return *s.thumb.Load() }

// Normalizer returns the input normalization function, or nil when no
// substitution applies.
func (s *Shared) Normalizer() func(string) string {
	r := s.normal.Load()
	if r == nil {
		return nil
	}
	return r.Replace
}

func (s *Shared) replacer(cfg *config.Config) *strings.Replacer {
	if !s.utf8 || len(cfg.Common.Normalization) == 0 {
		return nil
	}
	pairs := make([]string, 0, 2*len(cfg.Common.Normalization))
	for _, sub := range cfg.Common.Normalization {
		pairs = append(pairs, sub.From, sub.To)
	}
	return strings.NewReplacer(pairs...)
}

// utf8Locale reports whether the process locale uses UTF-8.
func utf8Locale() bool {
	for _, env := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(env); v != "" {
			v = strings.ToLower(v)
			return strings.Contains(v, "utf-8") || strings.Contains(v, "utf8")
		}
	}
	return false
}

// Subscribe registers fn for every applied change and returns a function
// that removes it. fn runs on the goroutine calling Apply.
func (s *Shared) Subscribe(fn func(config.Change)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Apply updates the preferences with changes, patches the key bindings and
// notifies subscribers of every change that applied. Changes that fail are
// skipped and reported in the returned error.
func (s *Shared) Apply(changes []config.Change) error {
	s.mu.Lock()
	next := s.cfg.Load().Clone()
	var (
		applied []config.Change
		errs    []error
		rebuild bool
		thumbs  bool
	)
	for _, ch := range changes {
		prev := next.Clone()
		if err := next.Apply(ch); err != nil {
			errs = append(errs, err)
			continue
		}
		applied = append(applied, ch)

		switch {
		case ch.Section == "common" && ch.Key == "shortcut_type":
			rebuild = true
		case ch.Section == "thumb":
			thumbs = true
		case strings.HasPrefix(ch.Section, config.ShortcutSection) && !rebuild:
			profile := strings.TrimPrefix(ch.Section, config.ShortcutSection)
			if profile != next.Common.ShortcutType {
				continue
			}
			cmd, err := keybind.ParseCommand(ch.Key)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			added, removed := keybind.Diff(effectiveKeys(prev, cmd), effectiveKeys(next, cmd))
			s.bindings.ApplyDelta(cmd, added, removed)
		}
	}

	if rebuild {
		p, err := EffectiveProfile(next)
		if err != nil {
			errs = append(errs, err)
		}
		s.bindings.Rebuild(p)
	}
	if thumbs {
		tc, err := ThumbConfig(next.Thumb)
		if err != nil {
			errs = append(errs, err)
		} else {
			s.thumb.Store(&tc)
		}
	}
	s.normal.Store(s.replacer(next))
	s.cfg.Store(next)
	s.mu.Unlock()

	s.subMu.Lock()
	subs := append([]subscriber(nil), s.subs...)
	s.subMu.Unlock()
	for _, ch := range applied {
		s.log.Debug("preference changed", "change", ch.String())
		for _, sub := range subs {
			sub.fn(ch)
		}
	}
	return errors.Join(errs...)
}

// EffectiveProfile returns the key bindings of the configured shortcut
// profile: the built-in profile of that name, or the default one for a
// custom name, with the configured overrides on top.
func EffectiveProfile(cfg *config.Config) (keybind.Profile, error) {
	builtin := keybind.Profiles()
	name := cfg.Common.ShortcutType
	base, ok := builtin[name]
	if !ok {
		base = builtin[keybind.DefaultProfile]
	}
	over, err := keybind.ParseProfile(cfg.Shortcut[name])
	maps.Copy(base, over)
	if err != nil {
		return base, fmt.Errorf("shortcut profile %s: %w", name, err)
	}
	return base, nil
}

func effectiveKeys(cfg *config.Config, cmd keybind.Command) []string {
	name := cfg.Common.ShortcutType
	if names, ok := cfg.Shortcut[name][cmd.String()]; ok {
		return names
	}
	builtin := keybind.Profiles()
	base, ok := builtin[name]
	if !ok {
		base = builtin[keybind.DefaultProfile]
	}
	return base[cmd]
}

// ThumbConfig converts the thumb preferences into a keyboard description.
func ThumbConfig(tc config.ThumbConfig) (thumb.Config, error) {
	c := thumb.DefaultConfig()
	var ok bool
	if c.LS, ok = keys.KeyvalFromName(tc.LS); !ok {
		return c, fmt.Errorf("thumb ls %q: %w", tc.LS, keys.ErrUnknownKey)
	}
	if c.RS, ok = keys.KeyvalFromName(tc.RS); !ok {
		return c, fmt.Errorf("thumb rs %q: %w", tc.RS, keys.ErrUnknownKey)
	}
	if tc.T1 > 0 {
		c.T1 = time.Duration(tc.T1) * time.Millisecond
	}
	if tc.T2 > 0 {
		c.T2 = time.Duration(tc.T2) * time.Millisecond
	}
	if len(tc.Layout) > 0 {
		over, err := thumb.ParseLayout(tc.Layout)
		if err != nil {
			return c, err
		}
		maps.Copy(c.Layout, over)
	}
	if len(tc.Chords) > 0 {
		chords, err := thumb.ParseChords(tc.Chords)
		if err != nil {
			return c, err
		}
		maps.Copy(c.Chords, chords)
	}
	c.Symbols = map[thumb.Side]string{}
	if tc.LeftSymbol != "" {
		c.Symbols[thumb.Left] = tc.LeftSymbol
	}
	if tc.RightSymbol != "" {
		c.Symbols[thumb.Right] = tc.RightSymbol
	}
	return c, nil
}

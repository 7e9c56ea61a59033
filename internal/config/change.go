package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// ErrUnknownSetting is returned when a change names no known setting.
var ErrUnknownSetting = errors.New("config: unknown setting")

// Change is one preference update: a section, a key and the new value.
// Shortcut changes use the section "shortcut/<profile>" with the command
// name as key and the key-name list as value; a nil value removes the
// override.
type Change struct {
	Section string
	Key     string
	Value   any
}

func (c Change) String() string {
	return fmt.Sprintf("%s/%s=%v", c.Section, c.Key, c.Value)
}

// ShortcutSection is the section prefix of shortcut changes.
const ShortcutSection = "shortcut/"

type setting struct {
	section, key string
	get          func(*Config) any
	set          func(*Config, any) error
}

func strField(section, key string, p func(*Config) *string) setting {
	return setting{
		section: section, key: key,
		get: func(c *Config) any { return *p(c) },
		set: func(c *Config, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("want string, got %T", v)
			}
			*p(c) = s
			return nil
		},
	}
}

func intField(section, key string, p func(*Config) *int) setting {
	return setting{
		section: section, key: key,
		get: func(c *Config) any { return *p(c) },
		set: func(c *Config, v any) error {
			n, err := toInt(v)
			if err != nil {
				return err
			}
			*p(c) = n
			return nil
		},
	}
}

func boolField(section, key string, p func(*Config) *bool) setting {
	return setting{
		section: section, key: key,
		get: func(c *Config) any { return *p(c) },
		set: func(c *Config, v any) error {
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("want bool, got %T", v)
			}
			*p(c) = b
			return nil
		},
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint32:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("want integer, got %T", v)
}

var settings = []setting{
	strField("common", "input_mode", func(c *Config) *string { return &c.Common.InputMode }),
	strField("common", "typing_method", func(c *Config) *string { return &c.Common.TypingMethod }),
	strField("common", "segment_mode", func(c *Config) *string { return &c.Common.SegmentMode }),
	strField("common", "shortcut_type", func(c *Config) *string { return &c.Common.ShortcutType }),
	intField("common", "page_size", func(c *Config) *int { return &c.Common.PageSize }),
	boolField("common", "half_width_space", func(c *Config) *bool { return &c.Common.HalfWidthSpace }),
	boolField("common", "behavior_on_period", func(c *Config) *bool { return &c.Common.BehaviorOnPeriod }),
	strField("common", "behavior_on_focus_out", func(c *Config) *string { return &c.Common.BehaviorOnFocusOut }),
	boolField("common", "ten_key_mode", func(c *Config) *bool { return &c.Common.TenKeyMode }),
	{
		section: "common", key: "normalization",
		get: func(c *Config) any { return slices.Clone(c.Common.Normalization) },
		set: func(c *Config, v any) error {
			subs, ok := v.([]Substitution)
			if !ok {
				return fmt.Errorf("want []Substitution, got %T", v)
			}
			c.Common.Normalization = slices.Clone(subs)
			return nil
		},
	},
	strField("thumb", "ls", func(c *Config) *string { return &c.Thumb.LS }),
	strField("thumb", "rs", func(c *Config) *string { return &c.Thumb.RS }),
	intField("thumb", "t1", func(c *Config) *int { return &c.Thumb.T1 }),
	intField("thumb", "t2", func(c *Config) *int { return &c.Thumb.T2 }),
	strField("thumb", "left_symbol", func(c *Config) *string { return &c.Thumb.LeftSymbol }),
	strField("thumb", "right_symbol", func(c *Config) *string { return &c.Thumb.RightSymbol }),
	{
		section: "thumb", key: "layout",
		get: func(c *Config) any { return cloneLists(c.Thumb.Layout) },
		set: func(c *Config, v any) error {
			m, ok := v.(map[string][]string)
			if !ok {
				return fmt.Errorf("want map[string][]string, got %T", v)
			}
			c.Thumb.Layout = cloneLists(m)
			return nil
		},
	},
	{
		section: "thumb", key: "chords",
		get: func(c *Config) any { return c.Thumb.Chords },
		set: func(c *Config, v any) error {
			m, ok := v.(map[string]string)
			if !ok {
				return fmt.Errorf("want map[string]string, got %T", v)
			}
			c.Thumb.Chords = m
			return nil
		},
	},
	strField("logging", "level", func(c *Config) *string { return &c.Logging.Level }),
}

func lookupSetting(section, key string) (setting, bool) {
	for _, s := range settings {
		if s.section == section && s.key == key {
			return s, true
		}
	}
	return setting{}, false
}

// Apply updates c with ch.
func (c *Config) Apply(ch Change) error {
	if profile, ok := strings.CutPrefix(ch.Section, ShortcutSection); ok {
		return c.applyShortcut(profile, ch)
	}
	s, ok := lookupSetting(ch.Section, ch.Key)
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownSetting, ch.Section, ch.Key)
	}
	if err := s.set(c, ch.Value); err != nil {
		return fmt.Errorf("%s/%s: %w", ch.Section, ch.Key, err)
	}
	return nil
}

func (c *Config) applyShortcut(profile string, ch Change) error {
	if profile == "" || ch.Key == "" {
		return fmt.Errorf("%w: %s/%s", ErrUnknownSetting, ch.Section, ch.Key)
	}
	if ch.Value == nil {
		delete(c.Shortcut[profile], ch.Key)
		return nil
	}
	names, ok := ch.Value.([]string)
	if !ok {
		return fmt.Errorf("%s/%s: want []string, got %T", ch.Section, ch.Key, ch.Value)
	}
	if c.Shortcut == nil {
		c.Shortcut = map[string]map[string][]string{}
	}
	if c.Shortcut[profile] == nil {
		c.Shortcut[profile] = map[string][]string{}
	}
	c.Shortcut[profile][ch.Key] = slices.Clone(names)
	return nil
}

// Diff returns the changes that turn old into new, in a stable order.
// Dict and learning settings and logging settings other than the level
// are not reported.
func Diff(old, new *Config) []Change {
	var out []Change
	for _, s := range settings {
		if v := s.get(new); !reflect.DeepEqual(s.get(old), v) {
			out = append(out, Change{Section: s.section, Key: s.key, Value: v})
		}
	}

	profiles := map[string]bool{}
	for p := range old.Shortcut {
		profiles[p] = true
	}
	for p := range new.Shortcut {
		profiles[p] = true
	}
	names := make([]string, 0, len(profiles))
	for p := range profiles {
		names = append(names, p)
	}
	sort.Strings(names)

	for _, p := range names {
		oldP, newP := old.Shortcut[p], new.Shortcut[p]
		cmds := map[string]bool{}
		for cmd := range oldP {
			cmds[cmd] = true
		}
		for cmd := range newP {
			cmds[cmd] = true
		}
		sorted := make([]string, 0, len(cmds))
		for cmd := range cmds {
			sorted = append(sorted, cmd)
		}
		sort.Strings(sorted)
		for _, cmd := range sorted {
			nv, present := newP[cmd]
			if present && reflect.DeepEqual(oldP[cmd], nv) {
				continue
			}
			ch := Change{Section: ShortcutSection + p, Key: cmd}
			if present {
				ch.Value = slices.Clone(nv)
			}
			out = append(out, ch)
		}
	}
	return out
}

// Package config handles preference loading, validation and change
// notification for the input method engine.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// Version is the current configuration schema version.
const Version = 1

// AppName names the per-user config and data directories.
const AppName = "goanthy"

// Config holds the complete engine preferences.
type Config struct {
	Version int `toml:"version" json:"version" yaml:"version"`

	Common CommonConfig `toml:"common" json:"common" yaml:"common"`

	// Thumb describes the thumb-shift keyboard.
	Thumb ThumbConfig `toml:"thumb" json:"thumb" yaml:"thumb"`

	// Shortcut overrides key bindings per profile: profile name to command
	// name to key names. Commands not listed keep the built-in profile's keys.
	Shortcut map[string]map[string][]string `toml:"shortcut,omitempty" json:"shortcut,omitempty" yaml:"shortcut,omitempty"`

	Dict DictConfig `toml:"dict" json:"dict" yaml:"dict"`

	Learning LearningConfig `toml:"learning" json:"learning" yaml:"learning"`

	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// CommonConfig holds the session behaviour preferences.
type CommonConfig struct {
	// InputMode is one of hiragana, katakana, half_katakana, latin,
	// wide_latin.
	InputMode string `toml:"input_mode" json:"input_mode" yaml:"input_mode"`

	// TypingMethod is one of romaji, kana, thumb_shift.
	TypingMethod string `toml:"typing_method" json:"typing_method" yaml:"typing_method"`

	// SegmentMode is one of multi, single, immediate_multi,
	// immediate_single.
	SegmentMode string `toml:"segment_mode" json:"segment_mode" yaml:"segment_mode"`

	// ShortcutType names the key binding profile.
	ShortcutType string `toml:"shortcut_type" json:"shortcut_type" yaml:"shortcut_type"`

	PageSize int `toml:"page_size" json:"page_size" yaml:"page_size"`

	HalfWidthSpace bool `toml:"half_width_space" json:"half_width_space" yaml:"half_width_space"`

	// BehaviorOnPeriod converts right after a period or comma is typed.
	BehaviorOnPeriod bool `toml:"behavior_on_period" json:"behavior_on_period" yaml:"behavior_on_period"`

	// BehaviorOnFocusOut is one of commit, clear, retain.
	BehaviorOnFocusOut string `toml:"behavior_on_focus_out" json:"behavior_on_focus_out" yaml:"behavior_on_focus_out"`

	// TenKeyMode maps keypad keys to their main keyboard equivalents.
	TenKeyMode bool `toml:"ten_key_mode" json:"ten_key_mode" yaml:"ten_key_mode"`

	// Normalization rewrites hiragana before conversion. Applied only in a
	// UTF-8 locale.
	Normalization []Substitution `toml:"normalization,omitempty" json:"normalization,omitempty" yaml:"normalization,omitempty"`
}

// Substitution replaces From with To.
type Substitution struct {
	From string `toml:"from" json:"from" yaml:"from"`
	To   string `toml:"to" json:"to" yaml:"to"`
}

// ThumbConfig describes the thumb-shift keyboard.
type ThumbConfig struct {
	// LS and RS name the left and right thumb keys.
	LS string `toml:"ls" json:"ls" yaml:"ls"`
	RS string `toml:"rs" json:"rs" yaml:"rs"`

	// T1 and T2 are the thumb and character chord windows in milliseconds.
	T1 int `toml:"t1" json:"t1" yaml:"t1"`
	T2 int `toml:"t2" json:"t2" yaml:"t2"`

	// Layout overrides entries of the built-in layout: key name to
	// [unshifted, right thumb, left thumb].
	Layout map[string][]string `toml:"layout,omitempty" json:"layout,omitempty" yaml:"layout,omitempty"`

	// Chords maps "key key" pairs to one character.
	Chords map[string]string `toml:"chords,omitempty" json:"chords,omitempty" yaml:"chords,omitempty"`

	LeftSymbol  string `toml:"left_symbol" json:"left_symbol" yaml:"left_symbol"`
	RightSymbol string `toml:"right_symbol" json:"right_symbol" yaml:"right_symbol"`
}

// DictConfig lists dictionary files.
type DictConfig struct {
	// Files are merged into the built-in dictionary.
	Files []string `toml:"files,omitempty" json:"files,omitempty" yaml:"files,omitempty"`

	// Personalities are extra dictionaries cycled by circle_dict_method.
	Personalities []string `toml:"personalities,omitempty" json:"personalities,omitempty" yaml:"personalities,omitempty"`
}

// LearningConfig controls the learning store.
type LearningConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `toml:"path" json:"path" yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is stdout, stderr or file.
	Output string `toml:"output" json:"output" yaml:"output"`

	FilePath   string `toml:"file_path" json:"file_path" yaml:"file_path"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `toml:"compress" json:"compress" yaml:"compress"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Common: CommonConfig{
			InputMode:          "hiragana",
			TypingMethod:       "romaji",
			SegmentMode:        "multi",
			ShortcutType:       "default",
			PageSize:           10,
			BehaviorOnFocusOut: "commit",
		},
		Thumb: ThumbConfig{
			LS: "Muhenkan",
			RS: "Henkan",
			T1: 100,
			T2: 75,
		},
		Learning: LearningConfig{
			Enabled: true,
			Path:    filepath.Join(DataDir(), "learning.db"),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// DataDir returns the data directory. GOANTHY_DATA_DIR overrides it.
func DataDir() string {
	if envDir := os.Getenv("GOANTHY_DATA_DIR"); envDir != "" {
		return envDir
	}
	return PlatformDataDir()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies GOANTHY_* environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GOANTHY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GOANTHY_LOG_PATH"); v != "" {
		c.Logging.Output = "file"
		c.Logging.FilePath = v
	}
	if v := os.Getenv("GOANTHY_LEARNING_PATH"); v != "" {
		c.Learning.Path = v
	}
}

// EnsureDirectories creates the directories the configured files live in.
func (c *Config) EnsureDirectories() error {
	for _, p := range []string{c.Learning.Path, c.Logging.FilePath} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", filepath.Dir(p), err)
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Common.Normalization = slices.Clone(c.Common.Normalization)
	clone.Thumb.Layout = cloneLists(c.Thumb.Layout)
	clone.Thumb.Chords = maps.Clone(c.Thumb.Chords)
	clone.Dict.Files = slices.Clone(c.Dict.Files)
	clone.Dict.Personalities = slices.Clone(c.Dict.Personalities)
	if c.Shortcut != nil {
		clone.Shortcut = make(map[string]map[string][]string, len(c.Shortcut))
		for name, p := range c.Shortcut {
			clone.Shortcut[name] = cloneLists(p)
		}
	}
	return &clone
}

func cloneLists(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

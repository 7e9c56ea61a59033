package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GOANTHY_DATA_DIR", dir)
	t.Setenv("GOANTHY_LOG_LEVEL", "")
	t.Setenv("GOANTHY_LOG_PATH", "")
	t.Setenv("GOANTHY_LEARNING_PATH", "")
	return dir
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
}

func TestDefaultConfig(t *testing.T) {
	dir := isolate(t)
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "hiragana", cfg.Common.InputMode)
	assert.Equal(t, 10, cfg.Common.PageSize)
	assert.Equal(t, filepath.Join(dir, "learning.db"), cfg.Learning.Path)
	assert.True(t, strings.HasSuffix(ConfigPath(), "config.toml"))
}

func TestLoadFileMissing(t *testing.T) {
	isolate(t)
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileFormats(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		file string
		body string
	}{
		{"toml", "config.toml", `
[common]
input_mode = "katakana"
page_size = 5

[shortcut.default]
commit = ["Return"]
`},
		{"json", "config.json", `{
  "common": {"input_mode": "katakana", "page_size": 5},
  "shortcut": {"default": {"commit": ["Return"]}}
}`},
		{"yaml", "config.yaml", `
common:
  input_mode: katakana
  page_size: 5
shortcut:
  default:
    commit: [Return]
`},
		{"autodetect", "goanthyrc", `
[common]
input_mode = "katakana"
page_size = 5

[shortcut.default]
commit = ["Return"]
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			write(t, path, tt.body)

			cfg, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "katakana", cfg.Common.InputMode)
			assert.Equal(t, 5, cfg.Common.PageSize)
			assert.Equal(t, "romaji", cfg.Common.TypingMethod, "unset keys keep defaults")
			assert.Equal(t, []string{"Return"}, cfg.Shortcut["default"]["commit"])
		})
	}
}

func TestLoadFileRejects(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[common]\nbogus = 1\n", "schema validation"},
		{"bad enum", "[common]\ninput_mode = \"cyrillic\"\n", "schema validation"},
		{"page size", "[common]\npage_size = 11\n", "schema validation"},
		{"unknown command", "[shortcut.default]\nfly = [\"F1\"]\n", "shortcut.default.fly"},
		{"unknown profile", "[common]\nshortcut_type = \"emacs\"\n", "common.shortcut_type"},
		{"same thumb keys", "[thumb]\nls = \"Henkan\"\nrs = \"Henkan\"\n", "thumb.rs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			write(t, path, tt.body)

			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCustomShortcutProfile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	write(t, path, `
[common]
shortcut_type = "mine"

[shortcut.mine]
convert = ["Henkan"]
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", cfg.Common.ShortcutType)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GOANTHY_LOG_LEVEL", "debug")
	t.Setenv("GOANTHY_LOG_PATH", "/tmp/goanthy.log")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "file", cfg.Logging.Output)
	assert.Equal(t, "/tmp/goanthy.log", cfg.Logging.FilePath)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	isolate(t)
	for _, ext := range []string{".toml", ".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Common.SegmentMode = "immediate_single"
			cfg.Common.Normalization = []Substitution{{From: "ゔ", To: "う゛"}}
			cfg.Thumb.Chords = map[string]string{"j k": "ん"}
			cfg.Dict.Files = []string{"/usr/share/goanthy/extra.yaml"}

			path := filepath.Join(t.TempDir(), "config"+ext)
			require.NoError(t, SaveConfig(cfg, path))

			got, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, path)

	again, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, cfg, again)
}

func TestDiffAndApply(t *testing.T) {
	isolate(t)
	old := DefaultConfig()
	next := old.Clone()
	next.Common.PageSize = 5
	next.Thumb.T1 = 120
	next.Logging.Level = "debug"
	next.Logging.Format = "json"
	next.Shortcut = map[string]map[string][]string{
		"default": {"commit": {"Return"}},
	}

	changes := Diff(old, next)
	assert.Equal(t, []Change{
		{Section: "common", Key: "page_size", Value: 5},
		{Section: "thumb", Key: "t1", Value: 120},
		{Section: "logging", Key: "level", Value: "debug"},
		{Section: "shortcut/default", Key: "commit", Value: []string{"Return"}},
	}, changes)

	patched := old.Clone()
	for _, ch := range changes {
		require.NoError(t, patched.Apply(ch))
	}
	patched.Logging.Format = "json"
	assert.Equal(t, next, patched)

	assert.Empty(t, Diff(next, patched))
}

func TestDiffRemovedShortcut(t *testing.T) {
	isolate(t)
	old := DefaultConfig()
	old.Shortcut = map[string]map[string][]string{"default": {"commit": {"Return"}}}
	next := DefaultConfig()

	changes := Diff(old, next)
	require.Len(t, changes, 1)
	assert.Equal(t, Change{Section: "shortcut/default", Key: "commit"}, changes[0])

	require.NoError(t, old.Apply(changes[0]))
	assert.Empty(t, old.Shortcut["default"])
}

func TestApplyErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.Apply(Change{Section: "common", Key: "colour", Value: "red"}), ErrUnknownSetting)
	assert.Error(t, cfg.Apply(Change{Section: "common", Key: "page_size", Value: "ten"}))
	assert.Error(t, cfg.Apply(Change{Section: "shortcut/default", Key: "commit", Value: 3}))

	require.NoError(t, cfg.Apply(Change{Section: "common", Key: "page_size", Value: int64(7)}))
	assert.Equal(t, 7, cfg.Common.PageSize)
}

func TestLoaderReload(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	write(t, path, "[common]\npage_size = 5\n")

	l := NewLoader(path)
	defer l.Close()
	_, err := l.Load()
	require.NoError(t, err)

	var got []Change
	l.OnChange(func(_ *Config, changes []Change) { got = changes })

	l.Reload()
	assert.Nil(t, got, "unchanged file notifies nobody")

	write(t, path, "[common]\npage_size = 8\n")
	l.Reload()
	assert.Equal(t, []Change{{Section: "common", Key: "page_size", Value: 8}}, got)
	assert.Equal(t, 8, l.Config().Common.PageSize)
}

func TestLoaderReloadInvalidKeepsConfig(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	write(t, path, "[common]\npage_size = 5\n")

	l := NewLoader(path)
	defer l.Close()
	_, err := l.Load()
	require.NoError(t, err)

	write(t, path, "[common]\npage_size = 0\n")
	l.Reload()

	select {
	case err := <-l.Errors():
		assert.Contains(t, err.Error(), "reload config")
	default:
		t.Fatal("expected a reload error")
	}
	assert.Equal(t, 5, l.Config().Common.PageSize)
}

func TestLoaderWatch(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	write(t, path, "[common]\npage_size = 5\n")

	l := NewLoader(path)
	defer l.Close()
	_, err := l.Load()
	require.NoError(t, err)

	changed := make(chan []Change, 1)
	l.OnChange(func(_ *Config, changes []Change) {
		select {
		case changed <- changes:
		default:
		}
	})
	require.NoError(t, l.Watch())

	write(t, path, "[common]\npage_size = 3\n")

	select {
	case changes := <-changed:
		assert.Equal(t, []Change{{Section: "common", Key: "page_size", Value: 3}}, changes)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

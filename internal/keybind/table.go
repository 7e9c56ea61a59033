package keybind

import (
	_ "embed"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/toml"

	"goanthy/internal/keys"
)

//go:embed profiles.toml
var profilesTOML string

// DefaultProfile is the shortcut profile used when none is configured.
const DefaultProfile = "default"

// Profile maps each command to the key names bound to it.
type Profile map[Command][]string

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for cmd, names := range p {
		out[cmd] = slices.Clone(names)
	}
	return out
}

// ParseProfile converts a command-name keyed table into a Profile.
// Unknown command names are reported in the returned error but do not
// prevent the remaining entries from being used.
func ParseProfile(raw map[string][]string) (Profile, error) {
	p := make(Profile, len(raw))
	var unknown []string
	for name, keyNames := range raw {
		cmd, err := ParseCommand(name)
		if err != nil {
			unknown = append(unknown, name)
			continue
		}
		p[cmd] = slices.Clone(keyNames)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return p, fmt.Errorf("%w: %v", ErrUnknownCommand, unknown)
	}
	return p, nil
}

var (
	profilesOnce sync.Once
	profiles     map[string]Profile
)

// Profiles returns copies of the built-in shortcut profiles.
func Profiles() map[string]Profile {
	profilesOnce.Do(func() {
		var raw map[string]map[string][]string
		if _, err := toml.Decode(profilesTOML, &raw); err != nil {
			panic(fmt.Sprintf("keybind: decode built-in profiles: %v", err))
		}
		profiles = make(map[string]Profile, len(raw))
		for name, table := range raw {
			p, err := ParseProfile(table)
			if err != nil {
				panic(fmt.Sprintf("keybind: built-in profile %s: %v", name, err))
			}
			profiles[name] = p
		}
	})
	out := make(map[string]Profile, len(profiles))
	for name, p := range profiles {
		out[name] = p.Clone()
	}
	return out
}

// Table is an immutable key to command-list mapping.
type Table struct {
	entries map[keys.Key][]Command
}

// Build constructs a Table from a profile. Key names that do not parse
// are logged and skipped.
func Build(p Profile, log *slog.Logger) *Table {
	t := &Table{entries: make(map[keys.Key][]Command)}
	for _, cmd := range Commands() {
		for _, name := range p[cmd] {
			t.add(cmd, name, log)
		}
	}
	return t
}

// Lookup returns the commands bound to k in declaration order. The
// returned slice must not be modified.
func (t *Table) Lookup(k keys.Key) []Command {
	if t == nil {
		return nil
	}
	return t.entries[k]
}

// Len returns the number of bound keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// WithDelta returns a copy of t with the given key names bound to and
// unbound from cmd. An undeclared cmd leaves the copy unchanged.
func (t *Table) WithDelta(cmd Command, added, removed []string, log *slog.Logger) *Table {
	next := &Table{entries: maps.Clone(t.entries)}
	if next.entries == nil {
		next.entries = make(map[keys.Key][]Command)
	}
	if !cmd.Valid() {
		logger(log).Warn("skipping bindings for unknown command", "command", cmd.String())
		return next
	}
	for _, name := range removed {
		next.remove(cmd, name, log)
	}
	for _, name := range added {
		next.add(cmd, name, log)
	}
	return next
}

func (t *Table) add(cmd Command, name string, log *slog.Logger) {
	k, err := keys.ParseName(name)
	if err != nil {
		logger(log).Warn("skipping key binding", "command", cmd.String(), "key", name, "error", err)
		return
	}
	cur := t.entries[k]
	if slices.Contains(cur, cmd) {
		return
	}
	next := append(slices.Clone(cur), cmd)
	slices.Sort(next)
	t.entries[k] = next
}

func (t *Table) remove(cmd Command, name string, log *slog.Logger) {
	k, err := keys.ParseName(name)
	if err != nil {
		logger(log).Warn("skipping key unbinding", "command", cmd.String(), "key", name, "error", err)
		return
	}
	cur := t.entries[k]
	i := slices.Index(cur, cmd)
	if i < 0 {
		return
	}
	next := slices.Delete(slices.Clone(cur), i, i+1)
	if len(next) == 0 {
		delete(t.entries, k)
		return
	}
	t.entries[k] = next
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// Bindings holds the current Table shared by every session. Readers see
// either the previous or the next table, never a partial one.
type Bindings struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Table]
	log     *slog.Logger
}

// NewBindings creates a holder seeded with the given profile.
func NewBindings(p Profile, log *slog.Logger) *Bindings {
	b := &Bindings{log: log}
	b.current.Store(Build(p, log))
	return b
}

// Table returns the current table snapshot.
func (b *Bindings) Table() *Table {
	return b.current.Load()
}

// Lookup resolves k against the current table.
func (b *Bindings) Lookup(k keys.Key) []Command {
	return b.current.Load().Lookup(k)
}

// Rebuild replaces the table with one built from p.
func (b *Bindings) Rebuild(p Profile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current.Store(Build(p, b.log))
}

// ApplyDelta adjusts the bindings of one command.
func (b *Bindings) ApplyDelta(cmd Command, added, removed []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current.Store(b.current.Load().WithDelta(cmd, added, removed, b.log))
}

// Diff returns the key names present in next but not prev, and those in
// prev but not next.
func Diff(prev, next []string) (added, removed []string) {
	for _, n := range next {
		if !slices.Contains(prev, n) {
			added = append(added, n)
		}
	}
	for _, p := range prev {
		if !slices.Contains(next, p) {
			removed = append(removed, p)
		}
	}
	return added, removed
}

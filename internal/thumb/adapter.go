// Package thumb implements thumb-shift chorded input. A character key and a
// thumb key pressed together, or within a short window, form one character.
package thumb

import (
	"log/slog"

	"goanthy/internal/eventloop"
	"goanthy/internal/keys"
)

// Host receives the adapter's output.
type Host interface {
	// Insert feeds text through the ordinary character insertion path.
	Insert(s string)
	// Exec runs the commands bound to k and reports whether one handled it.
	Exec(k keys.Key) bool
	// PreeditEmpty reports whether nothing is being composed.
	PreeditEmpty() bool
}

// State is the chord state. The zero value is idle.
type State struct {
	// Pending is a character key waiting for a partner, or 0.
	Pending uint32
	// Side is a held thumb key.
	Side Side
	// RepeatKey and RepeatSide remember the last shifted character so
	// auto-repeat of either key reproduces it.
	RepeatKey  uint32
	RepeatSide Side
}

// Adapter is the thumb-shift state machine. It must only be used from the
// goroutine that runs its scheduler's callbacks.
type Adapter struct {
	cfg   Config
	host  Host
	sched eventloop.Scheduler
	log   *slog.Logger

	st    State
	timer eventloop.Timer
}

// New creates an idle adapter.
func New(cfg Config, host Host, sched eventloop.Scheduler, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{cfg: cfg, host: host, sched: sched, log: log}
}

// SetConfig replaces the keyboard description and resets the state.
func (a *Adapter) SetConfig(cfg Config) {
	a.Reset()
	a.cfg = cfg
}

// Config returns the keyboard description.
func (a *Adapter) Config() Config { return a.cfg }

// State returns the current chord state.
func (a *Adapter) State() State { return a.st }

// Reset cancels the timer and forgets all pending keys without output.
func (a *Adapter) Reset() {
	a.stop()
	a.st = State{}
}

func (a *Adapter) arm(long bool) {
	d := a.cfg.T2
	if long {
		d = a.cfg.T1
	}
	a.timer = a.sched.AfterFunc(d, a.timeout)
}

// stop cancels the timer and reports whether it was still pending.
func (a *Adapter) stop() bool {
	if a.timer == nil {
		return false
	}
	t := a.timer
	a.timer = nil
	return t.Stop()
}

func (a *Adapter) timeout() {
	a.timer = nil
	if a.st.Pending != 0 {
		a.emit(a.st.Pending, a.st.Side)
		return
	}
	a.execSide(a.st.Side)
}

// emit inserts the character of keyval on side and clears the chord.
func (a *Adapter) emit(keyval uint32, side Side) {
	a.st.Pending = 0
	a.st.Side = NoSide
	if ch := a.cfg.Layout[keyval].Char(side); ch != "" {
		a.host.Insert(ch)
	}
}

func (a *Adapter) execSide(s Side) {
	if s == NoSide {
		return
	}
	a.host.Exec(keys.Key{Keyval: a.cfg.key(s)})
}

// Flush resolves whatever is still waiting on a timer.
func (a *Adapter) Flush() {
	switch {
	case a.st.Pending != 0:
		a.stop()
		a.emit(a.st.Pending, a.st.Side)
	case a.st.Side != NoSide:
		if a.stop() {
			a.execSide(a.st.Side)
		}
	}
}

// Process handles one key event and reports whether it was consumed.
func (a *Adapter) Process(k keys.Key, release bool) bool {
	if release {
		a.release(k.Keyval)
		return true
	}

	side := a.cfg.side(k.Keyval)
	_, isChar := a.cfg.Layout[k.Keyval]
	switch {
	case side != NoSide && k.Plain():
		a.pressThumb(side)
		return true
	case isChar && k.Plain():
		return a.pressChar(k)
	}
	return a.pressOther(k)
}

func (a *Adapter) release(keyval uint32) {
	switch {
	case keyval == a.st.Pending:
		if a.stop() {
			a.emit(a.st.Pending, a.st.Side)
		}
		a.st.Pending = 0
	case a.st.Side != NoSide && a.cfg.side(keyval) == a.st.Side:
		if a.stop() {
			a.execSide(a.st.Side)
		}
		a.st.Side = NoSide
	}

	if a.cfg.side(keyval) != NoSide {
		a.st.RepeatSide = NoSide
	} else if keyval == a.st.RepeatKey {
		a.st.RepeatKey = 0
	}
}

func (a *Adapter) pressThumb(side Side) {
	switch {
	case a.st.Side != NoSide:
		held := a.st.Side
		if !a.stop() {
			// Already resolved by T1; the new key starts afresh.
			a.st.Side = side
			a.arm(true)
			return
		}
		if sym := a.cfg.Symbols[held]; sym != "" {
			a.st.Side = NoSide
			a.host.Insert(sym)
			return
		}
		a.execSide(held)
		a.st.Side = side
		a.arm(true)
	case a.st.Pending != 0:
		a.stop()
		a.st.RepeatKey = a.st.Pending
		a.st.RepeatSide = side
		a.emit(a.st.Pending, side)
	case a.st.RepeatSide == side:
		if a.st.RepeatKey != 0 {
			a.emit(a.st.RepeatKey, side)
		}
	default:
		a.st.Side = side
		a.arm(true)
	}
}

func (a *Adapter) pressChar(k keys.Key) bool {
	c := k.Keyval
	switch {
	case a.st.Pending != 0:
		first, side := a.st.Pending, a.st.Side
		a.stop()
		if text, ok := a.cfg.Chords[MakeChord(first, c)]; ok {
			a.st.Pending = 0
			a.st.Side = NoSide
			a.host.Insert(text)
			return true
		}
		a.emit(first, side)
		a.st.Pending = c
		a.arm(false)
	case a.st.Side != NoSide:
		side := a.st.Side
		a.stop()
		a.st.RepeatKey = c
		a.st.RepeatSide = side
		a.emit(c, side)
	case a.st.RepeatKey == c:
		if a.st.RepeatSide != NoSide {
			a.emit(c, a.st.RepeatSide)
		}
	default:
		if a.host.Exec(k) {
			return true
		}
		a.st.Pending = c
		a.arm(false)
	}
	return true
}

func (a *Adapter) pressOther(k keys.Key) bool {
	a.Flush()
	if a.host.Exec(k) {
		return true
	}

	r := k.Rune()
	if r > 0x20 && r < 0x7f && k.Mods&(keys.ModControl|keys.ModAlt) == 0 {
		// A held thumb key swallows unshifted characters outside the layout.
		if k.Mods.Has(keys.ModShift) || a.st.Side == NoSide {
			a.host.Insert(string(r))
		}
		return true
	}
	return !a.host.PreeditEmpty()
}

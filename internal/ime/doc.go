// Package ime is the Japanese input method session controller and its IBus
// front end.
//
// # Architecture
//
// One Session exists per input context. It turns key events into
// committed text by composing:
//
//   - a kana.Buffer holding raw romaji or kana input
//   - a convert.Machine tracking conversion mode, segments and candidates
//   - a thumb.Adapter resolving thumb-shift chords with timers
//
// Sessions share a Shared value with the preference snapshot and the key
// binding table. Both are replaced wholesale on change, so a key lookup
// never observes a half-updated table.
//
// # Event model
//
// All session methods run on one goroutine, the one driving the session's
// eventloop.Scheduler. Each event is guarded:
//
//	Key Event → guard ─→ bound commands / insertion → commits released
//	                 └─→ panic → state restored, crash report, nothing committed
//
// State changes mark the session dirty and schedule a single idle redraw,
// which pushes only the preedit, auxiliary text and lookup table parts that
// changed since the last push.
//
// # IBus
//
// On Linux, Service exports an org.freedesktop.IBus.Factory. Every engine
// it creates owns one Session and one eventloop.Loop; D-Bus calls are
// posted to that loop and session output is emitted as engine signals.
package ime

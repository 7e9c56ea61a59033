package eventloop

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven explicitly by tests: time only moves on
// Advance and idle callbacks only run on RunIdle.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
	idle   []*task
}

type manualTimer struct {
	task
	at  time.Duration
	seq int
}

// NewManual creates a manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.seq++
	t := &manualTimer{task: task{f: f}, at: m.now + d, seq: m.seq}
	m.timers = append(m.timers, t)
	return t
}

// Idle implements Scheduler.
func (m *Manual) Idle(f func()) Timer {
	t := &task{f: f}
	m.idle = append(m.idle, t)
	return t
}

// Now returns the virtual time.
func (m *Manual) Now() time.Duration { return m.now }

// Advance moves virtual time forward by d, firing due timers in order.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.at
		next.run()
	}
	m.now = target
}

func (m *Manual) nextDue(limit time.Duration) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	m.timers = live
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at != m.timers[j].at {
			return m.timers[i].at < m.timers[j].at
		}
		return m.timers[i].seq < m.timers[j].seq
	})
	if len(m.timers) == 0 || m.timers[0].at > limit {
		return nil
	}
	return m.timers[0]
}

// Pending returns the number of outstanding timers.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// RunIdle drains idle callbacks and reports how many ran.
func (m *Manual) RunIdle() int {
	ran := 0
	for len(m.idle) > 0 {
		pending := m.idle
		m.idle = nil
		for _, t := range pending {
			if !t.done {
				ran++
			}
			t.run()
		}
	}
	return ran
}

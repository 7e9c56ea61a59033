// Package eventloop provides the single-threaded scheduling model every
// session runs on: events, timers and idle callbacks execute one at a time
// on one goroutine.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when posting to a stopped loop.
var ErrClosed = errors.New("eventloop: closed")

// Timer is a cancelable scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the callback was still
	// pending.
	Stop() bool
}

// Scheduler schedules callbacks onto the owning loop.
type Scheduler interface {
	// AfterFunc runs f on the loop after d.
	AfterFunc(d time.Duration, f func()) Timer
	// Idle runs f on the loop after the current event finishes.
	Idle(f func()) Timer
}

// Loop serializes work onto one goroutine.
type Loop struct {
	tasks chan func()
	idle  []*task

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New creates a loop. Call Run to start it.
func New(ctx context.Context) *Loop {
	ctx, cancel := context.WithCancel(ctx)
	return &Loop{
		tasks:  make(chan func(), 64),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Run processes tasks until the loop is closed or its context ends.
func (l *Loop) Run() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			return
		case f := <-l.tasks:
			f()
			l.runIdle()
		}
	}
}

// runIdle drains the idle queue, including callbacks queued while draining.
func (l *Loop) runIdle() {
	for len(l.idle) > 0 {
		pending := l.idle
		l.idle = nil
		for _, t := range pending {
			t.run()
		}
	}
}

// Close stops the loop and waits for Run to return.
func (l *Loop) Close() {
	l.once.Do(l.cancel)
	<-l.done
}

// Post queues f without waiting.
func (l *Loop) Post(f func()) error {
	select {
	case <-l.ctx.Done():
		return ErrClosed
	case l.tasks <- f:
		return nil
	}
}

// Call runs f on the loop and returns its result once the idle work it
// scheduled has run.
func (l *Loop) Call(f func() bool) (bool, error) {
	result := make(chan bool, 1)
	post := func() {
		r := f()
		l.Idle(func() { result <- r })
	}
	if err := l.Post(post); err != nil {
		return false, err
	}
	select {
	case <-l.ctx.Done():
		return false, ErrClosed
	case r := <-result:
		return r, nil
	}
}

// AfterFunc implements Scheduler. Must be called on the loop goroutine.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	t := &task{f: f}
	t.timer = time.AfterFunc(d, func() {
		_ = l.Post(t.run)
	})
	return t
}

// Idle implements Scheduler. Must be called on the loop goroutine.
func (l *Loop) Idle(f func()) Timer {
	t := &task{f: f}
	l.idle = append(l.idle, t)
	return t
}

// task is only touched on the loop goroutine, apart from the underlying
// time.Timer.
type task struct {
	f     func()
	timer *time.Timer
	done  bool
}

func (t *task) run() {
	if t.done {
		return
	}
	t.done = true
	t.f()
}

func (t *task) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	if t.timer != nil {
		t.timer.Stop()
	}
	return true
}

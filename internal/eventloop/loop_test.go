package eventloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopCallAndIdle(t *testing.T) {
	l := New(context.Background())
	go l.Run()
	defer l.Close()

	var order []string
	ok, err := l.Call(func() bool {
		l.Idle(func() { order = append(order, "idle") })
		order = append(order, "event")
		return true
	})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = l.Call(func() bool {
		order = append(order, "next")
		return false
	})
	require.NoError(t, err)

	_, err = l.Call(func() bool { return true })
	require.NoError(t, err)
	assert.Equal(t, []string{"event", "idle", "next"}, order)
}

func TestLoopTimerStop(t *testing.T) {
	l := New(context.Background())
	go l.Run()
	defer l.Close()

	fired := make(chan struct{}, 1)
	_, err := l.Call(func() bool {
		tm := l.AfterFunc(time.Hour, func() { fired <- struct{}{} })
		return tm.Stop()
	})
	require.NoError(t, err)

	_, err = l.Call(func() bool {
		l.AfterFunc(time.Millisecond, func() { fired <- struct{}{} })
		return true
	})
	require.NoError(t, err)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestLoopClosed(t *testing.T) {
	l := New(context.Background())
	go l.Run()
	l.Close()

	assert.ErrorIs(t, l.Post(func() {}), ErrClosed)
	_, err := l.Call(func() bool { return true })
	assert.ErrorIs(t, err, ErrClosed)
}

func TestManualTimers(t *testing.T) {
	m := NewManual()
	var fired []string

	m.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "t1") })
	t2 := m.AfterFunc(50*time.Millisecond, func() { fired = append(fired, "t2") })
	m.AfterFunc(50*time.Millisecond, func() { fired = append(fired, "t3") })

	assert.True(t, t2.Stop())
	assert.False(t, t2.Stop())
	assert.Equal(t, 2, m.Pending())

	m.Advance(60 * time.Millisecond)
	assert.Equal(t, []string{"t3"}, fired)

	m.Advance(60 * time.Millisecond)
	assert.Equal(t, []string{"t3", "t1"}, fired)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, 120*time.Millisecond, m.Now())
}

func TestManualIdle(t *testing.T) {
	m := NewManual()
	count := 0
	tm := m.Idle(func() { count++ })
	m.Idle(func() {
		count++
		m.Idle(func() { count += 10 })
	})
	tm.Stop()

	assert.Equal(t, 2, m.RunIdle())
	assert.Equal(t, 11, count)
	assert.Equal(t, 0, m.RunIdle())
}

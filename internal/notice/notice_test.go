package notice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-portal-server/internal/live"
)

func TestBoard_PostExpires(t *testing.T) {
	b := NewBoard(50*time.Millisecond, nil)
	defer b.Close()

	n := b.Success("alice", "Response submitted successfully!")
	assert.Equal(t, LevelSuccess, n.Level)

	current, ok := b.Current("alice")
	require.True(t, ok)
	assert.Equal(t, n.ID, current.ID)

	_, ok = b.Current("bob")
	assert.False(t, ok)

	require.Eventually(t, func() bool {
		_, ok := b.Current("alice")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestBoard_NewerNoticeReplacesOlder(t *testing.T) {
	b := NewBoard(200*time.Millisecond, nil)
	defer b.Close()

	b.Error("alice", "first")
	time.Sleep(120 * time.Millisecond)
	second := b.Success("alice", "second")

	// The first notice's timer would have fired by now.
	time.Sleep(120 * time.Millisecond)
	current, ok := b.Current("alice")
	require.True(t, ok)
	assert.Equal(t, second.ID, current.ID)
}

func TestBoard_DismissAndPublish(t *testing.T) {
	hub := live.NewHub()
	sub := hub.Subscribe(live.NoticeTopic("alice"))
	defer hub.Unsubscribe(sub)

	b := NewBoard(time.Minute, hub)
	defer b.Close()

	b.Success("alice", "saved")
	select {
	case <-sub.C:
	case <-time.After(time.Second):
		t.Fatal("post was not published")
	}

	b.Dismiss("alice")
	_, ok := b.Current("alice")
	assert.False(t, ok)
	select {
	case <-sub.C:
	case <-time.After(time.Second):
		t.Fatal("dismiss was not published")
	}
}

func TestBoard_CloseStopsTimers(t *testing.T) {
	b := NewBoard(time.Minute, nil)
	b.Success("alice", "saved")
	b.Success("bob", "saved")
	b.Close()

	_, ok := b.Current("alice")
	assert.False(t, ok)

	b.Success("alice", "after close")
	_, ok = b.Current("alice")
	assert.False(t, ok)
}

func TestLockout(t *testing.T) {
	l := NewLockout(50 * time.Millisecond)
	defer l.Close()

	require.True(t, l.Acquire("alice/q1"))
	assert.False(t, l.Acquire("alice/q1"))
	assert.True(t, l.Acquire("alice/q2"))
	assert.True(t, l.Held("alice/q1"))

	require.Eventually(t, func() bool { return !l.Held("alice/q1") }, time.Second, 10*time.Millisecond)
	assert.True(t, l.Acquire("alice/q1"))

	l.Release("alice/q1")
	assert.True(t, l.Acquire("alice/q1"))
}

func TestLockout_Close(t *testing.T) {
	l := NewLockout(time.Minute)
	require.True(t, l.Acquire("k"))
	l.Close()
	assert.False(t, l.Held("k"))
	assert.False(t, l.Acquire("k"))
}

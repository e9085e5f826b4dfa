package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func waitTerminal(t *testing.T, m *Manager, id string) Snapshot {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		snap, ok := m.Get(id)
		require.True(t, ok, "job disappeared")
		if snap.State.Terminal() {
			return snap
		}
		select {
		case <-deadline:
			t.Fatalf("job %s never finished, state %s", id, snap.State)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestJobSucceeds(t *testing.T) {
	m := NewManager(func(_ context.Context, resume string, searchable bool) ([]byte, error) {
		require.Equal(t, "abcDEF123", resume)
		require.True(t, searchable)
		return []byte("%PDF"), nil
	}, 0)
	defer m.Close()

	snap := m.Start(context.Background(), "abcDEF123", true)
	require.Equal(t, StatePending, snap.State)
	require.NotEmpty(t, snap.ID)

	final := waitTerminal(t, m, snap.ID)
	require.Equal(t, StateSucceeded, final.State)
	require.NotNil(t, final.FinishedAt)

	pdf, ok := m.PDF(snap.ID)
	require.True(t, ok)
	require.Equal(t, []byte("%PDF"), pdf)
}

func TestJobFails(t *testing.T) {
	m := NewManager(func(context.Context, string, bool) ([]byte, error) {
		return nil, errors.New("upstream exploded")
	}, 0)
	defer m.Close()

	snap := m.Start(context.Background(), "abcDEF123", true)
	final := waitTerminal(t, m, snap.ID)
	require.Equal(t, StateFailed, final.State)
	require.Contains(t, final.Error, "upstream exploded")

	_, ok := m.PDF(snap.ID)
	require.False(t, ok, "failed job must expose no result")
}

func TestJobCancel(t *testing.T) {
	started := make(chan struct{})
	m := NewManager(func(ctx context.Context, _ string, _ bool) ([]byte, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}, 0)
	defer m.Close()

	snap := m.Start(context.Background(), "abcDEF123", true)
	<-started
	require.True(t, m.Cancel(snap.ID))

	final := waitTerminal(t, m, snap.ID)
	require.Equal(t, StateCanceled, final.State)

	// Terminal states are sticky: a second cancel reports failure.
	require.False(t, m.Cancel(snap.ID))
}

func TestCancelRaceKeepsCanceledState(t *testing.T) {
	block := make(chan struct{})
	m := NewManager(func(context.Context, string, bool) ([]byte, error) {
		<-block
		return []byte("%PDF"), nil
	}, 0)
	defer m.Close()

	snap := m.Start(context.Background(), "abcDEF123", true)
	for {
		s, _ := m.Get(snap.ID)
		if s.State == StateRunning {
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, m.Cancel(snap.ID))
	close(block) // run func now returns success, which must not win

	time.Sleep(20 * time.Millisecond)
	final, _ := m.Get(snap.ID)
	require.Equal(t, StateCanceled, final.State)
	_, ok := m.PDF(snap.ID)
	require.False(t, ok)
}

func TestUnknownJob(t *testing.T) {
	m := NewManager(func(context.Context, string, bool) ([]byte, error) { return nil, nil }, 0)
	defer m.Close()

	_, ok := m.Get("nope")
	require.False(t, ok)
	_, ok = m.PDF("nope")
	require.False(t, ok)
	require.False(t, m.Cancel("nope"))
}

func TestSweepEvictsFinishedJobs(t *testing.T) {
	m := NewManager(func(context.Context, string, bool) ([]byte, error) {
		return []byte("%PDF"), nil
	}, time.Hour)
	defer m.Close()

	snap := m.Start(context.Background(), "abcDEF123", true)
	waitTerminal(t, m, snap.ID)

	// Backdate the finish time past the retention window and sweep.
	m.mu.Lock()
	old := time.Now().Add(-2 * time.Hour)
	m.jobs[snap.ID].FinishedAt = &old
	m.mu.Unlock()
	m.sweep()

	_, ok := m.Get(snap.ID)
	require.False(t, ok, "swept job must be gone")
}

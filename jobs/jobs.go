// Package jobs tracks asynchronous conversions: submit, poll, fetch, cancel.
// Jobs live in memory only; finished jobs are evicted after a retention
// period.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wudi/resumepdf/ctxlog"
)

// State models the lifecycle of a conversion job.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCanceled  State = "canceled"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCanceled
}

// Snapshot is a point-in-time view of a job, safe to serialize.
type Snapshot struct {
	ID         string     `json:"id"`
	Resume     string     `json:"resume"`
	Searchable bool       `json:"searchable"`
	State      State      `json:"state"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type job struct {
	Snapshot
	pdf    []byte
	cancel context.CancelFunc
}

// RunFunc executes one conversion and returns the PDF bytes.
type RunFunc func(ctx context.Context, resume string, searchable bool) ([]byte, error)

// Manager owns the job registry and the workers that drive conversions.
type Manager struct {
	mu        sync.Mutex
	jobs      map[string]*job
	run       RunFunc
	retention time.Duration
	baseCtx   context.Context
	stop      context.CancelFunc
	wg        sync.WaitGroup
}

// NewManager returns a Manager executing conversions through run. Finished
// jobs are evicted after retention; zero keeps them forever.
func NewManager(run RunFunc, retention time.Duration) *Manager {
	ctx, stop := context.WithCancel(context.Background())
	m := &Manager{
		jobs:      make(map[string]*job),
		run:       run,
		retention: retention,
		baseCtx:   ctx,
		stop:      stop,
	}
	if retention > 0 {
		m.wg.Add(1)
		go m.janitor()
	}
	return m
}

// Close cancels all running jobs and stops the janitor.
func (m *Manager) Close() {
	m.stop()
	m.mu.Lock()
	for _, j := range m.jobs {
		if j.cancel != nil {
			j.cancel()
		}
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// Start registers a new job and launches its conversion.
func (m *Manager) Start(ctx context.Context, resume string, searchable bool) Snapshot {
	jctx, cancel := context.WithCancel(m.baseCtx)
	jctx = ctxlog.WithLogger(jctx, ctxlog.FromContext(ctx))
	j := &job{
		Snapshot: Snapshot{
			ID:         uuid.NewString(),
			Resume:     resume,
			Searchable: searchable,
			State:      StatePending,
			CreatedAt:  time.Now(),
		},
		cancel: cancel,
	}
	m.mu.Lock()
	m.jobs[j.ID] = j
	m.mu.Unlock()

	m.wg.Add(1)
	go m.execute(jctx, j.ID)
	return j.Snapshot
}

func (m *Manager) execute(ctx context.Context, id string) {
	defer m.wg.Done()
	m.transition(id, StateRunning, "", nil)

	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return
	}
	pdf, err := m.run(ctx, j.Resume, j.Searchable)
	switch {
	case ctx.Err() != nil:
		m.transition(id, StateCanceled, ctx.Err().Error(), nil)
	case err != nil:
		ctxlog.FromContext(ctx).Warn("job failed", "job", id, "error", err)
		m.transition(id, StateFailed, err.Error(), nil)
	default:
		m.transition(id, StateSucceeded, "", pdf)
	}
}

// transition moves a job forward. Terminal states are never overwritten, so
// a cancel that races a success stays canceled.
func (m *Manager) transition(id string, state State, errMsg string, pdf []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.State.Terminal() {
		return
	}
	j.State = state
	j.Error = errMsg
	j.pdf = pdf
	if state.Terminal() {
		now := time.Now()
		j.FinishedAt = &now
	}
}

// Get returns a snapshot of the job.
func (m *Manager) Get(id string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return Snapshot{}, false
	}
	return j.Snapshot, true
}

// PDF returns the result of a succeeded job.
func (m *Manager) PDF(id string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.State != StateSucceeded {
		return nil, false
	}
	return j.pdf, true
}

// Cancel stops a pending or running job.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok || j.State.Terminal() {
		m.mu.Unlock()
		return false
	}
	cancel := j.cancel
	j.State = StateCanceled
	j.Error = "canceled"
	now := time.Now()
	j.FinishedAt = &now
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return true
}

func (m *Manager) janitor() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.retention / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.baseCtx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.retention)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, j := range m.jobs {
		if j.State.Terminal() && j.FinishedAt != nil && j.FinishedAt.Before(cutoff) {
			delete(m.jobs, id)
		}
	}
}

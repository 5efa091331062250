package interpret

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobState describes where a generation job is in its lifecycle.
type JobState string

const (
	// JobPending means generation is still running.
	JobPending JobState = "pending"

	// JobDone means the job finished and Text holds the interpretation
	// (possibly the fallback message).
	JobDone JobState = "done"
)

// Job is one asynchronous interpretation run. The loading step waits on it
// so the visitor-facing request never blocks on the external call.
type Job struct {
	ID        string
	SessionID string
	Prompt    string
	State     JobState
	Text      string
	CreatedAt time.Time
}

// Manager tracks generation jobs and runs each one on its own goroutine.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*Job

	svc    *Service
	retain time.Duration
	log    *slog.Logger

	// onComplete, when set, is called after a job flips to done. Used by
	// the web layer to push completion signals and append diary entries.
	onComplete func(job Job)

	quit chan struct{}
	wg   sync.WaitGroup
}

// jobRetention is how long a completed job stays fetchable before the
// reaper drops it.
const jobRetention = 10 * time.Minute

// reapInterval is how often completed jobs are swept.
const reapInterval = time.Minute

// NewManager creates a job manager backed by the given Service.
func NewManager(svc *Service, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}

	m := &Manager{
		jobs:   make(map[string]*Job),
		svc:    svc,
		retain: jobRetention,
		log:    log,
		quit:   make(chan struct{}),
	}

	m.wg.Add(1)
	go m.reaper()

	return m
}

// SetOnComplete registers the completion hook. Must be called before any
// Start.
func (m *Manager) SetOnComplete(fn func(job Job)) {
	m.onComplete = fn
}

// Start launches generation for the given session and prompt, returning the
// new job's ID immediately.
func (m *Manager) Start(sessionID, prompt string) string {
	job := &Job{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Prompt:    prompt,
		State:     JobPending,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(job.ID)

	m.log.Info("Started interpretation job",
		"job_id", job.ID, "session_id", sessionID)

	return job.ID
}

// Get returns a snapshot of the job with the given ID.
func (m *Manager) Get(id string) (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}

	return *job, true
}

// Close stops the reaper. In-flight generation goroutines are waited for.
func (m *Manager) Close() {
	close(m.quit)
	m.wg.Wait()
}

// run executes one job to completion.
func (m *Manager) run(id string) {
	defer m.wg.Done()

	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	prompt := job.Prompt
	m.mu.Unlock()

	text := m.svc.Generate(context.Background(), prompt)

	m.mu.Lock()
	job.Text = text
	job.State = JobDone
	snapshot := *job
	m.mu.Unlock()

	if m.onComplete != nil {
		m.onComplete(snapshot)
	}
}

// reaper periodically drops completed jobs past their retention window.
func (m *Manager) reaper() {
	defer m.wg.Done()

	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.quit:
			return

		case <-ticker.C:
			m.reap()
		}
	}
}

// reap removes completed jobs older than the retention window.
func (m *Manager) reap() {
	cutoff := time.Now().Add(-m.retain)

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, job := range m.jobs {
		if job.State == JobDone && job.CreatedAt.Before(cutoff) {
			delete(m.jobs, id)
		}
	}
}

package interpret

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitForJob(t *testing.T, m *Manager, id string) Job {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := m.Get(id)
		require.True(t, ok)
		if job.State == JobDone {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("job did not complete in time")
	return Job{}
}

func TestManagerRunsJobToCompletion(t *testing.T) {
	fake := &fakeCompleter{text: "Async interpretation."}
	m := NewManager(newTestService(fake), nil)
	defer m.Close()

	done := make(chan Job, 1)
	m.SetOnComplete(func(job Job) { done <- job })

	id := m.Start("visitor-1", "some prompt")
	require.NotEmpty(t, id)

	job, ok := m.Get(id)
	require.True(t, ok)
	require.Equal(t, "visitor-1", job.SessionID)

	select {
	case completed := <-done:
		require.Equal(t, id, completed.ID)
		require.Equal(t, JobDone, completed.State)
		require.Equal(t, "Async interpretation.", completed.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("completion hook not invoked")
	}

	job = waitForJob(t, m, id)
	require.Equal(t, "Async interpretation.", job.Text)
}

func TestManagerUnknownJob(t *testing.T) {
	fake := &fakeCompleter{text: "x"}
	m := NewManager(newTestService(fake), nil)
	defer m.Close()

	_, ok := m.Get("no-such-job")
	require.False(t, ok)
}

func TestManagerConcurrentJobsIsolated(t *testing.T) {
	fake := &fakeCompleter{text: "Same text either way."}
	m := NewManager(newTestService(fake), nil)
	defer m.Close()

	first := m.Start("visitor-1", "prompt one")
	second := m.Start("visitor-2", "prompt two")
	require.NotEqual(t, first, second)

	a := waitForJob(t, m, first)
	b := waitForJob(t, m, second)
	require.Equal(t, "visitor-1", a.SessionID)
	require.Equal(t, "visitor-2", b.SessionID)
}

func TestManagerReapDropsOldCompletedJobs(t *testing.T) {
	fake := &fakeCompleter{text: "x"}
	m := NewManager(newTestService(fake), nil)
	defer m.Close()

	id := m.Start("visitor-1", "prompt")
	waitForJob(t, m, id)

	// Age the job past retention, then force a sweep.
	m.mu.Lock()
	m.jobs[id].CreatedAt = time.Now().Add(-time.Hour)
	m.mu.Unlock()
	m.reap()

	_, ok := m.Get(id)
	require.False(t, ok)
}

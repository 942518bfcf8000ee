package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Job
}

func (r *recorder) Publish(event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, payload.(Job))
}

func (r *recorder) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Status
	for _, e := range r.events {
		result = append(result, e.Status)
	}
	return result
}

func waitFor(t *testing.T, m *Manager, id string) Job {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	job, err := m.Wait(ctx, id)
	require.NoError(t, err)
	return job
}

func TestJobSucceeds(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec)

	job := m.Start(KindImport, "sales.csv", func(ctx context.Context, progress Progress) error {
		progress(50)
		return nil
	})
	assert.Equal(t, StatusRunning, job.Status)

	done := waitFor(t, m, job.ID)
	assert.Equal(t, StatusSucceeded, done.Status)
	assert.Equal(t, 100, done.Progress)
	require.NotNil(t, done.FinishedAt)

	statuses := rec.statuses()
	assert.Equal(t, StatusRunning, statuses[0])
	assert.Equal(t, StatusSucceeded, statuses[len(statuses)-1])
}

func TestJobFails(t *testing.T) {
	m := NewManager(nil)
	job := m.Start(KindIntegrationTest, "Shopify", func(ctx context.Context, progress Progress) error {
		return errors.New("connection refused")
	})
	done := waitFor(t, m, job.ID)
	assert.Equal(t, StatusFailed, done.Status)
	assert.Equal(t, "connection refused", done.Error)
}

func TestJobPanicIsFailure(t *testing.T) {
	m := NewManager(nil)
	job := m.Start(KindImport, "bad", func(ctx context.Context, progress Progress) error {
		panic("boom")
	})
	assert.Equal(t, StatusFailed, waitFor(t, m, job.ID).Status)
}

func TestCancelledJobDoesNotWriteBack(t *testing.T) {
	m := NewManager(nil)
	started := make(chan struct{})
	var written bool

	job := m.Start(KindIntegrationSync, "Stripe", func(ctx context.Context, progress Progress) error {
		close(started)
		if err := Sleep(ctx, time.Minute); err != nil {
			// 取消后进度不再更新
			progress(80)
			return err
		}
		written = true
		return nil
	})
	<-started

	cancelled, err := m.Cancel(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, 0, cancelled.Progress)
	assert.False(t, written)

	_, err = m.Cancel(job.ID)
	assert.ErrorIs(t, err, ErrJobFinished)

	_, err = m.Cancel("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestShutdownCancelsRunningJobs(t *testing.T) {
	m := NewManager(nil)
	var ids []string
	for i := 0; i < 3; i++ {
		job := m.Start(KindImport, "file", func(ctx context.Context, progress Progress) error {
			return Sleep(ctx, time.Minute)
		})
		ids = append(ids, job.ID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))

	for _, id := range ids {
		job, err := m.Get(id)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, job.Status)
	}
	assert.Len(t, m.List(), 3)
}

func TestProgressIsClamped(t *testing.T) {
	m := NewManager(nil)
	release := make(chan struct{})
	reported := make(chan struct{})
	job := m.Start(KindImport, "file", func(ctx context.Context, progress Progress) error {
		progress(150)
		close(reported)
		<-release
		return nil
	})
	<-reported
	current, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, current.Progress)
	close(release)
	waitFor(t, m, job.ID)
}

func TestFinishedJobsArePruned(t *testing.T) {
	m := NewManager(nil)
	m.keepFinished = 2

	release := make(chan struct{})
	blocked := m.Start(KindImport, "slow", func(ctx context.Context, progress Progress) error {
		<-release
		return nil
	})
	defer close(release)

	var ids []string
	for i := 0; i < 4; i++ {
		job := m.Start(KindIntegrationTest, "quick", func(ctx context.Context, progress Progress) error {
			return nil
		})
		waitFor(t, m, job.ID)
		ids = append(ids, job.ID)
	}

	var listed []string
	for _, job := range m.List() {
		listed = append(listed, job.ID)
	}
	assert.Equal(t, []string{blocked.ID, ids[2], ids[3]}, listed)

	_, err := m.Get(ids[0])
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Minute), context.Canceled)
	assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
}

// Package tasks 管理可取消的后台任务，例如文件导入、集成同步和连接测试
package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BerniceZTT/salesiq/metrics"
	"github.com/BerniceZTT/salesiq/utils"
)

// Status 任务状态
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Finished 任务是否已结束
func (s Status) Finished() bool {
	return s != StatusRunning
}

// 任务类型
const (
	KindImport          = "import"
	KindIntegrationSync = "integration-sync"
	KindIntegrationTest = "integration-test"
)

// EventJobUpdated 任务状态或进度变化时发布的事件
const EventJobUpdated = "job.updated"

var (
	ErrJobNotFound = errors.New("任务不存在")
	ErrJobFinished = errors.New("任务已结束")
)

// Job 任务快照
type Job struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Subject    string     `json:"subject"`
	Status     Status     `json:"status"`
	Progress   int        `json:"progress"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Publisher 任务事件的订阅方
type Publisher interface {
	Publish(event string, payload interface{})
}

// Progress 上报进度，取值0-100
type Progress func(percent int)

// Func 任务主体，ctx 取消后必须停止、不再写入结果并返回 ctx.Err()
type Func func(ctx context.Context, progress Progress) error

// maxFinishedJobs 保留的已结束任务数，更早的会被清理
const maxFinishedJobs = 200

type entry struct {
	job    Job
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager 后台任务管理器
type Manager struct {
	mu        sync.RWMutex
	jobs      map[string]*entry
	order     []string
	publisher Publisher
	wg        sync.WaitGroup
	// keepFinished 已结束任务的保留上限
	keepFinished int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager 创建任务管理器，publisher 可以为 nil
func NewManager(publisher Publisher) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:         make(map[string]*entry),
		publisher:    publisher,
		keepFinished: maxFinishedJobs,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start 在新的 goroutine 中运行任务
func (m *Manager) Start(kind, subject string, fn Func) Job {
	ctx, cancel := context.WithCancel(m.ctx)
	e := &entry{
		job: Job{
			ID:        uuid.NewString(),
			Kind:      kind,
			Subject:   subject,
			Status:    StatusRunning,
			StartedAt: time.Now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	m.jobs[e.job.ID] = e
	m.order = append(m.order, e.job.ID)
	snapshot := e.job
	m.mu.Unlock()

	metrics.JobsRunning.WithLabelValues(kind).Inc()
	utils.Logger.Info().Str("job", snapshot.ID).Str("kind", kind).Str("subject", subject).Msg("后台任务开始")
	m.publish(snapshot)

	m.wg.Add(1)
	go m.run(ctx, e, fn)
	return snapshot
}

func (m *Manager) run(ctx context.Context, e *entry, fn Func) {
	defer m.wg.Done()
	defer close(e.done)
	defer e.cancel()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				utils.Logger.Error().Interface("panic", r).Str("job", e.job.ID).Msg("后台任务崩溃")
				err = errors.New("任务执行异常")
			}
		}()
		err = fn(ctx, func(percent int) {
			if ctx.Err() == nil {
				m.setProgress(e, percent)
			}
		})
	}()

	m.mu.Lock()
	now := time.Now()
	e.job.FinishedAt = &now
	switch {
	case err != nil && ctx.Err() != nil:
		e.job.Status = StatusCancelled
	case err != nil:
		e.job.Status = StatusFailed
		e.job.Error = err.Error()
	default:
		e.job.Status = StatusSucceeded
		e.job.Progress = 100
	}
	snapshot := e.job
	m.pruneLocked()
	m.mu.Unlock()

	metrics.JobsRunning.WithLabelValues(snapshot.Kind).Dec()
	metrics.JobsTotal.WithLabelValues(snapshot.Kind, string(snapshot.Status)).Inc()
	metrics.JobDuration.WithLabelValues(snapshot.Kind).Observe(now.Sub(snapshot.StartedAt).Seconds())

	logEvent := utils.Logger.Info()
	if snapshot.Status == StatusFailed {
		logEvent = utils.Logger.Error().Str("error", snapshot.Error)
	}
	logEvent.Str("job", snapshot.ID).Str("status", string(snapshot.Status)).Msg("后台任务结束")
	m.publish(snapshot)
}

// pruneLocked 删除最早的已结束任务，运行中的任务不受影响，调用方需持有锁
func (m *Manager) pruneLocked() {
	finished := 0
	for _, id := range m.order {
		if m.jobs[id].job.Status.Finished() {
			finished++
		}
	}
	excess := finished - m.keepFinished
	if excess <= 0 {
		return
	}
	kept := m.order[:0]
	for _, id := range m.order {
		if excess > 0 && m.jobs[id].job.Status.Finished() {
			delete(m.jobs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}

// setProgress 记录进度，任务结束后忽略
func (m *Manager) setProgress(e *entry, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	m.mu.Lock()
	if e.job.Status.Finished() || percent == e.job.Progress {
		m.mu.Unlock()
		return
	}
	e.job.Progress = percent
	snapshot := e.job
	m.mu.Unlock()

	m.publish(snapshot)
}

func (m *Manager) publish(job Job) {
	if m.publisher != nil {
		m.publisher.Publish(EventJobUpdated, job)
	}
}

// Cancel 取消运行中的任务并等待其退出
func (m *Manager) Cancel(id string) (Job, error) {
	m.mu.RLock()
	e, ok := m.jobs[id]
	if !ok {
		m.mu.RUnlock()
		return Job{}, ErrJobNotFound
	}
	finished := e.job.Status.Finished()
	m.mu.RUnlock()
	if finished {
		return m.snapshot(e), ErrJobFinished
	}

	e.cancel()
	<-e.done
	return m.snapshot(e), nil
}

// Wait 等待任务结束
func (m *Manager) Wait(ctx context.Context, id string) (Job, error) {
	m.mu.RLock()
	e, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return Job{}, ErrJobNotFound
	}
	select {
	case <-e.done:
		return m.snapshot(e), nil
	case <-ctx.Done():
		return m.snapshot(e), ctx.Err()
	}
}

func (m *Manager) snapshot(e *entry) Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return e.job
}

// Get 获取任务快照
func (m *Manager) Get(id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return e.job, nil
}

// List 按创建顺序返回全部任务
func (m *Manager) List() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]Job, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.jobs[id].job)
	}
	return result
}

// Shutdown 取消所有任务并等待退出，ctx 到期时直接返回
func (m *Manager) Shutdown(ctx context.Context) error {
	m.cancel()
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		utils.Logger.Info().Msg("所有后台任务已停止")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sleep 可被取消的等待，用于模拟外部调用的耗时
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

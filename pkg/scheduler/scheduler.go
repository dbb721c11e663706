package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"face-insight-api/pkg/logger"
)

// EventScheduler runs named maintenance tasks on cron expressions (UTC).
type EventScheduler interface {
	Start()
	Stop()
	AddJob(id, cronExpr string, task func()) error
	RemoveJob(id string) error
	ListJobs() map[string]JobInfo
	IsRunning() bool
}

type JobInfo struct {
	ID       string
	CronExpr string
	LastRun  *time.Time
	NextRun  time.Time // zero until the scheduler has started
}

type job struct {
	cronExpr string
	ref      *gocron.Job
	lastRun  *time.Time
}

type GocronScheduler struct {
	scheduler *gocron.Scheduler
	jobs      map[string]*job
	mu        sync.RWMutex
	running   bool
}

// NewEventScheduler creates a scheduler in which a job never overlaps its
// own previous run.
func NewEventScheduler() EventScheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &GocronScheduler{
		scheduler: s,
		jobs:      make(map[string]*job),
	}
}

func (s *GocronScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		logger.SchedulerWarn("start", "Scheduler is already running", nil)
		return
	}

	s.scheduler.StartAsync()
	s.running = true
	logger.Scheduler("started", "Scheduler started", map[string]interface{}{"jobs": len(s.jobs)})
}

// Stop halts the scheduler. The lock is released first so a job finishing
// its bookkeeping cannot block shutdown.
func (s *GocronScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.scheduler.Stop()
	logger.Scheduler("stopped", "Scheduler stopped", nil)
}

func (s *GocronScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *GocronScheduler) AddJob(id, cronExpr string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job %q already exists", id)
	}

	ref, err := s.scheduler.Cron(cronExpr).Do(func() {
		now := time.Now()
		s.mu.Lock()
		if j, ok := s.jobs[id]; ok {
			j.lastRun = &now
		}
		s.mu.Unlock()

		logger.Scheduler("job_executing", "Executing job", map[string]interface{}{"job_id": id})
		task()
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for job %q: %w", cronExpr, id, err)
	}

	s.jobs[id] = &job{cronExpr: cronExpr, ref: ref}
	logger.Scheduler("job_added", "Job added", map[string]interface{}{
		"job_id":    id,
		"cron_expr": cronExpr,
	})
	return nil
}

func (s *GocronScheduler) RemoveJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job %q not found", id)
	}

	s.scheduler.RemoveByReference(j.ref)
	delete(s.jobs, id)
	logger.Scheduler("job_removed", "Job removed", map[string]interface{}{"job_id": id})
	return nil
}

// ListJobs returns a snapshot of the registered jobs.
func (s *GocronScheduler) ListJobs() map[string]JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]JobInfo, len(s.jobs))
	for id, j := range s.jobs {
		info := JobInfo{ID: id, CronExpr: j.cronExpr, NextRun: j.ref.NextRun()}
		if j.lastRun != nil {
			last := *j.lastRun
			info.LastRun = &last
		}
		out[id] = info
	}
	return out
}

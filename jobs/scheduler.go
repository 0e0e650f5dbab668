package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job is one unit of scheduled daily work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type entry struct {
	job     Job
	hour    int
	minute  int
	lastDay string
}

// Scheduler fires each registered job once per day at its configured time.
// Runs are serialized through a single mutex, so a slow job cannot overlap
// with the next tick in this process.
type Scheduler struct {
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	runMu   sync.Mutex
	entries []*entry
	stop    chan struct{}
	started bool
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger:   logger,
		interval: time.Minute,
		timeout:  30 * time.Minute,
		stop:     make(chan struct{}),
	}
}

// Register adds a job to fire daily at hour:minute.
func (s *Scheduler) Register(job Job, hour, minute int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &entry{job: job, hour: hour, minute: minute})
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case now := <-ticker.C:
				s.tick(now)
			}
		}
	}()
	s.logger.Info("job scheduler started", zap.Int("jobs", len(s.entries)))
}

func (s *Scheduler) Stop() {
	close(s.stop)
}

// tick fires every entry whose scheduled time has passed today and which has
// not run yet today, so a missed tick is made up on the next one.
func (s *Scheduler) tick(now time.Time) {
	day := now.Format("2006-01-02")
	s.mu.Lock()
	due := make([]*entry, 0)
	for _, e := range s.entries {
		reached := now.Hour() > e.hour || (now.Hour() == e.hour && now.Minute() >= e.minute)
		if reached && e.lastDay != day {
			e.lastDay = day
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		s.runJob(e.job)
	}
}

// RunNow executes a job immediately with the scheduler's isolation; cron
// handlers and tests share this path.
func (s *Scheduler) RunNow(job Job) {
	s.runJob(job)
}

// RunByName triggers a registered job by name, reporting whether it was
// found. The run is synchronous.
func (s *Scheduler) RunByName(name string) bool {
	s.mu.Lock()
	var target Job
	for _, e := range s.entries {
		if e.job.Name() == name {
			target = e.job
			break
		}
	}
	s.mu.Unlock()

	if target == nil {
		return false
	}
	s.runJob(target)
	return true
}

func (s *Scheduler) runJob(job Job) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	runID := uuid.New()
	logger := s.logger.With(zap.String("job", job.Name()), zap.String("runId", runID.String()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	logger.Info("running job")
	if err := job.Run(ctx); err != nil {
		logger.Error("job failed", zap.Error(err))
		return
	}
	logger.Info("job completed")
}

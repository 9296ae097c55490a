// Package tasks runs the periodic editorial jobs: the scheduled publish sweep
// and the view count flush.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

const (
	// JobPublishScheduled publishes due scheduled posts
	JobPublishScheduled = "publish-scheduled"
	// JobFlushViewCounts moves buffered views into the repository
	JobFlushViewCounts = "flush-view-counts"

	DefaultPublishSchedule = "@every 1m"
	DefaultFlushSchedule   = "@every 5m"
	DefaultJobTimeout      = 2 * time.Minute
)

// JobFunc is one run of a job
type JobFunc func(ctx context.Context) error

// Scheduler runs named jobs on cron schedules. Overlapping runs of one job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
	jobs    map[string]cron.EntryID
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithJobTimeout bounds every job run
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a scheduler
func New(logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tasks")
	cl := cronLogger{logger: logger}

	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger:  logger,
		timeout: DefaultJobTimeout,
		jobs:    make(map[string]cron.EntryID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob schedules fn under name. An empty spec leaves the job disabled.
func (s *Scheduler) AddJob(name, spec string, fn JobFunc) error {
	if spec == "" {
		s.logger.Info("job disabled", "job", name)
		return nil
	}
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already scheduled", name)
	}
	id, err := s.cron.AddFunc(spec, func() { s.run(name, fn) })
	if err != nil {
		return fmt.Errorf("schedule job %s (%q): %w", name, spec, err)
	}
	s.jobs[name] = id
	s.logger.Info("job scheduled", "job", name, "schedule", spec)
	return nil
}

// Jobs returns the names of the scheduled jobs
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// run executes one job run with the job timeout
func (s *Scheduler) run(name string, fn JobFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	if err != nil {
		s.logger.Error("job failed", "job", name, "duration", time.Since(start), "error", err)
		return err
	}
	s.logger.Debug("job finished", "job", name, "duration", time.Since(start))
	return nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Run starts the scheduler and blocks until ctx is done, then waits for running
// jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	<-s.Stop().Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// PublishScheduled returns a job publishing every scheduled post due at clock()
func PublishScheduled(svc editorial.Service, clock func() time.Time, logger *slog.Logger) JobFunc {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context) error {
		n, err := svc.PublishDue(ctx, clock())
		if n > 0 {
			logger.Info("published scheduled posts", "count", n)
		}
		return err
	}
}

// Flusher moves buffered state into durable storage
type Flusher interface {
	Flush(ctx context.Context) (int, error)
}

// FlushViewCounts returns a job flushing buffered view counts
func FlushViewCounts(f Flusher) JobFunc {
	return func(ctx context.Context) error {
		_, err := f.Flush(ctx)
		return err
	}
}

// cronLogger adapts slog to cron.Logger
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

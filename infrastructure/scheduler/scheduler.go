// ABOUTME: Cron scheduler running the periodic maintenance jobs
// ABOUTME: Wraps robfig/cron with overlap protection, panic recovery and run metrics

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"bluehand-admin-api/core/interfaces"

	"github.com/robfig/cron/v3"
)

// ErrUnknownJob is returned by RunNow for names that were never added
var ErrUnknownJob = errors.New("unknown job")

// Job is one unit of periodic work
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc func(ctx context.Context) error

// Run calls f
func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

// Recorder receives the outcome of every job run
type Recorder interface {
	JobRun(job string, err error, d time.Duration)
}

// JobInfo describes a registered job
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next,omitempty"`
	Prev     time.Time `json:"prev,omitempty"`
}

type registration struct {
	schedule string
	job      Job
	entry    cron.EntryID
}

// Scheduler runs named jobs on cron schedules
type Scheduler struct {
	cron     *cron.Cron
	logger   interfaces.Logger
	recorder Recorder
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	jobs map[string]*registration
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRecorder reports job runs to r
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

// WithJobTimeout bounds each run
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// New creates a stopped scheduler
func New(logger interfaces.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	s := &Scheduler{
		logger: logger,
		jobs:   make(map[string]*registration),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	cl := cronLogger{logger}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return s
}

// Add registers job under name. An empty schedule leaves the job disabled
// but still runnable through RunNow.
func (s *Scheduler) Add(name, schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	reg := &registration{schedule: schedule, job: job}
	if schedule != "" {
		id, err := s.cron.AddFunc(schedule, func() {
			_ = s.execute(s.ctx, name, job)
		})
		if err != nil {
			return fmt.Errorf("invalid schedule %q for job %q: %w", schedule, name, err)
		}
		reg.entry = id
	}

	s.jobs[name] = reg
	s.logger.Info("Scheduled job registered", map[string]interface{}{
		"job":      name,
		"schedule": schedule,
	})
	return nil
}

// RunNow runs a registered job synchronously
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	reg, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownJob, name)
	}
	return s.execute(ctx, name, reg.job)
}

// Jobs lists registered jobs ordered by name
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for name, reg := range s.jobs {
		info := JobInfo{Name: name, Schedule: reg.schedule}
		if reg.entry != 0 {
			e := s.cron.Entry(reg.entry)
			info.Next, info.Prev = e.Next, e.Prev
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling, cancels running jobs and waits for them to return
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) execute(ctx context.Context, name string, job Job) (err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %q panicked: %v", name, r)
		}
		d := time.Since(start)
		if s.recorder != nil {
			s.recorder.JobRun(name, err, d)
		}

		fields := map[string]interface{}{
			"job":         name,
			"duration_ms": d.Milliseconds(),
		}
		if err != nil {
			fields["error"] = err.Error()
			s.logger.Error("Scheduled job failed", fields)
			return
		}
		s.logger.Debug("Scheduled job finished", fields)
	}()

	return job.Run(ctx)
}

// cronLogger adapts interfaces.Logger to cron.Logger
type cronLogger struct {
	l interfaces.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields["error"] = err.Error()
	c.l.Error("cron: "+msg, fields)
}

func kvFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}

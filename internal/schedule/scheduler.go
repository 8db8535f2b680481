package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Option func(*CronScheduler)

// WithRunTimeout bounds every scheduled run. Zero leaves runs unbounded.
func WithRunTimeout(d time.Duration) Option {
	return func(c *CronScheduler) {
		c.runTimeout = d
	}
}

// CronScheduler fires jobs on five-field cron specs. A run that is still in
// progress when its next tick arrives causes that tick to be skipped.
type CronScheduler struct {
	cron       *cron.Cron
	mu         sync.Mutex
	entries    map[string]cron.EntryID
	ctx        context.Context
	runTimeout time.Duration
}

func NewCronScheduler(opts ...Option) *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	logger := logutil.GetLogger(context.Background()).With(zap.String("job", job.Name()), zap.String("spec", spec))
	entryID, err := c.cron.AddFunc(spec, c.wrap(job))
	if err != nil {
		logger.Error("schedule job failed", zap.Error(err))
		return err
	}
	c.mu.Lock()
	c.entries[job.Name()] = entryID
	c.mu.Unlock()
	logger.Info("job scheduled")
	return nil
}

// Start must be called before the first tick; ctx is handed to every run.
func (c *CronScheduler) Start(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
	c.cron.Start()
}

// Stop waits for in-flight runs to return.
func (c *CronScheduler) Stop() {
	<-c.cron.Stop().Done()
}

// Next reports when the named job fires next; zero if it is not scheduled or
// the scheduler has not started.
func (c *CronScheduler) Next(name string) time.Time {
	c.mu.Lock()
	id, ok := c.entries[name]
	c.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return c.cron.Entry(id).Next
}

func (c *CronScheduler) wrap(job Job) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			logutil.GetLogger(c.ctx).Info("job skipped: still running", zap.String("job", job.Name()))
			return
		}
		defer running.Store(false)

		ctx := c.ctx
		if c.runTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.runTimeout)
			defer cancel()
		}
		_ = RunOnce(ctx, job)
	}
}

// RunOnce runs job a single time with start/finish logging. Used by the
// scheduler and by one-shot commands.
func RunOnce(ctx context.Context, job Job) error {
	logger := logutil.GetLogger(ctx).With(zap.String("job", job.Name()))
	start := time.Now()
	logger.Info("job started")
	err := job.Run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error("job finished", zap.Error(err), zap.Duration("duration", elapsed))
		return err
	}
	logger.Info("job finished", zap.Duration("duration", elapsed))
	return nil
}

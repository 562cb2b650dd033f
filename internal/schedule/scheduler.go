package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers jobs on cron schedules. A trigger that fires while the
// previous invocation of the same job is still executing is skipped and
// logged, never queued.
type Scheduler struct {
	cron *cron.Cron
}

// New builds a scheduler. Overlap suppression is applied to every job.
func New(logger *slog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cl),
			cron.Recover(cl),
		)),
	}
}

// Add registers fn under a cron spec such as "@hourly" or "0 * * * *".
func (s *Scheduler) Add(spec string, fn func()) error {
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("schedule: add %q: %w", spec, err)
	}
	return nil
}

// Start runs the scheduler until ctx is cancelled, then waits for in-flight
// jobs to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

// Stop halts scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger adapts slog to the cron.Logger interface. Skipped overlapping
// triggers surface here as "skip" info records.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info("schedule: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("schedule: "+msg, append([]any{"error", err}, keysAndValues...)...)
}

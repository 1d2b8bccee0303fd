package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs a job at a fixed interval.
type Scheduler struct {
	Every time.Duration
	Name  string
	Log   *zap.Logger

	now func() time.Time
}

// Next reports when the job runs after now; zero when disabled.
func (s *Scheduler) Next(now time.Time) time.Time {
	if s.Every <= 0 {
		return time.Time{}
	}
	return now.Add(s.Every)
}

// Run calls job at every tick until ctx is done. Job errors are logged and
// do not stop the loop. Run returns immediately when Every is not positive.
func (s *Scheduler) Run(ctx context.Context, job func(context.Context) error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	clock := s.now
	if clock == nil {
		clock = time.Now
	}
	next := s.Next(clock())
	if next.IsZero() {
		return
	}
	log.Info("scheduled job", zap.String("job", s.Name), zap.Duration("every", s.Every))
	t := time.NewTimer(next.Sub(clock()))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		start := clock()
		if err := job(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("scheduled job failed", zap.String("job", s.Name), zap.Error(err))
		} else {
			log.Debug("scheduled job done", zap.String("job", s.Name), zap.Duration("took", clock().Sub(start)))
		}
		t.Reset(s.Next(clock()).Sub(clock()))
	}
}

// Package schedule runs the backup pipeline on a cron schedule.
package schedule

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type runner interface {
	Run(ctx context.Context) error
}

type cronScheduler interface {
	AddFunc(spec string, cmd func()) (cron.EntryID, error)
	Start()
	Stop() context.Context
}

// Scheduler triggers runs from cron and executes them one at a time. A
// trigger arriving while a run is already pending is dropped, so runs never
// overlap on the same backup root.
type Scheduler struct {
	logger logrus.FieldLogger

	runner runner
	cron   cronScheduler
	spec   string

	pending chan struct{}
}

func NewScheduler(logger logrus.FieldLogger, runner runner, cron cronScheduler, spec string) *Scheduler {
	return &Scheduler{
		logger:  logger,
		runner:  runner,
		cron:    cron,
		spec:    spec,
		pending: make(chan struct{}, 1),
	}
}

// Trigger asks for a run and reports whether it was queued.
func (s *Scheduler) Trigger() bool {
	select {
	case s.pending <- struct{}{}:
		return true
	default:
		s.logger.Warn("Run is already pending, skipping trigger")
		return false
	}
}

// Run registers the cron entry and handles triggers until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.Trigger() }); err != nil {
		return errors.Wrapf(err, "invalid cron spec '%s'", s.spec)
	}

	s.logger.WithField("spec", s.spec).Debug("Starting cron")
	s.cron.Start()

	defer func() {
		<-s.cron.Stop().Done()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.pending:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.logger.Info("Starting scheduled run")

	if err := s.runner.Run(ctx); err != nil {
		s.logger.WithError(err).Error("Scheduled run failed")
		return
	}

	s.logger.Info("Scheduled run finished")
}

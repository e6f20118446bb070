package domainfx

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/yurykabanov/dbxbackuper/internal/configfx"
	"github.com/yurykabanov/dbxbackuper/pkg/backup"
	"github.com/yurykabanov/dbxbackuper/pkg/schedule"
)

func NewCron(logger *logrus.Logger) *cron.Cron {
	return cron.New(cron.WithChain(cron.Recover(cronLogger{logger})))
}

func Scheduler(
	logger *logrus.Logger,
	config *configfx.ScheduleConfig,
	pipeline *backup.Pipeline,
	c *cron.Cron,
) *schedule.Scheduler {
	return schedule.NewScheduler(logger, pipeline, c, config.Cron)
}

func RunScheduler(lc fx.Lifecycle, shutdowner fx.Shutdowner, logger *logrus.Logger, scheduler *schedule.Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)

				if err := scheduler.Run(ctx); err != nil {
					logger.WithError(err).Error("Scheduler stopped")
					shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()

			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	logger logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			f[key] = keysAndValues[i+1]
		}
	}

	return f
}

package domainfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(Classifier),
	fx.Provide(DiskSpaceProber),
	fx.Provide(Retention),
	fx.Provide(Copier),
	fx.Provide(BackendSelector),
	fx.Provide(HashStore),
	fx.Provide(Archiver),
	fx.Provide(Producer),
	fx.Provide(Pipeline),
)

// ScheduleModule runs the pipeline on the configured cron spec.
var ScheduleModule = fx.Options(
	fx.Provide(NewCron),
	fx.Provide(Scheduler),
	fx.Invoke(RunScheduler),
)

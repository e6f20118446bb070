package configfx

import (
	"go.uber.org/fx"
)

// Module expects the command line *pflag.FlagSet to be supplied by the caller.
var Module = fx.Options(
	fx.Provide(ViperProvider),
	fx.Provide(BackupConfigProvider),
	fx.Provide(ProducerConfigProvider),
	fx.Provide(HashStoreConfigProvider),
	fx.Provide(ScheduleConfigProvider),
)

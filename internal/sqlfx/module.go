package sqlfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(SqliteConfigProvider),
	fx.Provide(OpenSqliteDatabase),
	fx.Provide(ArchiveRepository),
	fx.Provide(HashRecordRepository),
	fx.Invoke(CloseSqliteDatabase),
)

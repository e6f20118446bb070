package metricsfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(Registry),
	fx.Provide(EventSink),
)

// ServerModule exposes the registry and the archive catalog over HTTP.
var ServerModule = fx.Options(
	fx.Provide(HttpServerConfigProvider),
	fx.Provide(HttpServer),
	fx.Provide(HttpRouter),
	fx.Provide(Listener),
	fx.Invoke(RunServer),

	fx.Invoke(RegisterPrometheusHandler),

	fx.Provide(ArchiveMetricHandler),
	fx.Invoke(RegisterArchiveMetricHandler),
)

package dockerfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(DockerConnectionConfigProvider),
	fx.Provide(DockerClientFactory),
	fx.Invoke(CloseDockerClient),
)

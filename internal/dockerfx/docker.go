package dockerfx

import (
	"context"
	"sync"
	"time"

	docker "github.com/docker/docker/client"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/yurykabanov/dbxbackuper/internal/configfx"
)

type DockerConnectionConfig struct {
	Host    string
	Version string
}

func DockerConnectionConfigProvider(v *viper.Viper) (*DockerConnectionConfig, error) {
	return &DockerConnectionConfig{
		Host:    v.GetString(configfx.ConfigDockerHost),
		Version: v.GetString(configfx.ConfigDockerVersion),
	}, nil
}

// ClientFactory connects to docker on first use, so configurations that never
// touch a container do not need a daemon.
type ClientFactory struct {
	config *DockerConnectionConfig
	logger *logrus.Logger

	once   sync.Once
	client *docker.Client
	err    error
}

func DockerClientFactory(config *DockerConnectionConfig, logger *logrus.Logger) *ClientFactory {
	return &ClientFactory{
		config: config,
		logger: logger,
	}
}

func (f *ClientFactory) Client() (*docker.Client, error) {
	f.once.Do(func() {
		f.client, f.err = connect(f.config, f.logger)
	})

	return f.client, f.err
}

func connect(config *DockerConnectionConfig, logger *logrus.Logger) (*docker.Client, error) {
	logger.WithField("host", config.Host).Debug("Connecting to docker via")

	opts := []docker.Opt{docker.FromEnv}
	if config.Host != "" {
		opts = append(opts, docker.WithHost(config.Host))
	}
	if config.Version != "" {
		opts = append(opts, docker.WithVersion(config.Version))
	} else {
		opts = append(opts, docker.WithAPIVersionNegotiation())
	}

	client, err := docker.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to create docker client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "Unable to ping docker")
	}

	return client, nil
}

func CloseDockerClient(lc fx.Lifecycle, factory *ClientFactory) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if factory.client == nil {
				return nil
			}
			return factory.client.Close()
		},
	})
}

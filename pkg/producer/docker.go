package producer

import (
	"context"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/pkg/appcontext"
)

type DockerConfig struct {
	Container    string
	Wait         time.Duration
	PollInterval time.Duration
}

type dockerClient interface {
	ContainerInspect(
		ctx context.Context,
		containerID string,
	) (container.InspectResponse, error)

	ContainerStop(
		ctx context.Context,
		containerID string,
		options container.StopOptions,
	) error

	ContainerStart(
		ctx context.Context,
		containerID string,
		options container.StartOptions,
	) error
}

// Docker runs the producer as a container and stops it through the daemon.
type Docker struct {
	logger logrus.FieldLogger
	config DockerConfig
	docker dockerClient
}

func NewDocker(logger logrus.FieldLogger, config DockerConfig, docker dockerClient) *Docker {
	return &Docker{
		logger: logger,
		config: config,
		docker: docker,
	}
}

// IsRunning reports false when the container cannot be inspected.
func (d *Docker) IsRunning(ctx context.Context, name string) bool {
	running, err := d.running(ctx, name)
	if err != nil {
		appcontext.LoggerFromContext(d.logger, ctx).
			WithError(err).WithField("container", d.name(name)).
			Warn("Unable to inspect container")
		return false
	}

	return running
}

func (d *Docker) name(name string) string {
	if name == "" {
		return d.config.Container
	}
	return name
}

func (d *Docker) running(ctx context.Context, name string) (bool, error) {
	c, err := d.docker.ContainerInspect(ctx, d.name(name))
	if err != nil {
		return false, err
	}

	return c.ContainerJSONBase != nil && c.State != nil && c.State.Running, nil
}

// Stop fails when the container state is unknown: reading files under a live
// server is worse than skipping the run.
func (d *Docker) Stop(ctx context.Context) bool {
	logger := appcontext.LoggerFromContext(d.logger, ctx).WithField("container", d.config.Container)

	running, err := d.running(ctx, "")
	if err != nil {
		logger.WithError(err).Error("Unable to inspect container, refusing to continue")
		return false
	}

	if !running {
		logger.Info("Producer is already stopped")
		return true
	}

	timeout := int(d.config.Wait / time.Second)

	if err := d.docker.ContainerStop(ctx, d.config.Container, container.StopOptions{Timeout: &timeout}); err != nil {
		logger.WithError(err).Error("Unable to stop container")
		return false
	}

	stopped := poll(ctx, d.config.Wait, d.config.PollInterval, func() bool {
		running, err := d.running(ctx, "")
		return err == nil && !running
	})
	if !stopped {
		logger.Warn("Container did not stop in time")
	}

	return stopped
}

func (d *Docker) Start(ctx context.Context) bool {
	logger := appcontext.LoggerFromContext(d.logger, ctx).WithField("container", d.config.Container)

	running, err := d.running(ctx, "")
	if err != nil {
		logger.WithError(err).Warn("Unable to inspect container, starting anyway")
	}

	if running {
		logger.Info("Producer is already running")
		return true
	}

	if err := d.docker.ContainerStart(ctx, d.config.Container, container.StartOptions{}); err != nil {
		logger.WithError(err).Error("Unable to start container")
		return false
	}

	started := poll(ctx, d.config.Wait, d.config.PollInterval, func() bool {
		return d.IsRunning(ctx, "")
	})
	if !started {
		logger.Warn("Container did not start in time")
	}

	return started
}

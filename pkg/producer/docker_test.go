package producer

import (
	"context"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// region dockerClientMock
type dockerClientMock struct {
	mock.Mock
}

func (m *dockerClientMock) ContainerInspect(
	ctx context.Context,
	containerID string,
) (container.InspectResponse, error) {
	args := m.Called(ctx, containerID)
	return args.Get(0).(container.InspectResponse), args.Error(1)
}

func (m *dockerClientMock) ContainerStop(
	ctx context.Context,
	containerID string,
	options container.StopOptions,
) error {
	args := m.Called(ctx, containerID, options)
	return args.Error(0)
}

func (m *dockerClientMock) ContainerStart(
	ctx context.Context,
	containerID string,
	options container.StartOptions,
) error {
	args := m.Called(ctx, containerID, options)
	return args.Error(0)
}

// endregion

func inspected(running bool) container.InspectResponse {
	return container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{
			State: &container.State{Running: running},
		},
	}
}

var dockerConfig = DockerConfig{
	Container:    "sls-serv",
	Wait:         50 * time.Millisecond,
	PollInterval: 5 * time.Millisecond,
}

func TestDocker_Stop(t *testing.T) {
	client := &dockerClientMock{}

	client.On("ContainerInspect", mock.Anything, "sls-serv").Return(inspected(true), nil).Once()
	client.On("ContainerStop", mock.Anything, "sls-serv", mock.AnythingOfType("container.StopOptions")).Return(nil)
	client.On("ContainerInspect", mock.Anything, "sls-serv").Return(inspected(false), nil)

	d := NewDocker(discardLogger(), dockerConfig, client)

	assert.True(t, d.Stop(context.Background()))
	client.AssertExpectations(t)
}

func TestDocker_Stop_AlreadyStopped(t *testing.T) {
	client := &dockerClientMock{}
	client.On("ContainerInspect", mock.Anything, "sls-serv").Return(inspected(false), nil)

	d := NewDocker(discardLogger(), dockerConfig, client)

	assert.True(t, d.Stop(context.Background()))
	client.AssertNotCalled(t, "ContainerStop", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocker_Stop_Failure(t *testing.T) {
	client := &dockerClientMock{}
	client.On("ContainerInspect", mock.Anything, "sls-serv").Return(inspected(true), nil)
	client.On("ContainerStop", mock.Anything, "sls-serv", mock.Anything).Return(errors.New("daemon unavailable"))

	d := NewDocker(discardLogger(), dockerConfig, client)

	assert.False(t, d.Stop(context.Background()))
}

func TestDocker_Stop_StillRunning(t *testing.T) {
	client := &dockerClientMock{}
	client.On("ContainerInspect", mock.Anything, "sls-serv").Return(inspected(true), nil)
	client.On("ContainerStop", mock.Anything, "sls-serv", mock.Anything).Return(nil)

	d := NewDocker(discardLogger(), dockerConfig, client)

	assert.False(t, d.Stop(context.Background()))
}

func TestDocker_Start(t *testing.T) {
	client := &dockerClientMock{}

	client.On("ContainerInspect", mock.Anything, "sls-serv").Return(inspected(false), nil).Once()
	client.On("ContainerStart", mock.Anything, "sls-serv", container.StartOptions{}).Return(nil)
	client.On("ContainerInspect", mock.Anything, "sls-serv").Return(inspected(true), nil)

	d := NewDocker(discardLogger(), dockerConfig, client)

	assert.True(t, d.Start(context.Background()))
	client.AssertExpectations(t)
}

func TestDocker_IsRunning_InspectError(t *testing.T) {
	client := &dockerClientMock{}
	client.On("ContainerInspect", mock.Anything, "other").
		Return(container.InspectResponse{}, errors.New("no such container"))

	d := NewDocker(discardLogger(), dockerConfig, client)

	assert.False(t, d.IsRunning(context.Background(), "other"))
}

func TestDocker_Stop_InspectError(t *testing.T) {
	client := &dockerClientMock{}
	client.On("ContainerInspect", mock.Anything, "sls-serv").
		Return(container.InspectResponse{}, errors.New("Cannot connect to the Docker daemon"))

	d := NewDocker(discardLogger(), dockerConfig, client)

	assert.False(t, d.Stop(context.Background()))
	client.AssertNotCalled(t, "ContainerStop", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocker_Stop_InspectErrorWhilePolling(t *testing.T) {
	client := &dockerClientMock{}
	client.On("ContainerInspect", mock.Anything, "sls-serv").Return(inspected(true), nil).Once()
	client.On("ContainerStop", mock.Anything, "sls-serv", mock.Anything).Return(nil)
	client.On("ContainerInspect", mock.Anything, "sls-serv").
		Return(container.InspectResponse{}, errors.New("Cannot connect to the Docker daemon"))

	d := NewDocker(discardLogger(), dockerConfig, client)

	assert.False(t, d.Stop(context.Background()))
}

func TestDocker_Start_InspectError(t *testing.T) {
	client := &dockerClientMock{}
	client.On("ContainerInspect", mock.Anything, "sls-serv").
		Return(container.InspectResponse{}, errors.New("Cannot connect to the Docker daemon"))
	client.On("ContainerStart", mock.Anything, "sls-serv", container.StartOptions{}).
		Return(errors.New("Cannot connect to the Docker daemon"))

	d := NewDocker(discardLogger(), dockerConfig, client)

	assert.False(t, d.Start(context.Background()))
	client.AssertCalled(t, "ContainerStart", mock.Anything, "sls-serv", container.StartOptions{})
}

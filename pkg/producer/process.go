package producer

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/pkg/appcontext"
)

type ProcessConfig struct {
	// Dir is the server directory the stop file is dropped into.
	Dir string

	// StartFile is the launcher executable, e.g. monitor.exe.
	StartFile string

	// StopFile is a command file whose appearance in Dir asks the server to
	// shut down.
	StopFile string

	// ProcessName is the executable name of the running server.
	ProcessName string

	Wait         time.Duration
	PollInterval time.Duration
}

type processTable interface {
	Pids(ctx context.Context, name string) ([]int32, error)
	Kill(ctx context.Context, pid int32) error
}

// Launcher starts an executable without waiting for it.
type Launcher func(ctx context.Context, path string) error

// Process stops the server gracefully through its stop file and kills it
// (and its launcher) when it does not go away in time.
type Process struct {
	logger logrus.FieldLogger
	config ProcessConfig

	table  processTable
	launch Launcher
}

func NewProcess(logger logrus.FieldLogger, config ProcessConfig) *Process {
	return newProcess(logger, config, systemTable{}, StartDetached)
}

func newProcess(logger logrus.FieldLogger, config ProcessConfig, table processTable, launch Launcher) *Process {
	return &Process{
		logger: logger,
		config: config,
		table:  table,
		launch: launch,
	}
}

func (p *Process) IsRunning(ctx context.Context, name string) bool {
	if name == "" {
		name = p.config.ProcessName
	}

	pids, err := p.table.Pids(ctx, name)
	if err != nil {
		appcontext.LoggerFromContext(p.logger, ctx).
			WithError(err).WithField("process", name).
			Warn("Unable to list processes")
		return false
	}

	return len(pids) > 0
}

func (p *Process) Stop(ctx context.Context) bool {
	logger := appcontext.LoggerFromContext(p.logger, ctx).WithField("process", p.config.ProcessName)

	if !p.IsRunning(ctx, "") {
		logger.Info("Producer is already stopped")
		return p.killAll(ctx)
	}

	if err := p.dropStopFile(); err != nil {
		logger.WithError(err).Error("Unable to issue stop command")
		return false
	}

	logger.Info("Stop command issued")

	stopped := poll(ctx, p.config.Wait, p.config.PollInterval, func() bool {
		return !p.IsRunning(ctx, "")
	})
	if !stopped {
		if ctx.Err() != nil {
			return false
		}

		logger.Warn("Producer did not stop in time, forcing termination")
	}

	if !p.killAll(ctx) {
		return false
	}

	return !p.IsRunning(ctx, "")
}

func (p *Process) Start(ctx context.Context) bool {
	logger := appcontext.LoggerFromContext(p.logger, ctx).WithField("process", p.config.ProcessName)

	if p.IsRunning(ctx, "") {
		logger.Info("Producer is already running")
		return true
	}

	if err := p.launch(ctx, p.config.StartFile); err != nil {
		logger.WithError(err).Error("Unable to start producer")
		return false
	}

	started := poll(ctx, p.config.Wait, p.config.PollInterval, func() bool {
		return p.IsRunning(ctx, "")
	})
	if !started {
		logger.Warn("Producer did not start in time")
	}

	return started
}

func (p *Process) dropStopFile() error {
	in, err := os.Open(p.config.StopFile)
	if err != nil {
		return errors.Wrap(err, "unable to open stop file")
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(p.config.Dir, filepath.Base(p.config.StopFile)))
	if err != nil {
		return errors.Wrap(err, "unable to create stop command")
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrap(err, "unable to write stop command")
	}

	return out.Close()
}

// killAll kills the server process and its launcher. Missing processes are
// not an error.
func (p *Process) killAll(ctx context.Context) bool {
	names := []string{p.config.ProcessName}
	if p.config.StartFile != "" {
		names = append(names, filepath.Base(p.config.StartFile))
	}

	ok := true

	for _, name := range names {
		logger := appcontext.LoggerFromContext(p.logger, ctx).WithField("process", name)

		pids, err := p.table.Pids(ctx, name)
		if err != nil {
			logger.WithError(err).Warn("Unable to list processes")
			ok = false
			continue
		}

		for _, pid := range pids {
			if err := p.table.Kill(ctx, pid); err != nil {
				logger.WithError(err).WithField("pid", pid).Error("Unable to kill process")
				ok = false
				continue
			}

			logger.WithField("pid", pid).Info("Process killed")
		}
	}

	return ok
}

// systemTable is the process table of the host.
type systemTable struct{}

func (systemTable) Pids(ctx context.Context, name string) ([]int32, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	var pids []int32
	for _, proc := range procs {
		procName, err := proc.NameWithContext(ctx)
		if err != nil {
			// exited while listing
			continue
		}

		if procName == name {
			pids = append(pids, proc.Pid)
		}
	}

	return pids, nil
}

func (systemTable) Kill(ctx context.Context, pid int32) error {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err == process.ErrorProcessNotRunning {
		return nil
	}
	if err != nil {
		return err
	}

	return proc.KillWithContext(ctx)
}

// StartDetached starts path in its own directory and does not wait for it.
func StartDetached(_ context.Context, path string) error {
	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)

	if err := cmd.Start(); err != nil {
		return err
	}

	return cmd.Process.Release()
}

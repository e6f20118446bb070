package archive

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// CommandResult is the captured outcome of an external process.
type CommandResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// CommandRunner runs an external command to completion. A non-nil error means
// the process could not be run at all; a non-zero exit code is reported via
// the result.
type CommandRunner func(ctx context.Context, name string, args ...string) (CommandResult, error)

func ExecRunner(ctx context.Context, name string, args ...string) (CommandResult, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return result, err
}

// SevenZip shells out to a 7-Zip executable ("7z", "7za", "7z.exe").
type SevenZip struct {
	path string
	run  CommandRunner
}

func NewSevenZip(path string, run CommandRunner) *SevenZip {
	if run == nil {
		run = ExecRunner
	}

	return &SevenZip{
		path: path,
		run:  run,
	}
}

func (s *SevenZip) Format() string {
	return FormatSevenZip
}

// Available probes the executable with its "i" (info) command.
func (s *SevenZip) Available(ctx context.Context) bool {
	if s.path == "" {
		return false
	}

	res, err := s.run(ctx, s.path, "i")
	if err != nil {
		return false
	}

	return res.ExitCode == 0
}

func (s *SevenZip) CreateArchive(ctx context.Context, sourcePath, archivePath string) error {
	return writeAtomically(archivePath, func(tmpPath string) error {
		res, err := s.run(ctx, s.path, "a", "-t7z", "-bd", "-y", tmpPath, sourcePath)
		if err != nil {
			return &BackendError{Format: FormatSevenZip, Err: errors.Wrap(err, "unable to run 7z")}
		}

		if res.ExitCode != 0 {
			return &BackendError{
				Format:   FormatSevenZip,
				ExitCode: res.ExitCode,
				Stdout:   strings.TrimSpace(string(res.Stdout)),
				Stderr:   strings.TrimSpace(string(res.Stderr)),
				Err:      errors.New("7z returned non-zero exit status"),
			}
		}

		return nil
	})
}

package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/pkg/appcontext"
)

const (
	PhaseCopy    = "copy"
	PhaseArchive = "archive"
)

// DefaultRestartTimeout bounds the producer restart after the copy phase.
const DefaultRestartTimeout = time.Minute

// Producer is the process owning the source files. It is stopped while the
// copy phase runs.
type Producer interface {
	Stop(ctx context.Context) bool
	Start(ctx context.Context) bool
}

type resetter interface {
	Reset()
}

type Pipeline struct {
	events EventSink

	config Config

	sources  *Discoverer
	staged   *Discoverer
	copier   *Copier
	archiver *Archiver

	retention *Retention
	backends  resetter
	producer  Producer

	restartTimeout time.Duration
}

func NewPipeline(
	events EventSink,
	config Config,
	classifier *Classifier,
	copier *Copier,
	archiver *Archiver,
	retention *Retention,
	backends resetter,
	producer Producer,
) *Pipeline {
	if events == nil {
		events = nopSink{}
	}

	var exclude []string
	if within(config.BackupDirectory, config.SourceDirectory) {
		exclude = append(exclude, config.BackupDirectory)
	}

	return &Pipeline{
		events:    events,
		config:    config,
		sources:   NewDiscoverer(classifier, config.Extensions, exclude...),
		staged:    NewDiscoverer(classifier, config.Extensions),
		copier:    copier,
		archiver:  archiver,
		retention: retention,
		backends:  backends,
		producer:  producer,

		restartTimeout: DefaultRestartTimeout,
	}
}

// WithRestartTimeout sets how long the producer restart may take.
func (p *Pipeline) WithRestartTimeout(d time.Duration) *Pipeline {
	if d > 0 {
		p.restartTimeout = d
	}

	return p
}

// Run stops the producer, stages every eligible source file, restarts the
// producer and archives the staging area. Failing to stop the producer aborts
// the run before anything is copied.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx = appcontext.WithNewRunId(ctx)

	if p.backends != nil {
		p.backends.Reset()
	}
	if p.retention != nil {
		p.retention.ResetExclusions()
	}

	if p.producer != nil {
		if !p.producer.Stop(ctx) {
			p.events.Emit(ctx, EventProducerStopFailed, nil)
			return ErrProducerNotStopped
		}
		p.events.Emit(ctx, EventProducerStopped, nil)
	}

	_, copyErr := p.RunCopyPhase(ctx)

	if p.producer != nil {
		p.restartProducer(ctx)
	}

	if copyErr != nil {
		return copyErr
	}

	_, err := p.RunArchivePhase(ctx)

	return err
}

// restartProducer brings the producer back even when ctx was cancelled during
// the copy phase.
func (p *Pipeline) restartProducer(ctx context.Context) {
	startCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.restartTimeout)
	defer cancel()

	if p.producer.Start(startCtx) {
		p.events.Emit(startCtx, EventProducerStarted, nil)
	} else {
		p.events.Emit(startCtx, EventProducerStartFailed, nil)
	}
}

// RunCopyPhase stages every allow-listed source file that is not in use.
// Per-file failures are counted and the walk goes on; only fatal errors and
// cancellation stop it.
func (p *Pipeline) RunCopyPhase(ctx context.Context) (Stats, error) {
	ctx = appcontext.WithPhase(ctx, PhaseCopy)

	var stats Stats

	p.events.Emit(ctx, EventPhaseStarted, logrus.Fields{"source": p.config.SourceDirectory})

	err := p.sources.Walk(ctx, p.config.SourceDirectory, func(c Candidate) error {
		stats.Processed++

		fileCtx := appcontext.WithIdentity(ctx, c.Class.BaseName)

		if c.Class.IsInUse {
			stats.InUse++
			p.events.Emit(fileCtx, EventFileInUse, logrus.Fields{"source": c.Source.Path})
			return nil
		}

		if p.config.SkipDatedFiles && !c.Class.IsOriginal {
			stats.DatedSkipped++
			p.events.Emit(fileCtx, EventFileDatedSkip, logrus.Fields{"source": c.Source.Path})
			return nil
		}

		staged, err := p.copier.Copy(fileCtx, c.Source)
		if err != nil {
			if IsFatal(err) {
				return err
			}

			stats.Failed++
			p.events.Emit(fileCtx, EventFileCopyFailed, logrus.Fields{"source": c.Source.Path, "error": err.Error()})
			return nil
		}

		stats.Copied++
		p.events.Emit(fileCtx, EventFileCopied, logrus.Fields{
			"source": c.Source.Path,
			"staged": staged,
			"size":   c.Source.Size,
		})

		return nil
	})

	p.finishPhase(ctx, stats, err)

	return stats, errors.Wrap(err, "copy phase")
}

// RunArchivePhase archives every staged copy under the backup root.
func (p *Pipeline) RunArchivePhase(ctx context.Context) (Stats, error) {
	ctx = appcontext.WithPhase(ctx, PhaseArchive)

	var stats Stats

	p.events.Emit(ctx, EventPhaseStarted, logrus.Fields{"backup": p.config.BackupDirectory})

	if err := os.MkdirAll(p.config.BackupDirectory, 0755); err != nil {
		p.finishPhase(ctx, stats, err)
		return stats, errors.Wrap(err, "archive phase")
	}

	err := p.staged.Walk(ctx, p.config.BackupDirectory, func(c Candidate) error {
		stats.Processed++

		fileCtx := appcontext.WithIdentity(ctx, c.Class.BaseName)

		outcome, err := p.archiver.ArchiveIfChanged(fileCtx, c.Source.Path)
		if err != nil {
			if IsFatal(err) {
				return err
			}

			stats.Failed++
			return nil
		}

		switch outcome {
		case OutcomeSkipped:
			stats.Unchanged++
		case OutcomeArchived:
			stats.Archived++
		}

		return nil
	})

	p.finishPhase(ctx, stats, err)

	return stats, errors.Wrap(err, "archive phase")
}

func (p *Pipeline) finishPhase(ctx context.Context, stats Stats, err error) {
	fields := logrus.Fields{
		"processed":     stats.Processed,
		"copied":        stats.Copied,
		"in_use":        stats.InUse,
		"dated_skipped": stats.DatedSkipped,
		"unchanged":     stats.Unchanged,
		"archived":      stats.Archived,
		"failed":        stats.Failed,
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	p.events.Emit(ctx, EventPhaseFinished, fields)
}

// within reports whether path lies inside dir.
func within(path, dir string) bool {
	if path == "" || dir == "" {
		return false
	}

	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

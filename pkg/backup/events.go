package backup

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/pkg/appcontext"
)

// EventCode is a stable identifier of something that happened during a run.
// Rendering it for humans is up to the sink.
type EventCode string

const (
	EventPhaseStarted  EventCode = "phase_started"
	EventPhaseFinished EventCode = "phase_finished"

	EventFileInUse       EventCode = "file_in_use"
	EventFileDatedSkip   EventCode = "file_dated_skipped"
	EventFileCopied      EventCode = "file_copied"
	EventFileCopyFailed  EventCode = "file_copy_failed"
	EventSourceRemoved   EventCode = "source_removed"
	EventFileUnchanged   EventCode = "file_unchanged"
	EventFileArchived    EventCode = "file_archived"
	EventArchiveFailed   EventCode = "archive_failed"
	EventBackendFallback EventCode = "archive_backend_fallback"

	EventSpaceSufficient   EventCode = "space_sufficient"
	EventSpaceInsufficient EventCode = "space_insufficient"
	EventArchiveEvicted    EventCode = "archive_evicted"
	EventSpaceExhausted    EventCode = "space_exhausted"
	EventRemediationFailed EventCode = "eviction_remediation_failed"

	EventProducerStopped     EventCode = "producer_stopped"
	EventProducerStopFailed  EventCode = "producer_stop_failed"
	EventProducerStarted     EventCode = "producer_started"
	EventProducerStartFailed EventCode = "producer_start_failed"

	EventCatalogFailed   EventCode = "catalog_failed"
	EventHashStoreFailed EventCode = "hash_store_failed"
)

var eventLevels = map[EventCode]logrus.Level{
	EventPhaseStarted:  logrus.InfoLevel,
	EventPhaseFinished: logrus.InfoLevel,

	EventFileInUse:       logrus.WarnLevel,
	EventFileDatedSkip:   logrus.WarnLevel,
	EventFileCopied:      logrus.InfoLevel,
	EventFileCopyFailed:  logrus.ErrorLevel,
	EventSourceRemoved:   logrus.WarnLevel,
	EventFileUnchanged:   logrus.InfoLevel,
	EventFileArchived:    logrus.InfoLevel,
	EventArchiveFailed:   logrus.ErrorLevel,
	EventBackendFallback: logrus.WarnLevel,

	EventSpaceSufficient:   logrus.DebugLevel,
	EventSpaceInsufficient: logrus.WarnLevel,
	EventArchiveEvicted:    logrus.WarnLevel,
	EventSpaceExhausted:    logrus.ErrorLevel,
	EventRemediationFailed: logrus.WarnLevel,

	EventProducerStopped:     logrus.InfoLevel,
	EventProducerStopFailed:  logrus.ErrorLevel,
	EventProducerStarted:     logrus.InfoLevel,
	EventProducerStartFailed: logrus.ErrorLevel,

	EventCatalogFailed:   logrus.WarnLevel,
	EventHashStoreFailed: logrus.WarnLevel,
}

type EventSink interface {
	Emit(ctx context.Context, code EventCode, fields logrus.Fields)
}

// LogSink writes every event as one structured log line with an "event" field.
type LogSink struct {
	logger logrus.FieldLogger
}

func NewLogSink(logger logrus.FieldLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, code EventCode, fields logrus.Fields) {
	entry := appcontext.LoggerFromContext(s.logger, ctx).
		WithFields(fields).
		WithField("event", string(code))

	level, ok := eventLevels[code]
	if !ok {
		level = logrus.InfoLevel
	}

	switch level {
	case logrus.DebugLevel:
		entry.Debug(string(code))
	case logrus.WarnLevel:
		entry.Warn(string(code))
	case logrus.ErrorLevel:
		entry.Error(string(code))
	default:
		entry.Info(string(code))
	}
}

type nopSink struct{}

func (nopSink) Emit(context.Context, EventCode, logrus.Fields) {}

// FallbackReporter adapts an EventSink to the archive selector fallback hook.
func FallbackReporter(events EventSink) func(ctx context.Context, preferred, fallback string) {
	return func(ctx context.Context, preferred, fallback string) {
		events.Emit(ctx, EventBackendFallback, logrus.Fields{"preferred": preferred, "fallback": fallback})
	}
}

// Package metrics exposes pipeline events as Prometheus metrics.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/pkg/appcontext"
	"github.com/yurykabanov/dbxbackuper/pkg/backup"
)

const namespace = "dbxbackuper"

// Sink counts every event and forwards it to the wrapped sink.
type Sink struct {
	next backup.EventSink

	events        *prometheus.CounterVec
	phaseFinished *prometheus.GaugeVec
	phaseFailed   *prometheus.GaugeVec

	now func() time.Time
}

func NewSink(next backup.EventSink, registerer prometheus.Registerer) (*Sink, error) {
	s := &Sink{
		next: next,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Number of pipeline events by code.",
		}, []string{"event"}),
		phaseFinished: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_last_finished_timestamp_seconds",
			Help:      "Unix time the phase last finished.",
		}, []string{"phase"}),
		phaseFailed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_last_failed_files",
			Help:      "Files that failed during the last run of the phase.",
		}, []string{"phase"}),
		now: time.Now,
	}

	for _, c := range []prometheus.Collector{s.events, s.phaseFinished, s.phaseFailed} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Sink) Emit(ctx context.Context, code backup.EventCode, fields logrus.Fields) {
	s.events.WithLabelValues(string(code)).Inc()

	if code == backup.EventPhaseFinished {
		phase := appcontext.PhaseFromContext(ctx)

		s.phaseFinished.WithLabelValues(phase).Set(float64(s.now().Unix()))

		if failed, ok := fields["failed"].(int); ok {
			s.phaseFailed.WithLabelValues(phase).Set(float64(failed))
		}
	}

	if s.next != nil {
		s.next.Emit(ctx, code, fields)
	}
}

package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurykabanov/dbxbackuper/pkg/appcontext"
	"github.com/yurykabanov/dbxbackuper/pkg/backup"
)

type countingSink struct {
	codes []backup.EventCode
}

func (s *countingSink) Emit(_ context.Context, code backup.EventCode, _ logrus.Fields) {
	s.codes = append(s.codes, code)
}

func TestSink_Emit(t *testing.T) {
	next := &countingSink{}

	s, err := NewSink(next, prometheus.NewRegistry())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Unix(1748787720, 0) }

	ctx := appcontext.WithPhase(context.Background(), backup.PhaseArchive)

	s.Emit(ctx, backup.EventFileArchived, nil)
	s.Emit(ctx, backup.EventFileArchived, nil)
	s.Emit(ctx, backup.EventBackendFallback, nil)
	s.Emit(ctx, backup.EventPhaseFinished, logrus.Fields{"failed": 3})

	assert.Equal(t, float64(2), testutil.ToFloat64(s.events.WithLabelValues(string(backup.EventFileArchived))))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.events.WithLabelValues(string(backup.EventBackendFallback))))
	assert.Equal(t, float64(1748787720), testutil.ToFloat64(s.phaseFinished.WithLabelValues(backup.PhaseArchive)))
	assert.Equal(t, float64(3), testutil.ToFloat64(s.phaseFailed.WithLabelValues(backup.PhaseArchive)))

	assert.Len(t, next.codes, 4)
}

func TestNewSink_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	_, err := NewSink(nil, registry)
	require.NoError(t, err)

	_, err = NewSink(nil, registry)
	assert.Error(t, err)
}

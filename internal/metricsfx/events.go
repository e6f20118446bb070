package metricsfx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/pkg/backup"
	"github.com/yurykabanov/dbxbackuper/pkg/metrics"
)

func Registry() (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()

	err := registry.Register(collectors.NewGoCollector())
	if err != nil {
		return nil, err
	}

	err = registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err != nil {
		return nil, err
	}

	return registry, nil
}

// EventSink logs every pipeline event and counts it.
func EventSink(logger *logrus.Logger, registry *prometheus.Registry) (backup.EventSink, error) {
	return metrics.NewSink(backup.NewLogSink(logger), registry)
}

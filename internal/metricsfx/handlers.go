package metricsfx

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/pkg/http/handler"
)

func ArchiveMetricHandler(
	logger *logrus.Logger,
	repository handler.ArchiveRepository,
) *handler.ArchiveMetricHandler {
	return handler.NewArchiveMetricHandler(logger, repository)
}

func RegisterArchiveMetricHandler(router *mux.Router, h *handler.ArchiveMetricHandler) {
	router.Handle("/metrics/archives", h).Methods(http.MethodGet)
}

func RegisterPrometheusHandler(router *mux.Router, registry *prometheus.Registry) {
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

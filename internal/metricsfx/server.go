package metricsfx

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/yurykabanov/dbxbackuper/internal/configfx"
	"github.com/yurykabanov/dbxbackuper/pkg/http/middleware"
)

type HttpServerConfig struct {
	Address           string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	EnableRequestsLog bool
}

func HttpServerConfigProvider(v *viper.Viper) (*HttpServerConfig, error) {
	return &HttpServerConfig{
		Address:           v.GetString(configfx.ConfigServerAddress),
		ReadTimeout:       v.GetDuration(configfx.ConfigServerTimeoutRead),
		WriteTimeout:      v.GetDuration(configfx.ConfigServerTimeoutWrite),
		EnableRequestsLog: v.GetBool(configfx.ConfigServerLogRequests),
	}, nil
}

func HttpServer(
	config *HttpServerConfig,
	logger *logrus.Logger,
	defaultLogger *log.Logger,
	router *mux.Router,
) (*http.Server, error) {
	if config.EnableRequestsLog {
		router.Use(func(next http.Handler) http.Handler {
			return middleware.WithRequestLogging(next, logger)
		})
	}

	h := middleware.WithRequestId(router, middleware.DefaultRequestIdProvider)

	return &http.Server{
		Addr:              config.Address,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		ErrorLog:          defaultLogger,
		Handler:           h,
	}, nil
}

func HttpRouter() (*mux.Router, error) {
	return mux.NewRouter(), nil
}

// Listener binds eagerly so a busy port fails the daemon at startup.
func Listener(config *HttpServerConfig) (net.Listener, error) {
	listener, err := net.Listen("tcp", config.Address)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to listen on '%s'", config.Address)
	}

	return listener, nil
}

func RunServer(lc fx.Lifecycle, logger *logrus.Logger, listener net.Listener, server *http.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.WithField("address", listener.Addr().String()).Info("Serving metrics")

			go func() {
				if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
					logger.WithError(err).Error("Metrics server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

package loggerfx

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yurykabanov/dbxbackuper/internal/configfx"
)

var logger *logrus.Logger

func init() {
	logger = logrus.StandardLogger()
	logger.SetFormatter(&logrus.JSONFormatter{})
}

func Logger() *logrus.Logger {
	return logger
}

// DefaultLoggerAdapter lets packages that only accept *log.Logger (e.g.
// http.Server) write through logrus.
func DefaultLoggerAdapter(logger *logrus.Logger) *log.Logger {
	return log.New(logger.WriterLevel(logrus.ErrorLevel), "", 0)
}

func ConfigureLogger(lc fx.Lifecycle, logger *logrus.Logger, v *viper.Viper) {
	logLevel := v.GetString(configfx.ConfigLogLevel)
	logFormat := v.GetString(configfx.ConfigLogFormat)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	switch logFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		fallthrough
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	if file := v.GetString(configfx.ConfigLogFile); file != "" {
		rotating := rotatingFile(file, v)

		logger.SetOutput(io.MultiWriter(os.Stderr, rotating))

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				logger.SetOutput(os.Stderr)
				return rotating.Close()
			},
		})
	}
}

func rotatingFile(file string, v *viper.Viper) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    v.GetInt(configfx.ConfigLogMaxSizeMB),
		MaxBackups: v.GetInt(configfx.ConfigLogMaxBackups),
		MaxAge:     v.GetInt(configfx.ConfigLogMaxAgeDays),
		LocalTime:  true,
	}
}

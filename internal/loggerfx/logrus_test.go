package loggerfx

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"github.com/yurykabanov/dbxbackuper/internal/configfx"
)

func TestConfigureLogger(t *testing.T) {
	v := viper.New()
	v.Set(configfx.ConfigLogLevel, "debug")
	v.Set(configfx.ConfigLogFormat, "json")

	l := logrus.New()
	lc := fxtest.NewLifecycle(t)

	ConfigureLogger(lc, l, v)

	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}

func TestConfigureLogger_InvalidLevel(t *testing.T) {
	v := viper.New()
	v.Set(configfx.ConfigLogLevel, "loud")

	l := logrus.New()
	ConfigureLogger(fxtest.NewLifecycle(t), l, v)

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestConfigureLogger_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dbxbackuper.log")

	v := viper.New()
	v.Set(configfx.ConfigLogFile, file)
	v.Set(configfx.ConfigLogMaxSizeMB, 1)

	l := logrus.New()
	lc := fxtest.NewLifecycle(t)

	ConfigureLogger(lc, l, v)
	lc.RequireStart()

	l.Info("to file")

	lc.RequireStop()

	assert.FileExists(t, file)
}

func TestDefaultLoggerAdapter(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)

	adapter := DefaultLoggerAdapter(l)
	require.NotNil(t, adapter)

	adapter.Print("http: TLS handshake error")
}

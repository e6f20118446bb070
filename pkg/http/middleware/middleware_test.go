package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestWithRequestId_Generated(t *testing.T) {
	var seen string
	h := WithRequestId(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIdHeader)
		w.WriteHeader(http.StatusNoContent)
	}), func() string { return "generated-id" })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "generated-id", rec.Header().Get(RequestIdHeader))
	assert.Equal(t, "", seen)
}

func TestWithRequestId_Propagated(t *testing.T) {
	h := WithRequestId(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), DefaultRequestIdProvider)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIdHeader, "from-client")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "from-client", rec.Header().Get(RequestIdHeader))
}

func TestDefaultRequestIdProvider(t *testing.T) {
	a, b := DefaultRequestIdProvider(), DefaultRequestIdProvider()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestWithRequestLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.Out = buf
	logger.SetFormatter(&logrus.JSONFormatter{})

	h := WithRequestId(WithRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}), logger), func() string { return "req-1" })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"content_length":15`)
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"request_uri":"/metrics"`)
	assert.Contains(t, out, `"level":"warning"`)
}

func TestWithRequestLogging_RouteAndLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.Out = buf
	logger.SetFormatter(&logrus.JSONFormatter{})

	router := mux.NewRouter()
	router.HandleFunc("/metrics/{kind}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})
	router.Use(func(next http.Handler) http.Handler {
		return WithRequestLogging(next, logger)
	})

	h := http.Handler(router)

	// successful scrapes stay below info
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics/archives", nil))
	assert.Empty(t, buf.String())

	logger.SetLevel(logrus.DebugLevel)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics/archives", nil))

	out := buf.String()
	assert.Contains(t, out, `"route":"/metrics/{kind}"`)
	assert.Contains(t, out, `"level":"debug"`)
}

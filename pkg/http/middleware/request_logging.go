package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/pkg/appcontext"
)

// responseRecorder remembers what the handler wrote.
type responseRecorder struct {
	http.ResponseWriter

	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// WithRequestLogging logs one line per request: debug on success, warn on
// client errors, error on server errors. Installed as mux middleware it also
// logs the matched route template.
func WithRequestLogging(next http.Handler, logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		entry := appcontext.LoggerFromContext(logger, r.Context()).WithFields(logrus.Fields{
			"method":         r.Method,
			"route":          routeTemplate(r),
			"request_uri":    r.RequestURI,
			"remote_addr":    r.RemoteAddr,
			"status":         rec.status,
			"content_length": rec.bytes,
			"duration_ms":    time.Since(started).Milliseconds(),
		})

		switch {
		case rec.status >= http.StatusInternalServerError:
			entry.Error("request")
		case rec.status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Debug("request")
		}
	})
}

// routeTemplate is the matched mux path template, or the raw path when the
// request did not go through a mux route.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}

	return r.URL.Path
}

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/example/shipment-tracking/internal/platform/metrics"
	"github.com/google/uuid"
)

// statusWriter captures the final HTTP status code and number of bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Logging logs every request and records it in the HTTP metrics.
func Logging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			dur := time.Since(start)
			route := RouteLabel(r.URL.Path)

			metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur.Seconds())

			log.Info("request",
				"method", r.Method,
				"path", r.URL.RequestURI(),
				"status", sw.status,
				"bytes", sw.bytes,
				"dur_ms", dur.Milliseconds(),
			)
		})
	}
}

// RouteOther labels every path outside the known routes.
const RouteOther = "other"

// RouteLabel maps a request path onto one of the API's route templates so
// metric label values stay within a fixed set.
func RouteLabel(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	switch segs[0] {
	case "merchants":
		switch {
		case len(segs) == 1:
			return "/merchants"
		case len(segs) == 2 && isID(segs[1]):
			return "/merchants/{id}"
		}
	case "shipments":
		switch {
		case len(segs) == 1:
			return "/shipments"
		case len(segs) == 2 && isID(segs[1]):
			return "/shipments/{id}"
		case len(segs) == 3 && isID(segs[1]) && (segs[2] == "full" || segs[2] == "events"):
			return "/shipments/{id}/" + segs[2]
		}
	case "health", "metrics":
		if len(segs) == 1 {
			return "/" + segs[0]
		}
	}
	return RouteOther
}

func isID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's prometheus collectors.
type Metrics struct {
	requestCount *prometheus.CounterVec
	uploads      *prometheus.CounterVec
	chats        *prometheus.CounterVec
	chunks       prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docchat_uploads_total",
				Help: "Uploaded files by outcome.",
			},
			[]string{"result"},
		),
		chats: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docchat_chats_total",
				Help: "Chat queries by outcome.",
			},
			[]string{"result"},
		),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docchat_indexed_chunks_total",
			Help: "Document chunks added to the vector index.",
		}),
	}
	reg.MustRegister(m.requestCount, m.uploads, m.chats, m.chunks)
	return m
}

// Middleware counts requests by method, route pattern and status.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Label by route pattern, not raw path.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestCount.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
	})
}

// Handler serves the metrics gathered by g.
func (m *Metrics) Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

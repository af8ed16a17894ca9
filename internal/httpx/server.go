package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-seat-reservations/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type registrar interface {
	Register(r chi.Router)
}

// NewRouter mounts every handler under /api and again at the root.
func NewRouter(handlers ...registrar) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	mount := func(sub chi.Router) {
		for _, h := range handlers {
			h.Register(sub)
		}
	}
	r.Route("/api", mount)
	r.Group(mount)
	return r
}

// WithCORS allows the listed origins; "*" allows all.
func WithCORS(h http.Handler, origins []string) http.Handler {
	for _, o := range origins {
		if o == "*" {
			return cors.AllowAll().Handler(h)
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
	}).Handler(h)
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ObserveRequest(route, r.Method, strconv.Itoa(status), time.Since(start).Seconds())
	})
}

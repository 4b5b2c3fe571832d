// Package form_api is the HTTP and WebSocket surface of the form server.
// Every form interaction is one request against a session; accepted
// changes are pushed to the session's WebSocket watchers.
package form_api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/charleschow/xi-predictor/internal/adapters/history"
	"github.com/charleschow/xi-predictor/internal/core/catalog"
	"github.com/charleschow/xi-predictor/internal/core/display"
	"github.com/charleschow/xi-predictor/internal/core/session"
	"github.com/charleschow/xi-predictor/internal/fanout"
	"github.com/charleschow/xi-predictor/internal/telemetry"
)

type Handler struct {
	sessions *session.Store
	catalog  *catalog.Source
	history  history.Recorder // nil when disabled
	feed     *fanout.Server
	chart    display.ChartConfig
	origins  []string
}

type Options struct {
	Sessions    *session.Store
	Catalog     *catalog.Source
	History     history.Recorder
	Feed        *fanout.Server
	CORSOrigins []string
}

func NewHandler(opts Options) *Handler {
	return &Handler{
		sessions: opts.Sessions,
		catalog:  opts.Catalog,
		history:  opts.History,
		feed:     opts.Feed,
		chart:    display.DefaultChartConfig(),
		origins:  opts.CORSOrigins,
	}
}

// Router builds the chi router with the middleware stack and every route.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(jsonContentType)

	r.Get("/health", h.healthCheck)
	r.Get("/ws", h.watch)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", h.getCatalog)
		r.Post("/catalog/reload", h.reloadCatalog)
		r.Get("/predictions/recent", h.recentPredictions)

		r.Post("/sessions", h.createSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.deleteSession)

			r.Put("/teams/{side}", h.setTeam)
			r.Put("/venue", h.setVenue)
			r.Put("/toss", h.setToss)
			r.Post("/blur", h.blurAll)

			r.Route("/lineups/{side}", func(r chi.Router) {
				r.Post("/blur", h.blur)
				r.Route("/slots/{slot}", func(r chi.Router) {
					r.Post("/focus", h.focus)
					r.Put("/search", h.setSearch)
					r.Put("/player", h.assign)
					r.Delete("/player", h.clear)
					r.Put("/role", h.setRole)
					r.Get("/suggestions", h.suggestions)
				})
			})

			r.Post("/predict", h.predict)
			r.Get("/result", h.result)
			r.Get("/result/chart", h.resultChart)
		})
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		telemetry.L().With("req", middleware.GetReqID(r.Context())).Debug(
			fmt.Sprintf("form_api: %s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start)))
	})
}

// jsonContentType enforces application/json for requests with bodies.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}
			ct := r.Header.Get("Content-Type")
			if ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
				writeError(w, http.StatusUnsupportedMediaType, "invalid_input", "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"occasion-ledger/internal/config"
	"occasion-ledger/internal/metrics"
	"occasion-ledger/internal/transport/httpserver/handler"
	"occasion-ledger/internal/transport/httpserver/middleware"
)

// NewRouter serves every route with and without a trailing slash. m may be nil.
func NewRouter(cfg config.HTTPConfig, handlers *handler.Handlers, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.NewCORS(cfg.AllowedOrigins))
	if m != nil {
		r.Use(m.Middleware)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Get("/health", handlers.Health)

	r.Post("/users", handlers.RegisterUser)
	r.Post("/occasions", handlers.CreateOccasion)
	r.Get("/occasions/{id}/summary", handlers.OccasionSummary)
	r.Post("/expenditures", handlers.CreateExpenditure)
	r.Post("/clear-expense", handlers.ClearExpense)

	return r
}

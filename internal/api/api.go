// Package api exposes discovery and insights over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/vendor-geo/internal/config"
	"github.com/sells-group/vendor-geo/internal/discovery"
	"github.com/sells-group/vendor-geo/internal/geo"
	"github.com/sells-group/vendor-geo/internal/insights"
)

// Searcher runs discovery searches.
type Searcher interface {
	Search(ctx context.Context, q discovery.Query) (*discovery.Result, error)
}

// InsightsRunner builds insights reports.
type InsightsRunner interface {
	Run(ctx context.Context, req insights.Request) (*insights.Report, error)
}

// Handler serves the HTTP API.
type Handler struct {
	search   Searcher
	insights InsightsRunner
	limiter  *rate.Limiter
}

// NewHandler creates a Handler. A non-positive RatePerSec disables throttling
// of the insights endpoint.
func NewHandler(search Searcher, runner InsightsRunner, cfg config.InsightsConfig) *Handler {
	h := &Handler{search: search, insights: runner}
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}
	return h
}

// Router builds the chi router with middleware and every route mounted.
func (h *Handler) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/vendors", func(r chi.Router) {
		r.Get("/nearby", h.nearby)
		r.Get("/{vendorID}/insights", h.vendorInsights)
	})
	return r
}

func (h *Handler) nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	origin, err := geo.ParsePoint(q.Get("lat"), q.Get("lng"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := discovery.Query{
		Origin:   origin,
		Vertical: q.Get("vertical"),
		Filters: discovery.Filters{
			MarketID: q.Get("market"),
			Category: q.Get("category"),
			Text:     q.Get("q"),
		},
		Sort: discovery.SortMode(q.Get("sort")),
	}
	if query.RadiusMiles, err = floatParam(q.Get("radius")); err != nil {
		writeError(w, http.StatusBadRequest, "radius must be a number")
		return
	}
	if query.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	if query.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}

	res, err := h.search.Search(r.Context(), query)
	switch {
	case errors.Is(err, discovery.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		zap.L().Error("api: nearby search failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) vendorInsights(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	days, err := intParam(r.URL.Query().Get("days"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "days must be an integer")
		return
	}
	vendorID := chi.URLParam(r, "vendorID")

	report, err := h.insights.Run(r.Context(), insights.Request{
		VendorID:     vendorID,
		Vertical:     r.URL.Query().Get("vertical"),
		LookbackDays: days,
	})
	switch {
	case errors.Is(err, insights.ErrVendorNotFound):
		writeError(w, http.StatusNotFound, "vendor not found")
		return
	case err != nil:
		zap.L().Error("api: insights failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("vendor_id", vendorID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "insights failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func floatParam(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

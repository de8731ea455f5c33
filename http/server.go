package http

import (
	"log/slog"
	"net/http"
)

// ServerConfig holds what NewServer needs to build the handler tree.
type ServerConfig struct {
	Calculator    *CalculatorHandler
	Applications  *ApplicationHandler
	RateLimiter   *RateLimiter
	AdminUser     string
	AdminPassword string
	ServiceName   string
	Log           *slog.Logger
}

// NewServer routes the public API and the admin pages.
func NewServer(cfg ServerConfig) http.Handler {
	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.RateLimiter == nil {
			return h
		}
		return Chain(h, RateLimitMiddleware(cfg.RateLimiter))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return Chain(h, BasicAuth(cfg.AdminUser, cfg.AdminPassword))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", cfg.Calculator.Health)
	mux.HandleFunc("GET /api/locations", cfg.Calculator.Locations)
	mux.HandleFunc("GET /api/appliances", cfg.Calculator.Appliances)
	mux.Handle("/api/appliances/estimate", limited(cfg.Calculator.EstimateAppliances))
	mux.Handle("/api/calculate", limited(cfg.Calculator.Calculate))
	mux.Handle("/api/applications", limited(cfg.Applications.Submit))

	mux.Handle("GET /admin/applications", admin(cfg.Applications.List))
	mux.Handle("GET /admin/applications/{number}", admin(cfg.Applications.Get))
	mux.Handle("GET /admin/export.csv", admin(cfg.Applications.Export))

	name := cfg.ServiceName
	if name == "" {
		name = "solar-sizer"
	}
	return Chain(mux,
		Recover(cfg.Log),
		Logger(cfg.Log),
		OTel(name),
	)
}

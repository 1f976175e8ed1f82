package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Vlad-Innowise/auth-service/internal/domain"
	"github.com/Vlad-Innowise/auth-service/pkg/health"
	"github.com/Vlad-Innowise/auth-service/pkg/middleware"
)

// NewRouter creates a chi router with all auth service routes registered.
func NewRouter(
	authService AuthFacade,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing("auth"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("auth"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(authService, logger)
	tokenHandler := NewTokenHandler(authService, logger)

	// Bearer validator bridging the middleware to the auth facade. Only
	// access tokens grant entry to protected routes.
	validate := func(ctx context.Context, raw string) (*middleware.Principal, error) {
		claims, err := authService.Validate(ctx, raw)
		if err != nil {
			return nil, err
		}
		if claims.TokenType != domain.TokenTypeAccess {
			return nil, fmt.Errorf("token type %q cannot authenticate requests", claims.TokenType)
		}
		return &middleware.Principal{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   string(claims.Role),
		}, nil
	}

	// Public auth endpoints
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(validate))
			r.Delete("/remove", authHandler.Remove)
		})
	})

	// Token endpoints (public, the token itself is the credential)
	r.Route("/api/v1/token", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/validate", tokenHandler.Validate)
		r.Post("/refresh", tokenHandler.Refresh)
	})

	return r
}

// ContentTypeJSON sets the response content type for API routes.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

package server

import (
	// Go Internal Packages
	"context"
	"net/http"
	"time"

	// Local Packages
	errors "receipt-verifier/errors"
	models "receipt-verifier/models"

	// External Packages
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type contextKey string

const principalKey contextKey = "principal"

// KeyStore is the key-validity collaborator: a single keyed lookup that
// returns the active principal or nil.
type KeyStore interface {
	FindActive(ctx context.Context, key string) (*models.ApiKeyPrincipal, error)
}

// Limiter reports whether a client may proceed inside the current window.
type Limiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
}

// RequestLogger logs one line per completed request.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// APIKeyAuth authenticates every request by the X-API-Key header and hangs
// the resolved principal on the request context.
func APIKeyAuth(keys KeyStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				writeJSON(w, http.StatusUnauthorized,
					models.ErrorResponse{Success: false, Error: "missing API key"})
				return
			}

			principal, err := keys.FindActive(r.Context(), key)
			if err != nil {
				logger.Error("API key lookup failed", zap.Error(err))
				writeJSON(w, errors.HTTPStatus(errors.PersistenceErr(err)),
					models.ErrorResponse{Success: false, Error: "internal server error"})
				return
			}
			if principal == nil {
				writeJSON(w, http.StatusUnauthorized,
					models.ErrorResponse{Success: false, Error: "invalid or inactive API key"})
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit bounds requests per principal inside a fixed window. A limiter
// backend failure fails open so a redis outage never blocks verification.
func RateLimit(limiter Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.RemoteAddr
			if principal := PrincipalFrom(r.Context()); principal != nil {
				clientID = principal.ID
			}

			allowed, err := limiter.Allow(r.Context(), clientID)
			if err != nil {
				logger.Warn("rate limiter unavailable, failing open", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				writeJSON(w, http.StatusTooManyRequests,
					models.ErrorResponse{Success: false, Error: "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFrom returns the authenticated principal, or nil on unguarded
// routes.
func PrincipalFrom(ctx context.Context) *models.ApiKeyPrincipal {
	principal, _ := ctx.Value(principalKey).(*models.ApiKeyPrincipal)
	return principal
}

func principalName(ctx context.Context) string {
	if principal := PrincipalFrom(ctx); principal != nil {
		return principal.Name
	}
	return ""
}

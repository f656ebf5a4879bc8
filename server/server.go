package server

import (
	// Go Internal Packages
	"context"
	"net/http"
	"time"

	// External Packages
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Server owns the router and the HTTP listener lifecycle.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// New wires the routes. limiter may be nil when rate limiting is disabled.
func New(addr string, h *Handler, keys KeyStore, limiter Limiter, logger *zap.Logger) *Server {
	r := chi.NewRouter()

	r.Use(RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(APIKeyAuth(keys, logger))
		if limiter != nil {
			api.Use(RateLimit(limiter, logger))
		}

		api.Post("/verify/cbe", h.VerifyCBE)
		api.Post("/verify/telebirr", h.VerifyTelebirr)
		api.Post("/verify/dashen", h.VerifyDashen)
		api.Post("/verify/abyssinia", h.VerifyAbyssinia)
		api.Post("/verify/cbebirr", h.VerifyCBEBirr)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

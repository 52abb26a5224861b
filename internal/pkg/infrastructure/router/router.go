package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog"
	"github.com/riandyrn/otelchi"
	"github.com/rs/cors"
)

type Option func(*config)

type config struct {
	allowedOrigins []string
	concise        bool
}

// WithAllowedOrigins restricts cross origin requests to the given origins
// instead of the default wildcard.
func WithAllowedOrigins(origins []string) Option {
	return func(c *config) {
		if len(origins) > 0 {
			c.allowedOrigins = origins
		}
	}
}

// WithConciseLogging drops request headers from the request log, which keeps
// high volume seeded traffic from drowning out everything else.
func WithConciseLogging() Option {
	return func(c *config) {
		c.concise = true
	}
}

// New creates a chi router with cross origin support, structured request
// logging and trace propagation wired up in the order the middlewares
// require. Route handlers are registered by the caller afterwards.
func New(serviceName string, options ...Option) *chi.Mux {
	cfg := &config{
		allowedOrigins: []string{"*"},
	}

	for _, option := range options {
		option(cfg)
	}

	r := chi.NewRouter()

	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.allowedOrigins,
		AllowCredentials: true,
		Debug:            false,
	}).Handler)

	r.Use(httplog.RequestLogger(
		httplog.NewLogger(serviceName, httplog.Options{
			JSON:    true,
			Concise: cfg.concise,
		}),
	))

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))

	return r
}

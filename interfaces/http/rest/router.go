package rest

import (
	"net/http"
	"strings"

	"spooltrack/application/commands/bus"
	querybus "spooltrack/application/queries/bus"
	"spooltrack/infrastructure/config"
	"spooltrack/interfaces/http/rest/handlers"
	"spooltrack/interfaces/http/rest/middleware"
	v1 "spooltrack/interfaces/http/rest/v1"
	"spooltrack/pkg/auth"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		cfg:        cfg,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(versionMiddleware)

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.spooltrack.io"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes: served directly for legacy clients when enabled,
	// otherwise redirected to v2
	if rt.cfg.EnableLegacyAPI {
		legacy := v1.NewRouter(
			handlers.NewComponentHandler(rt.commandBus, rt.queryBus, rt.logger),
			handlers.NewInferenceHandler(rt.commandBus, rt.queryBus, rt.logger),
			handlers.NewHistoryHandler(rt.commandBus, rt.queryBus, rt.logger),
		)
		router.Mount("/api/v1", rt.authMiddleware()(legacy))
	} else {
		router.Route("/api/v1", func(r chi.Router) {
			r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
				http.Redirect(w, req, strings.Replace(req.URL.Path, "/api/v1", "/api/v2", 1), http.StatusPermanentRedirect)
			})
		})
	}

	// API v2 routes (current)
	router.Route("/api/v2", func(r chi.Router) {
		r.Use(rt.authMiddleware())

		componentHandler := handlers.NewComponentHandler(rt.commandBus, rt.queryBus, rt.logger)
		inferenceHandler := handlers.NewInferenceHandler(rt.commandBus, rt.queryBus, rt.logger)
		historyHandler := handlers.NewHistoryHandler(rt.commandBus, rt.queryBus, rt.logger)

		// Component graph endpoints
		r.Route("/components", func(r chi.Router) {
			r.Get("/", componentHandler.ListComponents)
			r.Get("/{componentID}", componentHandler.GetComponent)
			r.Get("/{componentID}/subtree", componentHandler.GetSubtree)
			r.Post("/{componentID}/children", componentHandler.AddChild)
			r.Delete("/{componentID}/children/{childID}", componentHandler.RemoveChild)
			r.Put("/{componentID}/parent", componentHandler.MoveComponent)

			// Mass endpoints
			r.Post("/{componentID}/measurements", inferenceHandler.RecordMeasurement)
			r.Get("/{componentID}/measurements", inferenceHandler.ListMeasurements)
			r.Post("/{componentID}/infer-mass", inferenceHandler.InferMass)
			r.Post("/{componentID}/scale-reading", inferenceHandler.ScaleReading)
		})

		// Sibling endpoints
		r.Post("/siblings", componentHandler.CreateSibling)

		// Inventory lifecycle
		r.Post("/inventory/refresh", componentHandler.RefreshInventory)

		// Undo/redo endpoints
		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.GetHistory)
			r.Post("/undo", historyHandler.Undo)
			r.Post("/redo", historyHandler.Redo)
		})
	})

	return router
}

// authMiddleware picks JWT validation when a secret is configured and a
// fixed local user otherwise
func (rt *Router) authMiddleware() func(next http.Handler) http.Handler {
	if rt.cfg.JWTSecret == "" && rt.cfg.IsDevelopment() {
		return middleware.DevAuthenticate()
	}

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: rt.cfg.JWTSecret,
		Issuer:    rt.cfg.JWTIssuer,
		Audience:  []string{"spooltrack-api"},
	})
	if err != nil {
		rt.logger.Error("Failed to create JWT validator", zap.Error(err))
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":true,"message":"Authentication system error"}`))
			})
		}
	}
	return middleware.Authenticate(validator, rt.logger)
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := "v2"
		if strings.Contains(r.URL.Path, "/api/v1") {
			version = "v1"
		}

		w.Header().Set("X-API-Version", version)
		w.Header().Set("X-API-Latest", "v2")
		w.Header().Set("X-API-Deprecated", "false")

		if version == "v1" {
			w.Header().Set("X-API-Deprecated", "true")
		}

		next.ServeHTTP(w, r)
	})
}

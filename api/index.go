package handler

import (
	"fmt"
	"net/http"
	"time"

	"zoid-backend/pkg/config"
	"zoid-backend/pkg/database"
	"zoid-backend/pkg/handlers"
	custommw "zoid-backend/pkg/middleware"
	"zoid-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handler is the serverless entry point. Every request builds (or
// reuses, on warm invocations) the full Chi router and dispatches into
// it, so one function serves the whole API surface.
func Handler(w http.ResponseWriter, r *http.Request) {
	cfg, err := config.GetCached()
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}
	if err := cfg.Validate(); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}

	logger := NewLogger(cfg)

	db, err := database.GetDatabase(database.DatabaseConfig{
		PostgresDSN: cfg.PostgresDSN,
		SupabaseURL: cfg.SupabaseURL,
		SupabaseKey: cfg.SupabaseKey,
		UseMemoryDB: cfg.PostgresDSN == "" && cfg.SupabaseURL == "" && cfg.IsDevelopment(),
		Debug:       cfg.Debug,
	}, logger)
	if err != nil {
		logger.Error("database unavailable", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Database unavailable")
		return
	}
	// The pool owns the connection; no close here.

	NewRouter(cfg, db, logger).ServeHTTP(w, r)
}

// NewLogger builds the process logger. Production gets sampled JSON,
// development gets the console encoder.
func NewLogger(cfg *config.Config) *zap.Logger {
	var logger *zap.Logger
	var err error
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// NewRouter assembles the middleware stack and the full route table.
func NewRouter(cfg *config.Config, db database.DatabaseInterface, logger *zap.Logger) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(custommw.Normalize())
	router.Use(custommw.Logger(logger))
	router.Use(custommw.Recovery(cfg, logger))
	router.Use(custommw.CORS(cfg))
	router.Use(middleware.Timeout(25 * time.Second))
	router.Use(middleware.Compress(5))
	router.Use(custommw.ContentTypeJSON)
	router.Use(custommw.MaxBodySize(1 << 20))

	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}

	authHandler := handlers.NewAuthHandler(cfg, db, logger)
	orgsHandler := handlers.NewOrgsHandler(cfg, db, logger)
	invitesHandler := handlers.NewInvitesHandler(cfg, db, logger)
	ideasHandler := handlers.NewIdeasHandler(cfg, db, logger)

	router.Get("/", authHandler.HealthCheck)

	if cfg.IsDevelopment() {
		router.Get("/debug/db-pool", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccessResponse(w, database.GetConnectionStats())
		})
	}

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
		})

		// Idea listing is readable without credentials
		r.Get("/ideas", ideasHandler.ListIdeas)

		r.Group(func(r chi.Router) {
			r.Use(custommw.AuthMiddleware(cfg))

			r.Post("/ideas", ideasHandler.CreateIdeas)
			r.Put("/ideas", ideasHandler.UpdateIdeaVotes)
			r.Delete("/ideas", ideasHandler.DeleteIdea)

			r.Route("/org", func(r chi.Router) {
				r.Get("/", orgsHandler.ListMyOrganizations)
				r.Post("/", orgsHandler.CreateOrganization)
				r.Put("/", orgsHandler.UpdateOrganization)
				r.Delete("/", orgsHandler.DeleteOrganization)
				r.Get("/members", orgsHandler.ListMembers) // expects ?org_id=

				r.Post("/invite", invitesHandler.InviteMember)
				r.Get("/invite", invitesHandler.AcceptInvitation) // expects ?token=
				r.Delete("/invite", invitesHandler.RemoveMembers)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})

	return router
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/foodgram/internal/services"
	"github.com/desertthunder/foodgram/internal/shared"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own a set of routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the method patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

const shutdownTimeout = 10 * time.Second

// Server is the foodgram HTTP API.
type Server struct {
	services *services.Services
	config   *shared.Config
	logger   *log.Logger
	router   *BasicRouter
	handler  http.Handler
}

// New builds the router, middleware stack and routes for svc.
func New(svc *services.Services, config *shared.Config, logger *log.Logger) *Server {
	if config == nil {
		config = shared.DefaultConfig()
	}

	s := &Server{
		services: svc,
		config:   config,
		logger:   shared.WithLogger(logger, "component", "http"),
		router:   NewBasicRouter(),
	}

	s.router.Use(
		Recoverer(s.logger),
		RequestLogger(s.logger),
		Instrument(),
		RateLimiter(config.Server.RateLimit, config.Server.RateBurst, s.writeError),
		Identity([]byte(config.Auth.JWTSecret), s.writeError),
	)
	s.routes()

	s.handler = CORS(config.Server.CORSOrigins).Handler(s.router)
	return s
}

func (s *Server) routes() {
	s.router.Handler(healthHandler{})
	s.router.Handle(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.HandleFunc(http.MethodGet, "/api/tags", s.listTags)
	s.router.HandleFunc(http.MethodGet, "/api/tags/{id}", s.getTag)
	s.router.HandleFunc(http.MethodGet, "/api/ingredients", s.listIngredients)
	s.router.HandleFunc(http.MethodGet, "/api/ingredients/{id}", s.getIngredient)

	s.router.HandleFunc(http.MethodGet, "/api/recipes", s.listRecipes)
	s.router.HandleFunc(http.MethodPost, "/api/recipes", s.createRecipe)
	s.router.HandleFunc(http.MethodGet, "/api/recipes/download_shopping_cart", s.downloadShoppingCart)
	s.router.HandleFunc(http.MethodGet, "/api/recipes/{id}", s.getRecipe)
	s.router.HandleFunc(http.MethodPut, "/api/recipes/{id}", s.updateRecipe)
	s.router.HandleFunc(http.MethodPatch, "/api/recipes/{id}", s.updateRecipe)
	s.router.HandleFunc(http.MethodDelete, "/api/recipes/{id}", s.deleteRecipe)
	s.router.HandleFunc(http.MethodGet, "/api/recipes/{id}/get-link", s.recipeLink)
	s.router.HandleFunc(http.MethodPost, "/api/recipes/{id}/favorite", s.addMark(s.services.Favorites))
	s.router.HandleFunc(http.MethodDelete, "/api/recipes/{id}/favorite", s.removeMark(s.services.Favorites))
	s.router.HandleFunc(http.MethodPost, "/api/recipes/{id}/shopping_cart", s.addMark(s.services.Cart))
	s.router.HandleFunc(http.MethodDelete, "/api/recipes/{id}/shopping_cart", s.removeMark(s.services.Cart))

	s.router.HandleFunc(http.MethodGet, "/api/users", s.listUsers)
	s.router.HandleFunc(http.MethodGet, "/api/users/me", s.getMe)
	s.router.HandleFunc(http.MethodGet, "/api/users/{id}", s.getUser)
	s.router.HandleFunc(http.MethodGet, "/api/users/subscriptions", s.listSubscriptions)
	s.router.HandleFunc(http.MethodPost, "/api/users/{id}/subscribe", s.subscribe)
	s.router.HandleFunc(http.MethodDelete, "/api/users/{id}/subscribe", s.unsubscribe)

	s.router.HandleFunc(http.MethodGet, "/r/{code}", s.followShortLink)
}

// Handler returns the complete HTTP handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// healthHandler answers liveness checks.
type healthHandler struct{}

func (healthHandler) Routes() []string { return []string{"GET /healthz"} }

func (healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CORS builds the cross-origin policy for the configured origins.
func CORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
}

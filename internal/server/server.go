package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/group-accounts/internal/auth"
	"github.com/hongminglow/group-accounts/internal/config"
	"github.com/hongminglow/group-accounts/internal/groups"
	"github.com/hongminglow/group-accounts/internal/http/handlers"
	"github.com/hongminglow/group-accounts/internal/http/respond"
	"github.com/hongminglow/group-accounts/internal/middleware"
	"github.com/hongminglow/group-accounts/internal/storage"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Users         storage.UserStore
	Groups        storage.GroupStore
	Tokens        *auth.TokenManager
	Authenticator *auth.Authenticator
	Notifier      groups.Notifier
	DB            handlers.Pinger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewHandler builds the routed handler without binding a listener.
func NewHandler(cfg config.Config, deps Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.WithLogger, middleware.Logging, middleware.Metrics, middleware.Authenticate(deps.Tokens))
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.Message(w, http.StatusMethodNotAllowed, respond.MsgMethodNotAllowed)
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.Message(w, http.StatusNotFound, respond.MsgNotFound)
	})

	handlers.NewHealthHandler(time.Now(), deps.DB).Register(r)
	handlers.NewUserHandler(deps.Users, deps.Groups, deps.Tokens, deps.Notifier).Register(r)
	handlers.NewSessionHandler(deps.Authenticator, deps.Tokens).Register(r)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return middleware.CORS(cfg.CORSOrigins, r)
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

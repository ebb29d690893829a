package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/hubd/internal/logger"
	"github.com/marmos91/hubd/pkg/api/handlers"
	apiMiddleware "github.com/marmos91/hubd/pkg/api/middleware"
	"github.com/marmos91/hubd/pkg/auth"
)

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes (spec §6):
//   - GET  /health, /health/ready                          - probes
//   - POST /api/v1/auth/{login,refresh}, GET /api/v1/auth/me - sessions
//   - POST /api/repos/create, DELETE /api/repos/delete      - repo lifecycle
//   - POST /api/{kind}s/{namespace}/{name}/preupload/{revision}
//   - POST /api/{kind}s/{namespace}/{name}/commit/{revision}
//   - GET  /api/{kind}s/{namespace}/{name}/tree/{revision}/*
//   - GET  /api/{kind}s/{namespace}/{name}/revision/{revision}
//   - HEAD/GET /{namespace}/{name}/resolve/{revision}/*
//   - POST /{namespace}/{repoGit}/info/lfs/objects/batch
//   - POST /{namespace}/{repoGit}/info/lfs/objects/verify
//
// {repoGit} carries the ".git"-suffixed repo name Git-LFS clients send;
// handlers trim the suffix themselves (see handlers.trimDotGit). The
// {namespace}/{name} split (rather than a single {repo} segment) exists
// because a wire "repo id" can itself contain a slash, which chi won't
// match inside one path parameter.
func NewRouter(deps *handlers.Dependencies, authSvc *auth.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(deps.Store)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	authHandler := handlers.NewAuthHandler(deps.Auth)
	reposHandler := handlers.NewReposHandler(deps)
	transferHandler := handlers.NewTransferHandler(deps)
	commitHandler := handlers.NewCommitHandler(deps)
	resolveHandler := handlers.NewResolveHandler(deps)

	requireAuth := apiMiddleware.RequireAuth(authSvc)
	optionalAuth := apiMiddleware.OptionalAuth(authSvc)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.Me)
		})
	})

	r.Route("/api/repos", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/create", reposHandler.Create)
		r.Delete("/delete", reposHandler.Delete)
	})

	for _, kind := range []string{"models", "datasets", "spaces"} {
		r.Route("/api/"+kind+"/{namespace}/{name}", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/preupload/{revision}", transferHandler.Preupload)
				r.Post("/commit/{revision}", commitHandler.Commit)
			})
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/tree/{revision}/*", resolveHandler.Tree)
				r.Get("/revision/{revision}", resolveHandler.Revision)
			})
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Head("/{namespace}/{name}/resolve/{revision}/*", resolveHandler.Head)
		r.Get("/{namespace}/{name}/resolve/{revision}/*", resolveHandler.Get)
		r.Post("/{namespace}/{repoGit}/info/lfs/objects/batch", transferHandler.Batch)
		r.Post("/{namespace}/{repoGit}/info/lfs/objects/verify", transferHandler.Verify)
	})

	return r
}

// requestLogger logs requests using the internal structured logger, mirroring
// the teacher's DEBUG-on-start/INFO-on-completion pattern.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Info("API request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}

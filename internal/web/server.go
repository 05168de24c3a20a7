package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	zspotify "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-moodify/internal/auth"
	"github.com/justestif/go-spotify-moodify/internal/metrics"
	"github.com/justestif/go-spotify-moodify/internal/moods"
	"github.com/justestif/go-spotify-moodify/internal/playlist"
	"github.com/justestif/go-spotify-moodify/internal/spotify"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:5000"

// ServerConfig holds server configuration and dependencies. Users,
// Preferences and History are optional; without them the preference and
// history routes answer 503.
type ServerConfig struct {
	Addr      string
	ClientURL string
	Secret    []byte

	Auth      auth.Provider
	Sessions  SessionManager
	Resolver  *moods.Resolver
	Playlists *playlist.Service

	Users       UserStore
	Preferences PreferencesStore
	History     HistoryStore

	// ClientFactory overrides how provider clients are built.
	ClientFactory ClientFactory

	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// Server is the HTTP server for the API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Auth == nil || cfg.Sessions == nil || cfg.Resolver == nil || cfg.Playlists == nil {
		return nil, errors.New("web: auth, sessions, resolver and playlists are required")
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("web: session secret is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	logger := cfg.Logger.With().Str("component", "web").Logger()

	newClient := cfg.ClientFactory
	if newClient == nil {
		newClient = defaultClientFactory(cfg.Auth, cfg.Logger)
	}

	handlers := &Handlers{
		auth:      cfg.Auth,
		sessions:  cfg.Sessions,
		users:     cfg.Users,
		prefs:     cfg.Preferences,
		history:   cfg.History,
		playlists: cfg.Playlists,
		resolver:  cfg.Resolver,
		newClient: newClient,
		secret:    cfg.Secret,
		clientURL: strings.TrimRight(cfg.ClientURL, "/"),
		logger:    logger,
	}

	s := &Server{
		router:   chi.NewRouter(),
		handlers: handlers,
		metrics:  cfg.Metrics,
		logger:   logger,
	}

	s.setupMiddleware(cfg.ClientURL)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func defaultClientFactory(provider auth.Provider, logger zerolog.Logger) ClientFactory {
	return func(ctx context.Context, token *oauth2.Token) SpotifyClient {
		api := zspotify.New(provider.Client(ctx, token), zspotify.WithRetry(true))
		return spotify.New(api, spotify.WithLogger(logger))
	}
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware(clientURL string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(middleware.Compress(5))

	origins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	if clientURL != "" {
		origins = append(origins, strings.TrimRight(clientURL, "/"))
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers
	r := s.router

	r.Get("/api/health", h.Health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// OAuth
	r.Get("/auth/login", h.Login)
	r.Get("/api/auth/login", h.Login)
	r.Get("/callback", h.Callback)
	r.Post("/api/auth/logout", h.Logout)

	// Public mood endpoints
	r.Post("/api/mood/sentiment", h.Sentiment)
	r.Get("/api/mood/moods", h.Moods)
	r.Get("/api/mood/hobbies", h.Hobbies)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)

		r.Get("/api/auth/user", h.CurrentUser)
		r.Get("/api/auth/token", h.IssueToken)

		r.Post("/api/mood/analyze", h.Analyze)

		r.Route("/api/playlist", func(r chi.Router) {
			r.Post("/generate", h.GeneratePlaylist)
			r.Post("/create", h.CreatePlaylist)
			r.Get("/history", h.PlaylistHistory)
			r.Get("/{id}", h.GetPlaylist)
		})

		r.Route("/api/preferences", func(r chi.Router) {
			r.Use(requireStore(h.prefs != nil))
			r.Get("/", h.GetPreferences)
			r.Post("/", h.SavePreferences)
			r.Put("/", h.UpdatePreferences)
		})

		r.Route("/api/history", func(r chi.Router) {
			r.Use(requireStore(h.history != nil))
			r.Get("/", h.ListHistory)
			r.Post("/", h.AddHistory)
		})
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and shuts it down gracefully when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info().Msg("server stopped")
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-moodify/internal/auth"
	"github.com/justestif/go-spotify-moodify/internal/config"
	"github.com/justestif/go-spotify-moodify/internal/db"
	"github.com/justestif/go-spotify-moodify/internal/metrics"
	"github.com/justestif/go-spotify-moodify/internal/playlist"
	"github.com/justestif/go-spotify-moodify/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Moodify API server",
	Long:  "Start the HTTP API server handling OAuth login, mood analysis and playlist generation.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	logger.Info().Str("env", cfg.Environment).Str("session_store", cfg.Session.Store).Msg("Moodify starting")

	provider, err := auth.NewProvider(auth.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURI:  cfg.Spotify.RedirectURI,
	})
	if err != nil {
		return err
	}

	m := metrics.New()
	resolver := newResolver(m)

	serverCfg := web.ServerConfig{
		Addr:      cfg.HTTPAddr,
		ClientURL: cfg.ClientURL,
		Secret:    []byte(cfg.Session.Secret),
		Auth:      provider,
		Resolver:  resolver,
		Metrics:   m,
		Logger:    logger,
	}
	playlistOpts := []playlist.Option{
		playlist.WithMarket(cfg.Spotify.Market),
		playlist.WithLogger(logger),
	}

	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return err
		}

		serverCfg.Users = database.Users()
		serverCfg.Preferences = database.Preferences()
		serverCfg.History = database.History()
		playlistOpts = append(playlistOpts, playlist.WithStore(playlist.DBStore(database)))

		if cfg.Session.Store == config.SessionStorePostgres {
			serverCfg.Sessions = web.NewDBSessionStore(database, logger)
			go pruneSessions(ctx, database)
		}
	} else {
		logger.Warn().Msg("DATABASE_URL not set, preferences and history are disabled")
	}

	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		store, err := web.NewRedisSessionStore(ctx, web.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer closeQuietly(store)
		serverCfg.Sessions = store
	case config.SessionStoreMemory:
		serverCfg.Sessions = web.NewSessionStore()
	}

	serverCfg.Playlists = playlist.New(resolver, playlistOpts...)

	srv, err := web.NewServer(serverCfg)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	return srv.Run(ctx)
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn().Err(err).Msg("close failed")
	}
}

// pruneSessions deletes expired sessions once an hour until ctx is done.
func pruneSessions(ctx context.Context, database *db.DB) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := database.Sessions().DeleteExpired(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("pruning expired sessions")
				continue
			}
			if n > 0 {
				logger.Info().Int64("deleted", n).Msg("pruned expired sessions")
			}
		}
	}
}

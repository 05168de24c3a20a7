// Command moodify runs the Moodify API server and its command line tools.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-moodify/internal/config"
	"github.com/justestif/go-spotify-moodify/internal/logging"
	"github.com/justestif/go-spotify-moodify/internal/metrics"
	"github.com/justestif/go-spotify-moodify/internal/moods"
	"github.com/justestif/go-spotify-moodify/internal/sentiment"
)

var (
	configPath string
	logger     zerolog.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "moodify",
	Short: "Moodify - mood-based playlist generation for Spotify",
	Long: "Moodify turns a mood, free-text feelings and hobbies into target musical " +
		"attributes and builds Spotify playlists from them.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it).
func loadConfig() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newScorer builds the sentiment scorer. Without an API key every score
// comes from the word lists.
func newScorer(m *metrics.Metrics) *sentiment.Scorer {
	opts := []sentiment.Option{
		sentiment.WithTimeout(cfg.Sentiment.Timeout),
		sentiment.WithLogger(logger),
	}
	if cfg.Sentiment.APIKey != "" {
		opts = append(opts, sentiment.WithClassifier(sentiment.NewHuggingFace(&sentiment.Config{
			APIKey:   cfg.Sentiment.APIKey,
			ModelURL: cfg.Sentiment.ModelURL,
			Timeout:  cfg.Sentiment.Timeout,
		})))
	} else {
		logger.Debug().Msg("no sentiment API key, using word lists only")
	}
	if m != nil {
		opts = append(opts, sentiment.WithObserver(m.ObserveSentiment))
	}
	return sentiment.NewScorer(opts...)
}

func newResolver(m *metrics.Metrics) *moods.Resolver {
	opts := []moods.ResolverOption{moods.WithLogger(logger)}
	if m != nil {
		opts = append(opts, moods.WithObserver(m.ObserveResolution))
	}
	return moods.NewResolver(newScorer(m), opts...)
}

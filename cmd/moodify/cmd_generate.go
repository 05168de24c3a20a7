package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-moodify/internal/auth"
	"github.com/justestif/go-spotify-moodify/internal/clustering"
	"github.com/justestif/go-spotify-moodify/internal/db"
	"github.com/justestif/go-spotify-moodify/internal/moods"
	"github.com/justestif/go-spotify-moodify/internal/playlist"
	"github.com/justestif/go-spotify-moodify/internal/spotify"
)

var (
	generateReq      playlist.GenerateRequest
	generateName     string
	generatePublic   bool
	generateDryRun   bool
	generateClusters int
	generateLogout   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [mood]",
	Short: "Generate a playlist for a mood on your Spotify account",
	Long: `Authenticate with Spotify in the browser, search for tracks matching the
mood, rank them by audio features and save them as a new playlist.

The OAuth token is cached in ~/.config/moodify/token.json.

Examples:
  moodify generate chill --hobbies studying --dry-run
  moodify generate energetic --text "ready to crush this workout" --name "Gym Mix"`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	addInputFlags(generateCmd, &generateReq.Input)
	generateCmd.Flags().BoolVar(&generateReq.UseTopArtists, "top-artists", false, "seed with your top artists and tracks")
	generateCmd.Flags().StringVar(&generateName, "name", "", "playlist name (default: Moodify <mood> <date>)")
	generateCmd.Flags().BoolVar(&generatePublic, "public", false, "make the playlist public")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "preview tracks without creating a playlist")
	generateCmd.Flags().IntVar(&generateClusters, "clusters", clustering.DefaultConfig().NumClusters, "number of clusters used for ranking")
	generateCmd.Flags().BoolVar(&generateLogout, "logout", false, "discard the cached token and log in again")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	authenticator, err := auth.New(auth.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURI:  cfg.Spotify.RedirectURI,
	}, auth.WithLogger(logger), auth.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	if generateLogout {
		if err := authenticator.Logout(); err != nil {
			return err
		}
	}

	api, err := authenticator.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	client := spotify.New(api, spotify.WithLogger(logger))

	profile, err := client.CurrentUser(ctx)
	if err != nil {
		return err
	}

	opts := []playlist.Option{
		playlist.WithMarket(cfg.Spotify.Market),
		playlist.WithRanking(clustering.Config{NumClusters: generateClusters}),
		playlist.WithLogger(logger),
	}
	if cfg.DatabaseURL != "" && !generateDryRun {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer database.Close()
		if err := database.Users().Upsert(ctx, &db.User{ID: profile.ID, DisplayName: profile.DisplayName, Email: profile.Email}); err != nil {
			return err
		}
		opts = append(opts, playlist.WithStore(playlist.DBStore(database)))
	}
	svc := playlist.New(newResolver(nil), opts...)

	generateReq.Mood = args[0]
	preview, err := svc.Generate(ctx, client, profile.ID, generateReq)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", preview.Analysis.Description)
	attrs := preview.Analysis.Attributes
	fmt.Fprintf(out, "Targets: energy %.2f, valence %.2f, danceability %.2f, tempo %d-%d BPM\n",
		attrs.Energy, attrs.Valence, attrs.Danceability, attrs.Tempo.Min, attrs.Tempo.Max)
	fmt.Fprintf(out, "Seed genres: %v\n\n", preview.Params.SeedGenres)

	if preview.Ranking != nil {
		fmt.Fprint(out, clustering.FormatRanking(*preview.Ranking))
	} else {
		for i, t := range preview.Tracks {
			fmt.Fprintf(out, "%3d. %s - %s\n", i+1, t.Artists, t.Name)
		}
	}
	fmt.Fprintf(out, "\n%d tracks\n", preview.Total)

	if generateDryRun || preview.Total == 0 {
		return nil
	}

	name := generateName
	if name == "" {
		name = fmt.Sprintf("Moodify %s %s", generateReq.Mood, time.Now().Format("2006-01-02"))
	}

	uris := make([]string, len(preview.Tracks))
	for i, t := range preview.Tracks {
		uris[i] = t.URI
	}

	created, err := svc.Create(ctx, client, profile.ID, playlist.CreateRequest{
		Name:         name,
		Description:  preview.Analysis.Description,
		Tracks:       uris,
		Mood:         generateReq.Mood,
		Energy:       attrs.Energy,
		Valence:      attrs.Valence,
		Danceability: attrs.Danceability,
		Tempo:        &moods.TempoRange{Min: attrs.Tempo.Min, Max: attrs.Tempo.Max},
		Public:       generatePublic,
		Analysis:     preview.Analysis,
		Params:       preview.Params,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created %q with %d tracks: %s\n", created.Name, created.TrackCount, created.URL)
	return nil
}

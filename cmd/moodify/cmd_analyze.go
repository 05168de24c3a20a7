package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-moodify/internal/moods"
)

var (
	analyzeInput  moods.Input
	analyzeParams bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [mood]",
	Short: "Resolve a mood into target attributes without touching Spotify",
	Long: `Resolve a mood, optional free text and hobbies into target musical
attributes and seed genres, and print the result as JSON.

Examples:
  moodify analyze chill --hobbies studying --genres jazz
  moodify analyze happy --text "best day ever" --listening-time morning --params`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "List the known moods and hobbies",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Moods:   %s\n", strings.Join(moods.Moods(), ", "))
		fmt.Fprintf(out, "Hobbies: %s\n", strings.Join(moods.Hobbies(), ", "))
		return nil
	},
}

func init() {
	addInputFlags(analyzeCmd, &analyzeInput)
	analyzeCmd.Flags().BoolVar(&analyzeParams, "params", false, "also print the catalog search parameters")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(moodsCmd)
}

// addInputFlags registers the mood input flags shared by analyze and generate.
func addInputFlags(cmd *cobra.Command, in *moods.Input) {
	cmd.Flags().StringSliceVar(&in.Genres, "genres", nil, "explicit genres")
	cmd.Flags().StringSliceVar(&in.Artists, "artists", nil, "favorite artists")
	cmd.Flags().StringSliceVar(&in.Hobbies, "hobbies", nil, "hobbies or activities")
	cmd.Flags().StringVar(&in.FreeText, "text", "", "free text describing how you feel")
	cmd.Flags().StringVar(&in.ListeningTime, "listening-time", moods.ListeningTimeAny, "any, morning, afternoon, evening or night")
	cmd.Flags().StringVar(&in.TempoPreference, "tempo", moods.TempoMedium, "slow, medium or fast")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	analyzeInput.Mood = args[0]
	result := newResolver(nil).Resolve(cmd.Context(), analyzeInput)

	var output any = result
	if analyzeParams {
		output = map[string]any{
			"analysis":      result,
			"spotifyParams": moods.ParamsFor(result, moods.DefaultSearchLimit),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

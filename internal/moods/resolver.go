// Package moods turns a mood, free-text sentiment and hobbies into target
// musical attributes and seed genres.
package moods

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/justestif/go-spotify-moodify/internal/sentiment"
)

// Listening times. Only morning and night change the output.
const (
	ListeningTimeAny       = "any"
	ListeningTimeMorning   = "morning"
	ListeningTimeAfternoon = "afternoon"
	ListeningTimeEvening   = "evening"
	ListeningTimeNight     = "night"
)

// Tempo preferences. Only slow and fast override the mood's tempo range.
const (
	TempoSlow   = "slow"
	TempoMedium = "medium"
	TempoFast   = "fast"
)

// MaxGenres caps the genre seeds returned by Resolve.
const MaxGenres = 5

// SourceNone marks a result whose sentiment was not computed because no
// free text was supplied.
const SourceNone sentiment.Source = "none"

const neutralSentiment = 0.5

var (
	slowTempo = TempoRange{Min: 60, Max: 100}
	fastTempo = TempoRange{Min: 130, Max: 180}
)

// Input is the raw bundle supplied by a caller.
type Input struct {
	Mood            string   `json:"mood"`
	Genres          []string `json:"genres,omitempty"`
	Artists         []string `json:"artists,omitempty"`
	FreeText        string   `json:"socialReview,omitempty"`
	Hobbies         []string `json:"hobbies,omitempty"`
	ListeningTime   string   `json:"listeningTime,omitempty"`
	TempoPreference string   `json:"tempoPreference,omitempty"`
}

// Attributes is the normalized target vector for catalog search.
type Attributes struct {
	Energy       float64    `json:"energy"`
	Valence      float64    `json:"valence"`
	Danceability float64    `json:"danceability"`
	Tempo        TempoRange `json:"tempo"`
}

// Result is the outcome of a single resolution.
type Result struct {
	Attributes      Attributes       `json:"attributes"`
	Genres          []string         `json:"genres"`
	Artists         []string         `json:"artists"`
	SentimentScore  float64          `json:"sentimentScore"`
	SentimentSource sentiment.Source `json:"sentimentSource"`
	Mood            string           `json:"mood"`
	Description     string           `json:"description"`
}

// Scorer scores free text for positivity.
type Scorer interface {
	Score(ctx context.Context, text string) sentiment.Score
}

// Resolver blends mood, sentiment and hobby signals. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	scorer  Scorer
	logger  zerolog.Logger
	observe func(mood string)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the resolver's logger.
func WithLogger(logger zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger.With().Str("component", "moods").Logger()
	}
}

// WithObserver registers a callback invoked with the resolved mood key.
func WithObserver(fn func(mood string)) ResolverOption {
	return func(r *Resolver) {
		r.observe = fn
	}
}

// NewResolver creates a Resolver backed by the given scorer. A nil scorer
// scores with the word-list heuristic only.
func NewResolver(scorer Scorer, opts ...ResolverOption) *Resolver {
	if scorer == nil {
		scorer = sentiment.NewScorer()
	}
	r := &Resolver{
		scorer: scorer,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes target attributes, seed genres and a description.
// Unknown moods resolve as happy and unknown hobbies are ignored; Resolve
// never fails.
func (r *Resolver) Resolve(ctx context.Context, in Input) Result {
	moodKey := strings.ToLower(in.Mood)
	profile, ok := Lookup(moodKey)
	if !ok {
		r.logger.Debug().Str("mood", in.Mood).Msg("unknown mood, using default profile")
		moodKey = DefaultMood
		profile, _ = Lookup(DefaultMood)
	}
	if r.observe != nil {
		r.observe(moodKey)
	}

	score := sentiment.Score{Value: neutralSentiment, Source: SourceNone}
	if strings.TrimSpace(in.FreeText) != "" {
		score = r.scorer.Score(ctx, in.FreeText)
	}
	fromText := sentimentAttributes(score.Value)

	var hobbyList []string
	for _, hobby := range in.Hobbies {
		hobbyList = append(hobbyList, HobbyGenres(hobby)...)
	}

	attrs := Attributes{
		Energy:       profile.Energy*0.6 + fromText.Energy*0.4,
		Valence:      profile.Valence*0.5 + fromText.Valence*0.5,
		Danceability: profile.Danceability*0.6 + fromText.Danceability*0.4,
		Tempo:        profile.Tempo,
	}

	switch in.TempoPreference {
	case TempoSlow:
		attrs.Tempo = slowTempo
	case TempoFast:
		attrs.Tempo = fastTempo
	}

	switch in.ListeningTime {
	case ListeningTimeMorning:
		attrs.Energy = min(1.0, attrs.Energy+0.1)
	case ListeningTimeNight:
		attrs.Energy = max(0.0, attrs.Energy-0.2)
		attrs.Valence = max(0.0, attrs.Valence-0.1)
	}

	attrs = attrs.clamped()

	artists := in.Artists
	if artists == nil {
		artists = []string{}
	}

	return Result{
		Attributes:      attrs,
		Genres:          mergeGenres(profile.Genres, in.Genres, hobbyList),
		Artists:         artists,
		SentimentScore:  score.Value,
		SentimentSource: score.Source,
		Mood:            in.Mood,
		Description:     describe(in.Mood, score.Value, in.Hobbies),
	}
}

// sentimentAttributes maps a sentiment score onto attribute values.
func sentimentAttributes(score float64) Attributes {
	a := Attributes{Valence: score, Energy: 0.55, Danceability: 0.5}
	switch {
	case score > 0.6:
		a.Energy = 0.7
		a.Danceability = 0.7
	case score < 0.4:
		a.Energy = 0.4
	}
	return a
}

// mergeGenres concatenates the lists in order, keeps the first occurrence
// of each genre and truncates to MaxGenres.
func mergeGenres(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, MaxGenres)
	for _, list := range lists {
		for _, g := range list {
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			out = append(out, g)
			if len(out) == MaxGenres {
				return out
			}
		}
	}
	return out
}

func (a Attributes) clamped() Attributes {
	a.Energy = clampUnit(a.Energy)
	a.Valence = clampUnit(a.Valence)
	a.Danceability = clampUnit(a.Danceability)
	if a.Tempo.Min > a.Tempo.Max {
		a.Tempo.Min, a.Tempo.Max = a.Tempo.Max, a.Tempo.Min
	}
	return a
}

func clampUnit(v float64) float64 {
	return max(0, min(1, v))
}

// describe builds the human-readable playlist description.
func describe(mood string, score float64, hobbies []string) string {
	tone := "balanced"
	switch sentiment.Classify(score) {
	case sentiment.LabelPositive:
		tone = "uplifting"
	case sentiment.LabelNegative:
		tone = "reflective"
	}

	var hobbyText string
	if len(hobbies) > 0 {
		hobbyText = fmt.Sprintf(" Perfect for %s.", strings.Join(hobbies, ", "))
	}

	return fmt.Sprintf("AI-generated %s playlist with %s vibes.%s Created by Moodify 🎵", mood, tone, hobbyText)
}

// Package sentiment scores free text for positivity on a 0-1 scale.
//
// A remote classifier is tried first; any failure falls back to a
// deterministic word-list heuristic, so scoring never returns an error.
package sentiment

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Source records which path produced a score.
type Source string

const (
	// SourceRemote means the score came from the remote classifier.
	SourceRemote Source = "remote"
	// SourceHeuristic means the word-list fallback produced the score.
	SourceHeuristic Source = "heuristic"
)

// Label is a coarse sentiment classification.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
)

// Classify buckets a score: above 0.6 is positive, below 0.4 negative.
func Classify(score float64) Label {
	switch {
	case score > 0.6:
		return LabelPositive
	case score < 0.4:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// Score is a positivity value in [0,1] with its provenance.
type Score struct {
	Value  float64 `json:"value"`
	Source Source  `json:"source"`
}

// DefaultTimeout bounds a single remote classification.
const DefaultTimeout = 5 * time.Second

// Scorer produces sentiment scores, preferring the remote classifier.
type Scorer struct {
	classifier Classifier
	timeout    time.Duration
	logger     zerolog.Logger
	observe    func(Source)
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithClassifier sets the remote classifier. Without one every score uses
// the heuristic.
func WithClassifier(c Classifier) Option {
	return func(s *Scorer) {
		s.classifier = c
	}
}

// WithTimeout sets the per-call deadline for the remote classifier.
func WithTimeout(d time.Duration) Option {
	return func(s *Scorer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scorer) {
		s.logger = logger.With().Str("component", "sentiment").Logger()
	}
}

// WithObserver registers a callback invoked with the source of every score.
func WithObserver(fn func(Source)) Option {
	return func(s *Scorer) {
		s.observe = fn
	}
}

// NewScorer creates a Scorer.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the positivity of text. It never fails: an unconfigured,
// unreachable, slow or malformed remote classifier yields the heuristic score.
func (s *Scorer) Score(ctx context.Context, text string) Score {
	result := s.score(ctx, text)
	if s.observe != nil {
		s.observe(result.Source)
	}
	return result
}

func (s *Scorer) score(ctx context.Context, text string) Score {
	if s.classifier == nil {
		return Score{Value: Lexicon(text), Source: SourceHeuristic}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	labels, err := s.classifier.Classify(callCtx, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("remote sentiment unavailable, using word lists")
		return Score{Value: Lexicon(text), Source: SourceHeuristic}
	}

	value, ok := combine(labels)
	if !ok {
		s.logger.Warn().Int("labels", len(labels)).Msg("remote sentiment returned unknown labels, using word lists")
		return Score{Value: Lexicon(text), Source: SourceHeuristic}
	}
	return Score{Value: value, Source: SourceRemote}
}

// combine weights label probabilities: positive 1.0, neutral 0.5, negative 0.
// It reports false when none of the three labels is present.
func combine(labels []LabelScore) (float64, bool) {
	var positive, neutral float64
	known := false
	for _, l := range labels {
		switch Label(strings.ToLower(l.Label)) {
		case LabelPositive:
			positive = l.Score
			known = true
		case LabelNeutral:
			neutral = l.Score
			known = true
		case LabelNegative:
			known = true
		}
	}
	return clamp(positive*1.0 + neutral*0.5), known
}

package sentiment

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestLexicon(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"three positive words", "I love this, it's the best day, so happy", 0.65},
		{"three negative words", "I hate this, it's the worst, so sad", 0.35},
		{"no matches is neutral", "the bus was on time", 0.5},
		{"empty text is neutral", "", 0.5},
		{"case insensitive", "HAPPY and GLAD", 0.6},
		{"repeated word counts once", "happy happy happy", 0.55},
		{"substring match", "unhappy", 0.55},
		{"mixed cancels out", "good but bad", 0.5},
		{
			name: "clamped at one",
			text: "happy love great awesome excellent good best wonderful fantastic amazing joy excited glad",
			want: 1.0,
		},
		{
			name: "clamped at zero",
			text: "sad hate bad worst terrible awful horrible angry upset depressed hurt pain",
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lexicon(tt.text)
			if !almostEqual(got, tt.want) {
				t.Errorf("Lexicon(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestLexiconClassification(t *testing.T) {
	if got := Classify(Lexicon("I love this, it's the best day, so happy")); got != LabelPositive {
		t.Errorf("positive text classified as %q", got)
	}
	if got := Classify(Lexicon("I hate this, it's the worst, so sad")); got != LabelNegative {
		t.Errorf("negative text classified as %q", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  Label
	}{
		{0.0, LabelNegative},
		{0.39, LabelNegative},
		{0.4, LabelNeutral},
		{0.5, LabelNeutral},
		{0.6, LabelNeutral},
		{0.61, LabelPositive},
		{1.0, LabelPositive},
	}

	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

type stubClassifier struct {
	labels []LabelScore
	err    error
	calls  int
}

func (s *stubClassifier) Classify(_ context.Context, _ string) ([]LabelScore, error) {
	s.calls++
	return s.labels, s.err
}

func TestScorer_Remote(t *testing.T) {
	stub := &stubClassifier{labels: []LabelScore{
		{Label: "positive", Score: 0.7},
		{Label: "neutral", Score: 0.2},
		{Label: "negative", Score: 0.1},
	}}
	scorer := NewScorer(WithClassifier(stub))

	got := scorer.Score(context.Background(), "whatever")

	if got.Source != SourceRemote {
		t.Errorf("Source = %q, want %q", got.Source, SourceRemote)
	}
	if !almostEqual(got.Value, 0.8) {
		t.Errorf("Value = %v, want 0.8", got.Value)
	}
	if stub.calls != 1 {
		t.Errorf("classifier called %d times, want 1", stub.calls)
	}
}

func TestScorer_RemoteLabelsCaseInsensitive(t *testing.T) {
	stub := &stubClassifier{labels: []LabelScore{
		{Label: "Positive", Score: 0.2},
		{Label: "NEUTRAL", Score: 0.6},
	}}
	got := NewScorer(WithClassifier(stub)).Score(context.Background(), "x")

	if got.Source != SourceRemote || !almostEqual(got.Value, 0.5) {
		t.Errorf("Score = %+v, want remote 0.5", got)
	}
}

func TestScorer_Fallback(t *testing.T) {
	text := "I hate this, it's the worst, so sad"

	tests := []struct {
		name   string
		scorer *Scorer
	}{
		{
			name:   "no classifier",
			scorer: NewScorer(),
		},
		{
			name:   "classifier error",
			scorer: NewScorer(WithClassifier(&stubClassifier{err: errors.New("boom")})),
		},
		{
			name:   "unknown labels",
			scorer: NewScorer(WithClassifier(&stubClassifier{labels: []LabelScore{{Label: "LABEL_0", Score: 1}}})),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.scorer.Score(context.Background(), text)
			if got.Source != SourceHeuristic {
				t.Errorf("Source = %q, want %q", got.Source, SourceHeuristic)
			}
			if !almostEqual(got.Value, 0.35) {
				t.Errorf("Value = %v, want 0.35", got.Value)
			}
		})
	}
}

func TestScorer_Observer(t *testing.T) {
	var seen []Source
	scorer := NewScorer(WithObserver(func(s Source) { seen = append(seen, s) }))

	scorer.Score(context.Background(), "good")
	scorer.Score(context.Background(), "bad")

	if len(seen) != 2 || seen[0] != SourceHeuristic || seen[1] != SourceHeuristic {
		t.Errorf("observer saw %v, want two heuristic sources", seen)
	}
}

func TestScorer_HuggingFaceEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"label":"negative","score":0.5},{"label":"neutral","score":0.5},{"label":"positive","score":0.0}]]`))
	}))
	defer server.Close()

	hf := NewHuggingFace(&Config{APIKey: "test-key", ModelURL: server.URL})
	got := NewScorer(WithClassifier(hf)).Score(context.Background(), "meh")

	if got.Source != SourceRemote || !almostEqual(got.Value, 0.25) {
		t.Errorf("Score = %+v, want remote 0.25", got)
	}
}

func TestScorer_TimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	hf := NewHuggingFace(&Config{APIKey: "k", ModelURL: server.URL})
	scorer := NewScorer(WithClassifier(hf), WithTimeout(50*time.Millisecond))

	start := time.Now()
	got := scorer.Score(context.Background(), "so happy")

	if got.Source != SourceHeuristic || !almostEqual(got.Value, 0.55) {
		t.Errorf("Score = %+v, want heuristic 0.55", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Score took %v, want it bounded by the timeout", elapsed)
	}
}

func TestScorer_CancelledContextFallsBack(t *testing.T) {
	stub := &stubClassifier{err: context.Canceled}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := NewScorer(WithClassifier(stub)).Score(ctx, "love")
	if got.Source != SourceHeuristic || !almostEqual(got.Value, 0.55) {
		t.Errorf("Score = %+v, want heuristic 0.55", got)
	}
}

package sentiment

import "strings"

const (
	neutralScore = 0.5
	wordWeight   = 0.05
)

// positiveWords and negativeWords are matched as case-insensitive substrings.
// Changing either list changes every heuristic score.
var (
	positiveWords = []string{
		"happy", "love", "great", "awesome", "excellent", "good", "best",
		"wonderful", "fantastic", "amazing", "joy", "excited", "glad",
	}
	negativeWords = []string{
		"sad", "hate", "bad", "worst", "terrible", "awful", "horrible",
		"angry", "upset", "depressed", "hurt", "pain",
	}
)

// Lexicon scores text by counting word-list hits.
// Each distinct positive word present adds 0.05 to a neutral 0.5, each
// distinct negative word subtracts 0.05, and the result is clamped to [0,1].
func Lexicon(text string) float64 {
	lower := strings.ToLower(text)
	score := neutralScore

	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score += wordWeight
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score -= wordWeight
		}
	}

	return clamp(score)
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}

package moods

import (
	"slices"
	"strings"
)

// TempoRange is an inclusive BPM range.
type TempoRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Profile holds the target musical attributes for a mood.
type Profile struct {
	Energy       float64    `json:"energy"`
	Valence      float64    `json:"valence"`
	Danceability float64    `json:"danceability"`
	Tempo        TempoRange `json:"tempo"`
	Genres       []string   `json:"genres"`
}

// DefaultMood is used when the requested mood is not in the table.
const DefaultMood = "happy"

// moodOrder is the canonical listing order for moods.
var moodOrder = []string{
	"happy", "sad", "energetic", "chill", "focused",
	"angry", "romantic", "motivated", "relaxed", "anxious",
}

// profiles is read-only after init. Accessors hand out copies.
var profiles = map[string]Profile{
	"happy": {
		Energy: 0.75, Valence: 0.85, Danceability: 0.7,
		Tempo:  TempoRange{Min: 120, Max: 140},
		Genres: []string{"pop", "dance", "disco", "funk"},
	},
	"sad": {
		Energy: 0.3, Valence: 0.2, Danceability: 0.3,
		Tempo:  TempoRange{Min: 60, Max: 90},
		Genres: []string{"acoustic", "indie", "piano", "singer-songwriter"},
	},
	"energetic": {
		Energy: 0.9, Valence: 0.7, Danceability: 0.85,
		Tempo:  TempoRange{Min: 140, Max: 180},
		Genres: []string{"electronic", "edm", "house", "techno"},
	},
	"chill": {
		Energy: 0.4, Valence: 0.6, Danceability: 0.4,
		Tempo:  TempoRange{Min: 80, Max: 110},
		Genres: []string{"chill", "ambient", "lo-fi", "downtempo"},
	},
	"focused": {
		Energy: 0.5, Valence: 0.5, Danceability: 0.3,
		Tempo:  TempoRange{Min: 90, Max: 120},
		Genres: []string{"instrumental", "classical", "study", "ambient"},
	},
	"angry": {
		Energy: 0.95, Valence: 0.3, Danceability: 0.5,
		Tempo:  TempoRange{Min: 130, Max: 180},
		Genres: []string{"metal", "rock", "hardcore", "punk"},
	},
	"romantic": {
		Energy: 0.4, Valence: 0.75, Danceability: 0.5,
		Tempo:  TempoRange{Min: 70, Max: 100},
		Genres: []string{"soul", "r-n-b", "jazz", "acoustic"},
	},
	"motivated": {
		Energy: 0.85, Valence: 0.8, Danceability: 0.7,
		Tempo:  TempoRange{Min: 130, Max: 160},
		Genres: []string{"rock", "hip-hop", "pop", "electronic"},
	},
	"relaxed": {
		Energy: 0.35, Valence: 0.65, Danceability: 0.35,
		Tempo:  TempoRange{Min: 70, Max: 100},
		Genres: []string{"jazz", "bossa-nova", "acoustic", "soft-rock"},
	},
	"anxious": {
		Energy: 0.6, Valence: 0.35, Danceability: 0.4,
		Tempo:  TempoRange{Min: 100, Max: 130},
		Genres: []string{"ambient", "minimal", "indie", "alternative"},
	},
}

// hobbyOrder is the canonical listing order for hobbies.
var hobbyOrder = []string{
	"gym", "gaming", "studying", "yoga", "running", "cooking",
	"reading", "party", "traveling", "working", "cleaning", "driving",
}

var hobbyGenres = map[string][]string{
	"gym":       {"workout", "electronic", "hip-hop", "edm", "power-pop"},
	"gaming":    {"electronic", "edm", "dubstep", "drum-and-bass", "synthwave"},
	"studying":  {"classical", "instrumental", "lo-fi", "ambient", "study"},
	"yoga":      {"ambient", "chill", "world-music", "meditation", "new-age"},
	"running":   {"electronic", "edm", "hip-hop", "rock", "dance"},
	"cooking":   {"indie", "pop", "jazz", "world-music", "soul"},
	"reading":   {"classical", "jazz", "ambient", "acoustic", "instrumental"},
	"party":     {"dance", "pop", "edm", "latin", "disco"},
	"traveling": {"world-music", "indie", "alternative", "folk", "reggae"},
	"working":   {"lo-fi", "electronic", "instrumental", "jazz", "classical"},
	"cleaning":  {"pop", "dance", "indie", "rock", "funk"},
	"driving":   {"rock", "indie", "pop", "hip-hop", "alternative"},
}

// Lookup returns the profile for a mood, matched case-insensitively.
func Lookup(mood string) (Profile, bool) {
	p, ok := profiles[strings.ToLower(mood)]
	if !ok {
		return Profile{}, false
	}
	p.Genres = slices.Clone(p.Genres)
	return p, true
}

// HobbyGenres returns the genres associated with a hobby, or nil if the
// hobby is unknown.
func HobbyGenres(hobby string) []string {
	return slices.Clone(hobbyGenres[strings.ToLower(hobby)])
}

// Moods lists the known moods.
func Moods() []string {
	return slices.Clone(moodOrder)
}

// Hobbies lists the known hobbies.
func Hobbies() []string {
	return slices.Clone(hobbyOrder)
}

package moods

// DefaultSearchLimit is the number of catalog tracks requested per search.
const DefaultSearchLimit = 50

// SearchParams is the catalog query derived from a resolution.
type SearchParams struct {
	SeedArtists        []string `json:"seedArtists"`
	SeedGenres         []string `json:"seedGenres"`
	SeedTracks         []string `json:"seedTracks"`
	TargetEnergy       float64  `json:"targetEnergy"`
	TargetValence      float64  `json:"targetValence"`
	TargetDanceability float64  `json:"targetDanceability"`
	MinTempo           int      `json:"minTempo"`
	MaxTempo           int      `json:"maxTempo"`
	Limit              int      `json:"limit"`
}

// ParamsFor maps a result onto catalog search parameters. A non-positive
// limit uses DefaultSearchLimit.
func ParamsFor(res Result, limit int) SearchParams {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	genres := res.Genres
	if len(genres) > MaxGenres {
		genres = genres[:MaxGenres]
	}
	return SearchParams{
		SeedArtists:        []string{},
		SeedGenres:         append([]string{}, genres...),
		SeedTracks:         []string{},
		TargetEnergy:       res.Attributes.Energy,
		TargetValence:      res.Attributes.Valence,
		TargetDanceability: res.Attributes.Danceability,
		MinTempo:           res.Attributes.Tempo.Min,
		MaxTempo:           res.Attributes.Tempo.Max,
		Limit:              limit,
	}
}

package clustering

// vibeName describes a centroid using an energy/valence quadrant:
//
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
//
// A danceability above 0.7 appends "(Danceable)".
func vibeName(centroid Features) string {
	highEnergy := centroid.Energy > 0.6
	highValence := centroid.Valence > 0.5

	var name string
	switch {
	case highEnergy && highValence:
		name = "Upbeat Party"
	case highEnergy && !highValence:
		name = "Intense & Dark"
	case !highEnergy && highValence:
		name = "Chill & Happy"
	default:
		name = "Reflective & Melancholy"
	}

	if centroid.Danceability > 0.7 {
		return name + " (Danceable)"
	}
	return name
}

package spotify

// Profile is the authenticated user's account information.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Country     string `json:"country,omitempty"`
	Product     string `json:"product,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Track contains the track metadata shown in a playlist preview.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	AlbumArt   string   `json:"albumArt,omitempty"`
	DurationMs int      `json:"durationMs"`
	URI        string   `json:"uri"`
	PreviewURL string   `json:"previewUrl,omitempty"`
}

// Artist is a catalog artist.
type Artist struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Genres   []string `json:"genres"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// Playlist is a playlist created on the user's account.
type Playlist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

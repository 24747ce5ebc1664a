package model

// ExternalArtist 外部曲库艺术家
type ExternalArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExternalTrack is a track description fetched from the external catalog.
// Optional fields are empty strings / nil when the catalog omits them.
type ExternalTrack struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Artists     []ExternalArtist `json:"artists"`
	Album       string           `json:"album"`
	DurationMs  int              `json:"durationMs"`
	ReleaseDate string           `json:"releaseDate"` // YYYY, YYYY-MM or YYYY-MM-DD
	ArtworkURL  string           `json:"artworkUrl,omitempty"`
	PreviewURL  string           `json:"previewUrl,omitempty"`
	ExternalURL string           `json:"externalUrl,omitempty"`
	Popularity  *int             `json:"popularity,omitempty"`
}

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&Friendship{},
		&Track{},
		&Playlist{},
		&PlaylistTrack{},
	}
}

package spotify

import "SoundCircle/model"

// spotifyTrack is the subset of GET /v1/tracks/{id} that is stored locally.
type spotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DurationMs  int             `json:"duration_ms"`
	PreviewURL  *string         `json:"preview_url"`
	Popularity  *int            `json:"popularity"`
	Artists     []spotifyArtist `json:"artists"`
	Album       spotifyAlbum    `json:"album"`
	ExternalURL struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []spotifyImage `json:"images"`
}

type spotifyImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (st spotifyTrack) toExternal() *model.ExternalTrack {
	artists := make([]model.ExternalArtist, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, model.ExternalArtist{ID: a.ID, Name: a.Name})
	}

	ext := &model.ExternalTrack{
		ID:          st.ID,
		Title:       st.Name,
		Artists:     artists,
		Album:       st.Album.Name,
		DurationMs:  st.DurationMs,
		ReleaseDate: st.Album.ReleaseDate,
		ExternalURL: st.ExternalURL.Spotify,
		Popularity:  st.Popularity,
	}
	if len(st.Album.Images) > 0 {
		ext.ArtworkURL = st.Album.Images[0].URL
	}
	if st.PreviewURL != nil {
		ext.PreviewURL = *st.PreviewURL
	}
	return ext
}

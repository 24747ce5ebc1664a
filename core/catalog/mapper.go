package catalog

import (
	"strings"
	"time"

	"SoundCircle/model"

	"github.com/google/uuid"
)

var releaseDateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// NewTrack builds the local record for an external track. The caller owns
// persisting it.
func NewTrack(ext model.ExternalTrack) *model.Track {
	now := time.Now().UTC()
	externalID := ext.ID

	names := make([]string, 0, len(ext.Artists))
	for _, a := range ext.Artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}

	return &model.Track{
		ID:          uuid.NewString(),
		ExternalID:  &externalID,
		Title:       ext.Title,
		Artist:      strings.Join(names, ", "),
		Album:       ext.Album,
		Duration:    ext.DurationMs / 1000,
		ReleaseDate: ParseReleaseDate(ext.ReleaseDate),
		ImageURL:    optional(ext.ArtworkURL),
		PreviewURL:  optional(ext.PreviewURL),
		ExternalURL: optional(ext.ExternalURL),
		Popularity:  ext.Popularity,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ParseReleaseDate accepts day, month or year precision. Anything else is
// treated as unknown.
func ParseReleaseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range releaseDateLayouts {
		if len(raw) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

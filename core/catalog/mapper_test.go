package catalog

import (
	"testing"
	"time"

	"SoundCircle/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want *time.Time
	}{
		{"2019-11-29", ptrTime(time.Date(2019, 11, 29, 0, 0, 0, 0, time.UTC))},
		{"2019-11", ptrTime(time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC))},
		{"1987", ptrTime(time.Date(1987, 1, 1, 0, 0, 0, 0, time.UTC))},
		{"", nil},
		{"29/11/2019", nil},
		{"2019-13-01", nil},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got := ParseReleaseDate(tc.raw)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tc.want.Equal(*got), "got %v", got)
		})
	}
}

func TestNewTrack(t *testing.T) {
	pop := 71
	ext := model.ExternalTrack{
		ID:          "ext-123",
		Title:       "Song",
		Artists:     []model.ExternalArtist{{ID: "1", Name: "First"}, {ID: "2", Name: "Second"}},
		Album:       "Album",
		DurationMs:  215999,
		ReleaseDate: "2020-05",
		ArtworkURL:  "https://img/1.jpg",
		Popularity:  &pop,
	}

	track := NewTrack(ext)
	assert.NotEmpty(t, track.ID)
	require.NotNil(t, track.ExternalID)
	assert.Equal(t, "ext-123", *track.ExternalID)
	assert.Equal(t, "First, Second", track.Artist)
	assert.Equal(t, 215, track.Duration)
	require.NotNil(t, track.ReleaseDate)
	assert.Equal(t, time.May, track.ReleaseDate.Month())
	require.NotNil(t, track.ImageURL)
	assert.Equal(t, "https://img/1.jpg", *track.ImageURL)
	assert.Nil(t, track.PreviewURL)
	assert.Nil(t, track.ExternalURL)
	assert.Equal(t, &pop, track.Popularity)
	assert.True(t, track.IsActive)
}

func ptrTime(t time.Time) *time.Time { return &t }

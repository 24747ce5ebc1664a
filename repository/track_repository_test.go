package repository

import (
	"context"
	"testing"

	"SoundCircle/internal/testdb"
	"SoundCircle/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackRepository_ExternalIDUnique(t *testing.T) {
	repo := NewGormTrackRepository(testdb.Open(t))
	ctx := context.Background()

	ext := "4uLU6hMCjMI75M1A2tKUQC"
	first := &model.Track{ID: uuid.NewString(), ExternalID: &ext, Title: "first", IsActive: true}
	require.NoError(t, repo.Create(ctx, first))

	second := &model.Track{ID: uuid.NewString(), ExternalID: &ext, Title: "second", IsActive: true}
	assert.ErrorIs(t, repo.Create(ctx, second), ErrDuplicate)

	got, err := repo.GetByExternalID(ctx, ext)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	missing, err := repo.GetByExternalID(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTrackRepository_NullExternalIDsDoNotCollide(t *testing.T) {
	repo := NewGormTrackRepository(testdb.Open(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Track{ID: uuid.NewString(), Title: "a", IsActive: true}))
	require.NoError(t, repo.Create(ctx, &model.Track{ID: uuid.NewString(), Title: "b", IsActive: true}))
}

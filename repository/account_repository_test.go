package repository

import (
	"context"
	"testing"

	"SoundCircle/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_GetByIDMissing(t *testing.T) {
	repo := NewGormAccountRepository(testdb.Open(t))

	acc, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestAccountRepository_PublicPlaylistCounts(t *testing.T) {
	gdb := testdb.Open(t)
	repo := NewGormAccountRepository(gdb)

	a := testdb.Account(t, gdb, "a")
	b := testdb.Account(t, gdb, "b")
	testdb.Playlist(t, gdb, a.ID, true)
	testdb.Playlist(t, gdb, a.ID, true)
	testdb.Playlist(t, gdb, a.ID, false)
	deleted := testdb.Playlist(t, gdb, b.ID, true)
	require.NoError(t, gdb.Model(deleted).Update("is_active", false).Error)

	counts, err := repo.PublicPlaylistCounts(context.Background(), []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[a.ID])
	assert.Zero(t, counts[b.ID])
}

func TestAccountRepository_ListRecommendable(t *testing.T) {
	gdb := testdb.Open(t)
	repo := NewGormAccountRepository(gdb)

	owner := testdb.Account(t, gdb, "owner")
	testdb.Playlist(t, gdb, owner.ID, true)

	friend := testdb.Account(t, gdb, "friend")
	testdb.Playlist(t, gdb, friend.ID, true)
	testdb.Friends(t, gdb, owner.ID, friend.ID)

	older := testdb.Account(t, gdb, "older")
	testdb.Playlist(t, gdb, older.ID, true)

	privateOnly := testdb.Account(t, gdb, "private")
	testdb.Playlist(t, gdb, privateOnly.ID, false)

	inactive := testdb.Account(t, gdb, "inactive")
	testdb.Playlist(t, gdb, inactive.ID, true)
	testdb.Deactivate(t, gdb, inactive.ID)

	newer := testdb.Account(t, gdb, "newer")
	testdb.Playlist(t, gdb, newer.ID, true)

	got, err := repo.ListRecommendable(context.Background(), owner.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)

	got, err = repo.ListRecommendable(context.Background(), owner.ID, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, newer.ID, got[0].ID)
}

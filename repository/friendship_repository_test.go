package repository

import (
	"context"
	"testing"

	"SoundCircle/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendshipRepository_CreatePair(t *testing.T) {
	gdb := testdb.Open(t)
	repo := NewGormFriendshipRepository(gdb)
	ctx := context.Background()

	a := testdb.Account(t, gdb, "a")
	b := testdb.Account(t, gdb, "b")

	require.NoError(t, repo.CreatePair(ctx, b.ID, a.ID))
	assert.Equal(t, int64(2), testdb.Edges(t, gdb, a.ID, b.ID))

	for _, pair := range [][2]string{{a.ID, b.ID}, {b.ID, a.ID}} {
		ok, err := repo.HasEdge(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, ok)
	}

	err := repo.CreatePair(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, int64(2), testdb.Edges(t, gdb, a.ID, b.ID))
}

func TestFriendshipRepository_DeletePair(t *testing.T) {
	gdb := testdb.Open(t)
	repo := NewGormFriendshipRepository(gdb)
	ctx := context.Background()

	a := testdb.Account(t, gdb, "a")
	b := testdb.Account(t, gdb, "b")
	testdb.Friends(t, gdb, a.ID, b.ID)

	n, err := repo.DeletePair(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.DeletePair(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	exists, err := repo.ExistsEitherDirection(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFriendshipRepository_ListFriendsInEdgeOrder(t *testing.T) {
	gdb := testdb.Open(t)
	repo := NewGormFriendshipRepository(gdb)

	owner := testdb.Account(t, gdb, "owner")
	first := testdb.Account(t, gdb, "first")
	second := testdb.Account(t, gdb, "second")
	testdb.Friends(t, gdb, owner.ID, second.ID)
	testdb.Friends(t, gdb, owner.ID, first.ID)

	friends, err := repo.ListFriends(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, second.ID, friends[0].ID)
	assert.Equal(t, first.ID, friends[1].ID)
}

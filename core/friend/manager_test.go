package friend

import (
	"context"
	"testing"

	"SoundCircle/core/apperr"
	"SoundCircle/internal/testdb"
	"SoundCircle/repository"

	"github.com/go-sql-driver/mysql"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newManager(t *testing.T) (*Manager, *gorm.DB) {
	gdb := testdb.Open(t)
	m := NewManager(
		repository.NewGormAccountRepository(gdb),
		repository.NewGormFriendshipRepository(gdb),
		3,
	)
	return m, gdb
}

func TestAddFriend(t *testing.T) {
	m, gdb := newManager(t)
	ctx := context.Background()

	a := testdb.Account(t, gdb, "a")
	b := testdb.Account(t, gdb, "b")

	require.NoError(t, m.AddFriend(ctx, a.ID, b.ID))
	assert.Equal(t, int64(2), testdb.Edges(t, gdb, a.ID, b.ID))

	err := m.AddFriend(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
	assert.Equal(t, int64(2), testdb.Edges(t, gdb, a.ID, b.ID))
}

func TestAddFriend_Rejections(t *testing.T) {
	m, gdb := newManager(t)
	ctx := context.Background()

	a := testdb.Account(t, gdb, "a")
	gone := testdb.Account(t, gdb, "gone")
	testdb.Deactivate(t, gdb, gone.ID)

	tests := []struct {
		name  string
		other string
		want  error
	}{
		{"self", a.ID, apperr.ErrInvalidOperation},
		{"missing account", "no-such-account", apperr.ErrNotFound},
		{"inactive account", gone.ID, apperr.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := m.AddFriend(ctx, a.ID, tc.other)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAddFriend_ConcurrentReversed(t *testing.T) {
	m, gdb := newManager(t)
	ctx := context.Background()

	a := testdb.Account(t, gdb, "a")
	b := testdb.Account(t, gdb, "b")

	const workers = 8
	errs := make([]error, workers)
	var wg conc.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Go(func() {
			if i%2 == 0 {
				errs[i] = m.AddFriend(ctx, a.ID, b.ID)
			} else {
				errs[i] = m.AddFriend(ctx, b.ID, a.ID)
			}
		})
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(2), testdb.Edges(t, gdb, a.ID, b.ID))
}

func TestRemoveFriend(t *testing.T) {
	m, gdb := newManager(t)
	ctx := context.Background()

	a := testdb.Account(t, gdb, "a")
	b := testdb.Account(t, gdb, "b")
	testdb.Friends(t, gdb, a.ID, b.ID)

	require.NoError(t, m.RemoveFriend(ctx, b.ID, a.ID))
	assert.Zero(t, testdb.Edges(t, gdb, a.ID, b.ID))

	require.NoError(t, m.RemoveFriend(ctx, a.ID, b.ID))
}

func TestGetStatus(t *testing.T) {
	m, gdb := newManager(t)
	ctx := context.Background()

	a := testdb.Account(t, gdb, "a")
	friend := testdb.Account(t, gdb, "friend")
	stranger := testdb.Account(t, gdb, "stranger")
	gone := testdb.Account(t, gdb, "gone")
	testdb.Deactivate(t, gdb, gone.ID)
	testdb.Friends(t, gdb, a.ID, friend.ID)

	tests := []struct {
		name             string
		other            string
		isFriend, canAdd bool
	}{
		{"self", a.ID, false, false},
		{"friend", friend.ID, true, false},
		{"stranger", stranger.ID, false, true},
		{"inactive", gone.ID, false, false},
		{"missing", "no-such-account", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st, err := m.GetStatus(ctx, a.ID, tc.other)
			require.NoError(t, err)
			assert.Equal(t, tc.isFriend, st.IsFriend)
			assert.Equal(t, tc.canAdd, st.CanAddFriend)
		})
	}
}

func TestListFriends_WithPlaylistCounts(t *testing.T) {
	m, gdb := newManager(t)
	ctx := context.Background()

	a := testdb.Account(t, gdb, "a")
	b := testdb.Account(t, gdb, "b")
	c := testdb.Account(t, gdb, "c")
	require.NoError(t, m.AddFriend(ctx, a.ID, c.ID))
	require.NoError(t, m.AddFriend(ctx, b.ID, a.ID))
	testdb.Playlist(t, gdb, b.ID, true)
	testdb.Playlist(t, gdb, b.ID, true)
	testdb.Playlist(t, gdb, b.ID, false)

	friends, err := m.ListFriends(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, c.ID, friends[0].ID)
	assert.Zero(t, friends[0].PublicPlaylistCount)
	assert.Equal(t, b.ID, friends[1].ID)
	assert.Equal(t, int64(2), friends[1].PublicPlaylistCount)
}

func TestRecommend(t *testing.T) {
	m, gdb := newManager(t)
	ctx := context.Background()

	owner := testdb.Account(t, gdb, "owner")
	friend := testdb.Account(t, gdb, "friend")
	testdb.Playlist(t, gdb, friend.ID, true)
	require.NoError(t, m.AddFriend(ctx, owner.ID, friend.ID))

	var candidates []string
	for i := 0; i < 3; i++ {
		c := testdb.Account(t, gdb, "candidate")
		testdb.Playlist(t, gdb, c.ID, true)
		candidates = append(candidates, c.ID)
	}
	testdb.Account(t, gdb, "no-playlists")

	got, err := m.Recommend(ctx, owner.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, want := range []string{candidates[2], candidates[1], candidates[0]} {
		assert.Equal(t, want, got[i].ID)
		assert.Equal(t, int64(1), got[i].PublicPlaylistCount)
	}

	got, err = m.Recommend(ctx, owner.ID, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStatusIsSymmetric(t *testing.T) {
	m, gdb := newManager(t)
	ctx := context.Background()

	a := testdb.Account(t, gdb, "a")
	b := testdb.Account(t, gdb, "b")

	require.NoError(t, m.AddFriend(ctx, a.ID, b.ID))
	for _, pair := range [][2]string{{a.ID, b.ID}, {b.ID, a.ID}} {
		st, err := m.GetStatus(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, st.IsFriend)
		assert.False(t, st.CanAddFriend)
	}

	require.NoError(t, m.RemoveFriend(ctx, a.ID, b.ID))
	for _, pair := range [][2]string{{a.ID, b.ID}, {b.ID, a.ID}} {
		st, err := m.GetStatus(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.False(t, st.IsFriend)
		assert.True(t, st.CanAddFriend)
	}
}

// deadlockedFriendships fails every pair insert as a deadlock victim.
type deadlockedFriendships struct {
	repository.FriendshipRepository
	attempts int
}

func (d *deadlockedFriendships) CreatePair(ctx context.Context, a, b string) error {
	d.attempts++
	return &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
}

func TestAddFriend_PersistentDeadlockIsConflict(t *testing.T) {
	gdb := testdb.Open(t)
	friendships := &deadlockedFriendships{FriendshipRepository: repository.NewGormFriendshipRepository(gdb)}
	m := NewManager(repository.NewGormAccountRepository(gdb), friendships, 2)

	a := testdb.Account(t, gdb, "a")
	b := testdb.Account(t, gdb, "b")

	err := m.AddFriend(context.Background(), a.ID, b.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 2, friendships.attempts)
	assert.Zero(t, testdb.Edges(t, gdb, a.ID, b.ID))
}

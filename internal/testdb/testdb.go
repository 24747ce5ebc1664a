// Package testdb opens throwaway SQLite databases with the full schema
// migrated, for package tests.
package testdb

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"SoundCircle/db"
	"SoundCircle/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var seq atomic.Int64

// Open returns a migrated database in t's temp dir, closed on cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	gdb, err := db.OpenSQLite(path, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateModels(gdb, model.All()...))

	t.Cleanup(func() { _ = db.CloseGormDB(gdb) })
	return gdb
}

// nextTime hands out strictly increasing timestamps so ordering by
// created_at is deterministic within a test.
func nextTime() time.Time {
	n := seq.Add(1)
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Second)
}

// Account inserts an active account.
func Account(t testing.TB, gdb *gorm.DB, username string) *model.Account {
	t.Helper()
	a := &model.Account{
		ID:          uuid.NewString(),
		Username:    fmt.Sprintf("%s-%d", username, seq.Add(1)),
		DisplayName: username,
		IsActive:    true,
		CreatedAt:   nextTime(),
	}
	require.NoError(t, gdb.WithContext(context.Background()).Create(a).Error)
	return a
}

// Deactivate flips an account to inactive.
func Deactivate(t testing.TB, gdb *gorm.DB, accountID string) {
	t.Helper()
	require.NoError(t, gdb.Model(&model.Account{}).
		Where("id = ?", accountID).
		Update("is_active", false).Error)
}

// Playlist inserts an active playlist owned by ownerID.
func Playlist(t testing.TB, gdb *gorm.DB, ownerID string, public bool) *model.Playlist {
	t.Helper()
	p := &model.Playlist{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      "playlist",
		IsPublic:  public,
		IsActive:  true,
		CreatedAt: nextTime(),
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

// Track inserts an active track with no external id.
func Track(t testing.TB, gdb *gorm.DB, title string) *model.Track {
	t.Helper()
	tr := &model.Track{
		ID:       uuid.NewString(),
		Title:    title,
		Artist:   "artist",
		Duration: 180,
		IsActive: true,
	}
	require.NoError(t, gdb.Create(tr).Error)
	return tr
}

// Friends writes both edges between a and b.
func Friends(t testing.TB, gdb *gorm.DB, a, b string) {
	t.Helper()
	now := nextTime()
	require.NoError(t, gdb.Create(&[]model.Friendship{
		{OwnerID: a, FriendID: b, CreatedAt: now},
		{OwnerID: b, FriendID: a, CreatedAt: now},
	}).Error)
}

// Edges counts friendship rows between a and b in both directions.
func Edges(t testing.TB, gdb *gorm.DB, a, b string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&model.Friendship{}).
		Where("(owner_id = ? AND friend_id = ?) OR (owner_id = ? AND friend_id = ?)", a, b, b, a).
		Count(&n).Error)
	return n
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SoundCircle/db"
	"SoundCircle/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaylistRepository 歌单数据访问接口
type PlaylistRepository interface {
	// 歌单 CRUD
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByID(ctx context.Context, id string) (*model.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Playlist, error)
	// ListVisible returns active playlists that are public or owned by
	// viewerID, newest first. An empty viewerID sees public playlists only.
	ListVisible(ctx context.Context, viewerID string) ([]*model.Playlist, error)

	// 成员查询
	ListEntries(ctx context.Context, playlistID string) ([]*model.PlaylistTrack, error)

	// Transaction runs fn with every read and write bound to one database
	// transaction. fn must not touch the repository outside tx.
	Transaction(ctx context.Context, fn func(tx PlaylistTx) error) error
}

// PlaylistTx is the set of playlist operations available inside a
// transaction started by PlaylistRepository.Transaction.
type PlaylistTx interface {
	// LockPlaylist loads an active playlist and holds its row lock until the
	// transaction ends. Returns nil when the playlist is missing or deleted.
	LockPlaylist(id string) (*model.Playlist, error)
	SoftDeletePlaylist(id string) error
	// UpdatePlaylist writes name, description and visibility of p.
	UpdatePlaylist(p *model.Playlist) error

	ActiveTrack(trackID string) (*model.Track, error)
	GetMembership(playlistID, trackID string) (*model.PlaylistTrack, error)
	// MaxOrder returns the largest order value, ok=false when the playlist is empty.
	MaxOrder(playlistID string) (max int, ok bool, err error)
	InsertMembership(entry *model.PlaylistTrack) error
	DeleteMembership(playlistID, trackID string) (int64, error)
	ListMemberships(playlistID string) ([]*model.PlaylistTrack, error)
	UpdateOrder(playlistID, trackID string, order int) error
}

// gormPlaylistRepository GORM 实现
type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository 创建 GORM 歌单仓库
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

// ========== 歌单 CRUD ==========

// Create 创建歌单
func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	if err := r.db.WithContext(ctx).Create(playlist).Error; err != nil {
		return fmt.Errorf("create playlist %s: %w", playlist.ID, err)
	}
	return nil
}

// GetByID 获取未删除的歌单
func (r *gormPlaylistRepository) GetByID(ctx context.Context, id string) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&playlist).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get playlist %s: %w", id, err)
	}
	return &playlist, nil
}

// ListByOwner 获取用户的全部未删除歌单
func (r *gormPlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Playlist, error) {
	var playlists []*model.Playlist
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at DESC").
		Order("id ASC").
		Find(&playlists).Error
	if err != nil {
		return nil, fmt.Errorf("list playlists of %s: %w", ownerID, err)
	}
	return playlists, nil
}

// ListVisible 获取当前用户可见的歌单（公开的或自己的）
func (r *gormPlaylistRepository) ListVisible(ctx context.Context, viewerID string) ([]*model.Playlist, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if viewerID == "" {
		query = query.Where("is_public = ?", true)
	} else {
		query = query.Where("(is_public = ? OR owner_id = ?)", true, viewerID)
	}
	var playlists []*model.Playlist
	err := query.
		Order("created_at DESC").
		Order("id ASC").
		Find(&playlists).Error
	if err != nil {
		return nil, fmt.Errorf("list visible playlists: %w", err)
	}
	return playlists, nil
}

// ListEntries 按 order 升序返回成员及其歌曲信息
func (r *gormPlaylistRepository) ListEntries(ctx context.Context, playlistID string) ([]*model.PlaylistTrack, error) {
	var entries []*model.PlaylistTrack
	err := r.db.WithContext(ctx).
		Preload("Track").
		Where("playlist_id = ?", playlistID).
		Order("sort_order ASC").
		Order("track_id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list entries of %s: %w", playlistID, err)
	}
	return entries, nil
}

func (r *gormPlaylistRepository) Transaction(ctx context.Context, fn func(tx PlaylistTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPlaylistTx{tx: tx})
	})
}

// ========== 事务内操作 ==========

type gormPlaylistTx struct {
	tx *gorm.DB
}

func (t *gormPlaylistTx) LockPlaylist(id string) (*model.Playlist, error) {
	var playlist model.Playlist
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", id, true).
		First(&playlist).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("lock playlist %s: %w", id, err)
	}
	return &playlist, nil
}

func (t *gormPlaylistTx) SoftDeletePlaylist(id string) error {
	err := t.tx.Model(&model.Playlist{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("delete playlist %s: %w", id, err)
	}
	return nil
}

func (t *gormPlaylistTx) UpdatePlaylist(p *model.Playlist) error {
	err := t.tx.Model(&model.Playlist{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"is_public":   p.IsPublic,
			"updated_at":  p.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("update playlist %s: %w", p.ID, err)
	}
	return nil
}

func (t *gormPlaylistTx) ActiveTrack(trackID string) (*model.Track, error) {
	var track model.Track
	err := t.tx.Where("id = ? AND is_active = ?", trackID, true).First(&track).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get track %s: %w", trackID, err)
	}
	return &track, nil
}

func (t *gormPlaylistTx) GetMembership(playlistID, trackID string) (*model.PlaylistTrack, error) {
	var entry model.PlaylistTrack
	err := t.tx.Where("playlist_id = ? AND track_id = ?", playlistID, trackID).First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership %s/%s: %w", playlistID, trackID, err)
	}
	return &entry, nil
}

func (t *gormPlaylistTx) MaxOrder(playlistID string) (int, bool, error) {
	var max sql.NullInt64
	err := t.tx.Model(&model.PlaylistTrack{}).
		Select("MAX(sort_order)").
		Where("playlist_id = ?", playlistID).
		Row().Scan(&max)
	if err != nil {
		return 0, false, fmt.Errorf("max order of %s: %w", playlistID, err)
	}
	return int(max.Int64), max.Valid, nil
}

func (t *gormPlaylistTx) InsertMembership(entry *model.PlaylistTrack) error {
	if err := t.tx.Omit("Track").Create(entry).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return fmt.Errorf("add %s to %s: %w", entry.TrackID, entry.PlaylistID, ErrDuplicate)
		}
		return fmt.Errorf("add %s to %s: %w", entry.TrackID, entry.PlaylistID, err)
	}
	return nil
}

func (t *gormPlaylistTx) DeleteMembership(playlistID, trackID string) (int64, error) {
	res := t.tx.Where("playlist_id = ? AND track_id = ?", playlistID, trackID).
		Delete(&model.PlaylistTrack{})
	if res.Error != nil {
		return 0, fmt.Errorf("remove %s from %s: %w", trackID, playlistID, res.Error)
	}
	return res.RowsAffected, nil
}

func (t *gormPlaylistTx) ListMemberships(playlistID string) ([]*model.PlaylistTrack, error) {
	var entries []*model.PlaylistTrack
	err := t.tx.Where("playlist_id = ?", playlistID).
		Order("sort_order ASC").
		Order("track_id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list memberships of %s: %w", playlistID, err)
	}
	return entries, nil
}

func (t *gormPlaylistTx) UpdateOrder(playlistID, trackID string, order int) error {
	err := t.tx.Model(&model.PlaylistTrack{}).
		Where("playlist_id = ? AND track_id = ?", playlistID, trackID).
		Update("sort_order", order).Error
	if err != nil {
		return fmt.Errorf("reorder %s in %s: %w", trackID, playlistID, err)
	}
	return nil
}

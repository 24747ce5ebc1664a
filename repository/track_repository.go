package repository

import (
	"context"
	"fmt"

	"SoundCircle/db"
	"SoundCircle/model"

	"gorm.io/gorm"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	Create(ctx context.Context, track *model.Track) error
	GetByID(ctx context.Context, id string) (*model.Track, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Track, error)
}

type gormTrackRepository struct {
	db *gorm.DB
}

// NewGormTrackRepository creates a track repository.
func NewGormTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

// Create inserts a track. A clash on the external id unique index comes
// back as ErrDuplicate.
func (r *gormTrackRepository) Create(ctx context.Context, track *model.Track) error {
	if err := r.db.WithContext(ctx).Create(track).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return fmt.Errorf("create track %s: %w", track.ID, ErrDuplicate)
		}
		return fmt.Errorf("create track %s: %w", track.ID, err)
	}
	return nil
}

// GetByID retrieves a track by its ID, nil when absent.
func (r *gormTrackRepository) GetByID(ctx context.Context, id string) (*model.Track, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByExternalID 根据外部曲库ID查找本地歌曲
func (r *gormTrackRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Track, error) {
	return r.first(ctx, "external_id = ?", externalID)
}

func (r *gormTrackRepository) first(ctx context.Context, query string, arg string) (*model.Track, error) {
	var track model.Track
	err := r.db.WithContext(ctx).Where(query, arg).First(&track).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get track by %q: %w", query, err)
	}
	return &track, nil
}

package repository

import (
	"context"
	"fmt"

	"SoundCircle/model"

	"gorm.io/gorm"
)

// AccountRepository 账户只读查询（账户本身由外部服务管理）
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	PublicPlaylistCounts(ctx context.Context, ids []string) (map[string]int64, error)
	ListRecommendable(ctx context.Context, ownerID string, limit int) ([]*model.Account, error)
}

// gormAccountRepository GORM 实现
type gormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository 创建 GORM 账户仓库
func NewGormAccountRepository(db *gorm.DB) AccountRepository {
	return &gormAccountRepository{db: db}
}

// Create inserts an account. Used by seeding and tests.
func (r *gormAccountRepository) Create(ctx context.Context, account *model.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("create account %s: %w", account.ID, err)
	}
	return nil
}

// GetByID 根据ID获取账户，不存在时返回 nil, nil
func (r *gormAccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get account %s: %w", id, err)
	}
	return &account, nil
}

// PublicPlaylistCounts 统计每个账户拥有的公开且未删除的歌单数
func (r *gormAccountRepository) PublicPlaylistCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		OwnerID string
		Total   int64
	}
	err := r.db.WithContext(ctx).Model(&model.Playlist{}).
		Select("owner_id, COUNT(*) AS total").
		Where("owner_id IN ? AND is_public = ? AND is_active = ?", ids, true, true).
		Group("owner_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count public playlists: %w", err)
	}
	for _, row := range rows {
		counts[row.OwnerID] = row.Total
	}
	return counts, nil
}

// ListRecommendable returns active accounts other than ownerID that ownerID
// has no edge to and that own at least one public playlist, newest first.
func (r *gormAccountRepository) ListRecommendable(ctx context.Context, ownerID string, limit int) ([]*model.Account, error) {
	tx := r.db.WithContext(ctx)

	friends := tx.Model(&model.Friendship{}).
		Select("friend_id").
		Where("owner_id = ?", ownerID)
	publicPlaylists := tx.Model(&model.Playlist{}).
		Select("1").
		Where("playlists.owner_id = users.id AND playlists.is_public = ? AND playlists.is_active = ?", true, true)

	var accounts []*model.Account
	err := tx.Model(&model.Account{}).
		Where("users.id <> ? AND users.is_active = ?", ownerID, true).
		Where("users.id NOT IN (?)", friends).
		Where("EXISTS (?)", publicPlaylists).
		Order("users.created_at DESC").
		Order("users.id ASC").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("list recommendable accounts for %s: %w", ownerID, err)
	}
	return accounts, nil
}

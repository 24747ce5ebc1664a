package repository

import (
	"context"
	"fmt"
	"time"

	"SoundCircle/db"
	"SoundCircle/model"

	"gorm.io/gorm"
)

// FriendshipRepository 好友关系数据访问接口，关系总是成对存储
type FriendshipRepository interface {
	ExistsEitherDirection(ctx context.Context, a, b string) (bool, error)
	HasEdge(ctx context.Context, ownerID, friendID string) (bool, error)
	CreatePair(ctx context.Context, a, b string) error
	DeletePair(ctx context.Context, a, b string) (int64, error)
	ListFriends(ctx context.Context, ownerID string) ([]*model.Account, error)
}

type gormFriendshipRepository struct {
	db *gorm.DB
}

// NewGormFriendshipRepository 创建 GORM 好友仓库
func NewGormFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &gormFriendshipRepository{db: db}
}

func (r *gormFriendshipRepository) ExistsEitherDirection(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("(owner_id = ? AND friend_id = ?) OR (owner_id = ? AND friend_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check friendship %s/%s: %w", a, b, err)
	}
	return count > 0, nil
}

func (r *gormFriendshipRepository) HasEdge(ctx context.Context, ownerID, friendID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("owner_id = ? AND friend_id = ?", ownerID, friendID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check edge %s->%s: %w", ownerID, friendID, err)
	}
	return count > 0, nil
}

// CreatePair writes both directed edges in one INSERT. Rows go in canonical
// order so two reversed concurrent adds collide on the same index entry
// first instead of deadlocking.
func (r *gormFriendshipRepository) CreatePair(ctx context.Context, a, b string) error {
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	now := time.Now().UTC()
	edges := []model.Friendship{
		{OwnerID: first, FriendID: second, CreatedAt: now},
		{OwnerID: second, FriendID: first, CreatedAt: now},
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&edges).Error
	})
	if err != nil {
		if db.IsDuplicateKey(err) {
			return fmt.Errorf("create friendship %s/%s: %w", a, b, ErrDuplicate)
		}
		return fmt.Errorf("create friendship %s/%s: %w", a, b, err)
	}
	return nil
}

// DeletePair 删除双向关系，返回删除的行数
func (r *gormFriendshipRepository) DeletePair(ctx context.Context, a, b string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("(owner_id = ? AND friend_id = ?) OR (owner_id = ? AND friend_id = ?)", a, b, b, a).
		Delete(&model.Friendship{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete friendship %s/%s: %w", a, b, res.Error)
	}
	return res.RowsAffected, nil
}

// ListFriends 按建立关系的先后顺序返回好友账户
func (r *gormFriendshipRepository) ListFriends(ctx context.Context, ownerID string) ([]*model.Account, error) {
	var accounts []*model.Account
	err := r.db.WithContext(ctx).Table("friendships").
		Select("users.*").
		Joins("JOIN users ON users.id = friendships.friend_id").
		Where("friendships.owner_id = ?", ownerID).
		Order("friendships.created_at ASC").
		Order("friendships.id ASC").
		Scan(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("list friends of %s: %w", ownerID, err)
	}
	return accounts, nil
}

// Package friend maintains the symmetric friendship relation between
// accounts. Every friendship is stored as two directed edges and the pair
// is created or removed as a unit.
package friend

import (
	"context"
	"errors"

	"SoundCircle/core/apperr"
	"SoundCircle/db"
	"SoundCircle/logger"
	"SoundCircle/model"
	"SoundCircle/repository"
)

const (
	defaultRecommendLimit = 10
	maxRecommendLimit     = 50
)

// Manager 好友关系管理器
type Manager struct {
	accounts    repository.AccountRepository
	friendships repository.FriendshipRepository
	txRetries   int
}

// NewManager 创建好友关系管理器，txRetries 为遇到死锁等可重试冲突时的最大尝试次数
func NewManager(accounts repository.AccountRepository, friendships repository.FriendshipRepository, txRetries int) *Manager {
	return &Manager{
		accounts:    accounts,
		friendships: friendships,
		txRetries:   txRetries,
	}
}

// AddFriend creates the friendship between ownerID and otherID. Of several
// concurrent adders of the same pair exactly one succeeds; the others get
// AlreadyExists.
func (m *Manager) AddFriend(ctx context.Context, ownerID, otherID string) error {
	if ownerID == otherID {
		return apperr.InvalidOperation("cannot add yourself as a friend")
	}
	for _, id := range []string{ownerID, otherID} {
		if _, err := m.activeAccount(ctx, id); err != nil {
			return err
		}
	}

	exists, err := m.friendships.ExistsEitherDirection(ctx, ownerID, otherID)
	if err != nil {
		return apperr.Classify(err, "check friendship")
	}
	if exists {
		return apperr.AlreadyExists("already friends")
	}

	err = db.WithRetry(ctx, m.txRetries, func() error {
		return m.friendships.CreatePair(ctx, ownerID, otherID)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.AlreadyExists("already friends")
	}
	if db.IsRetryable(err) {
		logger.Warn("添加好友冲突，重试已用尽",
			logger.String("ownerId", ownerID),
			logger.String("friendId", otherID),
			logger.ErrorField(err))
		return apperr.Conflict("friendship with %s is being changed concurrently, try again", otherID)
	}
	if err != nil {
		logger.Error("添加好友失败",
			logger.String("ownerId", ownerID),
			logger.String("friendId", otherID),
			logger.ErrorField(err))
		return apperr.Classify(err, "add friend")
	}

	logger.Info("好友关系已建立",
		logger.String("ownerId", ownerID),
		logger.String("friendId", otherID))
	return nil
}

// RemoveFriend deletes both edges. Removing a non-existent friendship is not
// an error.
func (m *Manager) RemoveFriend(ctx context.Context, ownerID, otherID string) error {
	n, err := m.friendships.DeletePair(ctx, ownerID, otherID)
	if err != nil {
		return apperr.Classify(err, "remove friend")
	}
	if n > 0 {
		logger.Info("好友关系已解除",
			logger.String("ownerId", ownerID),
			logger.String("friendId", otherID))
	}
	return nil
}

// GetStatus 查询 otherID 相对 ownerID 的好友状态
func (m *Manager) GetStatus(ctx context.Context, ownerID, otherID string) (*model.FriendStatus, error) {
	if ownerID == otherID {
		return &model.FriendStatus{}, nil
	}

	isFriend, err := m.friendships.HasEdge(ctx, ownerID, otherID)
	if err != nil {
		return nil, apperr.Classify(err, "check friendship")
	}
	if isFriend {
		return &model.FriendStatus{IsFriend: true}, nil
	}

	other, err := m.accounts.GetByID(ctx, otherID)
	if err != nil {
		return nil, apperr.Classify(err, "look up account")
	}
	return &model.FriendStatus{
		CanAddFriend: other != nil && other.IsActive,
	}, nil
}

// ListFriends returns ownerID's friends in the order the friendships were
// made, each annotated with its public playlist count.
func (m *Manager) ListFriends(ctx context.Context, ownerID string) ([]*model.AccountSummary, error) {
	friends, err := m.friendships.ListFriends(ctx, ownerID)
	if err != nil {
		return nil, apperr.Classify(err, "list friends")
	}
	return m.summarize(ctx, friends)
}

// Recommend suggests accounts ownerID might befriend: active, not yet a
// friend, owning at least one public playlist, newest accounts first.
func (m *Manager) Recommend(ctx context.Context, ownerID string, limit int) ([]*model.AccountSummary, error) {
	if limit <= 0 {
		limit = defaultRecommendLimit
	}
	if limit > maxRecommendLimit {
		limit = maxRecommendLimit
	}

	candidates, err := m.accounts.ListRecommendable(ctx, ownerID, limit)
	if err != nil {
		return nil, apperr.Classify(err, "recommend friends")
	}
	return m.summarize(ctx, candidates)
}

func (m *Manager) activeAccount(ctx context.Context, id string) (*model.Account, error) {
	account, err := m.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err, "look up account")
	}
	if account == nil || !account.IsActive {
		return nil, apperr.NotFound("account %s not found", id)
	}
	return account, nil
}

func (m *Manager) summarize(ctx context.Context, accounts []*model.Account) ([]*model.AccountSummary, error) {
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	counts, err := m.accounts.PublicPlaylistCounts(ctx, ids)
	if err != nil {
		return nil, apperr.Classify(err, "count public playlists")
	}

	result := make([]*model.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		result = append(result, &model.AccountSummary{
			Account:             *a,
			PublicPlaylistCount: counts[a.ID],
		})
	}
	return result, nil
}

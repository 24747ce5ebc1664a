package model

import "time"

// Friendship is one directed edge of the symmetric friend relation.
// (A,B) exists if and only if (B,A) exists.
type Friendship struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerID   string    `json:"ownerId" gorm:"size:36;not null;uniqueIndex:uq_friend_pair,priority:1"`
	FriendID  string    `json:"friendId" gorm:"size:36;not null;uniqueIndex:uq_friend_pair,priority:2;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName 指定表名
func (Friendship) TableName() string {
	return "friendships"
}

// FriendStatus answers "what is B to A".
type FriendStatus struct {
	IsFriend     bool `json:"isFriend"`
	CanAddFriend bool `json:"canAddFriend"`
}

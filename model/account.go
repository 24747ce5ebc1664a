package model

import "time"

// Account is a user of the social graph. Accounts are owned by the external
// account service; this module only reads them.
type Account struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Username    string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	DisplayName string    `json:"displayName" gorm:"size:200"`
	IsActive    bool      `json:"isActive" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Account) TableName() string {
	return "users"
}

// AccountSummary is an account annotated with how many public playlists it owns.
type AccountSummary struct {
	Account
	PublicPlaylistCount int64 `json:"publicPlaylistCount"`
}

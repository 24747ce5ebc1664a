package model

import "time"

// Playlist 歌单，IsActive=false 表示软删除
type Playlist struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	OwnerID     string    `json:"ownerId" gorm:"size:36;not null;index"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"size:1000"`
	IsPublic    bool      `json:"isPublic" gorm:"not null;index"`
	IsActive    bool      `json:"isActive" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistUpdate carries the playlist fields an owner may change. Nil
// fields are left as they are.
type PlaylistUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`
}

// PlaylistTrack 歌单成员，Order 决定显示顺序（允许有间隔）
type PlaylistTrack struct {
	ID         int64     `json:"-" gorm:"primaryKey;autoIncrement"`
	PlaylistID string    `json:"playlistId" gorm:"size:36;not null;uniqueIndex:uq_playlist_track,priority:1;index:idx_playlist_order,priority:1"`
	TrackID    string    `json:"trackId" gorm:"size:36;not null;uniqueIndex:uq_playlist_track,priority:2"`
	Order      int       `json:"order" gorm:"column:sort_order;not null;index:idx_playlist_order,priority:2"`
	AddedAt    time.Time `json:"addedAt" gorm:"autoCreateTime"`
	Track      *Track    `json:"track,omitempty" gorm:"foreignKey:TrackID"`
}

// TableName 指定表名
func (PlaylistTrack) TableName() string {
	return "playlist_tracks"
}

// TrackOrder is one element of a reorder request.
type TrackOrder struct {
	TrackID string `json:"trackId"`
	Order   int    `json:"order"`
}

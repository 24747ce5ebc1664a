package model

import "time"

// Track is a catalog entry. ExternalID is unique when present.
type Track struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	ExternalID  *string    `json:"externalId,omitempty" gorm:"size:64;uniqueIndex"`
	Title       string     `json:"title" gorm:"size:300;not null"`
	Artist      string     `json:"artist" gorm:"size:500"`
	Album       string     `json:"album" gorm:"size:300"`
	Duration    int        `json:"duration"` // seconds
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty" gorm:"size:1000"`
	PreviewURL  *string    `json:"previewUrl,omitempty" gorm:"size:1000"`
	ExternalURL *string    `json:"externalUrl,omitempty" gorm:"size:1000"`
	Popularity  *int       `json:"popularity,omitempty"`
	IsActive    bool       `json:"isActive" gorm:"not null"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName 指定表名
func (Track) TableName() string {
	return "tracks"
}

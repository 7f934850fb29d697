package model

import "time"

type PostMedia struct {
	ID           uint64    `gorm:"primaryKey"`
	PostID       uint64    `gorm:"not null;index:idx_post_id" json:"post_id"`
	URL          string    `gorm:"type:varchar(512);not null" json:"url"`
	ThumbnailURL string    `gorm:"type:varchar(512)" json:"thumbnail_url"`
	MimeType     string    `gorm:"type:varchar(128)" json:"mime_type"`
	Width        int       `gorm:"not null;default:0" json:"width"`
	Height       int       `gorm:"not null;default:0" json:"height"`
	SortOrder    int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func (PostMedia) TableName() string {
	return "post_media"
}

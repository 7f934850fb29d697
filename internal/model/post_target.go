package model

import "time"

// PostTarget 帖子与目标集成的发布关系，一条记录对应一个平台的发布结果
type PostTarget struct {
	ID            uint64     `gorm:"primaryKey"`
	PostID        uint64     `gorm:"not null;index:idx_post_id" json:"post_id"`
	IntegrationID uint64     `gorm:"not null;index:idx_integration_id" json:"integration_id"`
	Status        int8       `gorm:"not null;default:1" json:"status"` // 1:待发布, 2:已发布, 3:失败
	ExternalID    string     `gorm:"type:varchar(128)" json:"external_id"`
	Error         string     `gorm:"type:varchar(512)" json:"error"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Integration Integration `gorm:"foreignKey:IntegrationID;references:ID"`
}

func (PostTarget) TableName() string {
	return "post_targets"
}

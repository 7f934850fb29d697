package model

import "time"

type Post struct {
	ID      uint64 `gorm:"primaryKey"`
	UserID  uint64 `gorm:"not null;index:idx_user_id" json:"user_id"`
	Title   string `gorm:"type:varchar(255)" json:"title"`
	Content string `gorm:"not null" json:"content"`
	Status  int8   `gorm:"not null;default:0;index:idx_status_publish_at,priority:1" json:"status"` // 0:草稿, 1:已排程, 2:已发布, 3:失败
	// PublishAt 排程发布时间，PublishedAt 实际发布时间
	PublishAt   *time.Time `gorm:"index:idx_status_publish_at,priority:2" json:"publish_at"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	// Impressions/Engagements 由互动事件消费者回填，0 表示尚无数据
	Impressions int64     `gorm:"not null;default:0" json:"impressions"`
	Engagements int64     `gorm:"not null;default:0" json:"engagements"`
	IsDeleted   bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联关系
	Media   []PostMedia  `gorm:"foreignKey:PostID;references:ID"`
	Targets []PostTarget `gorm:"foreignKey:PostID;references:ID"`
}

func (Post) TableName() string {
	return "posts"
}

package model

import "time"

// Integration 用户关联的外部账号
// AccessToken/RefreshToken 落库前均已加密
type Integration struct {
	ID             uint64     `gorm:"primaryKey"`
	UserID         uint64     `gorm:"not null;index:idx_user_id" json:"user_id"`
	Provider       string     `gorm:"type:varchar(32);not null" json:"provider"`
	AccountID      string     `gorm:"type:varchar(128);not null" json:"account_id"`
	AccountName    string     `gorm:"type:varchar(128)" json:"account_name"`
	Picture        string     `gorm:"type:varchar(512)" json:"picture"`
	AccessToken    string     `gorm:"type:text;not null" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	TokenExpiresAt *time.Time `json:"token_expires_at"`
	// RefreshNeeded 为 true 时该集成在成功刷新前不得再用于分析拉取
	RefreshNeeded bool      `gorm:"type:tinyint(1);not null;default:0" json:"refresh_needed"`
	Disabled      bool      `gorm:"type:tinyint(1);not null;default:0" json:"disabled"`
	Type          string    `gorm:"type:varchar(16);not null;default:'social'" json:"type"` // social | storage
	IsDeleted     bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Integration) TableName() string {
	return "integrations"
}

package dto

// PostBaseDTO 创建/更新帖子的共用字段
type PostBaseDTO struct {
	Title          string         `json:"title" binding:"max=255"`
	Content        string         `json:"content" binding:"required"`
	PublishAt      string         `json:"publish_at"` // RFC3339，为空表示存为草稿
	IntegrationIDs []uint64       `json:"integration_ids"`
	Media          []PostMediaDTO `json:"media"`
}

type PostMediaDTO struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	MimeType     string `json:"mime_type"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	SortOrder    int    `json:"sort_order"`
}

type PostTargetDTO struct {
	ID            uint64 `json:"id"`
	IntegrationID uint64 `json:"integration_id"`
	Provider      string `json:"provider"`
	AccountName   string `json:"account_name"`
	Status        int8   `json:"status"`
	ExternalID    string `json:"external_id,omitempty"`
	Error         string `json:"error,omitempty"`
	PublishedAt   string `json:"published_at,omitempty"`
}

type PostDTO struct {
	ID          uint64          `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Status      int8            `json:"status"`
	PublishAt   string          `json:"publish_at,omitempty"`
	PublishedAt string          `json:"published_at,omitempty"`
	Impressions int64           `json:"impressions"`
	Engagements int64           `json:"engagements"`
	Media       []PostMediaDTO  `json:"media"`
	Targets     []PostTargetDTO `json:"targets"`
	CreatedAt   string          `json:"created_at"`
}

type PostListQueryDTO struct {
	Status   *int8  `form:"status"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"pageSize,default=20" binding:"min=1,max=100"`
}

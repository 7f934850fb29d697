package dto

// MediaUploadResultDTO 上传完成后的可访问地址
type MediaUploadResultDTO struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	MimeType     string `json:"mime_type"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

// MediaImportDTO 从存储集成导入外部文件
type MediaImportDTO struct {
	URL string `json:"url" binding:"required,url"`
}

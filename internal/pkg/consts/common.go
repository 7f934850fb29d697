package consts

const (
	MimePrefixImage = "image"
	MimePrefixVideo = "video"
)

const (
	PostStatusDraft     = 0
	PostStatusScheduled = 1
	PostStatusPublished = 2
	PostStatusFailed    = 3
)

const (
	TargetStatusPending   = 1
	TargetStatusPublished = 2
	TargetStatusFailed    = 3
)

const (
	IntegrationTypeSocial  = "social"
	IntegrationTypeStorage = "storage"
)

const (
	// TopPerformingPostsLimit 聚合结果中返回的最近发布帖子数量上限
	TopPerformingPostsLimit = 10
	// ContentPreviewLength 帖子内容预览截断长度
	ContentPreviewLength = 100
	// DefaultAnalyticsWindowDays 未指定日期范围时默认回溯的天数
	DefaultAnalyticsWindowDays = 30
	// BestTimeMinSamples 最佳发布时间桶的最小样本数
	BestTimeMinSamples = 3
)

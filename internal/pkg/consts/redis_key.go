package consts

const (
	AnalyticsAggregatedKey = "analytics:aggregated:"
	AnalyticsSummaryKey    = "analytics:summary:"
	AnalyticsCacheIndexKey = "analytics:cache:index"
)

const (
	PostPublishLock  = "lock:post:publish"
	TokenRefreshLock = "lock:integration:refresh"
)

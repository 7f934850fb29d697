package dto

// AnalyticsQueryDTO 聚合分析的查询参数
type AnalyticsQueryDTO struct {
	StartDate string   `form:"startDate"`
	EndDate   string   `form:"endDate"`
	Platforms []string `form:"-"`
	Metrics   []string `form:"-"`
}

type IntegrationBriefDTO struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Picture  string `json:"picture"`
}

type MetricPointDTO struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

type MetricSeriesDTO struct {
	Label   string           `json:"label"`
	Points  []MetricPointDTO `json:"points"`
	Average bool             `json:"average,omitempty"`
}

// IntegrationAnalyticsDTO 单个集成的拉取结果
// Error 非空表示该集成本次拉取失败，Analytics 为空
type IntegrationAnalyticsDTO struct {
	Integration IntegrationBriefDTO `json:"integration"`
	Analytics   []MetricSeriesDTO   `json:"analytics"`
	Error       string              `json:"error,omitempty"`
}

type AnalyticsPeriodDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AggregatedSeriesDTO GET /api/analytics/aggregated 的响应体
type AggregatedSeriesDTO struct {
	Data   []IntegrationAnalyticsDTO `json:"data"`
	Period AnalyticsPeriodDTO        `json:"period"`
}

type PlatformBreakdownDTO struct {
	IntegrationID  uint64  `json:"integration_id"`
	Provider       string  `json:"provider"`
	AccountName    string  `json:"account_name"`
	Posts          int     `json:"posts"`
	Impressions    float64 `json:"impressions"`
	Engagements    float64 `json:"engagements"`
	EngagementRate float64 `json:"engagement_rate"`
}

type TimeSeriesPointDTO struct {
	Date        string  `json:"date"`
	Impressions float64 `json:"impressions"`
	Engagements float64 `json:"engagements"`
	Posts       int     `json:"posts"`
}

// TopPostDTO 聚合结果中的单帖摘要
// Impressions/Engagements 来自互动事件回填，0 表示尚无数据
type TopPostDTO struct {
	ID             uint64 `json:"id"`
	ContentPreview string `json:"content_preview"`
	PublishedAt    string `json:"published_at"`
	Impressions    int64  `json:"impressions"`
	Engagements    int64  `json:"engagements"`
}

// AggregatedMetricsDTO GET /api/analytics/summary 的响应体
type AggregatedMetricsDTO struct {
	TotalPosts            int                    `json:"total_posts"`
	TotalImpressions      float64                `json:"total_impressions"`
	TotalEngagements      float64                `json:"total_engagements"`
	AverageEngagementRate float64                `json:"average_engagement_rate"`
	PlatformBreakdown     []PlatformBreakdownDTO `json:"platform_breakdown"`
	TimeSeriesData        []TimeSeriesPointDTO   `json:"time_series_data"`
	TopPerformingPosts    []TopPostDTO           `json:"top_performing_posts"`
}

// BestTimeSlotDTO 最佳发布时间段
type BestTimeSlotDTO struct {
	DayOfWeek             int     `json:"day_of_week"` // 0=周日
	Hour                  int     `json:"hour"`
	AverageEngagementRate float64 `json:"average_engagement_rate"`
	SampleSize            int     `json:"sample_size"`
}

type GrowthPointDTO struct {
	Date      string  `json:"date"`
	Followers float64 `json:"followers"`
	Growth    float64 `json:"growth"`
}

// AudienceGrowthDTO 单个集成的粉丝增长序列
type AudienceGrowthDTO struct {
	Integration IntegrationBriefDTO `json:"integration"`
	Data        []GrowthPointDTO    `json:"data"`
	Error       string              `json:"error,omitempty"`
}

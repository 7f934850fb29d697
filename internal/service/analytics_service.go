package service

import (
	"Postline/internal/api/dto"
	"Postline/internal/model"
	"Postline/internal/pkg/consts"
	"Postline/internal/pkg/mongo"
	"Postline/internal/pkg/platform"
	"Postline/internal/pkg/security"
	"Postline/internal/pkg/util"
	"Postline/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// errRefreshPending 集成被标记待刷新时的占位错误，仅出现在单集成结果里
var errRefreshPending = errors.New("access token expired, waiting for refresh")

type AnalyticsService interface {
	// GetAggregatedSeries 按集成返回原始指标序列，对应 GET /api/analytics/aggregated
	GetAggregatedSeries(ctx context.Context, userID uint64, query *dto.AnalyticsQueryDTO) (*dto.AggregatedSeriesDTO, error)
	// GetSummary 跨平台合并后的聚合指标，对应 GET /api/analytics/summary
	GetSummary(ctx context.Context, userID uint64, startDate string, endDate string) (*dto.AggregatedMetricsDTO, error)
	GetBestTimesToPost(ctx context.Context, userID uint64) ([]dto.BestTimeSlotDTO, error)
	GetAudienceGrowth(ctx context.Context, userID uint64, startDate string, endDate string) ([]dto.AudienceGrowthDTO, error)
	ExportCSV(ctx context.Context, userID uint64, startDate string, endDate string) (string, error)
	ClearCache(ctx context.Context) error
}

type analyticsServiceImpl struct {
	integrationRepo repository.IntegrationRepo
	postRepo        repository.PostRepo
	snapshotRepo    mongo.AnalyticsSnapshotRepo
	registry        *platform.Registry
	cipher          *security.TokenCipher
	cache           AnalyticsCache
	fetchTimeout    time.Duration
}

func NewAnalyticsService(
	integrationRepo repository.IntegrationRepo,
	postRepo repository.PostRepo,
	snapshotRepo mongo.AnalyticsSnapshotRepo,
	registry *platform.Registry,
	cipher *security.TokenCipher,
	cache AnalyticsCache,
	fetchTimeout time.Duration,
) AnalyticsService {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &analyticsServiceImpl{
		integrationRepo: integrationRepo,
		postRepo:        postRepo,
		snapshotRepo:    snapshotRepo,
		registry:        registry,
		cipher:          cipher,
		cache:           cache,
		fetchTimeout:    fetchTimeout,
	}
}

// analyticsPeriod 解析后的统计区间，日期均为含两端的日历日
type analyticsPeriod struct {
	Start time.Time
	End   time.Time
	Days  int
}

func (p analyticsPeriod) FromStr() string { return util.DayKey(p.Start) }
func (p analyticsPeriod) ToStr() string   { return util.DayKey(p.End) }

func resolvePeriod(startDate string, endDate string) (analyticsPeriod, error) {
	now := time.Now().UTC()
	if startDate == "" && endDate == "" {
		return analyticsPeriod{
			Start: now.AddDate(0, 0, -consts.DefaultAnalyticsWindowDays),
			End:   now,
			Days:  consts.DefaultAnalyticsWindowDays,
		}, nil
	}

	start, err := time.ParseInLocation("2006-01-02", startDate, time.UTC)
	if err != nil {
		return analyticsPeriod{}, ErrParamInvalid
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, time.UTC)
	if err != nil {
		return analyticsPeriod{}, ErrParamInvalid
	}
	if end.Before(start) {
		return analyticsPeriod{}, ErrParamInvalid
	}
	// endDate 为含端日期，区间覆盖到当日结束
	end = end.Add(24*time.Hour - time.Nanosecond)
	return analyticsPeriod{
		Start: start,
		End:   end,
		Days:  util.WindowDays(start, end, consts.DefaultAnalyticsWindowDays),
	}, nil
}

// fetchResult 单个集成的拉取结果，Err 与 Series 互斥
type fetchResult struct {
	Integration *model.Integration
	Series      []platform.MetricSeries
	Err         error
}

// fetchAll 并发拉取每个集成的指标，结果按集成的存储顺序写入独立槽位
// 单个集成失败只体现在对应槽位的 Err 上，不会中断其它集成
func (s *analyticsServiceImpl) fetchAll(ctx context.Context, integrations []*model.Integration, windowDays int) []fetchResult {
	results := make([]fetchResult, len(integrations))

	g, gCtx := errgroup.WithContext(ctx)
	for i, integration := range integrations {
		g.Go(func() error {
			results[i] = fetchResult{Integration: integration}
			series, err := s.fetchOne(gCtx, integration, windowDays)
			if err != nil {
				log.WarnContext(gCtx, "analytics fetch failed",
					"integration_id", integration.ID,
					"provider", integration.Provider,
					"error", err)
				results[i].Err = err
				return nil
			}
			results[i].Series = series
			return nil
		})
	}
	// 闭包内永不返回 error，Wait 仅用于等待全部槽位就绪
	_ = g.Wait()
	return results
}

// fetchOne 带令牌自愈的单集成拉取
// 初次拉取返回凭据失效时最多刷新并重试一次，刷新失败则持久化 refresh_needed
func (s *analyticsServiceImpl) fetchOne(ctx context.Context, integration *model.Integration, windowDays int) ([]platform.MetricSeries, error) {
	if integration.RefreshNeeded {
		return nil, errRefreshPending
	}

	client, err := s.registry.Get(integration.Provider)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.cipher.Decrypt(integration.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	series, fetchErr := s.doFetch(ctx, client, integration.AccountID, accessToken, windowDays)
	if fetchErr == nil {
		s.saveSnapshot(ctx, integration, windowDays, series)
		return series, nil
	}
	if !platform.IsAuthError(fetchErr) {
		return nil, fetchErr
	}
	if integration.RefreshToken == "" {
		return nil, fetchErr
	}

	newToken, err := s.refreshTokens(ctx, client, integration)
	if err != nil {
		if dbErr := s.integrationRepo.SetRefreshNeeded(ctx, integration.ID, true); dbErr != nil {
			log.ErrorContext(ctx, "failed to mark integration refresh_needed",
				"integration_id", integration.ID, "error", dbErr)
		}
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	series, err = s.doFetch(ctx, client, integration.AccountID, newToken, windowDays)
	if err != nil {
		return nil, err
	}
	s.saveSnapshot(ctx, integration, windowDays, series)
	return series, nil
}

// doFetch 带超时的单次平台调用，慢平台不会拖垮整个请求
func (s *analyticsServiceImpl) doFetch(ctx context.Context, client platform.Client, accountID string, accessToken string, windowDays int) ([]platform.MetricSeries, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	return client.Analytics(fetchCtx, accountID, accessToken, windowDays)
}

// refreshTokens 调用平台刷新接口并持久化轮换后的令牌，返回新的明文 access token
func (s *analyticsServiceImpl) refreshTokens(ctx context.Context, client platform.Client, integration *model.Integration) (string, error) {
	refreshToken, err := s.cipher.Decrypt(integration.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	pair, err := client.RefreshToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	encryptedAccess, err := s.cipher.Encrypt(pair.AccessToken)
	if err != nil {
		return "", err
	}
	encryptedRefresh := integration.RefreshToken
	if pair.RefreshToken != "" && pair.RefreshToken != refreshToken {
		if encryptedRefresh, err = s.cipher.Encrypt(pair.RefreshToken); err != nil {
			return "", err
		}
	}

	var expiresAt *time.Time
	if pair.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(pair.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	if err = s.integrationRepo.UpdateTokens(ctx, integration.ID, encryptedAccess, encryptedRefresh, expiresAt); err != nil {
		return "", fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	log.InfoContext(ctx, "integration token refreshed",
		"integration_id", integration.ID, "provider", integration.Provider)
	return pair.AccessToken, nil
}

// saveSnapshot 原始拉取结果落 Mongo，仅用于排查，失败不影响主流程
func (s *analyticsServiceImpl) saveSnapshot(ctx context.Context, integration *model.Integration, windowDays int, series []platform.MetricSeries) {
	if s.snapshotRepo == nil {
		return
	}
	snapshot := &mongo.AnalyticsSnapshot{
		UserID:        integration.UserID,
		IntegrationID: integration.ID,
		Provider:      integration.Provider,
		AccountID:     integration.AccountID,
		WindowDays:    windowDays,
		Series:        make([]mongo.SnapshotSeries, 0, len(series)),
		FetchedAt:     time.Now(),
	}
	for _, sr := range series {
		points := make([]mongo.SnapshotPoint, 0, len(sr.Points))
		for _, p := range sr.Points {
			points = append(points, mongo.SnapshotPoint{Date: p.Date, Total: p.Total})
		}
		snapshot.Series = append(snapshot.Series, mongo.SnapshotSeries{Label: sr.Label, Points: points})
	}
	if err := s.snapshotRepo.Insert(ctx, snapshot); err != nil {
		log.WarnContext(ctx, "failed to save analytics snapshot",
			"integration_id", integration.ID, "error", err)
	}
}

func integrationBrief(integration *model.Integration) dto.IntegrationBriefDTO {
	return dto.IntegrationBriefDTO{
		ID:       integration.ID,
		Name:     integration.AccountName,
		Provider: integration.Provider,
		Picture:  integration.Picture,
	}
}

func (s *analyticsServiceImpl) GetAggregatedSeries(ctx context.Context, userID uint64, query *dto.AnalyticsQueryDTO) (*dto.AggregatedSeriesDTO, error) {
	period, err := resolvePeriod(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}

	cacheKey := BuildCacheKey(consts.AnalyticsAggregatedKey, userID, period.FromStr(), period.ToStr(), query.Platforms, query.Metrics)
	var cached dto.AggregatedSeriesDTO
	if hit, cacheErr := s.cache.Get(ctx, cacheKey, &cached); cacheErr != nil {
		log.WarnContext(ctx, "analytics cache read failed", "key", cacheKey, "error", cacheErr)
	} else if hit {
		return &cached, nil
	}

	integrations, err := s.integrationRepo.ListSocialByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// 平台过滤在拉取之前完成，被排除的集成不产生任何平台调用
	if len(query.Platforms) > 0 {
		wanted := make(map[string]bool, len(query.Platforms))
		for _, p := range query.Platforms {
			wanted[strings.ToLower(p)] = true
		}
		filtered := integrations[:0]
		for _, integration := range integrations {
			if wanted[integration.Provider] {
				filtered = append(filtered, integration)
			}
		}
		integrations = filtered
	}

	results := s.fetchAll(ctx, integrations, period.Days)

	// 指标过滤在拉取之后按规范化标签做，不影响拉取范围
	var wantedMetrics map[string]bool
	if len(query.Metrics) > 0 {
		wantedMetrics = make(map[string]bool, len(query.Metrics))
		for _, m := range query.Metrics {
			wantedMetrics[NormalizeMetricName(m)] = true
		}
	}

	data := make([]dto.IntegrationAnalyticsDTO, 0, len(results))
	for _, result := range results {
		entry := dto.IntegrationAnalyticsDTO{
			Integration: integrationBrief(result.Integration),
			Analytics:   make([]dto.MetricSeriesDTO, 0, len(result.Series)),
		}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}
		for _, series := range result.Series {
			if wantedMetrics != nil && !wantedMetrics[NormalizeMetricName(series.Label)] {
				continue
			}
			points := make([]dto.MetricPointDTO, 0, len(series.Points))
			for _, p := range series.Points {
				points = append(points, dto.MetricPointDTO{Date: p.Date, Total: p.Total})
			}
			entry.Analytics = append(entry.Analytics, dto.MetricSeriesDTO{
				Label:   series.Label,
				Points:  points,
				Average: series.Average,
			})
		}
		data = append(data, entry)
	}

	response := &dto.AggregatedSeriesDTO{
		Data:   data,
		Period: dto.AnalyticsPeriodDTO{From: period.FromStr(), To: period.ToStr()},
	}
	if cacheErr := s.cache.Set(ctx, cacheKey, response); cacheErr != nil {
		log.WarnContext(ctx, "analytics cache write failed", "key", cacheKey, "error", cacheErr)
	}
	return response, nil
}

func (s *analyticsServiceImpl) GetSummary(ctx context.Context, userID uint64, startDate string, endDate string) (*dto.AggregatedMetricsDTO, error) {
	period, err := resolvePeriod(startDate, endDate)
	if err != nil {
		return nil, err
	}

	cacheKey := BuildCacheKey(consts.AnalyticsSummaryKey, userID, period.FromStr(), period.ToStr(), nil, nil)
	var cached dto.AggregatedMetricsDTO
	if hit, cacheErr := s.cache.Get(ctx, cacheKey, &cached); cacheErr != nil {
		log.WarnContext(ctx, "analytics cache read failed", "key", cacheKey, "error", cacheErr)
	} else if hit {
		return &cached, nil
	}

	integrations, err := s.integrationRepo.ListSocialByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListPublishedBetween(ctx, userID, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	results := s.fetchAll(ctx, integrations, period.Days)
	summary := s.merge(results, posts)

	if cacheErr := s.cache.Set(ctx, cacheKey, summary); cacheErr != nil {
		log.WarnContext(ctx, "analytics cache write failed", "key", cacheKey, "error", cacheErr)
	}
	return summary, nil
}

// dayBucket 单日的合并指标
type dayBucket struct {
	Impressions float64
	Engagements float64
	Posts       int
}

// merge 把各集成的指标序列和发布帖子合并为聚合结果
// 平台明细顺序与集成的存储顺序一致，时间序列按日期字典序升序
func (s *analyticsServiceImpl) merge(results []fetchResult, posts []*model.Post) *dto.AggregatedMetricsDTO {
	summary := &dto.AggregatedMetricsDTO{
		TotalPosts:         len(posts),
		PlatformBreakdown:  make([]dto.PlatformBreakdownDTO, 0, len(results)),
		TimeSeriesData:     make([]dto.TimeSeriesPointDTO, 0),
		TopPerformingPosts: make([]dto.TopPostDTO, 0, consts.TopPerformingPostsLimit),
	}

	days := make(map[string]*dayBucket)
	bucketOf := func(date string) *dayBucket {
		b, ok := days[date]
		if !ok {
			b = &dayBucket{}
			days[date] = b
		}
		return b
	}

	postsByIntegration := make(map[uint64]int)
	for _, post := range posts {
		for _, target := range post.Targets {
			postsByIntegration[target.IntegrationID]++
		}
	}

	for _, result := range results {
		row := dto.PlatformBreakdownDTO{
			IntegrationID: result.Integration.ID,
			Provider:      result.Integration.Provider,
			AccountName:   result.Integration.AccountName,
			Posts:         postsByIntegration[result.Integration.ID],
		}
		for _, series := range result.Series {
			switch ClassifyMetricLabel(series.Label) {
			case BucketImpressions:
				for _, p := range series.Points {
					summary.TotalImpressions += p.Total
					row.Impressions += p.Total
					bucketOf(p.Date).Impressions += p.Total
				}
			case BucketEngagement:
				for _, p := range series.Points {
					summary.TotalEngagements += p.Total
					row.Engagements += p.Total
					bucketOf(p.Date).Engagements += p.Total
				}
			}
			// Followers 与 Unclassified 不计入聚合总量
		}
		if row.Impressions > 0 && row.Engagements > 0 {
			row.EngagementRate = row.Engagements / row.Impressions * 100
		}
		summary.PlatformBreakdown = append(summary.PlatformBreakdown, row)
	}

	for _, post := range posts {
		if post.PublishedAt == nil {
			continue
		}
		bucketOf(util.DayKey(*post.PublishedAt)).Posts++
	}

	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		b := days[date]
		summary.TimeSeriesData = append(summary.TimeSeriesData, dto.TimeSeriesPointDTO{
			Date:        date,
			Impressions: b.Impressions,
			Engagements: b.Engagements,
			Posts:       b.Posts,
		})
	}

	if summary.TotalImpressions > 0 {
		summary.AverageEngagementRate = summary.TotalEngagements / summary.TotalImpressions * 100
	}

	// posts 已按发布时间倒序，直接取前 N 条
	for _, post := range posts {
		if len(summary.TopPerformingPosts) >= consts.TopPerformingPostsLimit {
			break
		}
		top := dto.TopPostDTO{
			ID:             post.ID,
			ContentPreview: util.TruncatePreview(post.Content, consts.ContentPreviewLength),
			Impressions:    post.Impressions,
			Engagements:    post.Engagements,
		}
		if post.PublishedAt != nil {
			top.PublishedAt = post.PublishedAt.UTC().Format(time.RFC3339)
		}
		summary.TopPerformingPosts = append(summary.TopPerformingPosts, top)
	}

	return summary
}

func (s *analyticsServiceImpl) GetBestTimesToPost(ctx context.Context, userID uint64) ([]dto.BestTimeSlotDTO, error) {
	posts, err := s.postRepo.ListPublishedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	type slotAcc struct {
		sum   float64
		count int
	}
	slots := make(map[[2]int]*slotAcc)
	for _, post := range posts {
		if post.PublishedAt == nil || post.Impressions == 0 {
			// 没有回填互动数据的帖子不参与统计
			continue
		}
		t := post.PublishedAt.UTC()
		key := [2]int{int(t.Weekday()), t.Hour()}
		acc, ok := slots[key]
		if !ok {
			acc = &slotAcc{}
			slots[key] = acc
		}
		acc.sum += float64(post.Engagements) / float64(post.Impressions) * 100
		acc.count++
	}

	best := make([]dto.BestTimeSlotDTO, 0, len(slots))
	for key, acc := range slots {
		if acc.count < consts.BestTimeMinSamples {
			continue
		}
		best = append(best, dto.BestTimeSlotDTO{
			DayOfWeek:             key[0],
			Hour:                  key[1],
			AverageEngagementRate: acc.sum / float64(acc.count),
			SampleSize:            acc.count,
		})
	}
	sort.Slice(best, func(i, j int) bool {
		if best[i].AverageEngagementRate != best[j].AverageEngagementRate {
			return best[i].AverageEngagementRate > best[j].AverageEngagementRate
		}
		if best[i].DayOfWeek != best[j].DayOfWeek {
			return best[i].DayOfWeek < best[j].DayOfWeek
		}
		return best[i].Hour < best[j].Hour
	})
	if len(best) > consts.TopPerformingPostsLimit {
		best = best[:consts.TopPerformingPostsLimit]
	}
	return best, nil
}

func (s *analyticsServiceImpl) GetAudienceGrowth(ctx context.Context, userID uint64, startDate string, endDate string) ([]dto.AudienceGrowthDTO, error) {
	period, err := resolvePeriod(startDate, endDate)
	if err != nil {
		return nil, err
	}

	integrations, err := s.integrationRepo.ListSocialByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := s.fetchAll(ctx, integrations, period.Days)
	growth := make([]dto.AudienceGrowthDTO, 0, len(results))
	for _, result := range results {
		entry := dto.AudienceGrowthDTO{
			Integration: integrationBrief(result.Integration),
			Data:        make([]dto.GrowthPointDTO, 0),
		}
		if result.Err != nil {
			entry.Error = result.Err.Error()
			growth = append(growth, entry)
			continue
		}
		for _, series := range result.Series {
			if ClassifyMetricLabel(series.Label) != BucketFollowers {
				continue
			}
			for i, p := range series.Points {
				point := dto.GrowthPointDTO{Date: p.Date, Followers: p.Total}
				if i > 0 {
					point.Growth = p.Total - series.Points[i-1].Total
				}
				entry.Data = append(entry.Data, point)
			}
			break // 只取第一条粉丝序列
		}
		growth = append(growth, entry)
	}
	return growth, nil
}

func (s *analyticsServiceImpl) ExportCSV(ctx context.Context, userID uint64, startDate string, endDate string) (string, error) {
	summary, err := s.GetSummary(ctx, userID, startDate, endDate)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Date,Platform,Posts,Impressions,Engagements,Engagement Rate\n")
	for _, point := range summary.TimeSeriesData {
		rate := 0.0
		if point.Impressions > 0 {
			rate = point.Engagements / point.Impressions * 100
		}
		fmt.Fprintf(&b, "%s,All Platforms,%d,%.0f,%.0f,%.2f%%\n",
			point.Date, point.Posts, point.Impressions, point.Engagements, rate)
	}

	b.WriteString("\n")
	b.WriteString("Platform,Account,Posts,Impressions,Engagements,Engagement Rate\n")
	for _, row := range summary.PlatformBreakdown {
		fmt.Fprintf(&b, "%s,%s,%d,%.0f,%.0f,%.2f%%\n",
			row.Provider, csvEscape(row.AccountName), row.Posts, row.Impressions, row.Engagements, row.EngagementRate)
	}
	return b.String(), nil
}

// csvEscape 账号名可能带逗号或引号
func csvEscape(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return "\"" + strings.ReplaceAll(field, "\"", "\"\"") + "\""
}

func (s *analyticsServiceImpl) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

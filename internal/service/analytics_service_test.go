package service

import (
	"Postline/internal/api/dto"
	"Postline/internal/model"
	"Postline/internal/pkg/platform"
	"Postline/internal/pkg/security"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCipherKey = "8d969eef6ecad3c29a3a629280e686cf0c3f5d5a86aff3ca12020c923adc6c92"

// ---- fakes ----

type fakeIntegrationRepo struct {
	mu            sync.Mutex
	integrations  []*model.Integration
	tokenUpdates  map[uint64][2]string // integrationID -> {access, refresh}（密文）
	refreshNeeded map[uint64]bool
}

func newFakeIntegrationRepo(integrations ...*model.Integration) *fakeIntegrationRepo {
	return &fakeIntegrationRepo{
		integrations:  integrations,
		tokenUpdates:  make(map[uint64][2]string),
		refreshNeeded: make(map[uint64]bool),
	}
}

func (s *fakeIntegrationRepo) CreateIntegration(_ context.Context, integration *model.Integration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.integrations = append(s.integrations, integration)
	return nil
}

func (s *fakeIntegrationRepo) GetIntegrationByID(_ context.Context, userID uint64, integrationID uint64) (*model.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, integration := range s.integrations {
		if integration.ID == integrationID && integration.UserID == userID {
			return integration, nil
		}
	}
	return nil, nil
}

func (s *fakeIntegrationRepo) ListByUser(_ context.Context, userID uint64) ([]*model.Integration, error) {
	return s.ListSocialByUser(context.Background(), userID)
}

func (s *fakeIntegrationRepo) ListSocialByUser(_ context.Context, userID uint64) ([]*model.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*model.Integration, 0)
	for _, integration := range s.integrations {
		if integration.UserID == userID && !integration.IsDeleted && !integration.Disabled {
			result = append(result, integration)
		}
	}
	return result, nil
}

func (s *fakeIntegrationRepo) UpdateTokens(_ context.Context, integrationID uint64, accessToken string, refreshToken string, _ *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenUpdates[integrationID] = [2]string{accessToken, refreshToken}
	s.refreshNeeded[integrationID] = false
	return nil
}

func (s *fakeIntegrationRepo) SetRefreshNeeded(_ context.Context, integrationID uint64, needed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshNeeded[integrationID] = needed
	return nil
}

func (s *fakeIntegrationRepo) SoftDelete(_ context.Context, _ uint64, _ uint64) error { return nil }

func (s *fakeIntegrationRepo) ListRefreshCandidates(_ context.Context, _ time.Time) ([]*model.Integration, error) {
	return nil, nil
}

type fakePostRepo struct {
	published []*model.Post
}

func (s *fakePostRepo) CreatePost(_ context.Context, _ *model.Post) error { return nil }
func (s *fakePostRepo) GetPostByID(_ context.Context, _ uint64, _ uint64) (*model.Post, error) {
	return nil, nil
}
func (s *fakePostRepo) ListByUser(_ context.Context, _ uint64, _ *int8, _ int, _ int) ([]*model.Post, error) {
	return nil, nil
}
func (s *fakePostRepo) SearchByContent(_ context.Context, _ uint64, _ string, _ int, _ int) ([]*model.Post, error) {
	return nil, nil
}
func (s *fakePostRepo) UpdatePost(_ context.Context, _ *model.Post) error   { return nil }
func (s *fakePostRepo) SoftDelete(_ context.Context, _ uint64, _ uint64) error { return nil }
func (s *fakePostRepo) ListPublishedBetween(_ context.Context, _ uint64, _ time.Time, _ time.Time) ([]*model.Post, error) {
	return s.published, nil
}
func (s *fakePostRepo) ListPublishedByUser(_ context.Context, _ uint64) ([]*model.Post, error) {
	return s.published, nil
}
func (s *fakePostRepo) ListDuePosts(_ context.Context, _ time.Time, _ int) ([]*model.Post, error) {
	return nil, nil
}
func (s *fakePostRepo) UpdatePostStatus(_ context.Context, _ uint64, _ int8, _ *time.Time) error {
	return nil
}
func (s *fakePostRepo) UpdateTargetResult(_ context.Context, _ uint64, _ int8, _ string, _ string, _ *time.Time) error {
	return nil
}
func (s *fakePostRepo) UpdateInsights(_ context.Context, _ uint64, _ int64, _ int64) error {
	return nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (s *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (s *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = raw
	return nil
}

func (s *memoryCache) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]byte)
	return nil
}

type fakeClient struct {
	mu            sync.Mutex
	id            string
	analyticsFn   func(accessToken string, calls int) ([]platform.MetricSeries, error)
	refreshFn     func(refreshToken string) (*platform.TokenPair, error)
	analyticsCall int
	refreshCall   int
}

func (s *fakeClient) Identifier() string { return s.id }

func (s *fakeClient) Analytics(_ context.Context, _ string, accessToken string, _ int) ([]platform.MetricSeries, error) {
	s.mu.Lock()
	s.analyticsCall++
	calls := s.analyticsCall
	s.mu.Unlock()
	return s.analyticsFn(accessToken, calls)
}

func (s *fakeClient) RefreshToken(_ context.Context, refreshToken string) (*platform.TokenPair, error) {
	s.mu.Lock()
	s.refreshCall++
	s.mu.Unlock()
	if s.refreshFn == nil {
		return nil, errors.New("refresh not supported")
	}
	return s.refreshFn(refreshToken)
}

func (s *fakeClient) Publish(_ context.Context, _ string, _ string, _ string, _ []string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *fakeClient) analyticsCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyticsCall
}

// ---- helpers ----

func testCipher(t *testing.T) *security.TokenCipher {
	t.Helper()
	cipher, err := security.NewTokenCipher(testCipherKey)
	require.NoError(t, err)
	return cipher
}

func encrypt(t *testing.T, cipher *security.TokenCipher, plaintext string) string {
	t.Helper()
	encrypted, err := cipher.Encrypt(plaintext)
	require.NoError(t, err)
	return encrypted
}

func staticSeries(series ...platform.MetricSeries) func(string, int) ([]platform.MetricSeries, error) {
	return func(string, int) ([]platform.MetricSeries, error) {
		return series, nil
	}
}

func newTestService(t *testing.T, integrationRepo *fakeIntegrationRepo, postRepo *fakePostRepo, cache AnalyticsCache, clients map[string]platform.Client) (AnalyticsService, *security.TokenCipher) {
	t.Helper()
	cipher := testCipher(t)
	registry := platform.NewRegistryWithClients(clients)
	svc := NewAnalyticsService(integrationRepo, postRepo, nil, registry, cipher, cache, 15*time.Second)
	return svc, cipher
}

func socialIntegration(cipher *security.TokenCipher, t *testing.T, id uint64, provider string, accessToken string, refreshToken string) *model.Integration {
	t.Helper()
	integration := &model.Integration{
		ID:          id,
		UserID:      1,
		Provider:    provider,
		AccountID:   "acct-" + provider,
		AccountName: provider + " account",
		AccessToken: encrypt(t, cipher, accessToken),
		Type:        "social",
	}
	if refreshToken != "" {
		integration.RefreshToken = encrypt(t, cipher, refreshToken)
	}
	return integration
}

// ---- tests ----

func TestGetSummaryMergesAcrossIntegrations(t *testing.T) {
	cipher := testCipher(t)
	twitter := socialIntegration(cipher, t, 1, "twitter", "tok-tw", "")
	youtube := socialIntegration(cipher, t, 2, "youtube", "tok-yt", "")
	integrationRepo := newFakeIntegrationRepo(twitter, youtube)

	publishedAt := time.Date(2026, 8, 10, 14, 0, 0, 0, time.UTC)
	postRepo := &fakePostRepo{published: []*model.Post{
		{ID: 100, Content: "hello world", PublishedAt: &publishedAt,
			Targets: []model.PostTarget{{IntegrationID: 1}}},
	}}

	clients := map[string]platform.Client{
		"twitter": &fakeClient{id: "twitter", analyticsFn: staticSeries(
			platform.MetricSeries{Label: "Impressions", Points: []platform.MetricPoint{
				{Date: "2026-08-10", Total: 100}, {Date: "2026-08-11", Total: 200},
			}},
			platform.MetricSeries{Label: "Likes", Points: []platform.MetricPoint{
				{Date: "2026-08-10", Total: 30},
			}},
			platform.MetricSeries{Label: "Followers", Points: []platform.MetricPoint{
				{Date: "2026-08-10", Total: 5000},
			}},
		)},
		"youtube": &fakeClient{id: "youtube", analyticsFn: staticSeries(
			platform.MetricSeries{Label: "Views", Points: []platform.MetricPoint{
				{Date: "2026-08-09", Total: 700},
			}},
		)},
	}

	svc, _ := newTestService(t, integrationRepo, postRepo, newMemoryCache(), clients)
	summary, err := svc.GetSummary(context.Background(), 1, "2026-08-01", "2026-08-31")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalPosts)
	assert.Equal(t, 1000.0, summary.TotalImpressions) // 100+200+700
	assert.Equal(t, 30.0, summary.TotalEngagements)
	assert.InDelta(t, 3.0, summary.AverageEngagementRate, 1e-9)

	// 平台明细顺序与集成存储顺序一致
	require.Len(t, summary.PlatformBreakdown, 2)
	assert.Equal(t, uint64(1), summary.PlatformBreakdown[0].IntegrationID)
	assert.Equal(t, uint64(2), summary.PlatformBreakdown[1].IntegrationID)
	assert.Equal(t, 300.0, summary.PlatformBreakdown[0].Impressions)
	assert.InDelta(t, 10.0, summary.PlatformBreakdown[0].EngagementRate, 1e-9)
	assert.Equal(t, 1, summary.PlatformBreakdown[0].Posts)
	assert.Equal(t, 0.0, summary.PlatformBreakdown[1].EngagementRate)

	// 时间序列按日期升序，帖子计入发布日
	require.Len(t, summary.TimeSeriesData, 3)
	assert.Equal(t, "2026-08-09", summary.TimeSeriesData[0].Date)
	assert.Equal(t, "2026-08-10", summary.TimeSeriesData[1].Date)
	assert.Equal(t, "2026-08-11", summary.TimeSeriesData[2].Date)
	assert.Equal(t, 1, summary.TimeSeriesData[1].Posts)

	require.Len(t, summary.TopPerformingPosts, 1)
	assert.Equal(t, uint64(100), summary.TopPerformingPosts[0].ID)
}

func TestGetSummaryIsolatesFailures(t *testing.T) {
	cipher := testCipher(t)
	broken := socialIntegration(cipher, t, 1, "facebook", "tok-fb", "")
	healthy := socialIntegration(cipher, t, 2, "twitter", "tok-tw", "")
	integrationRepo := newFakeIntegrationRepo(broken, healthy)

	clients := map[string]platform.Client{
		"facebook": &fakeClient{id: "facebook", analyticsFn: func(string, int) ([]platform.MetricSeries, error) {
			return nil, errors.New("network timeout")
		}},
		"twitter": &fakeClient{id: "twitter", analyticsFn: staticSeries(
			platform.MetricSeries{Label: "Impressions", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 500}}},
		)},
	}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), clients)
	summary, err := svc.GetSummary(context.Background(), 1, "2026-08-01", "2026-08-31")
	require.NoError(t, err)

	assert.Equal(t, 500.0, summary.TotalImpressions)
	require.Len(t, summary.PlatformBreakdown, 2)
	assert.Equal(t, 0.0, summary.PlatformBreakdown[0].Impressions)
	assert.Equal(t, 500.0, summary.PlatformBreakdown[1].Impressions)
}

func TestAggregatedSeriesReportsPerIntegrationError(t *testing.T) {
	cipher := testCipher(t)
	broken := socialIntegration(cipher, t, 1, "facebook", "tok-fb", "")
	healthy := socialIntegration(cipher, t, 2, "twitter", "tok-tw", "")
	integrationRepo := newFakeIntegrationRepo(broken, healthy)

	clients := map[string]platform.Client{
		"facebook": &fakeClient{id: "facebook", analyticsFn: func(string, int) ([]platform.MetricSeries, error) {
			return nil, errors.New("network timeout")
		}},
		"twitter": &fakeClient{id: "twitter", analyticsFn: staticSeries(
			platform.MetricSeries{Label: "Impressions", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 500}}},
		)},
	}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), clients)
	result, err := svc.GetAggregatedSeries(context.Background(), 1, &dto.AnalyticsQueryDTO{StartDate: "2026-08-01", EndDate: "2026-08-31"})
	require.NoError(t, err)

	require.Len(t, result.Data, 2)
	assert.NotEmpty(t, result.Data[0].Error)
	assert.Empty(t, result.Data[0].Analytics)
	assert.Empty(t, result.Data[1].Error)
	require.Len(t, result.Data[1].Analytics, 1)
	assert.Equal(t, "2026-08-01", result.Period.From)
	assert.Equal(t, "2026-08-31", result.Period.To)
}

func TestAuthRefreshHappyPath(t *testing.T) {
	cipher := testCipher(t)
	integration := socialIntegration(cipher, t, 1, "twitter", "expired-token", "refresh-token")
	integrationRepo := newFakeIntegrationRepo(integration)

	client := &fakeClient{
		id: "twitter",
		analyticsFn: func(accessToken string, _ int) ([]platform.MetricSeries, error) {
			if accessToken != "fresh-token" {
				return nil, &platform.APIError{Provider: "twitter", StatusCode: 401, Message: "expired"}
			}
			return []platform.MetricSeries{
				{Label: "Impressions", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 42}}},
			}, nil
		},
		refreshFn: func(refreshToken string) (*platform.TokenPair, error) {
			if refreshToken != "refresh-token" {
				return nil, errors.New("bad refresh token")
			}
			return &platform.TokenPair{AccessToken: "fresh-token", RefreshToken: "rotated-refresh", ExpiresIn: 3600}, nil
		},
	}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), map[string]platform.Client{"twitter": client})
	summary, err := svc.GetSummary(context.Background(), 1, "2026-08-01", "2026-08-31")
	require.NoError(t, err)

	// 重试成功后结果计入聚合
	assert.Equal(t, 42.0, summary.TotalImpressions)
	assert.Equal(t, 2, client.analyticsCalls())

	// 轮换后的令牌已加密落库，refresh_needed 清除
	update, ok := integrationRepo.tokenUpdates[1]
	require.True(t, ok)
	newAccess, err := cipher.Decrypt(update[0])
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", newAccess)
	newRefresh, err := cipher.Decrypt(update[1])
	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh", newRefresh)
	assert.False(t, integrationRepo.refreshNeeded[1])
}

func TestAuthRefreshFailureMarksIntegration(t *testing.T) {
	cipher := testCipher(t)
	integration := socialIntegration(cipher, t, 1, "twitter", "expired-token", "refresh-token")
	integrationRepo := newFakeIntegrationRepo(integration)

	client := &fakeClient{
		id: "twitter",
		analyticsFn: func(string, int) ([]platform.MetricSeries, error) {
			return nil, &platform.APIError{Provider: "twitter", StatusCode: 401, Message: "expired"}
		},
		refreshFn: func(string) (*platform.TokenPair, error) {
			return nil, errors.New("refresh endpoint down")
		},
	}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), map[string]platform.Client{"twitter": client})
	summary, err := svc.GetSummary(context.Background(), 1, "2026-08-01", "2026-08-31")
	require.NoError(t, err)

	assert.Equal(t, 0.0, summary.TotalImpressions)
	assert.True(t, integrationRepo.refreshNeeded[1])
	assert.Equal(t, 1, client.analyticsCalls()) // 刷新失败不重试
	_, updated := integrationRepo.tokenUpdates[1]
	assert.False(t, updated)
}

func TestAuthFailureWithoutRefreshTokenDoesNotRetry(t *testing.T) {
	cipher := testCipher(t)
	integration := socialIntegration(cipher, t, 1, "twitter", "expired-token", "")
	integrationRepo := newFakeIntegrationRepo(integration)

	client := &fakeClient{
		id: "twitter",
		analyticsFn: func(string, int) ([]platform.MetricSeries, error) {
			return nil, &platform.APIError{Provider: "twitter", StatusCode: 401, Message: "expired"}
		},
	}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), map[string]platform.Client{"twitter": client})
	_, err := svc.GetSummary(context.Background(), 1, "2026-08-01", "2026-08-31")
	require.NoError(t, err)

	assert.Equal(t, 1, client.analyticsCalls())
	assert.Equal(t, 0, client.refreshCall)
}

func TestRefreshNeededIntegrationIsSkipped(t *testing.T) {
	cipher := testCipher(t)
	integration := socialIntegration(cipher, t, 1, "twitter", "tok", "refresh")
	integration.RefreshNeeded = true
	integrationRepo := newFakeIntegrationRepo(integration)

	client := &fakeClient{id: "twitter", analyticsFn: staticSeries()}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), map[string]platform.Client{"twitter": client})
	result, err := svc.GetAggregatedSeries(context.Background(), 1, &dto.AnalyticsQueryDTO{})
	require.NoError(t, err)

	assert.Equal(t, 0, client.analyticsCalls())
	require.Len(t, result.Data, 1)
	assert.NotEmpty(t, result.Data[0].Error)
}

func TestMetricFilterAppliedAfterFetch(t *testing.T) {
	cipher := testCipher(t)
	integration := socialIntegration(cipher, t, 1, "twitter", "tok", "")
	integrationRepo := newFakeIntegrationRepo(integration)

	client := &fakeClient{id: "twitter", analyticsFn: staticSeries(
		platform.MetricSeries{Label: "Impressions", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 1}}},
		platform.MetricSeries{Label: "Likes", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 2}}},
		platform.MetricSeries{Label: "Follower gains", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 3}}},
	)}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), map[string]platform.Client{"twitter": client})
	result, err := svc.GetAggregatedSeries(context.Background(), 1, &dto.AnalyticsQueryDTO{
		StartDate: "2026-08-01", EndDate: "2026-08-31",
		Metrics: []string{"impressions"},
	})
	require.NoError(t, err)

	require.Len(t, result.Data, 1)
	require.Len(t, result.Data[0].Analytics, 1)
	assert.Equal(t, "Impressions", result.Data[0].Analytics[0].Label)
}

func TestPlatformFilterAppliedBeforeFetch(t *testing.T) {
	cipher := testCipher(t)
	twitter := socialIntegration(cipher, t, 1, "twitter", "tok-tw", "")
	facebook := socialIntegration(cipher, t, 2, "facebook", "tok-fb", "")
	integrationRepo := newFakeIntegrationRepo(twitter, facebook)

	twClient := &fakeClient{id: "twitter", analyticsFn: staticSeries(
		platform.MetricSeries{Label: "Impressions", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 1}}},
	)}
	fbClient := &fakeClient{id: "facebook", analyticsFn: staticSeries()}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(),
		map[string]platform.Client{"twitter": twClient, "facebook": fbClient})
	result, err := svc.GetAggregatedSeries(context.Background(), 1, &dto.AnalyticsQueryDTO{
		StartDate: "2026-08-01", EndDate: "2026-08-31",
		Platforms: []string{"twitter"},
	})
	require.NoError(t, err)

	require.Len(t, result.Data, 1)
	assert.Equal(t, "twitter", result.Data[0].Integration.Provider)
	assert.Equal(t, 0, fbClient.analyticsCalls())
}

func TestCacheHitSkipsPlatformCalls(t *testing.T) {
	cipher := testCipher(t)
	integration := socialIntegration(cipher, t, 1, "twitter", "tok", "")
	integrationRepo := newFakeIntegrationRepo(integration)

	client := &fakeClient{id: "twitter", analyticsFn: staticSeries(
		platform.MetricSeries{Label: "Impressions", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 9}}},
	)}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), map[string]platform.Client{"twitter": client})

	first, err := svc.GetSummary(context.Background(), 1, "2026-08-01", "2026-08-31")
	require.NoError(t, err)
	second, err := svc.GetSummary(context.Background(), 1, "2026-08-01", "2026-08-31")
	require.NoError(t, err)

	assert.Equal(t, 1, client.analyticsCalls())
	assert.Equal(t, first, second)
}

func TestGetSummaryDeterministic(t *testing.T) {
	cipher := testCipher(t)
	series := staticSeries(
		platform.MetricSeries{Label: "Impressions", Points: []platform.MetricPoint{
			{Date: "2026-08-10", Total: 10}, {Date: "2026-08-12", Total: 20},
		}},
		platform.MetricSeries{Label: "Likes", Points: []platform.MetricPoint{{Date: "2026-08-12", Total: 4}}},
	)

	run := func() *dto.AggregatedMetricsDTO {
		integrationRepo := newFakeIntegrationRepo(
			socialIntegration(cipher, t, 1, "twitter", "tok1", ""),
			socialIntegration(cipher, t, 2, "linkedin", "tok2", ""),
		)
		clients := map[string]platform.Client{
			"twitter":  &fakeClient{id: "twitter", analyticsFn: series},
			"linkedin": &fakeClient{id: "linkedin", analyticsFn: series},
		}
		svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), clients)
		summary, err := svc.GetSummary(context.Background(), 1, "2026-08-01", "2026-08-31")
		require.NoError(t, err)
		return summary
	}

	assert.Equal(t, run(), run())
}

func TestExportCSVShape(t *testing.T) {
	cipher := testCipher(t)
	integration := socialIntegration(cipher, t, 1, "twitter", "tok", "")
	integrationRepo := newFakeIntegrationRepo(integration)

	client := &fakeClient{id: "twitter", analyticsFn: staticSeries(
		platform.MetricSeries{Label: "Impressions", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 200}}},
		platform.MetricSeries{Label: "Likes", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 25}}},
	)}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), map[string]platform.Client{"twitter": client})
	csv, err := svc.ExportCSV(context.Background(), 1, "2026-08-01", "2026-08-31")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "Date,Platform,Posts,Impressions,Engagements,Engagement Rate", lines[0])
	assert.Equal(t, "2026-08-10,All Platforms,0,200,25,12.50%", lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "Platform,Account,Posts,Impressions,Engagements,Engagement Rate", lines[3])
	assert.Equal(t, "twitter,twitter account,0,200,25,12.50%", lines[4])
}

func TestBestTimesToPost(t *testing.T) {
	integrationRepo := newFakeIntegrationRepo()

	at := func(day int, hour int) *time.Time {
		// 2026-08-02 是周日，day 偏移得到目标星期
		t := time.Date(2026, 8, 2+day, hour, 30, 0, 0, time.UTC)
		return &t
	}

	posts := []*model.Post{
		// 周一 9 点，3 个样本，平均互动率 (10+20+30)/3 = 20
		{ID: 1, PublishedAt: at(1, 9), Impressions: 100, Engagements: 10},
		{ID: 2, PublishedAt: at(1, 9), Impressions: 100, Engagements: 20},
		{ID: 3, PublishedAt: at(1, 9), Impressions: 100, Engagements: 30},
		// 周二 18 点，只有 2 个样本，低于下限被过滤
		{ID: 4, PublishedAt: at(2, 18), Impressions: 100, Engagements: 90},
		{ID: 5, PublishedAt: at(2, 18), Impressions: 100, Engagements: 90},
		// 周三 12 点，3 个样本但其中一个无曝光数据被跳过，剩 2 个不够
		{ID: 6, PublishedAt: at(3, 12), Impressions: 0, Engagements: 50},
		{ID: 7, PublishedAt: at(3, 12), Impressions: 100, Engagements: 50},
		{ID: 8, PublishedAt: at(3, 12), Impressions: 100, Engagements: 50},
	}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{published: posts}, newMemoryCache(), nil)
	best, err := svc.GetBestTimesToPost(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, best, 1)
	assert.Equal(t, 1, best[0].DayOfWeek) // 周一
	assert.Equal(t, 9, best[0].Hour)
	assert.InDelta(t, 20.0, best[0].AverageEngagementRate, 1e-9)
	assert.Equal(t, 3, best[0].SampleSize)
}

func TestBestTimesRankedDescending(t *testing.T) {
	at := func(day int, hour int) *time.Time {
		t := time.Date(2026, 8, 2+day, hour, 0, 0, 0, time.UTC)
		return &t
	}

	posts := make([]*model.Post, 0)
	// 周一 9 点：率 10；周五 20 点：率 40
	for i := 0; i < 3; i++ {
		posts = append(posts, &model.Post{PublishedAt: at(1, 9), Impressions: 100, Engagements: 10})
		posts = append(posts, &model.Post{PublishedAt: at(5, 20), Impressions: 100, Engagements: 40})
	}

	svc, _ := newTestService(t, newFakeIntegrationRepo(), &fakePostRepo{published: posts}, newMemoryCache(), nil)
	best, err := svc.GetBestTimesToPost(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, best, 2)
	assert.Equal(t, 5, best[0].DayOfWeek)
	assert.Equal(t, 20, best[0].Hour)
	assert.Equal(t, 1, best[1].DayOfWeek)
}

func TestAudienceGrowthDeltas(t *testing.T) {
	cipher := testCipher(t)
	integration := socialIntegration(cipher, t, 1, "youtube", "tok", "")
	integrationRepo := newFakeIntegrationRepo(integration)

	client := &fakeClient{id: "youtube", analyticsFn: staticSeries(
		platform.MetricSeries{Label: "Views", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 1}}},
		platform.MetricSeries{Label: "Subscribers gained", Points: []platform.MetricPoint{
			{Date: "2026-08-10", Total: 1000},
			{Date: "2026-08-11", Total: 1040},
			{Date: "2026-08-12", Total: 1030},
		}},
	)}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), map[string]platform.Client{"youtube": client})
	growth, err := svc.GetAudienceGrowth(context.Background(), 1, "2026-08-01", "2026-08-31")
	require.NoError(t, err)

	require.Len(t, growth, 1)
	require.Len(t, growth[0].Data, 3)
	assert.Equal(t, 0.0, growth[0].Data[0].Growth)
	assert.Equal(t, 40.0, growth[0].Data[1].Growth)
	assert.Equal(t, -10.0, growth[0].Data[2].Growth)
}

func TestAudienceGrowthIsolatesFailures(t *testing.T) {
	cipher := testCipher(t)
	broken := socialIntegration(cipher, t, 1, "facebook", "tok", "")
	integrationRepo := newFakeIntegrationRepo(broken)

	client := &fakeClient{id: "facebook", analyticsFn: func(string, int) ([]platform.MetricSeries, error) {
		return nil, errors.New("boom")
	}}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), map[string]platform.Client{"facebook": client})
	growth, err := svc.GetAudienceGrowth(context.Background(), 1, "", "")
	require.NoError(t, err)

	require.Len(t, growth, 1)
	assert.NotEmpty(t, growth[0].Error)
	assert.Empty(t, growth[0].Data)
}

func TestResolvePeriodValidation(t *testing.T) {
	_, err := resolvePeriod("not-a-date", "2026-08-31")
	assert.ErrorIs(t, err, ErrParamInvalid)

	_, err = resolvePeriod("2026-08-31", "2026-08-01")
	assert.ErrorIs(t, err, ErrParamInvalid)

	period, err := resolvePeriod("", "")
	require.NoError(t, err)
	assert.Equal(t, 30, period.Days)

	period, err = resolvePeriod("2026-08-01", "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, 31, period.Days)
	assert.Equal(t, "2026-08-01", period.FromStr())
	assert.Equal(t, "2026-08-31", period.ToStr())
}

func TestClearCache(t *testing.T) {
	cipher := testCipher(t)
	integration := socialIntegration(cipher, t, 1, "twitter", "tok", "")
	integrationRepo := newFakeIntegrationRepo(integration)

	client := &fakeClient{id: "twitter", analyticsFn: staticSeries(
		platform.MetricSeries{Label: "Impressions", Points: []platform.MetricPoint{{Date: "2026-08-10", Total: 1}}},
	)}

	svc, _ := newTestService(t, integrationRepo, &fakePostRepo{}, newMemoryCache(), map[string]platform.Client{"twitter": client})

	_, err := svc.GetSummary(context.Background(), 1, "2026-08-01", "2026-08-31")
	require.NoError(t, err)
	require.NoError(t, svc.ClearCache(context.Background()))

	_, err = svc.GetSummary(context.Background(), 1, "2026-08-01", "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, 2, client.analyticsCalls())
}

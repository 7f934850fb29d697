package platform

import (
	"Postline/internal/api/config"
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

type linkedinClient struct {
	cfg  config.PlatformAPIConfig
	rest *resty.Client
}

func newLinkedInClient(cfg config.PlatformAPIConfig) Client {
	return &linkedinClient{cfg: cfg, rest: newRestClient(cfg.BaseURL)}
}

func (s *linkedinClient) Identifier() string {
	return ProviderLinkedIn
}

type linkedinStatsResp struct {
	Elements []struct {
		TimeRange struct {
			Start int64 `json:"start"`
		} `json:"timeRange"`
		TotalShareStatistics struct {
			ImpressionCount int64 `json:"impressionCount"`
			LikeCount       int64 `json:"likeCount"`
			CommentCount    int64 `json:"commentCount"`
			ShareCount      int64 `json:"shareCount"`
		} `json:"totalShareStatistics"`
		FollowerGains struct {
			OrganicFollowerGain int64 `json:"organicFollowerGain"`
		} `json:"followerGains"`
	} `json:"elements"`
}

func (s *linkedinClient) Analytics(ctx context.Context, accountID string, accessToken string, windowDays int) ([]MetricSeries, error) {
	var body linkedinStatsResp
	resp, err := s.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"q":                  "organizationalEntity",
			"organizationalEntity": "urn:li:organization:" + accountID,
			"timeGranularity":    "DAY",
			"days":               strconv.Itoa(windowDays),
		}).
		SetResult(&body).
		Get("/v2/organizationalEntityShareStatistics")
	if err != nil {
		return nil, errors.Wrap(err, "linkedin statistics request")
	}
	if resp.IsError() {
		return nil, apiErrorFrom(ProviderLinkedIn, resp)
	}

	impressions := MetricSeries{Label: "Impressions"}
	engagements := MetricSeries{Label: "Engagements"}
	followers := MetricSeries{Label: "Follower gains"}

	for _, e := range body.Elements {
		date := time.UnixMilli(e.TimeRange.Start).UTC().Format("2006-01-02")
		stats := e.TotalShareStatistics
		impressions.Points = append(impressions.Points, MetricPoint{Date: date, Total: float64(stats.ImpressionCount)})
		engagements.Points = append(engagements.Points, MetricPoint{
			Date:  date,
			Total: float64(stats.LikeCount + stats.CommentCount + stats.ShareCount),
		})
		followers.Points = append(followers.Points, MetricPoint{Date: date, Total: float64(e.FollowerGains.OrganicFollowerGain)})
	}

	return []MetricSeries{impressions, engagements, followers}, nil
}

func (s *linkedinClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	resp, err := s.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
			"client_id":     s.cfg.ClientID,
			"client_secret": s.cfg.ClientSecret,
		}).
		SetResult(&pair).
		Post("/oauth/v2/accessToken")
	if err != nil {
		return nil, errors.Wrap(err, "linkedin token refresh request")
	}
	if resp.IsError() {
		return nil, apiErrorFrom(ProviderLinkedIn, resp)
	}
	return &pair, nil
}

func (s *linkedinClient) Publish(ctx context.Context, accountID string, accessToken string, content string, mediaURLs []string) (string, error) {
	payload := map[string]interface{}{
		"author":         "urn:li:organization:" + accountID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary":    map[string]string{"text": content},
				"shareMediaCategory": "NONE",
			},
		},
	}

	var body struct {
		ID string `json:"id"`
	}
	resp, err := s.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(payload).
		SetResult(&body).
		Post("/v2/ugcPosts")
	if err != nil {
		return "", errors.Wrap(err, "linkedin publish request")
	}
	if resp.IsError() {
		return "", apiErrorFrom(ProviderLinkedIn, resp)
	}
	return body.ID, nil
}

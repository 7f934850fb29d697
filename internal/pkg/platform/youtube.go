package platform

import (
	"Postline/internal/api/config"
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

type youtubeClient struct {
	cfg  config.PlatformAPIConfig
	rest *resty.Client
}

func newYouTubeClient(cfg config.PlatformAPIConfig) Client {
	return &youtubeClient{cfg: cfg, rest: newRestClient(cfg.BaseURL)}
}

func (s *youtubeClient) Identifier() string {
	return ProviderYouTube
}

type youtubeAnalyticsResp struct {
	Rows [][]float64 `json:"rows"`
	ColumnHeaders []struct {
		Name string `json:"name"`
	} `json:"columnHeaders"`
}

func (s *youtubeClient) Analytics(ctx context.Context, accountID string, accessToken string, windowDays int) ([]MetricSeries, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -windowDays)

	var body youtubeAnalyticsResp
	resp, err := s.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"ids":        "channel==" + accountID,
			"metrics":    "views,likes,comments,shares,subscribersGained",
			"dimensions": "day",
			"startDate":  start.Format("2006-01-02"),
			"endDate":    end.Format("2006-01-02"),
		}).
		SetResult(&body).
		Get("/v2/reports")
	if err != nil {
		return nil, errors.Wrap(err, "youtube analytics request")
	}
	if resp.IsError() {
		return nil, apiErrorFrom(ProviderYouTube, resp)
	}

	views := MetricSeries{Label: "Views"}
	likes := MetricSeries{Label: "Likes"}
	comments := MetricSeries{Label: "Comments"}
	shares := MetricSeries{Label: "Shares"}
	subscribers := MetricSeries{Label: "Subscribers gained"}

	// rows 形如 [dayOrdinal, views, likes, comments, shares, subscribersGained]
	// day 维度由响应顺序保证，与 startDate 对齐
	for i, row := range body.Rows {
		if len(row) < 6 {
			continue
		}
		date := start.AddDate(0, 0, i+1).Format("2006-01-02")
		views.Points = append(views.Points, MetricPoint{Date: date, Total: row[1]})
		likes.Points = append(likes.Points, MetricPoint{Date: date, Total: row[2]})
		comments.Points = append(comments.Points, MetricPoint{Date: date, Total: row[3]})
		shares.Points = append(shares.Points, MetricPoint{Date: date, Total: row[4]})
		subscribers.Points = append(subscribers.Points, MetricPoint{Date: date, Total: row[5]})
	}

	return []MetricSeries{views, likes, comments, shares, subscribers}, nil
}

func (s *youtubeClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
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
		Post("/oauth2/v4/token")
	if err != nil {
		return nil, errors.Wrap(err, "youtube token refresh request")
	}
	if resp.IsError() {
		return nil, apiErrorFrom(ProviderYouTube, resp)
	}
	// Google 的刷新令牌长期有效且不轮换
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	return &pair, nil
}

func (s *youtubeClient) Publish(ctx context.Context, accountID string, accessToken string, content string, mediaURLs []string) (string, error) {
	if len(mediaURLs) == 0 {
		return "", errors.New("youtube publish requires a video url")
	}

	payload := map[string]interface{}{
		"snippet": map[string]interface{}{
			"channelId":   accountID,
			"description": content,
		},
		"status": map[string]string{"privacyStatus": "public"},
		"media":  map[string]string{"source_url": mediaURLs[0]},
	}

	var body struct {
		ID string `json:"id"`
	}
	resp, err := s.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(payload).
		SetResult(&body).
		Post("/upload/youtube/v3/videos")
	if err != nil {
		return "", errors.Wrap(err, "youtube publish request")
	}
	if resp.IsError() {
		return "", apiErrorFrom(ProviderYouTube, resp)
	}
	return body.ID, nil
}

package platform

import (
	"Postline/internal/api/config"
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

type twitterClient struct {
	cfg  config.PlatformAPIConfig
	rest *resty.Client
}

func newTwitterClient(cfg config.PlatformAPIConfig) Client {
	return &twitterClient{cfg: cfg, rest: newRestClient(cfg.BaseURL)}
}

func (s *twitterClient) Identifier() string {
	return ProviderTwitter
}

type twitterMetricsResp struct {
	Data []struct {
		Date        string `json:"date"`
		Impressions int64  `json:"impression_count"`
		Likes       int64  `json:"like_count"`
		Retweets    int64  `json:"retweet_count"`
		Replies     int64  `json:"reply_count"`
		Followers   int64  `json:"followers_count"`
	} `json:"data"`
}

func (s *twitterClient) Analytics(ctx context.Context, accountID string, accessToken string, windowDays int) ([]MetricSeries, error) {
	var body twitterMetricsResp
	resp, err := s.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetPathParam("id", accountID).
		SetQueryParam("days", strconv.Itoa(windowDays)).
		SetResult(&body).
		Get("/2/users/{id}/metrics")
	if err != nil {
		return nil, errors.Wrap(err, "twitter analytics request")
	}
	if resp.IsError() {
		return nil, apiErrorFrom(ProviderTwitter, resp)
	}

	impressions := MetricSeries{Label: "Impressions"}
	likes := MetricSeries{Label: "Likes"}
	retweets := MetricSeries{Label: "Retweets"}
	replies := MetricSeries{Label: "Replies"}
	followers := MetricSeries{Label: "Followers"}

	for _, d := range body.Data {
		impressions.Points = append(impressions.Points, MetricPoint{Date: d.Date, Total: float64(d.Impressions)})
		likes.Points = append(likes.Points, MetricPoint{Date: d.Date, Total: float64(d.Likes)})
		retweets.Points = append(retweets.Points, MetricPoint{Date: d.Date, Total: float64(d.Retweets)})
		replies.Points = append(replies.Points, MetricPoint{Date: d.Date, Total: float64(d.Replies)})
		followers.Points = append(followers.Points, MetricPoint{Date: d.Date, Total: float64(d.Followers)})
	}

	return []MetricSeries{impressions, likes, retweets, replies, followers}, nil
}

func (s *twitterClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	resp, err := s.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
			"client_id":     s.cfg.ClientID,
		}).
		SetResult(&pair).
		Post("/2/oauth2/token")
	if err != nil {
		return nil, errors.Wrap(err, "twitter token refresh request")
	}
	if resp.IsError() {
		return nil, apiErrorFrom(ProviderTwitter, resp)
	}
	return &pair, nil
}

func (s *twitterClient) Publish(ctx context.Context, accountID string, accessToken string, content string, mediaURLs []string) (string, error) {
	payload := map[string]interface{}{"text": content}
	if len(mediaURLs) > 0 {
		payload["media"] = map[string]interface{}{"media_urls": mediaURLs}
	}

	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	resp, err := s.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(payload).
		SetResult(&body).
		Post("/2/tweets")
	if err != nil {
		return "", errors.Wrap(err, "twitter publish request")
	}
	if resp.IsError() {
		return "", apiErrorFrom(ProviderTwitter, resp)
	}
	return body.Data.ID, nil
}

package platform

import (
	"Postline/internal/api/config"
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

type facebookClient struct {
	cfg  config.PlatformAPIConfig
	rest *resty.Client
}

func newFacebookClient(cfg config.PlatformAPIConfig) Client {
	return &facebookClient{cfg: cfg, rest: newRestClient(cfg.BaseURL)}
}

func (s *facebookClient) Identifier() string {
	return ProviderFacebook
}

// Graph API insights 响应：每个 metric 一组按天的 values
type facebookInsightsResp struct {
	Data []struct {
		Name   string `json:"name"`
		Title  string `json:"title"`
		Values []struct {
			Value   float64 `json:"value"`
			EndTime string  `json:"end_time"`
		} `json:"values"`
	} `json:"data"`
}

func (s *facebookClient) Analytics(ctx context.Context, accountID string, accessToken string, windowDays int) ([]MetricSeries, error) {
	var body facebookInsightsResp
	resp, err := s.rest.R().
		SetContext(ctx).
		SetPathParam("id", accountID).
		SetQueryParams(map[string]string{
			"metric":       "page_impressions,page_post_engagements,page_fans",
			"period":       "day",
			"since":        fmt.Sprintf("-%dd", windowDays),
			"access_token": accessToken,
		}).
		SetResult(&body).
		Get("/{id}/insights")
	if err != nil {
		return nil, errors.Wrap(err, "facebook insights request")
	}
	if resp.IsError() {
		return nil, apiErrorFrom(ProviderFacebook, resp)
	}

	series := make([]MetricSeries, 0, len(body.Data))
	for _, metric := range body.Data {
		label := metric.Title
		if label == "" {
			label = metric.Name
		}
		one := MetricSeries{Label: label}
		for _, v := range metric.Values {
			// end_time 形如 2026-08-30T07:00:00+0000，只保留日期部分
			date := v.EndTime
			if idx := strings.IndexByte(date, 'T'); idx > 0 {
				date = date[:idx]
			}
			one.Points = append(one.Points, MetricPoint{Date: date, Total: v.Value})
		}
		series = append(series, one)
	}
	return series, nil
}

func (s *facebookClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":        "fb_exchange_token",
			"client_id":         s.cfg.ClientID,
			"client_secret":     s.cfg.ClientSecret,
			"fb_exchange_token": refreshToken,
		}).
		SetResult(&pair).
		Get("/oauth/access_token")
	if err != nil {
		return nil, errors.Wrap(err, "facebook token refresh request")
	}
	if resp.IsError() {
		return nil, apiErrorFrom(ProviderFacebook, resp)
	}
	// Graph API 不轮换长期令牌，沿用原刷新令牌
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	return &pair, nil
}

func (s *facebookClient) Publish(ctx context.Context, accountID string, accessToken string, content string, mediaURLs []string) (string, error) {
	form := map[string]string{
		"message":      content,
		"access_token": accessToken,
	}
	if len(mediaURLs) > 0 {
		form["url"] = mediaURLs[0]
	}

	var body struct {
		ID string `json:"id"`
	}
	resp, err := s.rest.R().
		SetContext(ctx).
		SetPathParam("id", accountID).
		SetFormData(form).
		SetResult(&body).
		Post("/{id}/feed")
	if err != nil {
		return "", errors.Wrap(err, "facebook publish request")
	}
	if resp.IsError() {
		return "", apiErrorFrom(ProviderFacebook, resp)
	}
	return body.ID, nil
}

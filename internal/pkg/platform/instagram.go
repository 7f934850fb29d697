package platform

import (
	"Postline/internal/api/config"
	"context"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

type instagramClient struct {
	cfg  config.PlatformAPIConfig
	rest *resty.Client
}

func newInstagramClient(cfg config.PlatformAPIConfig) Client {
	return &instagramClient{cfg: cfg, rest: newRestClient(cfg.BaseURL)}
}

func (s *instagramClient) Identifier() string {
	return ProviderInstagram
}

type instagramInsightsResp struct {
	Data []struct {
		Name   string `json:"name"`
		Title  string `json:"title"`
		Values []struct {
			Value   float64 `json:"value"`
			EndTime string  `json:"end_time"`
		} `json:"values"`
	} `json:"data"`
}

func (s *instagramClient) Analytics(ctx context.Context, accountID string, accessToken string, windowDays int) ([]MetricSeries, error) {
	var body instagramInsightsResp
	resp, err := s.rest.R().
		SetContext(ctx).
		SetPathParam("id", accountID).
		SetQueryParams(map[string]string{
			"metric":       "impressions,reach,likes,comments,follower_count",
			"period":       "day",
			"days":         strconv.Itoa(windowDays),
			"access_token": accessToken,
		}).
		SetResult(&body).
		Get("/{id}/insights")
	if err != nil {
		return nil, errors.Wrap(err, "instagram insights request")
	}
	if resp.IsError() {
		return nil, apiErrorFrom(ProviderInstagram, resp)
	}

	series := make([]MetricSeries, 0, len(body.Data))
	for _, metric := range body.Data {
		label := metric.Title
		if label == "" {
			label = metric.Name
		}
		one := MetricSeries{Label: label}
		for _, v := range metric.Values {
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

func (s *instagramClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":   "ig_refresh_token",
			"access_token": refreshToken,
		}).
		SetResult(&pair).
		Get("/refresh_access_token")
	if err != nil {
		return nil, errors.Wrap(err, "instagram token refresh request")
	}
	if resp.IsError() {
		return nil, apiErrorFrom(ProviderInstagram, resp)
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = pair.AccessToken
	}
	return &pair, nil
}

func (s *instagramClient) Publish(ctx context.Context, accountID string, accessToken string, content string, mediaURLs []string) (string, error) {
	form := map[string]string{
		"caption":      content,
		"access_token": accessToken,
	}
	if len(mediaURLs) > 0 {
		form["image_url"] = mediaURLs[0]
	}

	var container struct {
		ID string `json:"id"`
	}
	resp, err := s.rest.R().
		SetContext(ctx).
		SetPathParam("id", accountID).
		SetFormData(form).
		SetResult(&container).
		Post("/{id}/media")
	if err != nil {
		return "", errors.Wrap(err, "instagram media container request")
	}
	if resp.IsError() {
		return "", apiErrorFrom(ProviderInstagram, resp)
	}

	var published struct {
		ID string `json:"id"`
	}
	resp, err = s.rest.R().
		SetContext(ctx).
		SetPathParam("id", accountID).
		SetFormData(map[string]string{
			"creation_id":  container.ID,
			"access_token": accessToken,
		}).
		SetResult(&published).
		Post("/{id}/media_publish")
	if err != nil {
		return "", errors.Wrap(err, "instagram media publish request")
	}
	if resp.IsError() {
		return "", apiErrorFrom(ProviderInstagram, resp)
	}
	return published.ID, nil
}

package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderTwitter   = "twitter"
	ProviderFacebook  = "facebook"
	ProviderInstagram = "instagram"
	ProviderLinkedIn  = "linkedin"
	ProviderYouTube   = "youtube"

	ProviderGoogleDrive = "google-drive"
	ProviderDropbox     = "dropbox"
)

// MetricPoint 单日指标
type MetricPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// MetricSeries 平台返回的一条命名指标序列
// Label 为平台自由文本，归类交给 MetricNormalizer
type MetricSeries struct {
	Label   string        `json:"label"`
	Points  []MetricPoint `json:"points"`
	Average bool          `json:"average,omitempty"`
}

// TokenPair 刷新令牌的返回结果
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Client 单个社交平台的 API 封装
type Client interface {
	Identifier() string
	Analytics(ctx context.Context, accountID string, accessToken string, windowDays int) ([]MetricSeries, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Publish(ctx context.Context, accountID string, accessToken string, content string, mediaURLs []string) (string, error)
}

// APIError 平台接口的非 2xx 响应
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsAuthError 判断错误是否为凭据失效
// 平台返回 401 或错误信息包含 "Invalid Credentials" 时成立
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
		return true
	}
	return strings.Contains(err.Error(), "Invalid Credentials")
}

// IsSocialProvider 判断 identifier 是否为已知社交平台
func IsSocialProvider(identifier string) bool {
	switch identifier {
	case ProviderTwitter, ProviderFacebook, ProviderInstagram, ProviderLinkedIn, ProviderYouTube:
		return true
	}
	return false
}

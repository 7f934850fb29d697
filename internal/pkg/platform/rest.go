package platform

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// newRestClient 各平台共用的 resty 客户端配置
func newRestClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
}

// apiErrorFrom 将非 2xx 响应转换为 *APIError
func apiErrorFrom(provider string, resp *resty.Response) error {
	return &APIError{
		Provider:   provider,
		StatusCode: resp.StatusCode(),
		Message:    string(resp.Body()),
	}
}

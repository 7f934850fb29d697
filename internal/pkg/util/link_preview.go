package util

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// LinkPreview 帖子编辑器里的链接卡片
type LinkPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

var previewClient = resty.New().
	SetTimeout(8 * time.Second).
	SetHeader("User-Agent", "Postline-LinkPreview/1.0")

// FetchLinkPreview 抓取目标页面的 OpenGraph 元信息
func FetchLinkPreview(ctx context.Context, rawURL string) (*LinkPreview, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, fmt.Errorf("unsupported url scheme: %s", rawURL)
	}

	resp, err := previewClient.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch url returned status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	preview := &LinkPreview{URL: rawURL}

	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		prop, _ := sel.Attr("property")
		content, _ := sel.Attr("content")
		switch prop {
		case "og:title":
			preview.Title = content
		case "og:description":
			preview.Description = content
		case "og:image":
			preview.Image = content
		}
	})

	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	return preview, nil
}

package service

import "strings"

// MetricBucket 平台指标的归类桶
type MetricBucket string

const (
	BucketImpressions  MetricBucket = "impressions"
	BucketEngagement   MetricBucket = "engagement"
	BucketFollowers    MetricBucket = "followers"
	BucketUnclassified MetricBucket = "unclassified"
)

// impressionKeywords 的优先级高于 engagementKeywords
// "video view engagement" 这类同时命中两组关键词的标签归入 Impressions
var (
	impressionKeywords = []string{"impression", "view"}
	engagementKeywords = []string{"engagement", "like", "comment", "share", "retweet"}
	followerKeywords   = []string{"follower", "fan", "subscriber"}
)

// ClassifyMetricLabel 按关键词把平台返回的自由文本指标标签归类
// 匹配不区分大小写，按 Impressions、Engagement、Followers 的顺序取第一个命中
func ClassifyMetricLabel(label string) MetricBucket {
	lowered := strings.ToLower(label)
	for _, kw := range impressionKeywords {
		if strings.Contains(lowered, kw) {
			return BucketImpressions
		}
	}
	for _, kw := range engagementKeywords {
		if strings.Contains(lowered, kw) {
			return BucketEngagement
		}
	}
	for _, kw := range followerKeywords {
		if strings.Contains(lowered, kw) {
			return BucketFollowers
		}
	}
	return BucketUnclassified
}

// NormalizeMetricName 指标名过滤用的规范化形式，小写且去掉空格
func NormalizeMetricName(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "")
}

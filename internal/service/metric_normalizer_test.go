package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMetricLabel(t *testing.T) {
	cases := []struct {
		label    string
		expected MetricBucket
	}{
		{"Impressions", BucketImpressions},
		{"Page Views", BucketImpressions},
		{"video views", BucketImpressions},
		{"Likes", BucketEngagement},
		{"Comments", BucketEngagement},
		{"Shares", BucketEngagement},
		{"Retweets", BucketEngagement},
		{"Total Engagement", BucketEngagement},
		{"Followers", BucketFollowers},
		{"Fans", BucketFollowers},
		{"Subscribers gained", BucketFollowers},
		{"Follower gains", BucketFollowers},
		{"Clicks", BucketUnclassified},
		{"", BucketUnclassified},
		// 大小写不敏感
		{"IMPRESSIONS", BucketImpressions},
		{"liKes", BucketEngagement},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, ClassifyMetricLabel(tc.label), "label %q", tc.label)
	}
}

// 同时命中曝光与互动关键词的标签归入曝光桶，检查顺序固定
func TestClassifyMetricLabelTieBreak(t *testing.T) {
	assert.Equal(t, BucketImpressions, ClassifyMetricLabel("video view engagement"))
	assert.Equal(t, BucketImpressions, ClassifyMetricLabel("impression likes"))
	// follower 关键词在互动之后检查
	assert.Equal(t, BucketEngagement, ClassifyMetricLabel("follower likes"))
}

func TestNormalizeMetricName(t *testing.T) {
	assert.Equal(t, "impressions", NormalizeMetricName("Impressions"))
	assert.Equal(t, "subscribersgained", NormalizeMetricName("Subscribers Gained"))
	assert.Equal(t, "followergains", NormalizeMetricName("Follower gains"))
}

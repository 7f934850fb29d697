package service

import (
	"Postline/internal/pkg/consts"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCacheKeyListOrderInsensitive(t *testing.T) {
	a := BuildCacheKey(consts.AnalyticsAggregatedKey, 7, "2026-08-01", "2026-08-31",
		[]string{"twitter", "facebook"}, []string{"likes", "impressions"})
	b := BuildCacheKey(consts.AnalyticsAggregatedKey, 7, "2026-08-01", "2026-08-31",
		[]string{"facebook", "twitter"}, []string{"impressions", "likes"})
	assert.Equal(t, a, b)
}

func TestBuildCacheKeyDistinguishesInputs(t *testing.T) {
	base := BuildCacheKey(consts.AnalyticsAggregatedKey, 7, "2026-08-01", "2026-08-31", nil, nil)

	assert.NotEqual(t, base, BuildCacheKey(consts.AnalyticsAggregatedKey, 8, "2026-08-01", "2026-08-31", nil, nil))
	assert.NotEqual(t, base, BuildCacheKey(consts.AnalyticsAggregatedKey, 7, "2026-08-02", "2026-08-31", nil, nil))
	assert.NotEqual(t, base, BuildCacheKey(consts.AnalyticsAggregatedKey, 7, "2026-08-01", "2026-08-31", []string{"twitter"}, nil))
	assert.NotEqual(t, base, BuildCacheKey(consts.AnalyticsSummaryKey, 7, "2026-08-01", "2026-08-31", nil, nil))
}

func TestBuildCacheKeyDoesNotMutateInput(t *testing.T) {
	platforms := []string{"twitter", "facebook"}
	BuildCacheKey(consts.AnalyticsAggregatedKey, 7, "2026-08-01", "2026-08-31", platforms, nil)
	assert.Equal(t, []string{"twitter", "facebook"}, platforms)
}

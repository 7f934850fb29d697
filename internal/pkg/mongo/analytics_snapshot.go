package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalyticsSnapshot 单次平台拉取的原始指标快照
// 仅用于排查问题与离线回填，聚合计算始终走实时拉取
type AnalyticsSnapshot struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        uint64             `bson:"user_id"`
	IntegrationID uint64             `bson:"integration_id"`
	Provider      string             `bson:"provider"`
	AccountID     string             `bson:"account_id"`
	WindowDays    int                `bson:"window_days"`
	Series        []SnapshotSeries   `bson:"series"`
	FetchedAt     time.Time          `bson:"fetched_at"`
}

type SnapshotSeries struct {
	Label  string          `bson:"label"`
	Points []SnapshotPoint `bson:"points"`
}

type SnapshotPoint struct {
	Date  string  `bson:"date"`
	Total float64 `bson:"total"`
}

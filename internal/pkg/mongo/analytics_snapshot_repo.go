package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const snapshotCollection = "analytics_snapshots"

type AnalyticsSnapshotRepo interface {
	Insert(ctx context.Context, snapshot *AnalyticsSnapshot) error
}

type analyticsSnapshotRepoImpl struct {
	coll *mongo.Collection
}

func NewAnalyticsSnapshotRepo(db *mongo.Database) AnalyticsSnapshotRepo {
	return &analyticsSnapshotRepoImpl{coll: db.Collection(snapshotCollection)}
}

func (s *analyticsSnapshotRepoImpl) Insert(ctx context.Context, snapshot *AnalyticsSnapshot) error {
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now()
	}
	_, err := s.coll.InsertOne(ctx, snapshot)
	return err
}

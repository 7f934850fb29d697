package job

import (
	"Postline/internal/pkg/consts"
	"Postline/internal/pkg/logger"
	"Postline/internal/pkg/redis"
	"Postline/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const publishBatchSize = 50

// PublishPostJob 每分钟发布到期的排程帖子
// 多实例部署时由分布式锁保证同一时刻只有一个实例执行
type PublishPostJob struct {
	postService service.PostService
}

func NewPublishPostJob(postService service.PostService) *PublishPostJob {
	return &PublishPostJob{postService: postService}
}

func (s *PublishPostJob) Run() {
	traceID := "job-publish-" + uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), traceID)

	locked, err := redis.TryLock(ctx, consts.PostPublishLock, traceID, time.Minute, 1)
	if err != nil {
		log.ErrorContext(ctx, "acquire publish lock error", "err", err)
		return
	}
	if !locked {
		return
	}
	defer redis.UnLock(ctx, consts.PostPublishLock, traceID)

	published, err := s.postService.PublishDuePosts(ctx, publishBatchSize)
	if err != nil {
		log.ErrorContext(ctx, "publish due posts error", "err", err)
		return
	}
	if published > 0 {
		log.InfoContext(ctx, "PublishPostJob finished", "published_count", published)
	}
}

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

// tokenRefreshHorizon 提前刷新的窗口，过期前两小时内的令牌都会被刷新
const tokenRefreshHorizon = 2 * time.Hour

// TokenRefreshJob 每小时刷新标记待刷新或即将过期的集成令牌
type TokenRefreshJob struct {
	integrationService service.IntegrationService
}

func NewTokenRefreshJob(integrationService service.IntegrationService) *TokenRefreshJob {
	return &TokenRefreshJob{integrationService: integrationService}
}

func (s *TokenRefreshJob) Run() {
	traceID := "job-refresh-" + uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), traceID)

	locked, err := redis.TryLock(ctx, consts.TokenRefreshLock, traceID, 10*time.Minute, 1)
	if err != nil {
		log.ErrorContext(ctx, "acquire refresh lock error", "err", err)
		return
	}
	if !locked {
		return
	}
	defer redis.UnLock(ctx, consts.TokenRefreshLock, traceID)

	refreshed, err := s.integrationService.RefreshExpiring(ctx, tokenRefreshHorizon)
	if err != nil {
		log.ErrorContext(ctx, "token refresh sweep error", "err", err)
		return
	}
	log.InfoContext(ctx, "TokenRefreshJob finished", "refreshed_count", refreshed)
}

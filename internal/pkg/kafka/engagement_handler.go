package kafka

import (
	"Postline/internal/repository"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// EngagementEvent webhook 服务推送的单帖互动快照
// Impressions/Engagements 是平台侧的最新累计值，直接覆盖本地列
type EngagementEvent struct {
	PostID      uint64 `json:"post_id"`
	Provider    string `json:"provider"`
	Impressions int64  `json:"impressions"`
	Engagements int64  `json:"engagements"`
}

type EngagementHandler struct {
	postRepo repository.PostRepo
}

func NewEngagementHandler(postRepo repository.PostRepo) *EngagementHandler {
	return &EngagementHandler{postRepo: postRepo}
}

func (s *EngagementHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("engagement consumer setup")
	return nil
}

func (s *EngagementHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("engagement consumer cleanup")
	return nil
}

func (s *EngagementHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-engagement consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-engagement process batch error", "err", err)
		return err
	}
	return nil
}

func (s *EngagementHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var event EngagementEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// 格式非法的消息不可重试，记录后丢弃
		log.ErrorContext(ctx, "unmarshal engagement event error", "err", err)
		return nil
	}
	if event.PostID == 0 {
		return errors.New("engagement event missing post_id")
	}
	return s.postRepo.UpdateInsights(ctx, event.PostID, event.Impressions, event.Engagements)
}

package repository

import (
	"Postline/internal/model"
	"Postline/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type IntegrationRepo interface {
	CreateIntegration(ctx context.Context, integration *model.Integration) error
	GetIntegrationByID(ctx context.Context, userID uint64, integrationID uint64) (*model.Integration, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Integration, error)
	// ListSocialByUser 返回用户全部可用的社交集成（未删除、未禁用）
	ListSocialByUser(ctx context.Context, userID uint64) ([]*model.Integration, error)
	UpdateTokens(ctx context.Context, integrationID uint64, accessToken string, refreshToken string, expiresAt *time.Time) error
	SetRefreshNeeded(ctx context.Context, integrationID uint64, needed bool) error
	SoftDelete(ctx context.Context, userID uint64, integrationID uint64) error
	// ListRefreshCandidates 返回标记了 refresh_needed 或即将过期的社交集成
	ListRefreshCandidates(ctx context.Context, expiringBefore time.Time) ([]*model.Integration, error)
}

type integrationRepoImpl struct {
	db *gorm.DB
}

func NewIntegrationRepo(db *gorm.DB) IntegrationRepo {
	return &integrationRepoImpl{db: db}
}

func (s *integrationRepoImpl) CreateIntegration(ctx context.Context, integration *model.Integration) error {
	return s.db.WithContext(ctx).Create(integration).Error
}

func (s *integrationRepoImpl) GetIntegrationByID(ctx context.Context, userID uint64, integrationID uint64) (*model.Integration, error) {
	var integration model.Integration
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_deleted = 0", integrationID, userID).
		First(&integration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &integration, nil
}

func (s *integrationRepoImpl) ListByUser(ctx context.Context, userID uint64) ([]*model.Integration, error) {
	integrations := make([]*model.Integration, 0)
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = 0", userID).
		Order("id ASC").
		Find(&integrations)
	if result.Error != nil {
		return nil, result.Error
	}
	return integrations, nil
}

func (s *integrationRepoImpl) ListSocialByUser(ctx context.Context, userID uint64) ([]*model.Integration, error) {
	integrations := make([]*model.Integration, 0)
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND is_deleted = 0 AND disabled = 0", userID, consts.IntegrationTypeSocial).
		Order("id ASC").
		Find(&integrations)
	if result.Error != nil {
		return nil, result.Error
	}
	return integrations, nil
}

func (s *integrationRepoImpl) UpdateTokens(ctx context.Context, integrationID uint64, accessToken string, refreshToken string, expiresAt *time.Time) error {
	return s.db.WithContext(ctx).
		Model(&model.Integration{}).
		Where("id = ?", integrationID).
		Updates(map[string]interface{}{
			"access_token":     accessToken,
			"refresh_token":    refreshToken,
			"token_expires_at": expiresAt,
			"refresh_needed":   false,
		}).Error
}

func (s *integrationRepoImpl) SetRefreshNeeded(ctx context.Context, integrationID uint64, needed bool) error {
	return s.db.WithContext(ctx).
		Model(&model.Integration{}).
		Where("id = ?", integrationID).
		Update("refresh_needed", needed).Error
}

func (s *integrationRepoImpl) SoftDelete(ctx context.Context, userID uint64, integrationID uint64) error {
	return s.db.WithContext(ctx).
		Model(&model.Integration{}).
		Where("id = ? AND user_id = ?", integrationID, userID).
		Update("is_deleted", true).Error
}

func (s *integrationRepoImpl) ListRefreshCandidates(ctx context.Context, expiringBefore time.Time) ([]*model.Integration, error) {
	integrations := make([]*model.Integration, 0)
	result := s.db.WithContext(ctx).
		Where("type = ? AND is_deleted = 0 AND disabled = 0", consts.IntegrationTypeSocial).
		Where("refresh_needed = 1 OR token_expires_at < ?", expiringBefore).
		Where("refresh_token <> ''").
		Find(&integrations)
	if result.Error != nil {
		return nil, result.Error
	}
	return integrations, nil
}

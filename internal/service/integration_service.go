package service

import (
	"Postline/internal/api/dto"
	"Postline/internal/model"
	"Postline/internal/pkg/consts"
	"Postline/internal/pkg/platform"
	"Postline/internal/pkg/security"
	"Postline/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"time"
)

type IntegrationService interface {
	Connect(ctx context.Context, userID uint64, connectDTO *dto.ConnectIntegrationDTO) (*dto.IntegrationDTO, error)
	List(ctx context.Context, userID uint64) ([]dto.IntegrationDTO, error)
	Disconnect(ctx context.Context, userID uint64, integrationID uint64) error
	// RefreshExpiring 刷新已标记或即将过期的集成令牌，由定时任务调用
	RefreshExpiring(ctx context.Context, expiringWithin time.Duration) (int, error)
}

type integrationServiceImpl struct {
	integrationRepo repository.IntegrationRepo
	registry        *platform.Registry
	cipher          *security.TokenCipher
}

func NewIntegrationService(integrationRepo repository.IntegrationRepo, registry *platform.Registry, cipher *security.TokenCipher) IntegrationService {
	return &integrationServiceImpl{
		integrationRepo: integrationRepo,
		registry:        registry,
		cipher:          cipher,
	}
}

func (s *integrationServiceImpl) Connect(ctx context.Context, userID uint64, connectDTO *dto.ConnectIntegrationDTO) (*dto.IntegrationDTO, error) {
	// 未指定类型时按 provider 推断，网盘类归 storage
	integrationType := connectDTO.Type
	if integrationType == "" {
		integrationType = consts.IntegrationTypeStorage
		if platform.IsSocialProvider(connectDTO.Provider) {
			integrationType = consts.IntegrationTypeSocial
		}
	}
	// 社交集成的 provider 必须在注册表内
	if integrationType == consts.IntegrationTypeSocial {
		if _, err := s.registry.Get(connectDTO.Provider); err != nil {
			if errors.Is(err, platform.ErrUnknownProvider) {
				return nil, ErrProviderNotSupported
			}
			return nil, err
		}
	}

	encryptedAccess, err := s.cipher.Encrypt(connectDTO.AccessToken)
	if err != nil {
		return nil, err
	}
	encryptedRefresh := ""
	if connectDTO.RefreshToken != "" {
		if encryptedRefresh, err = s.cipher.Encrypt(connectDTO.RefreshToken); err != nil {
			return nil, err
		}
	}

	var expiresAt *time.Time
	if connectDTO.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(connectDTO.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	integration := &model.Integration{
		UserID:         userID,
		Provider:       connectDTO.Provider,
		AccountID:      connectDTO.AccountID,
		AccountName:    connectDTO.AccountName,
		Picture:        connectDTO.Picture,
		AccessToken:    encryptedAccess,
		RefreshToken:   encryptedRefresh,
		TokenExpiresAt: expiresAt,
		Type:           integrationType,
	}
	if err = s.integrationRepo.CreateIntegration(ctx, integration); err != nil {
		return nil, err
	}

	result := toIntegrationDTO(integration)
	return &result, nil
}

func (s *integrationServiceImpl) List(ctx context.Context, userID uint64) ([]dto.IntegrationDTO, error) {
	integrations, err := s.integrationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.IntegrationDTO, 0, len(integrations))
	for _, integration := range integrations {
		result = append(result, toIntegrationDTO(integration))
	}
	return result, nil
}

func (s *integrationServiceImpl) Disconnect(ctx context.Context, userID uint64, integrationID uint64) error {
	integration, err := s.integrationRepo.GetIntegrationByID(ctx, userID, integrationID)
	if err != nil {
		return err
	}
	if integration == nil {
		return ErrIntegrationNotFound
	}
	return s.integrationRepo.SoftDelete(ctx, userID, integrationID)
}

func (s *integrationServiceImpl) RefreshExpiring(ctx context.Context, expiringWithin time.Duration) (int, error) {
	candidates, err := s.integrationRepo.ListRefreshCandidates(ctx, time.Now().Add(expiringWithin))
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, integration := range candidates {
		if err = s.refreshOne(ctx, integration); err != nil {
			log.WarnContext(ctx, "token refresh sweep failed for integration",
				"integration_id", integration.ID,
				"provider", integration.Provider,
				"error", err)
			if dbErr := s.integrationRepo.SetRefreshNeeded(ctx, integration.ID, true); dbErr != nil {
				log.ErrorContext(ctx, "failed to mark integration refresh_needed",
					"integration_id", integration.ID, "error", dbErr)
			}
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *integrationServiceImpl) refreshOne(ctx context.Context, integration *model.Integration) error {
	client, err := s.registry.Get(integration.Provider)
	if err != nil {
		return err
	}
	refreshToken, err := s.cipher.Decrypt(integration.RefreshToken)
	if err != nil {
		return err
	}
	pair, err := client.RefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	encryptedAccess, err := s.cipher.Encrypt(pair.AccessToken)
	if err != nil {
		return err
	}
	encryptedRefresh := integration.RefreshToken
	if pair.RefreshToken != "" && pair.RefreshToken != refreshToken {
		if encryptedRefresh, err = s.cipher.Encrypt(pair.RefreshToken); err != nil {
			return err
		}
	}

	var expiresAt *time.Time
	if pair.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(pair.ExpiresIn) * time.Second)
		expiresAt = &t
	}
	return s.integrationRepo.UpdateTokens(ctx, integration.ID, encryptedAccess, encryptedRefresh, expiresAt)
}

func toIntegrationDTO(integration *model.Integration) dto.IntegrationDTO {
	result := dto.IntegrationDTO{
		ID:            integration.ID,
		Provider:      integration.Provider,
		AccountID:     integration.AccountID,
		AccountName:   integration.AccountName,
		Picture:       integration.Picture,
		Type:          integration.Type,
		RefreshNeeded: integration.RefreshNeeded,
		Disabled:      integration.Disabled,
		CreatedAt:     integration.CreatedAt.UTC().Format(time.RFC3339),
	}
	if integration.TokenExpiresAt != nil {
		result.TokenExpiresAt = integration.TokenExpiresAt.UTC().Format(time.RFC3339)
	}
	return result
}

package service

import (
	"Postline/internal/api/dto"
	"Postline/internal/model"
	"Postline/internal/pkg/consts"
	"Postline/internal/pkg/platform"
	"Postline/internal/pkg/security"
	"Postline/internal/pkg/util"
	"Postline/internal/repository"
	"context"
	log "log/slog"
	"time"
)

type PostService interface {
	CreatePost(ctx context.Context, userID uint64, postDTO *dto.PostBaseDTO) (*dto.PostDTO, error)
	GetPost(ctx context.Context, userID uint64, postID uint64) (*dto.PostDTO, error)
	ListPosts(ctx context.Context, userID uint64, query *dto.PostListQueryDTO) ([]dto.PostDTO, error)
	UpdatePost(ctx context.Context, userID uint64, postID uint64, postDTO *dto.PostBaseDTO) error
	DeletePost(ctx context.Context, userID uint64, postID uint64) error
	GetLinkPreview(ctx context.Context, rawURL string) (*util.LinkPreview, error)
	// PublishDuePosts 发布所有到期的排程帖子，由定时任务调用
	PublishDuePosts(ctx context.Context, batchSize int) (int, error)
}

type postServiceImpl struct {
	postRepo        repository.PostRepo
	integrationRepo repository.IntegrationRepo
	registry        *platform.Registry
	cipher          *security.TokenCipher
}

func NewPostService(postRepo repository.PostRepo, integrationRepo repository.IntegrationRepo, registry *platform.Registry, cipher *security.TokenCipher) PostService {
	return &postServiceImpl{
		postRepo:        postRepo,
		integrationRepo: integrationRepo,
		registry:        registry,
		cipher:          cipher,
	}
}

func (s *postServiceImpl) CreatePost(ctx context.Context, userID uint64, postDTO *dto.PostBaseDTO) (*dto.PostDTO, error) {
	post := &model.Post{
		UserID:  userID,
		Title:   postDTO.Title,
		Content: postDTO.Content,
		Status:  consts.PostStatusDraft,
	}

	if postDTO.PublishAt != "" {
		publishAt, err := time.Parse(time.RFC3339, postDTO.PublishAt)
		if err != nil {
			return nil, ErrPublishTimeInvalid
		}
		if publishAt.Before(time.Now()) {
			return nil, ErrPublishTimeInvalid
		}
		post.PublishAt = &publishAt
		post.Status = consts.PostStatusScheduled
	}

	// 排程帖子必须至少有一个发布目标
	if post.Status == consts.PostStatusScheduled && len(postDTO.IntegrationIDs) == 0 {
		return nil, ErrPostTargetInvalid
	}

	for _, integrationID := range postDTO.IntegrationIDs {
		integration, err := s.integrationRepo.GetIntegrationByID(ctx, userID, integrationID)
		if err != nil {
			return nil, err
		}
		if integration == nil || integration.Type != consts.IntegrationTypeSocial {
			return nil, ErrPostTargetInvalid
		}
		if integration.Disabled {
			return nil, ErrIntegrationDisabled
		}
		post.Targets = append(post.Targets, model.PostTarget{
			IntegrationID: integrationID,
			Status:        consts.TargetStatusPending,
		})
	}

	for _, media := range postDTO.Media {
		post.Media = append(post.Media, model.PostMedia{
			URL:          media.URL,
			ThumbnailURL: media.ThumbnailURL,
			MimeType:     media.MimeType,
			Width:        media.Width,
			Height:       media.Height,
			SortOrder:    media.SortOrder,
		})
	}

	if err := s.postRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	result := toPostDTO(post)
	return &result, nil
}

func (s *postServiceImpl) GetPost(ctx context.Context, userID uint64, postID uint64) (*dto.PostDTO, error) {
	post, err := s.postRepo.GetPostByID(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	result := toPostDTO(post)
	return &result, nil
}

func (s *postServiceImpl) ListPosts(ctx context.Context, userID uint64, query *dto.PostListQueryDTO) ([]dto.PostDTO, error) {
	var posts []*model.Post
	var err error
	if query.Keyword != "" {
		posts, err = s.postRepo.SearchByContent(ctx, userID, query.Keyword, query.Page, query.PageSize)
	} else {
		posts, err = s.postRepo.ListByUser(ctx, userID, query.Status, query.Page, query.PageSize)
	}
	if err != nil {
		return nil, err
	}
	result := make([]dto.PostDTO, 0, len(posts))
	for _, post := range posts {
		result = append(result, toPostDTO(post))
	}
	return result, nil
}

func (s *postServiceImpl) UpdatePost(ctx context.Context, userID uint64, postID uint64, postDTO *dto.PostBaseDTO) error {
	post, err := s.postRepo.GetPostByID(ctx, userID, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	// 已发布的帖子不可再编辑
	if post.Status == consts.PostStatusPublished {
		return ErrPostNotEditable
	}

	post.Title = postDTO.Title
	post.Content = postDTO.Content
	if postDTO.PublishAt != "" {
		publishAt, parseErr := time.Parse(time.RFC3339, postDTO.PublishAt)
		if parseErr != nil {
			return ErrPublishTimeInvalid
		}
		post.PublishAt = &publishAt
		post.Status = consts.PostStatusScheduled
	} else {
		post.PublishAt = nil
		post.Status = consts.PostStatusDraft
	}
	return s.postRepo.UpdatePost(ctx, post)
}

func (s *postServiceImpl) DeletePost(ctx context.Context, userID uint64, postID uint64) error {
	post, err := s.postRepo.GetPostByID(ctx, userID, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	return s.postRepo.SoftDelete(ctx, userID, postID)
}

func (s *postServiceImpl) GetLinkPreview(ctx context.Context, rawURL string) (*util.LinkPreview, error) {
	preview, err := util.FetchLinkPreview(ctx, rawURL)
	if err != nil {
		return nil, ErrParamInvalid
	}
	return preview, nil
}

// PublishDuePosts 逐帖逐目标发布，单个目标失败不影响其它目标
// 帖子状态：全部目标成功为已发布，否则为失败
func (s *postServiceImpl) PublishDuePosts(ctx context.Context, batchSize int) (int, error) {
	posts, err := s.postRepo.ListDuePosts(ctx, time.Now(), batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, post := range posts {
		if s.publishOne(ctx, post) {
			published++
		}
	}
	return published, nil
}

func (s *postServiceImpl) publishOne(ctx context.Context, post *model.Post) bool {
	mediaURLs := make([]string, 0, len(post.Media))
	for _, media := range post.Media {
		mediaURLs = append(mediaURLs, media.URL)
	}

	allOK := true
	for _, target := range post.Targets {
		if target.Status == consts.TargetStatusPublished {
			continue
		}
		externalID, err := s.publishToTarget(ctx, &target, post.Content, mediaURLs)
		now := time.Now()
		if err != nil {
			allOK = false
			log.WarnContext(ctx, "post target publish failed",
				"post_id", post.ID,
				"target_id", target.ID,
				"provider", target.Integration.Provider,
				"error", err)
			if dbErr := s.postRepo.UpdateTargetResult(ctx, target.ID, consts.TargetStatusFailed, "", err.Error(), nil); dbErr != nil {
				log.ErrorContext(ctx, "failed to persist target failure", "target_id", target.ID, "error", dbErr)
			}
			continue
		}
		if dbErr := s.postRepo.UpdateTargetResult(ctx, target.ID, consts.TargetStatusPublished, externalID, "", &now); dbErr != nil {
			log.ErrorContext(ctx, "failed to persist target result", "target_id", target.ID, "error", dbErr)
		}
	}

	now := time.Now()
	status := int8(consts.PostStatusPublished)
	if !allOK {
		status = consts.PostStatusFailed
	}
	if err := s.postRepo.UpdatePostStatus(ctx, post.ID, status, &now); err != nil {
		log.ErrorContext(ctx, "failed to update post status", "post_id", post.ID, "error", err)
		return false
	}
	return allOK
}

func (s *postServiceImpl) publishToTarget(ctx context.Context, target *model.PostTarget, content string, mediaURLs []string) (string, error) {
	integration := target.Integration
	if integration.Disabled || integration.IsDeleted {
		return "", ErrPostTargetInvalid
	}
	client, err := s.registry.Get(integration.Provider)
	if err != nil {
		return "", err
	}
	accessToken, err := s.cipher.Decrypt(integration.AccessToken)
	if err != nil {
		return "", err
	}
	return client.Publish(ctx, integration.AccountID, accessToken, content, mediaURLs)
}

func toPostDTO(post *model.Post) dto.PostDTO {
	result := dto.PostDTO{
		ID:          post.ID,
		Title:       post.Title,
		Content:     post.Content,
		Status:      post.Status,
		Impressions: post.Impressions,
		Engagements: post.Engagements,
		Media:       make([]dto.PostMediaDTO, 0, len(post.Media)),
		Targets:     make([]dto.PostTargetDTO, 0, len(post.Targets)),
		CreatedAt:   post.CreatedAt.UTC().Format(time.RFC3339),
	}
	if post.PublishAt != nil {
		result.PublishAt = post.PublishAt.UTC().Format(time.RFC3339)
	}
	if post.PublishedAt != nil {
		result.PublishedAt = post.PublishedAt.UTC().Format(time.RFC3339)
	}
	for _, media := range post.Media {
		result.Media = append(result.Media, dto.PostMediaDTO{
			URL:          media.URL,
			ThumbnailURL: media.ThumbnailURL,
			MimeType:     media.MimeType,
			Width:        media.Width,
			Height:       media.Height,
			SortOrder:    media.SortOrder,
		})
	}
	for _, target := range post.Targets {
		targetDTO := dto.PostTargetDTO{
			ID:            target.ID,
			IntegrationID: target.IntegrationID,
			Provider:      target.Integration.Provider,
			AccountName:   target.Integration.AccountName,
			Status:        target.Status,
			ExternalID:    target.ExternalID,
			Error:         target.Error,
		}
		if target.PublishedAt != nil {
			targetDTO.PublishedAt = target.PublishedAt.UTC().Format(time.RFC3339)
		}
		result.Targets = append(result.Targets, targetDTO)
	}
	return result
}

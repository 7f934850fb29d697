package repository

import (
	"Postline/internal/model"
	"Postline/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, userID uint64, postID uint64) (*model.Post, error)
	ListByUser(ctx context.Context, userID uint64, status *int8, page int, pageSize int) ([]*model.Post, error)
	SearchByContent(ctx context.Context, userID uint64, keyword string, page int, pageSize int) ([]*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	SoftDelete(ctx context.Context, userID uint64, postID uint64) error
	// ListPublishedBetween 返回区间内已发布的帖子，按发布时间倒序，预加载目标集成
	ListPublishedBetween(ctx context.Context, userID uint64, start time.Time, end time.Time) ([]*model.Post, error)
	// ListPublishedByUser 返回用户全部历史已发布帖子
	ListPublishedByUser(ctx context.Context, userID uint64) ([]*model.Post, error)
	// ListDuePosts 返回到期待发布的排程帖子
	ListDuePosts(ctx context.Context, now time.Time, limit int) ([]*model.Post, error)
	UpdatePostStatus(ctx context.Context, postID uint64, status int8, publishedAt *time.Time) error
	UpdateTargetResult(ctx context.Context, targetID uint64, status int8, externalID string, errMsg string, publishedAt *time.Time) error
	// UpdateInsights 回填单帖互动指标，来源为互动事件消费者
	UpdateInsights(ctx context.Context, postID uint64, impressions int64, engagements int64) error
}

type postRepoImpl struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) PostRepo {
	return &postRepoImpl{db: db}
}

func (s *postRepoImpl) CreatePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *postRepoImpl) GetPostByID(ctx context.Context, userID uint64, postID uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).
		Preload("Media").
		Preload("Targets").
		Preload("Targets.Integration").
		Where("id = ? AND user_id = ? AND is_deleted = 0", postID, userID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *postRepoImpl) ListByUser(ctx context.Context, userID uint64, status *int8, page int, pageSize int) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	query := s.db.WithContext(ctx).
		Preload("Media").
		Preload("Targets").
		Where("user_id = ? AND is_deleted = 0", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	result := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

func (s *postRepoImpl) SearchByContent(ctx context.Context, userID uint64, keyword string, page int, pageSize int) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = 0", userID).
		Where("content LIKE ? OR title LIKE ?", "%"+keyword+"%", "%"+keyword+"%").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

func (s *postRepoImpl) UpdatePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Save(post).Error
}

func (s *postRepoImpl) SoftDelete(ctx context.Context, userID uint64, postID uint64) error {
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ? AND user_id = ?", postID, userID).
		Update("is_deleted", true).Error
}

func (s *postRepoImpl) ListPublishedBetween(ctx context.Context, userID uint64, start time.Time, end time.Time) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	result := s.db.WithContext(ctx).
		Preload("Targets").
		Preload("Targets.Integration").
		Where("user_id = ? AND status = ? AND is_deleted = 0", userID, consts.PostStatusPublished).
		Where("published_at BETWEEN ? AND ?", start, end).
		Order("published_at DESC").
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

func (s *postRepoImpl) ListPublishedByUser(ctx context.Context, userID uint64) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND is_deleted = 0", userID, consts.PostStatusPublished).
		Order("published_at DESC").
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

func (s *postRepoImpl) ListDuePosts(ctx context.Context, now time.Time, limit int) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	result := s.db.WithContext(ctx).
		Preload("Media").
		Preload("Targets").
		Preload("Targets.Integration").
		Where("status = ? AND is_deleted = 0 AND publish_at <= ?", consts.PostStatusScheduled, now).
		Order("publish_at ASC").
		Limit(limit).
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

func (s *postRepoImpl) UpdatePostStatus(ctx context.Context, postID uint64, status int8, publishedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if publishedAt != nil {
		updates["published_at"] = publishedAt
	}
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", postID).
		Updates(updates).Error
}

func (s *postRepoImpl) UpdateTargetResult(ctx context.Context, targetID uint64, status int8, externalID string, errMsg string, publishedAt *time.Time) error {
	return s.db.WithContext(ctx).
		Model(&model.PostTarget{}).
		Where("id = ?", targetID).
		Updates(map[string]interface{}{
			"status":       status,
			"external_id":  externalID,
			"error":        errMsg,
			"published_at": publishedAt,
		}).Error
}

func (s *postRepoImpl) UpdateInsights(ctx context.Context, postID uint64, impressions int64, engagements int64) error {
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{
			"impressions": impressions,
			"engagements": engagements,
		}).Error
}

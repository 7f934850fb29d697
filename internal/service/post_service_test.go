package service

import (
	"Postline/internal/api/dto"
	"Postline/internal/model"
	"Postline/internal/pkg/consts"
	"Postline/internal/pkg/platform"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// publishPostRepo 在基础假仓之上记录发布流程的写入
type publishPostRepo struct {
	fakePostRepo
	due           []*model.Post
	stored        *model.Post
	created       *model.Post
	targetStatus  map[uint64]int8
	targetErrors  map[uint64]string
	statusUpdates map[uint64]int8
}

func newPublishPostRepo(due ...*model.Post) *publishPostRepo {
	return &publishPostRepo{
		due:           due,
		targetStatus:  make(map[uint64]int8),
		targetErrors:  make(map[uint64]string),
		statusUpdates: make(map[uint64]int8),
	}
}

func (s *publishPostRepo) CreatePost(_ context.Context, post *model.Post) error {
	post.ID = 1
	s.created = post
	return nil
}

func (s *publishPostRepo) GetPostByID(_ context.Context, userID uint64, postID uint64) (*model.Post, error) {
	if s.stored != nil && s.stored.ID == postID && s.stored.UserID == userID {
		return s.stored, nil
	}
	return nil, nil
}

func (s *publishPostRepo) ListDuePosts(_ context.Context, _ time.Time, _ int) ([]*model.Post, error) {
	return s.due, nil
}

func (s *publishPostRepo) UpdateTargetResult(_ context.Context, targetID uint64, status int8, _ string, errMsg string, _ *time.Time) error {
	s.targetStatus[targetID] = status
	s.targetErrors[targetID] = errMsg
	return nil
}

func (s *publishPostRepo) UpdatePostStatus(_ context.Context, postID uint64, status int8, _ *time.Time) error {
	s.statusUpdates[postID] = status
	return nil
}

func newTestPostService(t *testing.T, postRepo *publishPostRepo, integrationRepo *fakeIntegrationRepo, clients map[string]platform.Client) PostService {
	t.Helper()
	cipher := testCipher(t)
	return NewPostService(postRepo, integrationRepo, platform.NewRegistryWithClients(clients), cipher)
}

func TestCreatePostRejectsPastPublishTime(t *testing.T) {
	svc := newTestPostService(t, newPublishPostRepo(), newFakeIntegrationRepo(), nil)

	_, err := svc.CreatePost(context.Background(), 1, &dto.PostBaseDTO{
		Content:        "hello",
		PublishAt:      time.Now().Add(-time.Hour).Format(time.RFC3339),
		IntegrationIDs: []uint64{1},
	})
	assert.ErrorIs(t, err, ErrPublishTimeInvalid)

	_, err = svc.CreatePost(context.Background(), 1, &dto.PostBaseDTO{
		Content:   "hello",
		PublishAt: "not-a-time",
	})
	assert.ErrorIs(t, err, ErrPublishTimeInvalid)
}

func TestCreatePostScheduledRequiresTargets(t *testing.T) {
	svc := newTestPostService(t, newPublishPostRepo(), newFakeIntegrationRepo(), nil)

	_, err := svc.CreatePost(context.Background(), 1, &dto.PostBaseDTO{
		Content:   "hello",
		PublishAt: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, ErrPostTargetInvalid)
}

func TestCreatePostRejectsUnusableTarget(t *testing.T) {
	cipher := testCipher(t)
	disabled := socialIntegration(cipher, t, 1, "twitter", "tok", "")
	disabled.Disabled = true
	storage := socialIntegration(cipher, t, 2, "google-drive", "tok", "")
	storage.Type = consts.IntegrationTypeStorage
	repo := newFakeIntegrationRepo(disabled, storage)

	svc := newTestPostService(t, newPublishPostRepo(), repo, nil)
	base := &dto.PostBaseDTO{
		Content:   "hello",
		PublishAt: time.Now().Add(time.Hour).Format(time.RFC3339),
	}

	base.IntegrationIDs = []uint64{1}
	_, err := svc.CreatePost(context.Background(), 1, base)
	assert.ErrorIs(t, err, ErrIntegrationDisabled)

	base.IntegrationIDs = []uint64{2}
	_, err = svc.CreatePost(context.Background(), 1, base)
	assert.ErrorIs(t, err, ErrPostTargetInvalid)

	// 不存在的集成同样拒绝
	base.IntegrationIDs = []uint64{99}
	_, err = svc.CreatePost(context.Background(), 1, base)
	assert.ErrorIs(t, err, ErrPostTargetInvalid)
}

func TestCreatePostDraftWithoutPublishTime(t *testing.T) {
	postRepo := newPublishPostRepo()
	svc := newTestPostService(t, postRepo, newFakeIntegrationRepo(), nil)

	result, err := svc.CreatePost(context.Background(), 1, &dto.PostBaseDTO{
		Title:   "draft",
		Content: "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, int8(consts.PostStatusDraft), result.Status)
	require.NotNil(t, postRepo.created)
	assert.Nil(t, postRepo.created.PublishAt)
	assert.Empty(t, postRepo.created.Targets)
}

func TestCreatePostScheduledBuildsPendingTargets(t *testing.T) {
	cipher := testCipher(t)
	repo := newFakeIntegrationRepo(socialIntegration(cipher, t, 1, "twitter", "tok", ""))
	postRepo := newPublishPostRepo()
	svc := newTestPostService(t, postRepo, repo, nil)

	result, err := svc.CreatePost(context.Background(), 1, &dto.PostBaseDTO{
		Content:        "hello",
		PublishAt:      time.Now().Add(time.Hour).Format(time.RFC3339),
		IntegrationIDs: []uint64{1},
	})
	require.NoError(t, err)

	assert.Equal(t, int8(consts.PostStatusScheduled), result.Status)
	require.Len(t, postRepo.created.Targets, 1)
	assert.Equal(t, int8(consts.TargetStatusPending), postRepo.created.Targets[0].Status)
}

type publishClient struct {
	id  string
	err error
}

func (s *publishClient) Identifier() string { return s.id }
func (s *publishClient) Analytics(_ context.Context, _ string, _ string, _ int) ([]platform.MetricSeries, error) {
	return nil, errors.New("not implemented")
}
func (s *publishClient) RefreshToken(_ context.Context, _ string) (*platform.TokenPair, error) {
	return nil, errors.New("not implemented")
}
func (s *publishClient) Publish(_ context.Context, _ string, _ string, _ string, _ []string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "ext-1", nil
}

func duePost(postID uint64, targets ...model.PostTarget) *model.Post {
	return &model.Post{
		ID:      postID,
		UserID:  1,
		Content: "scheduled content",
		Status:  consts.PostStatusScheduled,
		Targets: targets,
	}
}

func TestPublishDuePostsAllTargetsSucceed(t *testing.T) {
	cipher := testCipher(t)
	integration := *socialIntegration(cipher, t, 1, "twitter", "tok", "")

	post := duePost(10, model.PostTarget{
		ID: 100, PostID: 10, IntegrationID: 1,
		Status: consts.TargetStatusPending, Integration: integration,
	})
	postRepo := newPublishPostRepo(post)

	svc := newTestPostService(t, postRepo, newFakeIntegrationRepo(), map[string]platform.Client{
		"twitter": &publishClient{id: "twitter"},
	})

	published, err := svc.PublishDuePosts(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, 1, published)
	assert.Equal(t, int8(consts.TargetStatusPublished), postRepo.targetStatus[100])
	assert.Equal(t, int8(consts.PostStatusPublished), postRepo.statusUpdates[10])
}

func TestPublishDuePostsIsolatesTargetFailure(t *testing.T) {
	cipher := testCipher(t)
	twitter := *socialIntegration(cipher, t, 1, "twitter", "tok-tw", "")
	facebook := *socialIntegration(cipher, t, 2, "facebook", "tok-fb", "")

	post := duePost(10,
		model.PostTarget{ID: 100, PostID: 10, IntegrationID: 1, Status: consts.TargetStatusPending, Integration: twitter},
		model.PostTarget{ID: 101, PostID: 10, IntegrationID: 2, Status: consts.TargetStatusPending, Integration: facebook},
	)
	postRepo := newPublishPostRepo(post)

	svc := newTestPostService(t, postRepo, newFakeIntegrationRepo(), map[string]platform.Client{
		"twitter":  &publishClient{id: "twitter"},
		"facebook": &publishClient{id: "facebook", err: errors.New("rate limited")},
	})

	published, err := svc.PublishDuePosts(context.Background(), 50)
	require.NoError(t, err)

	// 一个目标失败不影响另一个目标，但帖子整体标记失败
	assert.Equal(t, 0, published)
	assert.Equal(t, int8(consts.TargetStatusPublished), postRepo.targetStatus[100])
	assert.Equal(t, int8(consts.TargetStatusFailed), postRepo.targetStatus[101])
	assert.Contains(t, postRepo.targetErrors[101], "rate limited")
	assert.Equal(t, int8(consts.PostStatusFailed), postRepo.statusUpdates[10])
}

func TestPublishDuePostsSkipsAlreadyPublishedTarget(t *testing.T) {
	cipher := testCipher(t)
	twitter := *socialIntegration(cipher, t, 1, "twitter", "tok", "")

	post := duePost(10, model.PostTarget{
		ID: 100, PostID: 10, IntegrationID: 1,
		Status: consts.TargetStatusPublished, Integration: twitter,
	})
	postRepo := newPublishPostRepo(post)

	svc := newTestPostService(t, postRepo, newFakeIntegrationRepo(), map[string]platform.Client{
		"twitter": &publishClient{id: "twitter", err: errors.New("should not be called")},
	})

	published, err := svc.PublishDuePosts(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, 1, published)
	_, touched := postRepo.targetStatus[100]
	assert.False(t, touched)
	assert.Equal(t, int8(consts.PostStatusPublished), postRepo.statusUpdates[10])
}

func TestUpdatePublishedPostRejected(t *testing.T) {
	postRepo := newPublishPostRepo()
	postRepo.stored = &model.Post{ID: 5, UserID: 1, Content: "done", Status: consts.PostStatusPublished}
	svc := newTestPostService(t, postRepo, newFakeIntegrationRepo(), nil)

	err := svc.UpdatePost(context.Background(), 1, 5, &dto.PostBaseDTO{Content: "edited"})
	assert.ErrorIs(t, err, ErrPostNotEditable)

	err = svc.UpdatePost(context.Background(), 1, 404, &dto.PostBaseDTO{Content: "edited"})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

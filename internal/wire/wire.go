package wire

import (
	"Postline/internal/api"
	"Postline/internal/api/config"
	"Postline/internal/api/handler"
	"Postline/internal/job"
	"Postline/internal/pkg/cron"
	"Postline/internal/pkg/kafka"
	pmongo "Postline/internal/pkg/mongo"
	"Postline/internal/pkg/platform"
	"Postline/internal/pkg/redis"
	"Postline/internal/pkg/security"
	"Postline/internal/repository"
	"Postline/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	integrationRepo := repository.NewIntegrationRepo(db)
	postRepo := repository.NewPostRepo(db)
	snapshotRepo := pmongo.NewAnalyticsSnapshotRepo(mongoDB)

	registry := platform.NewRegistry(cfg.Platforms)
	cipher, err := security.NewTokenCipher(cfg.Security.TokenCipherKey)
	if err != nil {
		return nil, err
	}

	cacheTTL := time.Duration(cfg.Analytics.CacheTTLMinutes) * time.Minute
	analyticsCache := service.NewRedisAnalyticsCache(redis.GetRdbClient(), cacheTTL)
	fetchTimeout := time.Duration(cfg.Analytics.FetchTimeoutSeconds) * time.Second

	userService := service.NewUserService(userRepo)
	integrationService := service.NewIntegrationService(integrationRepo, registry, cipher)
	postService := service.NewPostService(postRepo, integrationRepo, registry, cipher)
	analyticsService := service.NewAnalyticsService(integrationRepo, postRepo, snapshotRepo, registry, cipher, analyticsCache, fetchTimeout)
	mediaService := service.NewMediaService()

	handlers := &api.HandlersGroup{
		UserHandler:        handler.NewUserHandler(userService),
		IntegrationHandler: handler.NewIntegrationHandler(integrationService),
		PostHandler:        handler.NewPostHandler(postService),
		AnalyticsHandler:   handler.NewAnalyticsHandler(analyticsService),
		MediaHandler:       handler.NewMediaHandler(mediaService),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, postRepo)
	if err != nil {
		return nil, err
	}

	cronMgr := cron.NewCronManager(
		job.NewPublishPostJob(postService),
		job.NewTokenRefreshJob(integrationService),
	)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}

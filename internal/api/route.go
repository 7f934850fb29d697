package api

import (
	"Postline/internal/api/middleware"
	"Postline/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			// 无需登录即可访问的接口
			userGroup.POST("/login", group.UserHandler.Login)
			userGroup.POST("/register", group.UserHandler.Register)

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
				authGroup.GET("/info", group.UserHandler.GetUserInfo)
				authGroup.PUT("/info", group.UserHandler.UpdateProfile)
				authGroup.PUT("/password", group.UserHandler.ChangePassword)
			}
		}

		integrationGroup := apiGroup.Group("/integrations")
		integrationGroup.Use(middleware.AuthMiddleware())
		{
			integrationGroup.GET("", group.IntegrationHandler.List)
			integrationGroup.POST("", group.IntegrationHandler.Connect)
			integrationGroup.DELETE("/:integration_id", group.IntegrationHandler.Disconnect)
		}

		postGroup := apiGroup.Group("/posts")
		postGroup.Use(middleware.AuthMiddleware())
		{
			postGroup.POST("", group.PostHandler.Create)
			postGroup.GET("", group.PostHandler.List)
			postGroup.GET("/link-preview", group.PostHandler.LinkPreview)
			postGroup.GET("/:post_id", group.PostHandler.Get)
			postGroup.PUT("/:post_id", group.PostHandler.Update)
			postGroup.DELETE("/:post_id", group.PostHandler.Delete)
		}

		analyticsGroup := apiGroup.Group("/analytics")
		analyticsGroup.Use(middleware.AuthMiddleware())
		{
			analyticsGroup.GET("/aggregated", group.AnalyticsHandler.Aggregated)
			analyticsGroup.GET("/summary", group.AnalyticsHandler.Summary)
			analyticsGroup.GET("/best-times", group.AnalyticsHandler.BestTimes)
			analyticsGroup.GET("/audience-growth", group.AnalyticsHandler.AudienceGrowth)
			analyticsGroup.GET("/export", group.AnalyticsHandler.Export)

			// 需要登录 & 拥有 admin 角色
			adminGroup := analyticsGroup.Group("")
			adminGroup.Use(middleware.CheckRoles("ADMIN"))
			{
				adminGroup.DELETE("/cache", group.AnalyticsHandler.ClearCache)
			}
		}

		mediaGroup := apiGroup.Group("/media")
		mediaGroup.Use(middleware.AuthMiddleware())
		{
			mediaGroup.POST("/upload", group.MediaHandler.Upload)
			mediaGroup.POST("/import", group.MediaHandler.ImportFromURL)
		}
	}

	return r
}

package api

import "Postline/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler        *handler.UserHandler
	IntegrationHandler *handler.IntegrationHandler
	PostHandler        *handler.PostHandler
	AnalyticsHandler   *handler.AnalyticsHandler
	MediaHandler       *handler.MediaHandler
}

package handler

import (
	"Postline/internal/api/dto"
	"Postline/internal/pkg/response"
	"Postline/internal/pkg/util"
	"Postline/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// Aggregated 按集成返回指标序列，支持平台与指标过滤
func (s *AnalyticsHandler) Aggregated(c *gin.Context) {
	userID := c.GetUint64("user_id")
	query := &dto.AnalyticsQueryDTO{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Platforms: util.SplitAndTrim(c.Query("platforms")),
		Metrics:   util.SplitAndTrim(c.Query("metrics")),
	}
	result, err := s.analyticsSvc.GetAggregatedSeries(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Summary 跨平台合并后的聚合指标
func (s *AnalyticsHandler) Summary(c *gin.Context) {
	userID := c.GetUint64("user_id")
	result, err := s.analyticsSvc.GetSummary(c.Request.Context(), userID, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *AnalyticsHandler) BestTimes(c *gin.Context) {
	userID := c.GetUint64("user_id")
	result, err := s.analyticsSvc.GetBestTimesToPost(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *AnalyticsHandler) AudienceGrowth(c *gin.Context) {
	userID := c.GetUint64("user_id")
	result, err := s.analyticsSvc.GetAudienceGrowth(c.Request.Context(), userID, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Export CSV 附件下载
func (s *AnalyticsHandler) Export(c *gin.Context) {
	userID := c.GetUint64("user_id")
	csv, err := s.analyticsSvc.ExportCSV(c.Request.Context(), userID, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=analytics.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}

// ClearCache 管理员清空整个分析缓存
func (s *AnalyticsHandler) ClearCache(c *gin.Context) {
	err := s.analyticsSvc.ClearCache(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

package handler

import (
	"Postline/internal/api/dto"
	"Postline/internal/pkg/response"
	"Postline/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type IntegrationHandler struct {
	integrationSvc service.IntegrationService
}

func NewIntegrationHandler(integrationSvc service.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{integrationSvc: integrationSvc}
}

func (s *IntegrationHandler) Connect(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var connectDTO dto.ConnectIntegrationDTO
	err := c.ShouldBind(&connectDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.integrationSvc.Connect(c.Request.Context(), userID, &connectDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *IntegrationHandler) List(c *gin.Context) {
	userID := c.GetUint64("user_id")
	result, err := s.integrationSvc.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *IntegrationHandler) Disconnect(c *gin.Context) {
	userID := c.GetUint64("user_id")
	integrationID, err := strconv.ParseUint(c.Param("integration_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	err = s.integrationSvc.Disconnect(c.Request.Context(), userID, integrationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

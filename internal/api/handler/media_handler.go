package handler

import (
	"Postline/internal/api/dto"
	"Postline/internal/pkg/response"
	"Postline/internal/service"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 64 << 20

type MediaHandler struct {
	mediaSvc service.MediaService
}

func NewMediaHandler(mediaSvc service.MediaService) *MediaHandler {
	return &MediaHandler{mediaSvc: mediaSvc}
}

func (s *MediaHandler) Upload(c *gin.Context) {
	userID := c.GetUint64("user_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.Error(c, service.ErrFileNotSupported)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() { _ = file.Close() }()

	result, err := s.mediaSvc.Upload(c.Request.Context(), userID, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *MediaHandler) ImportFromURL(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var importDTO dto.MediaImportDTO
	err := c.ShouldBind(&importDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.mediaSvc.ImportFromURL(c.Request.Context(), userID, importDTO.URL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

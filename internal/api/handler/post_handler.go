package handler

import (
	"Postline/internal/api/dto"
	"Postline/internal/pkg/response"
	"Postline/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{postSvc: postSvc}
}

func (s *PostHandler) Create(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var postDTO dto.PostBaseDTO
	err := c.ShouldBind(&postDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.postSvc.CreatePost(c.Request.Context(), userID, &postDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *PostHandler) Get(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	result, err := s.postSvc.GetPost(c.Request.Context(), userID, postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *PostHandler) List(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var query dto.PostListQueryDTO
	err := c.ShouldBindQuery(&query)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.postSvc.ListPosts(c.Request.Context(), userID, &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *PostHandler) Update(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var postDTO dto.PostBaseDTO
	if err = c.ShouldBind(&postDTO); err != nil {
		response.Error(c, err)
		return
	}
	err = s.postSvc.UpdatePost(c.Request.Context(), userID, postID, &postDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) Delete(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	err = s.postSvc.DeletePost(c.Request.Context(), userID, postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) LinkPreview(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	preview, err := s.postSvc.GetLinkPreview(c.Request.Context(), rawURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, preview)
}

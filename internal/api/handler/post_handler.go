package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/techtrends/internal/repository"
	"github.com/d60-Lab/techtrends/pkg/logger"
	"github.com/d60-Lab/techtrends/pkg/response"
)

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ListPosts 帖子列表
// @Summary 帖子列表
// @Tags 帖子
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Post}
// @Failure 500 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	logger.Debug("retrieved posts", zap.Int("count", len(posts)))
	response.Success(c, posts)
}

// GetPost 查询单篇帖子
// @Summary 查询帖子
// @Tags 帖子
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}
	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			logger.Warn("Non-existing post requested", zap.Int64("id", id))
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	logger.Info("Article retrieved successfully", zap.Int64("id", post.ID), zap.String("title", post.Title))
	response.Success(c, post)
}

// CreatePostAPI 创建帖子
// @Summary 创建帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body createPostRequest true "帖子内容"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 429 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePostAPI(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	post, err := h.posts.Create(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		if errors.Is(err, repository.ErrEmptyTitle) {
			response.BadRequest(c, repository.ErrEmptyTitle.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	logger.Info("New article created", zap.Int64("id", post.ID), zap.String("title", post.Title))
	response.Created(c, post)
}

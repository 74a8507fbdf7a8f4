package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/techtrends/internal/repository"
	"github.com/d60-Lab/techtrends/pkg/logger"
)

// TitleRequiredMessage 标题为空时表单上方显示的提示
const TitleRequiredMessage = "Title is required!"

type createPostForm struct {
	Title   string `form:"title"`
	Content string `form:"content"`
}

// Index 帖子列表页
func (h *Handler) Index(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		h.serverErrorPage(c, err)
		return
	}
	logger.Debug("retrieved posts", zap.Int("count", len(posts)))
	c.HTML(http.StatusOK, "index.html", gin.H{"Posts": posts})
}

// ShowPost 单篇帖子页，不存在时 404
func (h *Handler) ShowPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.NotFoundPage(c)
		return
	}

	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			logger.Warn("Non-existing page requested", zap.Int64("id", id))
			c.HTML(http.StatusNotFound, "404.html", nil)
			return
		}
		h.serverErrorPage(c, err)
		return
	}

	logger.Info("Article retrieved successfully", zap.Int64("id", post.ID), zap.String("title", post.Title))
	c.HTML(http.StatusOK, "post.html", gin.H{"Post": post})
}

// About 关于页
func (h *Handler) About(c *gin.Context) {
	logger.Info(`"About us" page retrieved`)
	c.HTML(http.StatusOK, "about.html", nil)
}

// CreateForm 发帖表单
func (h *Handler) CreateForm(c *gin.Context) {
	c.HTML(http.StatusOK, "create.html", gin.H{"Form": createPostForm{}})
}

// CreatePost 提交表单：标题为空则带提示重新显示表单，成功后重定向到首页
func (h *Handler) CreatePost(c *gin.Context) {
	var form createPostForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Debug("invalid create form", zap.Error(err))
	}

	post, err := h.posts.Create(c.Request.Context(), form.Title, form.Content)
	if err != nil {
		if errors.Is(err, repository.ErrEmptyTitle) {
			c.HTML(http.StatusOK, "create.html", gin.H{
				"Form":    form,
				"Flashes": []string{TitleRequiredMessage},
			})
			return
		}
		h.serverErrorPage(c, err)
		return
	}

	logger.Info("New article created", zap.Int64("id", post.ID), zap.String("title", post.Title))
	c.Redirect(http.StatusFound, "/")
}

// NotFoundPage 未匹配路由
func (h *Handler) NotFoundPage(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", nil)
}

func (h *Handler) serverErrorPage(c *gin.Context, err error) {
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.HTML(http.StatusInternalServerError, "500.html", nil)
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/posts-api/internal/model"
	"github.com/d60-Lab/posts-api/internal/service"
	"github.com/d60-Lab/posts-api/pkg/response"
)

// 客户端可见的提示文案
const (
	msgListFailed    = "The posts information could not be retrieved."
	msgGetFailed     = "The post information could not be retrieved."
	msgNotFound      = "The post with the specified ID does not exist."
	msgCreateInvalid = "Please provide title and contents for the post"
	msgCreateFailed  = "There was an error while saving the post to the database"
	msgUpdateInvalid = "Please provide title and contents for the post."
	msgUpdateFailed  = "The post information could not be modified."
	msgRemoveFailed  = "The post could not be removed."
	msgBodyTooLarge  = "Request body too large."
)

// ListPosts 查询全部文章
// @Summary 文章列表
// @Tags 文章
// @Produce json
// @Success 200 {array} model.Post
// @Failure 500 {object} response.ErrorBody
// @Router /api/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.postService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err, msgListFailed)
		return
	}
	response.Success(c, posts)
}

// GetPost 按 id 查询文章
// @Summary 文章详情
// @Tags 文章
// @Produce json
// @Param id path string true "文章ID"
// @Success 200 {object} model.Post
// @Failure 404 {object} response.MessageBody
// @Failure 500 {object} response.ErrorBody
// @Router /api/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.postService.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, msgNotFound)
	case err != nil:
		response.InternalError(c, err, msgGetFailed)
	default:
		response.Success(c, post)
	}
}

// CreatePost 新建文章，返回回读后的完整记录
// @Summary 新建文章
// @Tags 文章
// @Accept json
// @Produce json
// @Param request body model.PostInput true "文章内容"
// @Success 200 {object} model.Post
// @Failure 400 {object} response.ValidationBody
// @Failure 413 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /api/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req model.PostInput
	if err := bindStrictJSON(c, &req); err != nil {
		bindFailed(c, err, msgCreateInvalid)
		return
	}
	post, err := h.postService.Create(c.Request.Context(), &req)
	switch {
	case errors.Is(err, service.ErrInvalidPost):
		response.BadRequest(c, msgCreateInvalid)
	case err != nil:
		response.InternalError(c, err, msgCreateFailed)
	default:
		// 保持 200（历史行为），不改为 201
		response.Success(c, post)
	}
}

// UpdatePost 整体替换 title/contents，返回修改后的记录
// @Summary 修改文章
// @Tags 文章
// @Accept json
// @Produce json
// @Param id path string true "文章ID"
// @Param request body model.PostInput true "文章内容"
// @Success 200 {object} model.Post
// @Failure 400 {object} response.ValidationBody
// @Failure 404 {object} response.MessageBody
// @Failure 413 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /api/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	var req model.PostInput
	if err := bindStrictJSON(c, &req); err != nil {
		bindFailed(c, err, msgUpdateInvalid)
		return
	}
	post, err := h.postService.Update(c.Request.Context(), c.Param("id"), &req)
	switch {
	case errors.Is(err, service.ErrInvalidPost):
		response.BadRequest(c, msgUpdateInvalid)
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, msgNotFound)
	case err != nil:
		response.InternalError(c, err, msgUpdateFailed)
	default:
		response.Success(c, post)
	}
}

// DeletePost 删除文章，返回删除前的记录
// @Summary 删除文章
// @Tags 文章
// @Produce json
// @Param id path string true "文章ID"
// @Success 200 {object} model.Post
// @Failure 404 {object} response.MessageBody
// @Failure 500 {object} response.ErrorBody
// @Router /api/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	post, err := h.postService.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, msgNotFound)
	case err != nil:
		response.InternalError(c, err, msgRemoveFailed)
	default:
		response.Success(c, post)
	}
}

package handler

import (
	"github.com/d60-Lab/posts-api/internal/service"
)

// Handler 聚合各接口依赖的服务
type Handler struct {
	postService service.PostService
}

func NewHandler(postService service.PostService) *Handler {
	return &Handler{postService: postService}
}

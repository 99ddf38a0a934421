package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/d60-Lab/posts-api/internal/model"
	"github.com/d60-Lab/posts-api/internal/repository"
)

var (
	// ErrPostNotFound 目标文章不存在（含 删除/更新 时 0 行受影响）
	ErrPostNotFound = errors.New("post not found")
	// ErrInvalidPost title 或 contents 为空
	ErrInvalidPost = errors.New("title and contents are required")
)

// PostService 文章服务：每个方法对应一个接口，内部按顺序调用存储，任一步失败即返回
type PostService interface {
	List(ctx context.Context) ([]*model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	Create(ctx context.Context, in *model.PostInput) (*model.Post, error)
	Update(ctx context.Context, id string, in *model.PostInput) (*model.Post, error)
	Delete(ctx context.Context, id string) (*model.Post, error)
}

type postService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) PostService {
	return &postService{postRepo: postRepo}
}

func (s *postService) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, "find post %s", id)
	}
	return post, nil
}

// Create 写入后按新 id 回读
func (s *postService) Create(ctx context.Context, in *model.PostInput) (*model.Post, error) {
	if !in.Valid() {
		return nil, ErrInvalidPost
	}
	id, err := s.postRepo.Insert(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		// 刚写入的记录读不到，视为存储故障而非 404
		return nil, fmt.Errorf("refetch created post %s: %w", id, err)
	}
	return post, nil
}

// Update 受影响行数 < 1 视为不存在；成功后回读最新数据
func (s *postService) Update(ctx context.Context, id string, in *model.PostInput) (*model.Post, error) {
	if !in.Valid() {
		return nil, ErrInvalidPost
	}
	n, err := s.postRepo.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update post %s: %w", id, err)
	}
	if n < 1 {
		return nil, ErrPostNotFound
	}
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, "refetch updated post %s", id)
	}
	return post, nil
}

// Delete 先读出原记录再删除，返回删除前的数据
func (s *postService) Delete(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, "find post %s", id)
	}
	n, err := s.postRepo.Remove(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("remove post %s: %w", id, err)
	}
	if n < 1 {
		// 读取与删除之间被并发删掉
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) mapErr(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrPostNotFound) {
		return ErrPostNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

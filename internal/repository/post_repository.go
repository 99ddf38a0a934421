package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/posts-api/internal/model"
)

// ErrPostNotFound 按 id 查不到文章
var ErrPostNotFound = errors.New("post not found")

// PostRepository 文章仓储（数据存储层）
type PostRepository interface {
	// List 全部文章，按创建时间升序
	List(ctx context.Context) ([]*model.Post, error)

	// FindByID 不存在时返回 ErrPostNotFound
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// Insert 写入新文章，返回生成的 id
	Insert(ctx context.Context, in *model.PostInput) (string, error)

	// Update 整体替换 title/contents，返回受影响行数
	Update(ctx context.Context, id string, in *model.PostInput) (int64, error)

	// Remove 删除，返回受影响行数
	Remove(ctx context.Context, id string) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) List(ctx context.Context) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Insert(ctx context.Context, in *model.PostInput) (string, error) {
	post := &model.Post{ID: uuid.New().String(), Title: in.Title, Contents: in.Contents}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return "", err
	}
	return post.ID, nil
}

func (r *postRepository) Update(ctx context.Context, id string, in *model.PostInput) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Updates(map[string]any{"title": in.Title, "contents": in.Contents})
	return res.RowsAffected, res.Error
}

func (r *postRepository) Remove(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{})
	return res.RowsAffected, res.Error
}

package model

import "time"

// Post 文章，唯一的资源类型
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Contents  string    `json:"contents" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_post_created"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

// PostInput 创建/更新时客户端可写的字段（整体替换）
type PostInput struct {
	Title    string `json:"title" binding:"required"`
	Contents string `json:"contents" binding:"required"`
}

// Valid 两个字段都必须非空
func (in *PostInput) Valid() bool {
	return in != nil && in.Title != "" && in.Contents != ""
}

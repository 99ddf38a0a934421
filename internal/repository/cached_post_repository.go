package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/posts-api/internal/model"
	"github.com/d60-Lab/posts-api/pkg/logger"
)

const (
	listCacheKey   = "posts:list"
	listVersionKey = "posts:list:ver"
)

func postCacheKey(id string) string   { return fmt.Sprintf("post:%s", id) }
func postVersionKey(id string) string { return fmt.Sprintf("post:%s:ver", id) }

// 回填期间版本号变化，放弃写入
var errStaleFill = errors.New("cache fill superseded by a write")

// CachedPostRepository 在 PostRepository 外包一层 Redis 读穿缓存。
// 每个缓存 key 配一个版本号：写操作成功后递增版本并删除 key，
// 回填前记下版本号，只有版本未变时才写入，避免并发写之后回填旧数据。
// Redis 不可用时直接回落到底层存储。
type CachedPostRepository struct {
	next  PostRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedPostRepository(next PostRepository, cache *redis.Client, ttl time.Duration) *CachedPostRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedPostRepository{next: next, cache: cache, ttl: ttl}
}

func (r *CachedPostRepository) List(ctx context.Context) ([]*model.Post, error) {
	var cached []*model.Post
	if r.get(ctx, listCacheKey, &cached) {
		return cached, nil
	}

	ver, ok := r.version(ctx, listVersionKey)
	posts, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		r.fill(ctx, listCacheKey, listVersionKey, ver, posts)
	}
	return posts, nil
}

func (r *CachedPostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	key := postCacheKey(id)
	var cached model.Post
	if r.get(ctx, key, &cached) {
		return &cached, nil
	}

	ver, ok := r.version(ctx, postVersionKey(id))
	post, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		r.fill(ctx, key, postVersionKey(id), ver, post)
	}
	return post, nil
}

func (r *CachedPostRepository) Insert(ctx context.Context, in *model.PostInput) (string, error) {
	id, err := r.next.Insert(ctx, in)
	if err != nil {
		return "", err
	}
	r.invalidate(ctx, []string{listVersionKey}, listCacheKey)
	return id, nil
}

func (r *CachedPostRepository) Update(ctx context.Context, id string, in *model.PostInput) (int64, error) {
	n, err := r.next.Update(ctx, id, in)
	if err != nil {
		return n, err
	}
	if n > 0 {
		r.invalidate(ctx, []string{postVersionKey(id), listVersionKey}, postCacheKey(id), listCacheKey)
	}
	return n, nil
}

func (r *CachedPostRepository) Remove(ctx context.Context, id string) (int64, error) {
	n, err := r.next.Remove(ctx, id)
	if err != nil {
		return n, err
	}
	if n > 0 {
		r.invalidate(ctx, []string{postVersionKey(id), listVersionKey}, postCacheKey(id), listCacheKey)
	}
	return n, nil
}

func (r *CachedPostRepository) get(ctx context.Context, key string, dst any) bool {
	data, err := r.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("post cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Warn("post cache payload corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// version 读取当前版本号；不存在视为 0。读取失败时返回 false，本次不回填
func (r *CachedPostRepository) version(ctx context.Context, verKey string) (int64, bool) {
	ver, err := r.cache.Get(ctx, verKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn("post cache version read failed", zap.String("key", verKey), zap.Error(err))
		return 0, false
	}
	return ver, true
}

// fill 在 WATCH 版本号的事务里写入，版本已变则放弃
func (r *CachedPostRepository) fill(ctx context.Context, key, verKey string, ver int64, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	err = r.cache.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != ver {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, verKey)
	switch {
	case err == nil, errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
	default:
		logger.Warn("post cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate 递增版本号并删除缓存，两步在同一事务内
func (r *CachedPostRepository) invalidate(ctx context.Context, verKeys []string, keys ...string) {
	_, err := r.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, vk := range verKeys {
			pipe.Incr(ctx, vk)
			// 版本号比缓存活得久即可
			pipe.Expire(ctx, vk, 2*r.ttl)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		logger.Warn("post cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

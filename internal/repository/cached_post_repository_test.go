package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/posts-api/internal/model"
	"github.com/d60-Lab/posts-api/internal/testutil"
)

// countingRepo 统计落到底层存储的读次数
type countingRepo struct {
	PostRepository
	finds int
	lists int
}

func (r *countingRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	r.finds++
	return r.PostRepository.FindByID(ctx, id)
}

func (r *countingRepo) List(ctx context.Context) ([]*model.Post, error) {
	r.lists++
	return r.PostRepository.List(ctx)
}

func setupCachedRepo(t *testing.T) (*CachedPostRepository, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &countingRepo{PostRepository: NewPostRepository(testutil.NewTestDB(t))}
	return NewCachedPostRepository(inner, rdb, time.Minute), inner, mr
}

func TestCachedPostRepository_FindByIDHitsCache(t *testing.T) {
	repo, inner, mr := setupCachedRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &model.PostInput{Title: "A", Contents: "B"})
	require.NoError(t, err)

	first, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.finds)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "A", second.Title)
	assert.True(t, mr.Exists(postCacheKey(id)))
	assert.Equal(t, time.Minute, mr.TTL(postCacheKey(id)))
}

func TestCachedPostRepository_MissingNotCached(t *testing.T) {
	repo, inner, mr := setupCachedRepo(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)

	assert.Equal(t, 2, inner.finds)
	assert.False(t, mr.Exists(postCacheKey("missing")))
}

func TestCachedPostRepository_WritesInvalidate(t *testing.T) {
	repo, inner, mr := setupCachedRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &model.PostInput{Title: "A", Contents: "B"})
	require.NoError(t, err)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.lists)

	// 新增后列表缓存失效
	_, err = repo.Insert(ctx, &model.PostInput{Title: "C", Contents: "D"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(listCacheKey))
	posts, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, 2, inner.lists)

	_, err = repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.True(t, mr.Exists(postCacheKey(id)))

	n, err := repo.Update(ctx, id, &model.PostInput{Title: "A2", Contents: "B2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, mr.Exists(postCacheKey(id)))
	assert.False(t, mr.Exists(listCacheKey))

	post, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A2", post.Title)

	n, err = repo.Remove(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, mr.Exists(postCacheKey(id)))

	_, err = repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCachedPostRepository_RedisDownFallsThrough(t *testing.T) {
	repo, inner, mr := setupCachedRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &model.PostInput{Title: "A", Contents: "B"})
	require.NoError(t, err)

	mr.Close()

	post, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", post.Title)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	n, err := repo.Remove(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, inner.finds)
}

func TestCachedPostRepository_CorruptPayload(t *testing.T) {
	repo, inner, mr := setupCachedRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &model.PostInput{Title: "A", Contents: "B"})
	require.NoError(t, err)
	require.NoError(t, mr.Set(postCacheKey(id), "not-json"))

	post, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", post.Title)
	assert.Equal(t, 1, inner.finds)
}

// racingRepo 在底层读完成之后、缓存回填之前执行 afterRead，模拟并发写
type racingRepo struct {
	PostRepository
	afterRead func()
}

func (r *racingRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	post, err := r.PostRepository.FindByID(ctx, id)
	r.race()
	return post, err
}

func (r *racingRepo) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := r.PostRepository.List(ctx)
	r.race()
	return posts, err
}

func (r *racingRepo) race() {
	if fn := r.afterRead; fn != nil {
		r.afterRead = nil
		fn()
	}
}

func setupRacingRepo(t *testing.T) (*CachedPostRepository, *racingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &racingRepo{PostRepository: NewPostRepository(testutil.NewTestDB(t))}
	return NewCachedPostRepository(inner, rdb, time.Minute), inner, mr
}

func TestCachedPostRepository_RemoveDuringFillNotResurrected(t *testing.T) {
	repo, inner, mr := setupRacingRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &model.PostInput{Title: "A", Contents: "B"})
	require.NoError(t, err)

	inner.afterRead = func() {
		n, err := repo.Remove(ctx, id)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
	}
	// 这次读在删除之前完成，返回旧数据没问题，但不能写回缓存
	post, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", post.Title)
	assert.False(t, mr.Exists(postCacheKey(id)))

	_, err = repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCachedPostRepository_UpdateDuringFillNotOverwritten(t *testing.T) {
	repo, inner, mr := setupRacingRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &model.PostInput{Title: "A", Contents: "B"})
	require.NoError(t, err)

	inner.afterRead = func() {
		_, err := repo.Update(ctx, id, &model.PostInput{Title: "A2", Contents: "B2"})
		require.NoError(t, err)
	}
	_, err = repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, mr.Exists(postCacheKey(id)))

	post, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A2", post.Title)
	// 版本未变时正常回填
	assert.True(t, mr.Exists(postCacheKey(id)))
}

func TestCachedPostRepository_InsertDuringListFill(t *testing.T) {
	repo, inner, mr := setupRacingRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, &model.PostInput{Title: "A", Contents: "B"})
	require.NoError(t, err)

	inner.afterRead = func() {
		_, err := repo.Insert(ctx, &model.PostInput{Title: "C", Contents: "D"})
		require.NoError(t, err)
	}
	posts, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.False(t, mr.Exists(listCacheKey))

	posts, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

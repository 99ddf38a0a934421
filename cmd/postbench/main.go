package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/d60-Lab/posts-api/config"
	"github.com/d60-Lab/posts-api/internal/model"
	"github.com/d60-Lab/posts-api/internal/repository"
	"github.com/d60-Lab/posts-api/pkg/cache"
	"github.com/d60-Lab/posts-api/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

// run 用 conc 个 worker 执行 n 次 op，返回每次耗时
func run(n, conc int, op func(i int)) ([]time.Duration, time.Duration) {
	if conc > n {
		conc = n
	}
	feed := make(chan int, n)
	for i := 0; i < n; i++ {
		feed <- i
	}
	close(feed)

	out := make(chan time.Duration, n)
	var wg sync.WaitGroup
	t0 := time.Now()
	for w := 0; w < conc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range feed {
				st := time.Now()
				op(i)
				out <- time.Since(st)
			}
		}()
	}
	wg.Wait()
	total := time.Since(t0)
	close(out)

	recs := make([]time.Duration, 0, n)
	for d := range out {
		recs = append(recs, d)
	}
	return recs, total
}

func report(name string, recs []time.Duration, total time.Duration) {
	fmt.Printf("%-14s total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		name, total, total/time.Duration(len(recs)), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99))
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	N := envInt("N", 2000)
	defConc := 8
	if cfg.Database.Driver == "sqlite" {
		// sqlite 单写者
		defConc = 1
	}
	CONC := envInt("CONC", defConc)
	READS := envInt("READS", N*5)

	store := repository.NewPostRepository(db)

	// 写入
	ids := make([]string, N)
	recs, total := run(N, CONC, func(i int) {
		id, err := store.Insert(ctx, &model.PostInput{
			Title:    fmt.Sprintf("post %d", i),
			Contents: fmt.Sprintf("contents of post %d", i),
		})
		if err != nil {
			panic(err)
		}
		ids[i] = id
	})
	fmt.Printf("N=%d, CONC=%d, READS=%d, driver=%s\n", N, CONC, READS, cfg.Database.Driver)
	report("insert", recs, total)

	rng := rand.New(rand.NewSource(42))
	picks := make([]string, READS)
	for i := range picks {
		picks[i] = ids[rng.Intn(len(ids))]
	}

	read := func(repo repository.PostRepository) func(int) {
		return func(i int) {
			if _, err := repo.FindByID(ctx, picks[i]); err != nil {
				panic(err)
			}
		}
	}

	recs, total = run(READS, CONC, read(store))
	report("find (db)", recs, total)

	q0 := time.Now()
	posts := must(store.List(ctx))
	fmt.Printf("list (db)      %d rows in %v\n", len(posts), time.Since(q0))

	if !cfg.Redis.Enabled {
		fmt.Println("redis disabled, skip cached run")
		return
	}
	rdb := must(cache.NewRedis(ctx, cfg.Redis))
	defer rdb.Close()
	cached := repository.NewCachedPostRepository(store, rdb, cfg.Redis.TTL)

	// 第一轮填充缓存，第二轮全部命中
	recs, total = run(READS, CONC, read(cached))
	report("find (cold)", recs, total)
	recs, total = run(READS, CONC, read(cached))
	report("find (warm)", recs, total)

	q1 := time.Now()
	_ = must(cached.List(ctx))
	cold := time.Since(q1)
	q2 := time.Now()
	_ = must(cached.List(ctx))
	fmt.Printf("list (cache)   cold: %v, warm: %v\n", cold, time.Since(q2))
}

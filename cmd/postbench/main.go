package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/techtrends/internal/metrics"
	"github.com/d60-Lab/techtrends/internal/repository"
	"github.com/d60-Lab/techtrends/pkg/database"
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

// run 用 conc 个 worker 执行 n 次 op，返回总耗时与每次延迟
func run(n, conc int, op func(i int) error) (time.Duration, []time.Duration, int) {
	if conc > n {
		conc = n
	}
	feed := make(chan int, n)
	for i := 0; i < n; i++ {
		feed <- i
	}
	close(feed)

	type result struct {
		d   time.Duration
		err error
	}
	out := make(chan result, n)
	t0 := time.Now()
	for w := 0; w < conc; w++ {
		go func() {
			for i := range feed {
				st := time.Now()
				err := op(i)
				out <- result{time.Since(st), err}
			}
		}()
	}
	recs := make([]time.Duration, 0, n)
	failed := 0
	for i := 0; i < n; i++ {
		r := <-out
		if r.err != nil {
			failed++
			continue
		}
		recs = append(recs, r.d)
	}
	return time.Since(t0), recs, failed
}

func report(name string, n int, total time.Duration, recs []time.Duration, failed int) {
	fmt.Printf("%-8s total: %v, per op: %v, p50: %v, p95: %v, p99: %v, failed: %d\n",
		name, total, total/time.Duration(n), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99), failed)
}

func main() {
	N := envInt("N", 1000)
	CONC := envInt("CONC", 4)

	path := os.Getenv("DB")
	if path == "" {
		dir := must(os.MkdirTemp("", "postbench"))
		defer os.RemoveAll(dir)
		path = filepath.Join(dir, "database.db")
	}
	db := must(database.Open(path))
	if err := database.InitSchema(db); err != nil {
		panic(err)
	}
	_ = database.Close(db)

	counters := metrics.NewCounters()
	repo := repository.NewPostRepository(database.NewGateway(path, counters), counters)
	ctx := context.Background()

	// 并发写入时 sqlite 可能返回 busy，计入 failed
	createDur, createRecs, createFailed := run(N, CONC, func(i int) error {
		_, err := repo.Create(ctx, "bench "+uuid.NewString()[:8], fmt.Sprintf("post #%d", i))
		return err
	})

	total := must(repo.Count(ctx))
	if total == 0 {
		fmt.Println("no posts were created, aborting")
		os.Exit(1)
	}
	getDur, getRecs, getFailed := run(N, CONC, func(int) error {
		_, err := repo.GetByID(ctx, rand.Int63n(total)+1)
		return err
	})

	listN := N / 10
	if listN == 0 {
		listN = 1
	}
	listDur, listRecs, listFailed := run(listN, CONC, func(int) error {
		_, err := repo.List(ctx)
		return err
	})

	snap := counters.Snapshot()
	fmt.Printf("N=%d, CONC=%d, DB=%s\n", N, CONC, path)
	report("create", N, createDur, createRecs, createFailed)
	report("get", N, getDur, getRecs, getFailed)
	report("list", listN, listDur, listRecs, listFailed)
	fmt.Printf("db_connection_count=%d, post_count=%d\n", snap.DBConnectionCount, snap.PostCount)
}

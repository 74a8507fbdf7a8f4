package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/techtrends/internal/metrics"
	"github.com/d60-Lab/techtrends/pkg/database"
)

func setupPostDB(tb testing.TB, seed ...database.SeedPost) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "database.db")
	db, err := database.Open(path)
	require.NoError(tb, err)
	require.NoError(tb, database.InitSchema(db))
	if len(seed) > 0 {
		_, err = database.Seed(db, seed)
		require.NoError(tb, err)
	}
	require.NoError(tb, database.Close(db))
	return path
}

func newRepo(tb testing.TB, seed ...database.SeedPost) (PostRepository, *metrics.Counters) {
	counters := metrics.NewCounters()
	gw := database.NewGateway(setupPostDB(tb, seed...), counters)
	return NewPostRepository(gw, counters), counters
}

var twoPosts = []database.SeedPost{
	{Title: "A", Content: "first"},
	{Title: "B", Content: "second"},
}

func TestList_ReturnsAllAndRecordsCount(t *testing.T) {
	repo, counters := newRepo(t, twoPosts...)

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "A", posts[0].Title)
	assert.Equal(t, "B", posts[1].Title)
	assert.False(t, posts[0].Created.IsZero())
	assert.Equal(t, int64(2), counters.PostCount())
	assert.Equal(t, int64(1), counters.ConnectionCount())
}

func TestList_Empty(t *testing.T) {
	repo, counters := newRepo(t)
	counters.RecordPostCount(9)

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, int64(0), counters.PostCount())
}

func TestList_StableOrder(t *testing.T) {
	repo, _ := newRepo(t, database.DefaultPosts...)
	ctx := context.Background()

	first, err := repo.List(ctx)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGetByID(t *testing.T) {
	repo, _ := newRepo(t, twoPosts...)
	ctx := context.Background()

	post, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.ID)
	assert.Equal(t, "A", post.Title)
	assert.Equal(t, "first", post.Content)

	for _, id := range []int64{0, -1, 3, 99} {
		post, err := repo.GetByID(ctx, id)
		assert.Nil(t, post)
		assert.True(t, errors.Is(err, ErrPostNotFound), "id %d", id)
	}
}

func TestCreate_ThenList(t *testing.T) {
	repo, counters := newRepo(t, twoPosts...)
	ctx := context.Background()

	before, err := repo.List(ctx)
	require.NoError(t, err)

	created, err := repo.Create(ctx, "C", "x")
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
	assert.False(t, created.Created.IsZero())

	after, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)
	assert.Equal(t, int64(3), counters.PostCount())

	last := after[len(after)-1]
	assert.Equal(t, "C", last.Title)
	assert.Equal(t, "x", last.Content)
}

func TestCreate_PreservesTitle(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	post, err := repo.Create(ctx, "  Kubernetes ", "")
	require.NoError(t, err)
	assert.Equal(t, "  Kubernetes ", post.Title)
	assert.Equal(t, "", post.Content)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "  Kubernetes ", posts[0].Title)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "  Kubernetes ", got.Title)
}

func TestCreate_RejectsBlankTitle(t *testing.T) {
	repo, counters := newRepo(t, twoPosts...)
	ctx := context.Background()

	for _, title := range []string{"", "   ", "\t\n"} {
		post, err := repo.Create(ctx, title, "content")
		assert.Nil(t, post)
		assert.True(t, errors.Is(err, ErrEmptyTitle))
	}
	// validation happens before a connection is acquired
	assert.Equal(t, int64(0), counters.ConnectionCount())

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRepository_StorageUnavailable(t *testing.T) {
	counters := metrics.NewCounters()
	gw := database.NewGateway(filepath.Join(t.TempDir(), "nope.db"), counters)
	repo := NewPostRepository(gw, counters)
	ctx := context.Background()

	_, err := repo.List(ctx)
	assert.True(t, errors.Is(err, database.ErrStorageUnavailable))
	_, err = repo.GetByID(ctx, 1)
	assert.True(t, errors.Is(err, database.ErrStorageUnavailable))
	_, err = repo.Create(ctx, "t", "c")
	assert.True(t, errors.Is(err, database.ErrStorageUnavailable))
	_, err = repo.Count(ctx)
	assert.True(t, errors.Is(err, database.ErrStorageUnavailable))
	assert.Equal(t, int64(0), counters.ConnectionCount())
}

func TestRepository_SchemaMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := database.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE other (id INTEGER)").Error)
	require.NoError(t, database.Close(db))

	repo := NewPostRepository(database.NewGateway(path, nil), nil)
	_, err = repo.List(context.Background())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, database.ErrStorageUnavailable))

	n, err := repo.Count(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count posts")
	assert.Equal(t, int64(0), n)
}

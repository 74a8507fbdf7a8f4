package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct{ n atomic.Int64 }

func (r *countingRecorder) RecordConnection() { r.n.Add(1) }

func newTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, InitSchema(db))
	require.NoError(t, Close(db))
	return path
}

func TestAcquire_CountsEverySuccessfulConnection(t *testing.T) {
	rec := &countingRecorder{}
	gw := NewGateway(newTestDB(t), rec)
	ctx := context.Background()

	const n = 7
	for i := 0; i < n; i++ {
		conn, err := gw.Acquire(ctx)
		require.NoError(t, err)
		require.NoError(t, conn.Close())
	}
	assert.Equal(t, int64(n), rec.n.Load())
}

func TestAcquire_MissingFile(t *testing.T) {
	rec := &countingRecorder{}
	path := filepath.Join(t.TempDir(), "missing.db")
	gw := NewGateway(path, rec)

	conn, err := gw.Acquire(context.Background())
	assert.Nil(t, conn)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.Equal(t, int64(0), rec.n.Load())

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "acquire must not create the database file")
	assert.False(t, gw.Exists())
}

func TestAcquire_NilRecorder(t *testing.T) {
	gw := NewGateway(newTestDB(t), nil)
	conn, err := gw.Acquire(context.Background())
	require.NoError(t, err)
	assert.NoError(t, conn.Close())
}

func TestAcquire_NamedColumns(t *testing.T) {
	path := newTestDB(t)
	db, err := Open(path)
	require.NoError(t, err)
	n, err := Seed(db, DefaultPosts)
	require.NoError(t, err)
	require.Equal(t, len(DefaultPosts), n)
	require.NoError(t, Close(db))

	gw := NewGateway(path, nil)
	conn, err := gw.Acquire(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	var row map[string]any
	require.NoError(t, conn.DB.Table(PostsTable).Where("id = ?", 1).Take(&row).Error)
	assert.Equal(t, DefaultPosts[0].Title, row["title"])
	assert.Contains(t, row, "content")
}

func TestExists_Directory(t *testing.T) {
	gw := NewGateway(t.TempDir(), nil)
	assert.False(t, gw.Exists())
}

func TestSeed_SkipsWhenPopulated(t *testing.T) {
	path := newTestDB(t)
	db, err := Open(path)
	require.NoError(t, err)
	defer Close(db)

	n, err := Seed(db, DefaultPosts[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Seed(db, DefaultPosts)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var count int64
	require.NoError(t, db.Table(PostsTable).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestInitSchema_Idempotent(t *testing.T) {
	path := newTestDB(t)
	db, err := Open(path)
	require.NoError(t, err)
	defer Close(db)
	assert.NoError(t, InitSchema(db))
	assert.True(t, db.Migrator().HasTable(PostsTable))
}

package vectorstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/qaforge/internal/config"
	"github.com/xxxsen/qaforge/internal/db"
	"github.com/xxxsen/qaforge/internal/model"
	apperrors "github.com/xxxsen/qaforge/internal/pkg/errors"
)

func newTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	database, err := db.Open(config.DatabaseConfig{Driver: db.DriverSQLite, Path: path})
	require.NoError(t, err)
	require.NoError(t, db.ApplyMigrations(database, db.DriverSQLite))
	return database
}

func seedEntries() ([]string, [][]float32, []string, []model.ChunkMeta) {
	ids := []string{"guide.md_0", "guide.md_1", "faq.txt_0"}
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		{0.9, 0.1},
	}
	documents := []string{"enrollment steps", "payment options", "enrollment faq"}
	metas := []model.ChunkMeta{
		{SourceFile: "guide.md", FileType: "markdown", ChunkIndex: 0},
		{SourceFile: "guide.md", FileType: "markdown", ChunkIndex: 1},
		{SourceFile: "faq.txt", FileType: "text", ChunkIndex: 0},
	}
	return ids, vectors, documents, metas
}

func TestCreateCollectionIdempotent(t *testing.T) {
	database := newTestDB(t, filepath.Join(t.TempDir(), "store.db"))
	defer database.Close()
	store := newSQLiteStore(database)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, "qa_documents"))
	require.NoError(t, store.CreateCollection(ctx, "qa_documents"))
	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestQueryOrdersByDistance(t *testing.T) {
	database := newTestDB(t, filepath.Join(t.TempDir(), "store.db"))
	defer database.Close()
	store := newSQLiteStore(database)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, ""))
	ids, vectors, documents, metas := seedEntries()
	require.NoError(t, store.Add(ctx, ids, vectors, documents, metas))

	results, err := store.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "guide.md_0", results[0].ID)
	require.Equal(t, "faq.txt_0", results[1].ID)
	require.LessOrEqual(t, results[0].Distance, results[1].Distance)
	require.Equal(t, "enrollment steps", results[0].Document)
	require.Equal(t, "guide.md", results[0].Meta.SourceFile)
	require.Equal(t, "markdown", results[0].Meta.FileType)
	require.Equal(t, 0, results[0].Meta.ChunkIndex)
}

func TestQueryClampsTopK(t *testing.T) {
	database := newTestDB(t, filepath.Join(t.TempDir(), "store.db"))
	defer database.Close()
	store := newSQLiteStore(database)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, ""))
	results, err := store.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Empty(t, results)

	ids, vectors, documents, metas := seedEntries()
	require.NoError(t, store.Add(ctx, ids, vectors, documents, metas))
	results, err = store.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
}

func TestAddValidation(t *testing.T) {
	database := newTestDB(t, filepath.Join(t.TempDir(), "store.db"))
	defer database.Close()
	store := newSQLiteStore(database)
	ctx := context.Background()

	ids, vectors, documents, metas := seedEntries()
	err := store.Add(ctx, ids, vectors, documents, metas)
	require.ErrorIs(t, err, apperrors.ErrNotInitialized)

	require.NoError(t, store.CreateCollection(ctx, ""))
	err = store.Add(ctx, ids[:2], vectors, documents, metas)
	require.ErrorIs(t, err, apperrors.ErrMalformedInput)
}

func TestAddReplacesSameID(t *testing.T) {
	database := newTestDB(t, filepath.Join(t.TempDir(), "store.db"))
	defer database.Close()
	store := newSQLiteStore(database)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, ""))
	meta := model.ChunkMeta{SourceFile: "a.txt", FileType: "text", ChunkIndex: 0}
	require.NoError(t, store.Add(ctx, []string{"a.txt_0"}, [][]float32{{1, 0}}, []string{"first"}, []model.ChunkMeta{meta}))
	require.NoError(t, store.Add(ctx, []string{"a.txt_0"}, [][]float32{{1, 0}}, []string{"second"}, []model.ChunkMeta{meta}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	results, err := store.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Equal(t, "second", results[0].Document)
}

func TestDimensionMismatch(t *testing.T) {
	database := newTestDB(t, filepath.Join(t.TempDir(), "store.db"))
	defer database.Close()
	store := newSQLiteStore(database)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, ""))
	meta := model.ChunkMeta{SourceFile: "a.txt", FileType: "text"}
	require.NoError(t, store.Add(ctx, []string{"a.txt_0"}, [][]float32{{1, 0}}, []string{"doc"}, []model.ChunkMeta{meta}))

	err := store.Add(ctx, []string{"a.txt_1"}, [][]float32{{1, 0, 0}}, []string{"doc"}, []model.ChunkMeta{meta})
	require.ErrorIs(t, err, apperrors.ErrMalformedInput)

	_, err = store.Query(ctx, []float32{1, 0, 0}, 1)
	require.ErrorIs(t, err, apperrors.ErrMalformedInput)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	database := newTestDB(t, path)
	store := newSQLiteStore(database)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, "qa_documents"))
	ids, vectors, documents, metas := seedEntries()
	require.NoError(t, store.Add(ctx, ids, vectors, documents, metas))
	require.NoError(t, database.Close())

	reopened := newTestDB(t, path)
	defer reopened.Close()
	fresh := newSQLiteStore(reopened)
	require.NoError(t, fresh.CreateCollection(ctx, "qa_documents"))

	count, err := fresh.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	results, err := fresh.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Equal(t, "guide.md_1", results[0].ID)
}

func TestClearDropsCollection(t *testing.T) {
	database := newTestDB(t, filepath.Join(t.TempDir(), "store.db"))
	defer database.Close()
	store := newSQLiteStore(database)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, ""))
	ids, vectors, documents, metas := seedEntries()
	require.NoError(t, store.Add(ctx, ids, vectors, documents, metas))
	require.NoError(t, store.Clear(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	_, err = store.Query(ctx, []float32{1, 0}, 1)
	require.ErrorIs(t, err, apperrors.ErrNotInitialized)

	// clearing twice is fine
	require.NoError(t, store.Clear(ctx))
}

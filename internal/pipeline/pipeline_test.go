package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/qaforge/internal/ai"
	"github.com/xxxsen/qaforge/internal/chunker"
	"github.com/xxxsen/qaforge/internal/config"
	"github.com/xxxsen/qaforge/internal/db"
	"github.com/xxxsen/qaforge/internal/model"
	apperrors "github.com/xxxsen/qaforge/internal/pkg/errors"
	"github.com/xxxsen/qaforge/internal/vectorstore"
)

func newTestStore(t *testing.T) vectorstore.Store {
	t.Helper()
	database, err := db.Open(config.DatabaseConfig{Driver: db.DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.ApplyMigrations(database, db.DriverSQLite))
	return vectorstore.New(database, db.DriverSQLite)
}

func simpleFactory(t *testing.T) EmbedderFactory {
	t.Helper()
	return func(ctx context.Context) (ai.IEmbedder, error) {
		provider, err := ai.NewEmbedProvider("simple", map[string]interface{}{"dim": 16})
		if err != nil {
			return nil, err
		}
		return ai.NewEmbedder(provider, "hash"), nil
	}
}

func testDocs() []model.Document {
	return []model.Document{
		{Content: "Enrollment requires a student account and a valid email.", FileName: "enroll.md", FileType: "markdown"},
		{Content: "Checkout supports coupon codes and credit card payments.", FileName: "checkout.txt", FileType: "text"},
	}
}

func TestBuildAndRetrieve(t *testing.T) {
	store := newTestStore(t)
	p := New(chunker.New(500, 50), store, "qa_documents", simpleFactory(t))
	ctx := context.Background()

	n, err := p.Build(ctx, testDocs())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	count, err := p.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	first, err := p.Retrieve(ctx, "how does enrollment work", 5)
	require.NoError(t, err)
	require.Len(t, first, 2)
	for _, item := range first {
		require.NotEmpty(t, item.Content)
		require.NotEmpty(t, item.Metadata.SourceFile)
	}

	second, err := p.Retrieve(ctx, "how does enrollment work", 5)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestRetrieveValidation(t *testing.T) {
	store := newTestStore(t)
	factoryCalls := 0
	p := New(chunker.New(500, 50), store, "", func(ctx context.Context) (ai.IEmbedder, error) {
		factoryCalls++
		return nil, fmt.Errorf("should not be reached")
	})
	ctx := context.Background()

	_, err := p.Retrieve(ctx, "   ", 5)
	require.ErrorIs(t, err, apperrors.ErrMalformedInput)

	_, err = p.Retrieve(ctx, "query", 0)
	require.ErrorIs(t, err, apperrors.ErrMalformedInput)

	_, err = p.Retrieve(ctx, "query", -3)
	require.ErrorIs(t, err, apperrors.ErrMalformedInput)

	require.Equal(t, 0, factoryCalls)
}

func TestEmbedderInitializedOnce(t *testing.T) {
	store := newTestStore(t)
	factoryCalls := 0
	inner := simpleFactory(t)
	p := New(chunker.New(500, 50), store, "", func(ctx context.Context) (ai.IEmbedder, error) {
		factoryCalls++
		return inner(ctx)
	})
	ctx := context.Background()

	_, err := p.Build(ctx, testDocs())
	require.NoError(t, err)
	_, err = p.Retrieve(ctx, "coupon", 1)
	require.NoError(t, err)
	_, err = p.Retrieve(ctx, "enrollment", 1)
	require.NoError(t, err)
	require.Equal(t, 1, factoryCalls)
}

func TestFactoryFailureRetriesNextCall(t *testing.T) {
	store := newTestStore(t)
	attempts := 0
	inner := simpleFactory(t)
	p := New(chunker.New(500, 50), store, "", func(ctx context.Context) (ai.IEmbedder, error) {
		attempts++
		if attempts == 1 {
			return nil, ai.ErrUnavailable
		}
		return inner(ctx)
	})
	ctx := context.Background()

	_, err := p.Build(ctx, testDocs())
	require.ErrorIs(t, err, ai.ErrUnavailable)

	n, err := p.Build(ctx, testDocs())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 2, attempts)
}

func TestBuildWithNoDocuments(t *testing.T) {
	store := newTestStore(t)
	p := New(chunker.New(500, 50), store, "", func(ctx context.Context) (ai.IEmbedder, error) {
		t.Fatal("factory must not run when there is nothing to encode")
		return nil, nil
	})
	n, err := p.Build(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestResetRecreatesCollection(t *testing.T) {
	store := newTestStore(t)
	p := New(chunker.New(500, 50), store, "qa_documents", simpleFactory(t))
	ctx := context.Background()

	_, err := p.Build(ctx, testDocs())
	require.NoError(t, err)
	require.NoError(t, p.Reset(ctx))

	count, err := p.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	n, err := p.Build(ctx, testDocs())
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

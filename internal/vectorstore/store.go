package vectorstore

import (
	"context"
	"database/sql"

	"github.com/xxxsen/qaforge/internal/db"
	"github.com/xxxsen/qaforge/internal/model"
)

const (
	// DefaultCollection is used when callers do not pick a collection name.
	DefaultCollection = "qa_documents"

	collectionDescription = "QA Agent document embeddings"
)

// QueryResult is one scored neighbour, ordered by ascending Euclidean
// distance from the query vector.
type QueryResult struct {
	ID       string
	Document string
	Meta     model.ChunkMeta
	Distance float64
}

// Store is a persistent named-collection vector store. CreateCollection binds
// the store to one active collection; Add, Query and Count operate on it and
// fail with ErrNotInitialized before the first CreateCollection. Clear drops
// the active collection entirely.
type Store interface {
	CreateCollection(ctx context.Context, name string) error
	Add(ctx context.Context, ids []string, vectors [][]float32, documents []string, metas []model.ChunkMeta) error
	Query(ctx context.Context, vector []float32, topK int) ([]QueryResult, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// New picks the store implementation matching the database driver.
func New(database *sql.DB, driver string) Store {
	if driver == db.DriverPostgres {
		return newPostgresStore(database)
	}
	return newSQLiteStore(database)
}

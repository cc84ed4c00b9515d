package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/qaforge/internal/model"
	"github.com/xxxsen/qaforge/internal/pkg/dbutil"
	apperrors "github.com/xxxsen/qaforge/internal/pkg/errors"
)

// postgresStore delegates nearest-neighbour ordering to pgvector.
type postgresStore struct {
	db     *sql.DB
	mu     sync.Mutex
	active *collectionRef
}

func newPostgresStore(database *sql.DB) *postgresStore {
	return &postgresStore{db: database}
}

func (s *postgresStore) CreateCollection(ctx context.Context, name string) error {
	if name == "" {
		name = DefaultCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, err := s.lookupCollection(ctx, name)
	if err == nil {
		s.active = ref
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}
	const insert = `
		INSERT INTO collections (name, description, dim, ctime)
		VALUES ($1, $2, 0, $3)
		RETURNING id
	`
	var id int64
	err = s.db.QueryRowContext(ctx, insert, name, collectionDescription, time.Now().UnixMilli()).Scan(&id)
	if err != nil {
		// lost the race to a concurrent creator, read theirs
		if dbutil.IsConflict(err) {
			ref, lerr := s.lookupCollection(ctx, name)
			if lerr != nil {
				return lerr
			}
			s.active = ref
			return nil
		}
		return err
	}
	s.active = &collectionRef{id: id, name: name}
	return nil
}

func (s *postgresStore) lookupCollection(ctx context.Context, name string) (*collectionRef, error) {
	where := map[string]interface{}{
		"name": name,
	}
	sqlStr, args, err := builder.BuildSelect("collections", where, []string{"id", "dim"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	ref := &collectionRef{name: name}
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&ref.id, &ref.dim); err != nil {
		return nil, err
	}
	return ref, nil
}

func (s *postgresStore) Add(ctx context.Context, ids []string, vectors [][]float32, documents []string, metas []model.ChunkMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return apperrors.ErrNotInitialized
	}
	if err := validateBatch(ids, vectors, documents, metas); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	dim, err := batchDim(vectors, s.active.dim)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	const upsert = `
		INSERT INTO chunks (collection_id, chunk_id, document, embedding, source_file, file_type, chunk_index, ctime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (collection_id, chunk_id) DO UPDATE SET
			document = EXCLUDED.document,
			embedding = EXCLUDED.embedding,
			source_file = EXCLUDED.source_file,
			file_type = EXCLUDED.file_type,
			chunk_index = EXCLUDED.chunk_index,
			ctime = EXCLUDED.ctime
	`
	now := time.Now().UnixMilli()
	for i, id := range ids {
		_, err := tx.ExecContext(ctx, upsert,
			s.active.id,
			id,
			documents[i],
			pgvector.NewVector(vectors[i]),
			metas[i].SourceFile,
			metas[i].FileType,
			metas[i].ChunkIndex,
			now,
		)
		if err != nil {
			return err
		}
	}
	if s.active.dim == 0 {
		if _, err := tx.ExecContext(ctx, "UPDATE collections SET dim = $1 WHERE id = $2", dim, s.active.id); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if s.active.dim == 0 {
		s.active.dim = dim
	}
	return nil
}

func (s *postgresStore) Query(ctx context.Context, vector []float32, topK int) ([]QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, apperrors.ErrNotInitialized
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive", apperrors.ErrMalformedInput)
	}
	if s.active.dim > 0 && len(vector) != s.active.dim {
		return nil, fmt.Errorf("%w: query dim %d, collection dim %d", apperrors.ErrMalformedInput, len(vector), s.active.dim)
	}
	const query = `
		SELECT chunk_id, document, source_file, file_type, chunk_index, embedding <-> $2 AS distance
		FROM chunks
		WHERE collection_id = $1
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, s.active.id, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []QueryResult
	for rows.Next() {
		var item QueryResult
		if err := rows.Scan(&item.ID, &item.Document, &item.Meta.SourceFile, &item.Meta.FileType, &item.Meta.ChunkIndex, &item.Distance); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

func (s *postgresStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return 0, nil
	}
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE collection_id = $1", s.active.id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *postgresStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE collection_id = $1", s.active.id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE id = $1", s.active.id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.active = nil
	return nil
}

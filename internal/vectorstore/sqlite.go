package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/qaforge/internal/model"
	apperrors "github.com/xxxsen/qaforge/internal/pkg/errors"
	"github.com/xxxsen/qaforge/internal/pkg/vecutil"
)

type collectionRef struct {
	id   int64
	name string
	dim  int
}

// sqliteStore keeps vectors as packed float32 blobs and scans the whole
// collection on query. Fine for the corpus sizes this service handles.
type sqliteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	active *collectionRef
}

func newSQLiteStore(database *sql.DB) *sqliteStore {
	return &sqliteStore{db: database}
}

func (s *sqliteStore) CreateCollection(ctx context.Context, name string) error {
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
	data := map[string]interface{}{
		"name":        name,
		"description": collectionDescription,
		"dim":         0,
		"ctime":       time.Now().UnixMilli(),
	}
	sqlStr, args, err := builder.BuildInsert("collections", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.active = &collectionRef{id: id, name: name}
	return nil
}

func (s *sqliteStore) lookupCollection(ctx context.Context, name string) (*collectionRef, error) {
	where := map[string]interface{}{
		"name": name,
	}
	sqlStr, args, err := builder.BuildSelect("collections", where, []string{"id", "dim"})
	if err != nil {
		return nil, err
	}
	ref := &collectionRef{name: name}
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&ref.id, &ref.dim); err != nil {
		return nil, err
	}
	return ref, nil
}

func (s *sqliteStore) Add(ctx context.Context, ids []string, vectors [][]float32, documents []string, metas []model.ChunkMeta) error {
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
	now := time.Now().UnixMilli()
	for i, id := range ids {
		data := map[string]interface{}{
			"collection_id": s.active.id,
			"chunk_id":      id,
			"document":      documents[i],
			"embedding":     vecutil.ToBytes(vectors[i]),
			"source_file":   metas[i].SourceFile,
			"file_type":     metas[i].FileType,
			"chunk_index":   metas[i].ChunkIndex,
			"ctime":         now,
		}
		sqlStr, args, err := builder.BuildInsert("chunks", []map[string]interface{}{data})
		if err != nil {
			return err
		}
		sqlStr = strings.Replace(sqlStr, "INSERT INTO", "INSERT OR REPLACE INTO", 1)
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	if s.active.dim == 0 {
		if _, err := tx.ExecContext(ctx, "UPDATE collections SET dim = ? WHERE id = ?", dim, s.active.id); err != nil {
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

func (s *sqliteStore) Query(ctx context.Context, vector []float32, topK int) ([]QueryResult, error) {
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
		SELECT chunk_id, document, embedding, source_file, file_type, chunk_index
		FROM chunks
		WHERE collection_id = ?
	`
	rows, err := s.db.QueryContext(ctx, query, s.active.id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []QueryResult
	for rows.Next() {
		var item QueryResult
		var blob []byte
		if err := rows.Scan(&item.ID, &item.Document, &blob, &item.Meta.SourceFile, &item.Meta.FileType, &item.Meta.ChunkIndex); err != nil {
			return nil, err
		}
		item.Distance = vecutil.L2Distance(vector, vecutil.FromBytes(blob))
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (s *sqliteStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return 0, nil
	}
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE collection_id = ?", s.active.id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *sqliteStore) Clear(ctx context.Context) error {
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
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE collection_id = ?", s.active.id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", s.active.id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.active = nil
	return nil
}

func validateBatch(ids []string, vectors [][]float32, documents []string, metas []model.ChunkMeta) error {
	if len(ids) != len(vectors) || len(ids) != len(documents) || len(ids) != len(metas) {
		return fmt.Errorf("%w: ids/vectors/documents/metadatas lengths differ", apperrors.ErrMalformedInput)
	}
	return nil
}

// batchDim checks every vector in the batch against the collection dimension
// (or the first vector when the collection is still empty) and returns the
// dimension the collection should record.
func batchDim(vectors [][]float32, collectionDim int) (int, error) {
	want := collectionDim
	for _, vec := range vectors {
		if len(vec) == 0 {
			return 0, fmt.Errorf("%w: empty vector", apperrors.ErrMalformedInput)
		}
		if want == 0 {
			want = len(vec)
			continue
		}
		if len(vec) != want {
			return 0, fmt.Errorf("%w: vector dim %d, want %d", apperrors.ErrMalformedInput, len(vec), want)
		}
	}
	return want, nil
}

package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/qaforge/internal/db"
	"github.com/xxxsen/qaforge/internal/model"
	"github.com/xxxsen/qaforge/internal/pkg/dbutil"
	"github.com/xxxsen/qaforge/internal/pkg/vecutil"
)

// EmbeddingCacheRepo persists embeddings keyed by (model, task type, content
// hash). Vectors are stored as packed bytes so the same rows work on both
// database drivers.
type EmbeddingCacheRepo struct {
	db     *sql.DB
	driver string
}

func NewEmbeddingCacheRepo(database *sql.DB, driver string) *EmbeddingCacheRepo {
	return &EmbeddingCacheRepo{db: database, driver: driver}
}

func (r *EmbeddingCacheRepo) Get(ctx context.Context, modelName, taskType, contentHash string) ([]float32, bool, error) {
	where := map[string]interface{}{
		"model_name":   modelName,
		"task_type":    taskType,
		"content_hash": contentHash,
	}
	sqlStr, args, err := builder.BuildSelect("embedding_cache", where, []string{"embedding"})
	if err != nil {
		return nil, false, err
	}
	if r.driver == db.DriverPostgres {
		sqlStr, args = dbutil.Finalize(sqlStr, args)
	}
	var blob []byte
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	return vecutil.FromBytes(blob), true, nil
}

func (r *EmbeddingCacheRepo) Save(ctx context.Context, item *model.EmbeddingCache) error {
	if r.driver == db.DriverPostgres {
		const query = `
			INSERT INTO embedding_cache (model_name, task_type, content_hash, embedding, ctime)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (model_name, task_type, content_hash) DO UPDATE SET
				embedding = EXCLUDED.embedding,
				ctime = EXCLUDED.ctime
		`
		_, err := r.db.ExecContext(ctx, query,
			item.ModelName,
			item.TaskType,
			item.ContentHash,
			vecutil.ToBytes(item.Embedding),
			item.Ctime,
		)
		return err
	}
	data := map[string]interface{}{
		"model_name":   item.ModelName,
		"task_type":    item.TaskType,
		"content_hash": item.ContentHash,
		"embedding":    vecutil.ToBytes(item.Embedding),
		"ctime":        item.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("embedding_cache", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr = strings.Replace(sqlStr, "INSERT INTO", "INSERT OR REPLACE INTO", 1)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *EmbeddingCacheRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	where := map[string]interface{}{
		"ctime <": cutoff,
	}
	sqlStr, args, err := builder.BuildDelete("embedding_cache", where)
	if err != nil {
		return 0, err
	}
	if r.driver == db.DriverPostgres {
		sqlStr, args = dbutil.Finalize(sqlStr, args)
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

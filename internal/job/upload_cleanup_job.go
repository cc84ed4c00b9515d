package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/qaforge/internal/filestore"
)

// UploadCleanupJob removes stored upload files that outlived their use. The
// parsed content lives in the index, so old source files are only kept around
// for re-parsing convenience.
type UploadCleanupJob struct {
	store      filestore.Store
	maxAgeDays int
}

func NewUploadCleanupJob(store filestore.Store, maxAgeDays int) *UploadCleanupJob {
	return &UploadCleanupJob{store: store, maxAgeDays: maxAgeDays}
}

func (j *UploadCleanupJob) Name() string {
	return "upload_cleanup"
}

func (j *UploadCleanupJob) Run(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	maxAgeDays := j.maxAgeDays
	if maxAgeDays <= 0 {
		maxAgeDays = 7
	}
	cutoff := time.Now().Add(-time.Duration(maxAgeDays) * 24 * time.Hour)
	entries, err := j.store.List(ctx)
	if err != nil {
		return err
	}
	removed := 0
	for _, ent := range entries {
		if !ent.ModTime.Before(cutoff) {
			continue
		}
		if err := j.store.Delete(ctx, ent.Key); err != nil {
			logutil.GetLogger(ctx).Warn("delete expired upload failed", zap.String("key", ent.Key), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("expired uploads removed", zap.Int("count", removed))
	}
	return nil
}

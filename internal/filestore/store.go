package filestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xxxsen/qaforge/internal/config"
)

// Store is flat-keyed artifact storage. Uploaded source documents and
// generated scripts both go through it; keys never contain path separators.
type Store interface {
	Save(ctx context.Context, key string, r ReadSeekCloser, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, key string) error
}

type ReadSeekCloser interface {
	Read(p []byte) (n int, err error)
	Seek(offset int64, whence int) (int64, error)
	Close() error
}

// Entry describes one stored object; ModTime drives age-based cleanup.
type Entry struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// New builds a store from the shared file_store config. scope namespaces
// independent stores (uploads, scripts) under one configured root.
func New(cfg config.FileStoreConfig, scope string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "local":
		return newLocalStore(cfg.Dir, scope)
	case "s3":
		return newS3Store(cfg.S3, scope)
	default:
		return nil, fmt.Errorf("unsupported file store type: %s", cfg.Type)
	}
}

type bytesReadCloser struct {
	*bytes.Reader
}

func (bytesReadCloser) Close() error { return nil }

// BytesReader adapts an in-memory payload to the Save contract.
func BytesReader(b []byte) ReadSeekCloser {
	return bytesReadCloser{bytes.NewReader(b)}
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("file key is required")
	}
	if strings.Contains(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid file key: %s", key)
	}
	return nil
}

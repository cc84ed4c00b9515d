// Package service holds the application services behind the HTTP layer:
// knowledge base lifecycle, test case generation and script artifacts.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/qaforge/internal/filestore"
	"github.com/xxxsen/qaforge/internal/model"
	"github.com/xxxsen/qaforge/internal/parser"
	"github.com/xxxsen/qaforge/internal/pipeline"
	apperrors "github.com/xxxsen/qaforge/internal/pkg/errors"
)

// UploadFile is one file received from a multipart upload.
type UploadFile struct {
	Name string
	Data []byte
}

// UploadOutcome reports how a document batch fared. Failures are collected
// per file so one broken upload does not reject the rest of the batch.
type UploadOutcome struct {
	Parsed int      `json:"parsed"`
	Total  int      `json:"total"`
	Errors []string `json:"errors,omitempty"`
}

// KnowledgeStats feeds the health endpoint.
type KnowledgeStats struct {
	Documents  int  `json:"documents_loaded"`
	PageLoaded bool `json:"page_loaded"`
	Chunks     int  `json:"chunks_indexed"`
}

// KnowledgeService owns the uploaded corpus and the current page structure.
// All mutations go through its mutex, so uploads, builds and resets are
// serialized instead of racing each other.
type KnowledgeService struct {
	pipeline *pipeline.Pipeline
	uploads  filestore.Store

	mu   sync.Mutex
	docs []model.Document
	page *model.PageStructure
}

func NewKnowledgeService(p *pipeline.Pipeline, uploads filestore.Store) *KnowledgeService {
	return &KnowledgeService{pipeline: p, uploads: uploads}
}

// AddDocuments saves and parses each file in turn. Parsed documents join the
// in-memory corpus immediately; indexing happens later in Build.
func (s *KnowledgeService) AddDocuments(ctx context.Context, files []UploadFile) UploadOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := logutil.GetLogger(ctx)
	out := UploadOutcome{Total: len(files)}
	for _, f := range files {
		if err := s.saveUpload(ctx, f); err != nil {
			logger.Error("save uploaded file failed", zap.String("file", f.Name), zap.Error(err))
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		res, err := parser.Parse(ctx, f.Name, f.Data)
		if err != nil {
			logger.Warn("parse uploaded file failed", zap.String("file", f.Name), zap.Error(err))
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		s.docs = append(s.docs, res.Document)
		out.Parsed++
	}
	return out
}

func (s *KnowledgeService) saveUpload(ctx context.Context, f UploadFile) error {
	return s.uploads.Save(ctx, f.Name, filestore.BytesReader(f.Data), int64(len(f.Data)))
}

// SetPage stores the page structure extracted from an HTML file. The page is
// kept apart from the document corpus: it drives selector synthesis, not
// retrieval.
func (s *KnowledgeService) SetPage(ctx context.Context, file UploadFile) (*model.PageStructure, error) {
	res, err := parser.Parse(ctx, file.Name, file.Data)
	if err != nil {
		return nil, err
	}
	if res.Page == nil {
		return nil, fmt.Errorf("%w: %s is not an html page", apperrors.ErrUnsupportedFile, file.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveUpload(ctx, file); err != nil {
		return nil, err
	}
	s.page = res.Page
	return res.Page, nil
}

// Page returns the current page structure, or nil when none was uploaded.
func (s *KnowledgeService) Page() *model.PageStructure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Build chunks and indexes everything uploaded so far. It reports how many
// documents went in and how many chunks the index now holds.
func (s *KnowledgeService) Build(ctx context.Context) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.docs) == 0 {
		return 0, 0, fmt.Errorf("%w: no documents uploaded", apperrors.ErrMalformedInput)
	}
	chunks, err := s.pipeline.Build(ctx, s.docs)
	if err != nil {
		return 0, 0, err
	}
	return len(s.docs), chunks, nil
}

// Stats snapshots the knowledge base for health reporting.
func (s *KnowledgeService) Stats(ctx context.Context) KnowledgeStats {
	s.mu.Lock()
	docs := len(s.docs)
	pageLoaded := s.page != nil
	s.mu.Unlock()
	chunks, err := s.pipeline.Count(ctx)
	if err != nil {
		logutil.GetLogger(ctx).Warn("count indexed chunks failed", zap.Error(err))
		chunks = 0
	}
	return KnowledgeStats{Documents: docs, PageLoaded: pageLoaded, Chunks: chunks}
}

// Reset drops the corpus, the page and the index, and clears stored uploads.
func (s *KnowledgeService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pipeline.Reset(ctx); err != nil {
		return err
	}
	s.docs = nil
	s.page = nil
	s.clearUploads(ctx)
	return nil
}

// clearUploads is best effort: a leftover file on disk is harmless while a
// half-reset index is not, so storage errors only warn.
func (s *KnowledgeService) clearUploads(ctx context.Context) {
	logger := logutil.GetLogger(ctx)
	entries, err := s.uploads.List(ctx)
	if err != nil {
		logger.Warn("list stored uploads failed", zap.Error(err))
		return
	}
	for _, ent := range entries {
		if err := s.uploads.Delete(ctx, ent.Key); err != nil {
			logger.Warn("delete stored upload failed", zap.String("key", ent.Key), zap.Error(err))
		}
	}
}

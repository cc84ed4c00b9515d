package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/qaforge/internal/filestore"
	"github.com/xxxsen/qaforge/internal/generator"
	"github.com/xxxsen/qaforge/internal/model"
	"github.com/xxxsen/qaforge/internal/pipeline"
	apperrors "github.com/xxxsen/qaforge/internal/pkg/errors"
)

const (
	resultCacheSize = 512
	resultCacheTTL  = 10 * time.Minute
)

// TestCaseBatch is one generation round trip.
type TestCaseBatch struct {
	Query       string           `json:"query"`
	TestCases   []model.TestCase `json:"test_cases"`
	ContextUsed int              `json:"context_used"`
	Source      string           `json:"source"`
}

// ScriptArtifact bundles a synthesized selenium script with its stored copy.
type ScriptArtifact struct {
	TestCaseID  string `json:"test_case_id"`
	Script      string `json:"script"`
	PageApplied bool   `json:"page_applied"`
	ArtifactKey string `json:"artifact_key,omitempty"`
	ArtifactURL string `json:"artifact_url,omitempty"`
}

// ArtifactService turns retrieval context into test cases and selenium
// scripts. Generation rounds are cached briefly so a repeated query does not
// re-run retrieval and the model; the cache is purged whenever the index
// changes.
type ArtifactService struct {
	pipeline    *pipeline.Pipeline
	generator   *generator.Generator
	scripts     filestore.Store
	publicURL   string
	defaultTopK int

	cache *expirable.LRU[string, *TestCaseBatch]

	mu        sync.Mutex
	lastCases []model.TestCase
}

func NewArtifactService(p *pipeline.Pipeline, gen *generator.Generator, scripts filestore.Store, publicURL string, defaultTopK int) *ArtifactService {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	cache := expirable.NewLRU[string, *TestCaseBatch](resultCacheSize, nil, resultCacheTTL)
	return &ArtifactService{
		pipeline:    p,
		generator:   gen,
		scripts:     scripts,
		publicURL:   strings.TrimRight(publicURL, "/"),
		defaultTopK: defaultTopK,
		cache:       cache,
	}
}

// GenerateTestCases retrieves context for the query and derives test cases
// from it. nResults bounds retrieval; zero means the configured default.
func (s *ArtifactService) GenerateTestCases(ctx context.Context, query string, nResults int) (*TestCaseBatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", apperrors.ErrMalformedInput)
	}
	if nResults < 0 {
		return nil, fmt.Errorf("%w: n_results must not be negative", apperrors.ErrMalformedInput)
	}
	if nResults == 0 {
		nResults = s.defaultTopK
	}
	count, err := s.pipeline.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: knowledge base is empty, upload documents and build first", apperrors.ErrNotInitialized)
	}
	key := batchCacheKey(query, nResults)
	if batch, ok := s.cache.Get(key); ok {
		s.rememberCases(batch.TestCases)
		return batch, nil
	}
	contextDocs, err := s.pipeline.Retrieve(ctx, query, nResults)
	if err != nil {
		return nil, err
	}
	outcome := s.generator.GenerateTestCases(ctx, query, contextDocs)
	batch := &TestCaseBatch{
		Query:       query,
		TestCases:   outcome.Cases,
		ContextUsed: len(contextDocs),
		Source:      outcome.Source,
	}
	s.cache.Add(key, batch)
	s.rememberCases(batch.TestCases)
	return batch, nil
}

func (s *ArtifactService) rememberCases(cases []model.TestCase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCases = cases
}

func batchCacheKey(query string, nResults int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("cases:%s:%d", hex.EncodeToString(sum[:]), nResults)
}

// LastCases returns the cases from the most recent generation round.
func (s *ArtifactService) LastCases() []model.TestCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TestCase, len(s.lastCases))
	copy(out, s.lastCases)
	return out
}

// CasesCount feeds the health endpoint.
func (s *ArtifactService) CasesCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastCases)
}

// InvalidateCache drops cached generation results after the index changes.
func (s *ArtifactService) InvalidateCache() {
	s.cache.Purge()
}

// Clear drops cached results and the remembered cases.
func (s *ArtifactService) Clear() {
	s.cache.Purge()
	s.mu.Lock()
	s.lastCases = nil
	s.mu.Unlock()
}

// GenerateScript synthesizes a selenium script for the test case, grounded in
// the page structure when one is loaded, and stores a copy for download. A
// storage failure degrades to an unstored script rather than failing the
// generation.
func (s *ArtifactService) GenerateScript(ctx context.Context, tc model.TestCase, page *model.PageStructure) *ScriptArtifact {
	script := s.generator.GenerateSeleniumScript(tc, page)
	art := &ScriptArtifact{
		TestCaseID:  generator.NormalizeTestID(tc.TestID),
		Script:      script,
		PageApplied: page != nil,
	}
	key := generator.ScriptFileName(tc.TestID)
	if err := s.scripts.Save(ctx, key, filestore.BytesReader([]byte(script)), int64(len(script))); err != nil {
		logutil.GetLogger(ctx).Warn("store generated script failed", zap.String("key", key), zap.Error(err))
		return art
	}
	art.ArtifactKey = key
	art.ArtifactURL = s.artifactURL(key)
	return art
}

func (s *ArtifactService) artifactURL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return "/api/v1/scripts/" + strings.TrimSuffix(key, ".py")
}

// Script loads the stored script for a test case id.
func (s *ArtifactService) Script(ctx context.Context, testID string) (string, error) {
	if strings.TrimSpace(testID) == "" {
		return "", fmt.Errorf("%w: empty test case id", apperrors.ErrMalformedInput)
	}
	key := generator.ScriptFileName(testID)
	rc, err := s.scripts.Open(ctx, key)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: no stored script for %s", apperrors.ErrNotFound, testID)
		}
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

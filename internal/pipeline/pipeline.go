// Package pipeline ties chunking, embedding and the vector store together
// into the build/retrieve flow behind test case generation.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/qaforge/internal/ai"
	"github.com/xxxsen/qaforge/internal/chunker"
	"github.com/xxxsen/qaforge/internal/model"
	apperrors "github.com/xxxsen/qaforge/internal/pkg/errors"
	"github.com/xxxsen/qaforge/internal/vectorstore"
)

const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"
)

// EmbedderFactory builds the embedder on first use so that provider setup
// cost (and failure) is deferred until a call actually needs vectors.
type EmbedderFactory func(ctx context.Context) (ai.IEmbedder, error)

type Pipeline struct {
	chunker    *chunker.Chunker
	store      vectorstore.Store
	collection string
	factory    EmbedderFactory

	mu       sync.Mutex
	embedder ai.IEmbedder
}

func New(chk *chunker.Chunker, store vectorstore.Store, collection string, factory EmbedderFactory) *Pipeline {
	if collection == "" {
		collection = vectorstore.DefaultCollection
	}
	return &Pipeline{
		chunker:    chk,
		store:      store,
		collection: collection,
		factory:    factory,
	}
}

// Init re-activates the persisted collection. Safe to call repeatedly.
func (p *Pipeline) Init(ctx context.Context) error {
	return p.store.CreateCollection(ctx, p.collection)
}

func (p *Pipeline) ensureEmbedder(ctx context.Context) (ai.IEmbedder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.embedder != nil {
		return p.embedder, nil
	}
	if p.factory == nil {
		return nil, fmt.Errorf("embedder factory not configured")
	}
	embedder, err := p.factory(ctx)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder factory returned nil")
	}
	p.embedder = embedder
	return embedder, nil
}

// Build chunks the documents, encodes every chunk in one batch and upserts
// them into the collection. Returns the number of chunks written.
func (p *Pipeline) Build(ctx context.Context, docs []model.Document) (int, error) {
	logger := logutil.GetLogger(ctx)
	if err := p.store.CreateCollection(ctx, p.collection); err != nil {
		return 0, err
	}
	var chunks []model.Chunk
	for _, doc := range docs {
		chunks = append(chunks, p.chunker.Split(doc)...)
	}
	if len(chunks) == 0 {
		logger.Info("nothing to index", zap.Int("documents", len(docs)))
		return 0, nil
	}
	ids := make([]string, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	metas := make([]model.ChunkMeta, 0, len(chunks))
	for _, chunk := range chunks {
		ids = append(ids, chunk.ChunkID)
		texts = append(texts, chunk.Content)
		metas = append(metas, model.ChunkMeta{
			SourceFile: chunk.SourceFile,
			FileType:   chunk.FileType,
			ChunkIndex: chunk.ChunkIndex,
		})
	}
	embedder, err := p.ensureEmbedder(ctx)
	if err != nil {
		return 0, err
	}
	vectors, err := embedder.EmbedBatch(ctx, texts, taskTypeDocument)
	if err != nil {
		return 0, err
	}
	if err := p.store.Add(ctx, ids, vectors, texts, metas); err != nil {
		return 0, err
	}
	logger.Info("knowledge base built",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// Retrieve encodes the query and returns the closest chunks with their
// provenance metadata, nearest first.
func (p *Pipeline) Retrieve(ctx context.Context, query string, topK int) ([]model.ContextResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", apperrors.ErrMalformedInput)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: n_results must be positive", apperrors.ErrMalformedInput)
	}
	embedder, err := p.ensureEmbedder(ctx)
	if err != nil {
		return nil, err
	}
	vec, err := embedder.Embed(ctx, query, taskTypeQuery)
	if err != nil {
		return nil, err
	}
	results, err := p.store.Query(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	contexts := make([]model.ContextResult, 0, len(results))
	for _, item := range results {
		contexts = append(contexts, model.ContextResult{
			Content:  item.Document,
			Metadata: item.Meta,
		})
	}
	return contexts, nil
}

func (p *Pipeline) Count(ctx context.Context) (int, error) {
	return p.store.Count(ctx)
}

// Reset drops the collection and re-creates it empty.
func (p *Pipeline) Reset(ctx context.Context) error {
	if err := p.store.Clear(ctx); err != nil {
		return err
	}
	return p.store.CreateCollection(ctx, p.collection)
}

package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/qaforge/internal/ai"
	"github.com/xxxsen/qaforge/internal/chunker"
	"github.com/xxxsen/qaforge/internal/config"
	"github.com/xxxsen/qaforge/internal/db"
	"github.com/xxxsen/qaforge/internal/filestore"
	"github.com/xxxsen/qaforge/internal/pipeline"
	apperrors "github.com/xxxsen/qaforge/internal/pkg/errors"
	"github.com/xxxsen/qaforge/internal/vectorstore"
)

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	database, err := db.Open(config.DatabaseConfig{Driver: db.DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.ApplyMigrations(database, db.DriverSQLite))
	store := vectorstore.New(database, db.DriverSQLite)
	factory := func(ctx context.Context) (ai.IEmbedder, error) {
		provider, err := ai.NewEmbedProvider("simple", map[string]interface{}{"dim": 16})
		if err != nil {
			return nil, err
		}
		return ai.NewEmbedder(provider, "hash"), nil
	}
	p := pipeline.New(chunker.New(500, 50), store, "qa_documents", factory)
	require.NoError(t, p.Init(context.Background()))
	return p
}

func newTestStore(t *testing.T, scope string) filestore.Store {
	t.Helper()
	st, err := filestore.New(config.FileStoreConfig{Type: "local", Dir: t.TempDir()}, scope)
	require.NoError(t, err)
	return st
}

const samplePage = `<!DOCTYPE html>
<html><body>
<form>
<input type="text" id="coupon-code" name="coupon">
<input type="checkbox" id="terms">
<button id="submit-btn">Apply</button>
<a href="/help">Help</a>
</form>
</body></html>`

func TestAddDocumentsCollectsPerFileErrors(t *testing.T) {
	svc := NewKnowledgeService(newTestPipeline(t), newTestStore(t, "uploads"))
	ctx := context.Background()

	out := svc.AddDocuments(ctx, []UploadFile{
		{Name: "guide.md", Data: []byte("# Enrollment\n\nStudents enroll with a valid email.")},
		{Name: "notes.txt", Data: []byte("Checkout supports coupon codes.")},
		{Name: "binary.exe", Data: []byte{0x4d, 0x5a}},
	})
	require.Equal(t, 3, out.Total)
	require.Equal(t, 2, out.Parsed)
	require.Len(t, out.Errors, 1)
	require.Contains(t, out.Errors[0], "binary.exe")

	stats := svc.Stats(ctx)
	require.Equal(t, 2, stats.Documents)
	require.False(t, stats.PageLoaded)
	require.Zero(t, stats.Chunks)
}

func TestUploadedFilesLandInStore(t *testing.T) {
	uploads := newTestStore(t, "uploads")
	svc := NewKnowledgeService(newTestPipeline(t), uploads)
	ctx := context.Background()

	out := svc.AddDocuments(ctx, []UploadFile{{Name: "guide.md", Data: []byte("# Guide\n\nBody.")}})
	require.Empty(t, out.Errors)

	entries, err := uploads.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "guide.md", entries[0].Key)
}

func TestBuildRequiresDocuments(t *testing.T) {
	svc := NewKnowledgeService(newTestPipeline(t), newTestStore(t, "uploads"))
	_, _, err := svc.Build(context.Background())
	require.ErrorIs(t, err, apperrors.ErrMalformedInput)
}

func TestBuildIndexesCorpus(t *testing.T) {
	svc := NewKnowledgeService(newTestPipeline(t), newTestStore(t, "uploads"))
	ctx := context.Background()

	out := svc.AddDocuments(ctx, []UploadFile{
		{Name: "enroll.md", Data: []byte("# Enrollment\n\nEnrollment requires a student account.")},
		{Name: "checkout.txt", Data: []byte("Checkout supports coupon codes and credit cards.")},
	})
	require.Equal(t, 2, out.Parsed)

	docs, chunks, err := svc.Build(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, docs)
	require.Equal(t, 2, chunks)

	stats := svc.Stats(ctx)
	require.Equal(t, 2, stats.Chunks)
}

func TestSetPageParsesHTML(t *testing.T) {
	svc := NewKnowledgeService(newTestPipeline(t), newTestStore(t, "uploads"))
	ctx := context.Background()

	page, err := svc.SetPage(ctx, UploadFile{Name: "checkout_page.html", Data: []byte(samplePage)})
	require.NoError(t, err)
	require.Equal(t, "checkout_page.html", page.FileName)
	require.NotEmpty(t, page.Inputs)
	require.True(t, svc.Stats(ctx).PageLoaded)
	require.Same(t, page, svc.Page())
}

func TestSetPageRejectsNonHTML(t *testing.T) {
	svc := NewKnowledgeService(newTestPipeline(t), newTestStore(t, "uploads"))
	_, err := svc.SetPage(context.Background(), UploadFile{Name: "guide.md", Data: []byte("# Guide")})
	require.ErrorIs(t, err, apperrors.ErrUnsupportedFile)
}

func TestResetClearsEverything(t *testing.T) {
	uploads := newTestStore(t, "uploads")
	svc := NewKnowledgeService(newTestPipeline(t), uploads)
	ctx := context.Background()

	svc.AddDocuments(ctx, []UploadFile{{Name: "guide.md", Data: []byte("# Guide\n\nEnrollment body.")}})
	_, err := svc.SetPage(ctx, UploadFile{Name: "page.html", Data: []byte(samplePage)})
	require.NoError(t, err)
	_, _, err = svc.Build(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))

	stats := svc.Stats(ctx)
	require.Zero(t, stats.Documents)
	require.False(t, stats.PageLoaded)
	require.Zero(t, stats.Chunks)
	require.Nil(t, svc.Page())

	entries, err := uploads.List(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)

	_, _, err = svc.Build(ctx)
	require.ErrorIs(t, err, apperrors.ErrMalformedInput)
}

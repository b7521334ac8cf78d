package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/attestor/core"
	"github.com/poiesic/attestor/storage"
	"github.com/poiesic/attestor/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestPipeline(t *testing.T, opts ...Option) (*Pipeline, storage.CorpusRepository) {
	t.Helper()

	corpus, backend, err := badger.NewMemoryCorpus()
	require.NoError(t, err)

	pipeline, err := NewPipeline(corpus, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		pipeline.Release()
		corpus.Close()
		backend.Close()
	})
	return pipeline, corpus
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestNewPipeline(t *testing.T) {
	corpus, backend, err := badger.NewMemoryCorpus()
	require.NoError(t, err)
	defer backend.Close()
	defer corpus.Close()

	t.Run("valid configuration", func(t *testing.T) {
		pipeline, err := NewPipeline(corpus)
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("nil corpus", func(t *testing.T) {
		pipeline, err := NewPipeline(nil)
		assert.Nil(t, pipeline)
		assert.Equal(t, ErrCorpusRequired, err)
	})

	t.Run("with options", func(t *testing.T) {
		pipeline, err := NewPipeline(corpus,
			WithPoolSize(0),
			WithLogger(nil),
			WithDefaultCategory(core.CategoryFinancial),
		)
		require.NoError(t, err)
		defer pipeline.Release()

		assert.Equal(t, 1, pipeline.pool.Cap(), "pool size is clamped to 1")
		assert.Equal(t, core.CategoryFinancial, pipeline.defaultCategory)
		assert.NotNil(t, pipeline.logger)
	})

	t.Run("invalid default category", func(t *testing.T) {
		_, err := NewPipeline(corpus, WithDefaultCategory("astrology"))
		assert.ErrorIs(t, err, core.ErrUnknownCategory)
	})
}

func TestDocumentID(t *testing.T) {
	a := DocumentID(core.CategoryFinancial, "FIN-1")
	assert.Equal(t, a, DocumentID(core.CategoryFinancial, " FIN-1 "))
	assert.NotEqual(t, a, DocumentID(core.CategoryFinancial, "FIN-2"))
	assert.NotEqual(t, a, DocumentID(core.CategoryPharmacy, "FIN-1"))
	assert.Len(t, a, 36)
}

func TestPipeline_Ingest(t *testing.T) {
	ctx := context.Background()
	pipeline, corpus := setupTestPipeline(t)

	docs := []*core.PolicyDocument{
		{PolicyNumber: "UM-200", PolicyName: "Prior Authorization", Category: core.CategoryUtilizationManagement, Content: "urgent requests"},
		{ID: "explicit", PolicyNumber: "PH-1", Category: core.CategoryPharmacy, Content: "formulary"},
	}

	added, err := pipeline.Ingest(ctx, docs...)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, DocumentID(core.CategoryUtilizationManagement, "UM-200"), added[0].ID)
	assert.Equal(t, "explicit", added[1].ID)

	stored, err := corpus.GetDocument(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "urgent requests", stored.Content)

	// Re-ingesting the same policy replaces it
	_, err = pipeline.Ingest(ctx, &core.PolicyDocument{
		PolicyNumber: "UM-200", Category: core.CategoryUtilizationManagement, Content: "revised",
	})
	require.NoError(t, err)

	all, err := corpus.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	stored, err = corpus.GetDocument(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "revised", stored.Content)
}

func TestPipeline_IngestRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	pipeline, corpus := setupTestPipeline(t)

	_, err := pipeline.Ingest(ctx,
		&core.PolicyDocument{PolicyNumber: "OK-1", Category: core.CategoryCompliance},
		&core.PolicyDocument{PolicyNumber: "", Category: core.CategoryCompliance},
		nil,
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidPolicyDocument)
	assert.ErrorIs(t, err, core.ErrEmptyPolicyNumber)

	all, err := corpus.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing is stored when a document is invalid")
}

func TestPipeline_IngestEmpty(t *testing.T) {
	pipeline, _ := setupTestPipeline(t)
	added, err := pipeline.Ingest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, added)
}

func TestPipeline_IngestDirectory(t *testing.T) {
	ctx := context.Background()
	pipeline, corpus := setupTestPipeline(t, WithPoolSize(4), WithDefaultCategory(core.CategoryAdministration))

	dir := t.TempDir()
	writeFile(t, dir, "um-200.md", "---\npolicy_number: UM-200\npolicy_name: Prior Authorization\ncategory: utilization-management\n---\nUrgent requests within 72 hours.")
	writeFile(t, dir, "nested/ADM-7.txt", "Board meets quarterly.")
	writeFile(t, dir, "bad-category.md", "---\ncategory: astrology\n---\nbody")
	unterminated := writeFile(t, dir, "broken.md", "---\npolicy_number: X\n")
	writeFile(t, dir, "notes.pdf", "ignored")

	report, err := pipeline.IngestDirectory(ctx, dir)
	require.NoError(t, err)

	require.Len(t, report.Added, 2)
	require.Len(t, report.Skipped, 2)

	skipped := map[string]error{}
	for _, s := range report.Skipped {
		skipped[filepath.Base(s.Path)] = s.Err
	}
	assert.ErrorIs(t, skipped[filepath.Base(unterminated)], ErrUnterminatedFrontMatter)
	assert.ErrorIs(t, skipped["bad-category.md"], core.ErrUnknownCategory)

	docs, err := corpus.ListByCategories(ctx, core.CategoryUtilizationManagement)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "UM-200", docs[0].PolicyNumber)
	assert.Equal(t, "Prior Authorization", docs[0].PolicyName)

	docs, err = corpus.ListByCategories(ctx, core.CategoryAdministration)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ADM-7", docs[0].PolicyNumber)
	assert.Equal(t, "Board meets quarterly.", docs[0].Content)
}

func TestPipeline_IngestDirectoryWithoutDefaultCategory(t *testing.T) {
	pipeline, corpus := setupTestPipeline(t)

	dir := t.TempDir()
	writeFile(t, dir, "plain.txt", "no front matter and no default")

	report, err := pipeline.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, report.Added)
	require.Len(t, report.Skipped, 1)
	assert.ErrorIs(t, report.Skipped[0].Err, core.ErrInvalidPolicyDocument)

	all, err := corpus.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPipeline_IngestDirectoryErrors(t *testing.T) {
	pipeline, _ := setupTestPipeline(t)

	t.Run("missing directory", func(t *testing.T) {
		_, err := pipeline.IngestDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("file instead of directory", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "a.txt", "x")
		_, err := pipeline.IngestDirectory(context.Background(), path)
		assert.ErrorIs(t, err, ErrNotDirectory)
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "x")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := pipeline.IngestDirectory(ctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

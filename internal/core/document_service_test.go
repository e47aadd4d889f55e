package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UtshoDeyTech/pdfchat/internal/extract"
	"github.com/UtshoDeyTech/pdfchat/internal/vectorstore"
)

func newTestDocumentService(extracted string) (*DocumentService, *fakeStore, *fakeRegistry) {
	store := newFakeStore()
	reg := newFakeRegistry()
	svc := NewDocumentService(reg, store, &fakeEmbedder{}, &fakeExtractor{text: extracted}, extract.NewSplitter(20, 5))
	return svc, store, reg
}

func TestUploadStoresChunks(t *testing.T) {
	text := strings.Repeat("abcde", 10) // 50 chars, 3 chunks at size 20 / overlap 5
	svc, store, reg := newTestDocumentService(text)

	pdfID, chunksStored, err := svc.Upload(context.Background(), "report.pdf", pdfBody())
	require.NoError(t, err)
	require.NotEmpty(t, pdfID)

	assert.Equal(t, 3, chunksStored)
	assert.Equal(t, chunksStored, store.count())
	assert.True(t, reg.Exists(pdfID))

	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	for i, rec := range records {
		assert.Equal(t, extract.ChunkID(pdfID, i), rec.ID)
		assert.Equal(t, pdfID, rec.Metadata.PDFID)
		assert.NotEmpty(t, rec.Metadata.Text)
		assert.NotEmpty(t, rec.Values)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	svc, store, reg := newTestDocumentService("some text")

	_, _, err := svc.Upload(context.Background(), "notes.txt", pdfBody())
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.Zero(t, store.count())
	docs, _ := reg.List()
	assert.Empty(t, docs)
}

func TestUploadEmptyContent(t *testing.T) {
	svc, store, reg := newTestDocumentService("   \n\t  ")

	_, _, err := svc.Upload(context.Background(), "blank.pdf", pdfBody())
	require.Error(t, err)
	assert.Equal(t, KindEmptyContent, KindOf(err))

	// A document with no extractable text must never appear as ingested.
	assert.Zero(t, store.count())
	docs, _ := reg.List()
	assert.Empty(t, docs)
}

func TestUploadDocumentWithBlankStretch(t *testing.T) {
	// Several pages with no extractable text leave a whitespace run longer
	// than the chunk size in the middle of the document. The upload must
	// still ingest the text on both sides of it.
	text := "intro words before gap." + strings.Repeat("\n", 60) + "closing words after gap."
	svc, store, reg := newTestDocumentService(text)

	pdfID, chunksStored, err := svc.Upload(context.Background(), "gappy.pdf", pdfBody())
	require.NoError(t, err)
	require.Positive(t, chunksStored)
	assert.True(t, reg.Exists(pdfID))

	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, chunksStored)
	for _, rec := range records {
		assert.NotEmpty(t, strings.TrimSpace(rec.Metadata.Text))
	}
}

func TestUploadEmbedderFailureLeavesStoreUntouched(t *testing.T) {
	store := newFakeStore()
	reg := newFakeRegistry()
	svc := NewDocumentService(reg, store, &fakeEmbedder{failBatch: true}, &fakeExtractor{text: "plenty of text here"}, extract.NewSplitter(20, 5))

	_, _, err := svc.Upload(context.Background(), "doc.pdf", pdfBody())
	require.Error(t, err)
	assert.Equal(t, KindUpstreamFailure, KindOf(err))
	assert.Zero(t, store.count())
	docs, _ := reg.List()
	assert.Empty(t, docs)
}

func TestDeleteRemovesAllVectors(t *testing.T) {
	svc, store, reg := newTestDocumentService(strings.Repeat("abcde", 10))
	ctx := context.Background()

	pdfID, _, err := svc.Upload(ctx, "report.pdf", pdfBody())
	require.NoError(t, err)
	require.NotZero(t, store.count())

	require.NoError(t, svc.Delete(ctx, pdfID))
	assert.False(t, reg.Exists(pdfID))

	// Verification invariant: nothing left for this document.
	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	for _, rec := range records {
		assert.NotEqual(t, pdfID, rec.Metadata.PDFID)
	}
	assert.Zero(t, store.count())
}

func TestDeleteTwiceReturnsNotFound(t *testing.T) {
	svc, _, _ := newTestDocumentService(strings.Repeat("abcde", 10))
	ctx := context.Background()

	pdfID, _, err := svc.Upload(ctx, "report.pdf", pdfBody())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, pdfID))

	err = svc.Delete(ctx, pdfID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeleteVanishedFileReportsInconsistency(t *testing.T) {
	svc, store, _ := newTestDocumentService("text")

	// Vectors for a document whose file was removed out-of-band.
	require.NoError(t, store.Upsert(context.Background(), []vectorstore.Record{
		{ID: "ghost_0", Values: []float32{1, 2, 3}, Metadata: vectorstore.Metadata{PDFID: "ghost", Text: "orphan"}},
	}))

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, KindInconsistent, KindOf(err))

	// The orphans are left for reconciliation to purge.
	assert.Equal(t, 1, store.count())
}

func TestDeleteUnknownID(t *testing.T) {
	svc, _, _ := newTestDocumentService("text")

	err := svc.Delete(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListReturnsLiveDocuments(t *testing.T) {
	svc, _, reg := newTestDocumentService("text")
	reg.add("a")
	reg.add("b")

	docs, err := svc.List()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "a.pdf", docs[0].Name)
}

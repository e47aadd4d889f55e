package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/UtshoDeyTech/pdfchat/internal/extract"
	"github.com/UtshoDeyTech/pdfchat/internal/registry"
	"github.com/UtshoDeyTech/pdfchat/internal/vectorstore"
)

// Embedder turns text into fixed-dimension vectors. Implemented by
// LLMService; an interface so pipelines can be tested with doubles.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	GetEmbeddingBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Extractor turns a stored document into plain text.
type Extractor interface {
	ExtractText(path string) (string, error)
}

// DocumentService owns the ingestion and deletion pipelines. Operations on
// the same document ID are serialized with a per-ID lock so an in-flight
// ingestion cannot race a deletion's enumerate-then-delete.
type DocumentService struct {
	registry  registry.Registry
	store     vectorstore.Store
	embedder  Embedder
	extractor Extractor
	splitter  *extract.Splitter
	locks     sync.Map // document ID -> *sync.Mutex
}

func NewDocumentService(reg registry.Registry, store vectorstore.Store, embedder Embedder, extractor Extractor, splitter *extract.Splitter) *DocumentService {
	return &DocumentService{
		registry:  reg,
		store:     store,
		embedder:  embedder,
		extractor: extractor,
		splitter:  splitter,
	}
}

func (s *DocumentService) lockID(id string) func() {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	return mu.(*sync.Mutex).Unlock
}

// Upload runs the ingestion pipeline: persist the raw bytes first, extract,
// split, batch-embed, then upsert everything in a single store call. Any
// failure before the upsert leaves the vector store untouched; the persisted
// file is removed on failure so a failed upload does not linger as a live
// document. Returns the new document ID and the number of chunks stored.
func (s *DocumentService) Upload(ctx context.Context, filename string, file io.Reader) (string, int, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return "", 0, errInvalidInput("only PDF files are allowed")
	}

	pdfID := uuid.NewString()
	unlock := s.lockID(pdfID)
	defer unlock()

	path, err := s.registry.Put(pdfID, file)
	if err != nil {
		return "", 0, fmt.Errorf("failed to persist uploaded file: %w", err)
	}
	log.Printf("PDF saved to %s", path)

	discard := func() {
		if err := s.registry.Delete(pdfID); err != nil {
			log.Printf("Warning: failed to remove file for failed upload %s: %v", pdfID, err)
		}
	}

	text, err := s.extractor.ExtractText(path)
	if err != nil {
		discard()
		return "", 0, fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}
	if strings.TrimSpace(text) == "" {
		discard()
		return "", 0, errEmptyContent("no text could be extracted from the PDF")
	}

	chunks := s.splitter.Split(pdfID, text)
	log.Printf("Split %s into %d chunks", filename, len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embeddings, err := s.embedder.GetEmbeddingBatch(ctx, texts)
	if err != nil {
		discard()
		return "", 0, errUpstream(err, "failed to embed document %s", pdfID)
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = vectorstore.Record{
			ID:     chunk.ID,
			Values: embeddings[i],
			Metadata: vectorstore.Metadata{
				PDFID: pdfID,
				Text:  chunk.Text,
			},
		}
	}
	if err := s.store.Upsert(ctx, records); err != nil {
		discard()
		return "", 0, errUpstream(err, "failed to store vectors for document %s", pdfID)
	}

	log.Printf("Successfully uploaded and processed PDF %s (%s): %d vectors stored", pdfID, filename, len(records))
	return pdfID, len(chunks), nil
}

// Delete runs the deletion pipeline: remove the file, delete the document's
// vectors, then verify nothing remains. Residual vectors are reported as a
// PartialDelete error rather than silently retried.
func (s *DocumentService) Delete(ctx context.Context, pdfID string) error {
	unlock := s.lockID(pdfID)
	defer unlock()

	if !s.registry.Exists(pdfID) {
		// The file may have vanished out-of-band while its vectors remain.
		// Report the mismatch so the operator knows to run a sync.
		leftover, err := s.vectorIDsFor(ctx, pdfID)
		if err != nil {
			return err
		}
		if len(leftover) > 0 {
			return errInconsistent("PDF %s has no stored file but %d vectors remain", pdfID, len(leftover))
		}
		return errNotFound("PDF %s not found", pdfID)
	}
	if err := s.registry.Delete(pdfID); err != nil {
		return fmt.Errorf("failed to remove file for %s: %w", pdfID, err)
	}

	ids, err := s.vectorIDsFor(ctx, pdfID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		log.Printf("No vectors found in store for PDF %s", pdfID)
	} else {
		if err := s.store.Delete(ctx, ids); err != nil {
			return errUpstream(err, "failed to delete vectors for PDF %s", pdfID)
		}
		log.Printf("Deleted %d vectors for PDF %s", len(ids), pdfID)
	}

	remaining, err := s.vectorIDsFor(ctx, pdfID)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return errPartialDelete("%d vectors still remain for PDF %s", len(remaining), pdfID)
	}
	return nil
}

// List returns the live documents from the registry.
func (s *DocumentService) List() ([]registry.Document, error) {
	return s.registry.List()
}

// vectorIDsFor enumerates the store and filters client-side, which works for
// backends without server-side metadata filtering.
func (s *DocumentService) vectorIDsFor(ctx context.Context, pdfID string) ([]string, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, errUpstream(err, "failed to list vectors for PDF %s", pdfID)
	}
	var ids []string
	for _, rec := range records {
		if rec.Metadata.PDFID == pdfID {
			ids = append(ids, rec.ID)
		}
	}
	return ids, nil
}

package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/UtshoDeyTech/pdfchat/internal/registry"
	"github.com/UtshoDeyTech/pdfchat/internal/utils"
	"github.com/UtshoDeyTech/pdfchat/internal/vectorstore"
)

// fakeEmbedder returns mapped vectors when configured, otherwise a
// deterministic vector derived from the text.
type fakeEmbedder struct {
	vectors   map[string][]float32
	failBatch bool
	failEmbed bool
}

func (f *fakeEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.failEmbed {
		return nil, errors.New("embedder down")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty text")
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{float32(len(text)), float32(text[0]), 1}, nil
}

func (f *fakeEmbedder) GetEmbeddingBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.failBatch {
		return nil, errors.New("embedder down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.GetEmbedding(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// fakeStore is an in-memory vector store with brute-force cosine queries.
type fakeStore struct {
	mu         sync.Mutex
	records    map[string]vectorstore.Record
	failUpsert bool
	failList   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]vectorstore.Record)}
}

func (s *fakeStore) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if s.failUpsert {
		return errors.New("store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records[rec.ID] = rec
	}
	return nil
}

func (s *fakeStore) Query(ctx context.Context, embedding []float32, topK int) ([]vectorstore.Match, error) {
	records, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var matches []vectorstore.Match
	for _, rec := range records {
		score, err := utils.CosineSimilarity(embedding, rec.Values)
		if err != nil {
			continue
		}
		matches = append(matches, vectorstore.Match{Record: rec, Score: score})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *fakeStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.records, id)
	}
	return nil
}

func (s *fakeStore) ListAll(ctx context.Context) ([]vectorstore.Record, error) {
	if s.failList {
		return nil, errors.New("store down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]vectorstore.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// fakeRegistry keeps documents in a map.
type fakeRegistry struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{files: make(map[string][]byte)}
}

func (r *fakeRegistry) Exists(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.files[id]
	return ok
}

func (r *fakeRegistry) List() ([]registry.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var docs []registry.Document
	for id := range r.files {
		docs = append(docs, registry.Document{ID: id, Name: id + ".pdf"})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (r *fakeRegistry) Put(id string, src io.Reader) (string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[id] = data
	return r.path(id), nil
}

func (r *fakeRegistry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return fmt.Errorf("document %s not found", id)
	}
	delete(r.files, id)
	return nil
}

func (r *fakeRegistry) path(id string) string { return "/fake/" + id + ".pdf" }

func (r *fakeRegistry) add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[id] = []byte("%PDF-1.4")
}

// fakeExtractor returns canned text regardless of the stored file.
type fakeExtractor struct {
	text string
	err  error
}

func (e *fakeExtractor) ExtractText(path string) (string, error) {
	return e.text, e.err
}

// fakeCompleter returns a canned answer or error.
type fakeCompleter struct {
	answer string
	err    error
	calls  int
}

func (c *fakeCompleter) GetChatCompletion(ctx context.Context, question, contextText string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

func pdfBody() io.Reader { return bytes.NewReader([]byte("%PDF-1.4 test")) }

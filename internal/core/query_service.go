package core

import (
	"context"
	"log"
	"strings"

	"github.com/UtshoDeyTech/pdfchat/internal/vectorstore"
)

// DefaultTopK is the number of chunks retrieved when the caller does not ask
// for a specific count.
const DefaultTopK = 5

// Completer synthesizes an answer from a question and retrieved context.
// Implemented by LLMService.
type Completer interface {
	GetChatCompletion(ctx context.Context, question, contextText string) (string, error)
}

// SearchResult is one ranked retrieval hit.
type SearchResult struct {
	ChunkID  string               `json:"chunk_id"`
	Text     string               `json:"text"`
	Metadata vectorstore.Metadata `json:"metadata"`
	Score    float32              `json:"score"`
}

// Answer is a synthesized response plus the chunks it was grounded on.
type Answer struct {
	Answer  string         `json:"answer"`
	Sources []SearchResult `json:"sources"`
}

// QueryService embeds a question, retrieves nearest-neighbor chunks, and
// optionally forwards them to the completion model.
type QueryService struct {
	store     vectorstore.Store
	embedder  Embedder
	completer Completer
}

func NewQueryService(store vectorstore.Store, embedder Embedder, completer Completer) *QueryService {
	return &QueryService{store: store, embedder: embedder, completer: completer}
}

// Search returns up to topK chunks ranked best match first.
func (s *QueryService) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errInvalidInput("query cannot be empty")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	embedding, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, errUpstream(err, "failed to embed query")
	}

	matches, err := s.store.Query(ctx, embedding, topK)
	if err != nil {
		return nil, errUpstream(err, "vector store query failed")
	}

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			ChunkID:  m.ID,
			Text:     m.Metadata.Text,
			Metadata: m.Metadata,
			Score:    m.Score,
		}
	}
	log.Printf("Found %d relevant chunks for query", len(results))
	return results, nil
}

// Ask retrieves context for the question and forwards it to the completion
// model. If the completion call fails, the raw top-ranked chunk text is
// returned as the answer instead of failing the whole request.
func (s *QueryService) Ask(ctx context.Context, query string, topK int) (*Answer, error) {
	results, err := s.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &Answer{
			Answer:  "I couldn't find anything relevant to your question in the uploaded documents.",
			Sources: []SearchResult{},
		}, nil
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	contextText := strings.Join(texts, "\n\n")

	answer, err := s.completer.GetChatCompletion(ctx, query, contextText)
	if err != nil {
		log.Printf("Completion failed, falling back to top chunk: %v", err)
		return &Answer{Answer: results[0].Text, Sources: results}, nil
	}
	return &Answer{Answer: answer, Sources: results}, nil
}

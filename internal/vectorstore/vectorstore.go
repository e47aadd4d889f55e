// Package vectorstore defines the uniform adapter contract over the external
// vector databases this service can run against. The filesystem registry is
// the source of truth for which documents exist; the vector store is a
// derived index kept consistent with it.
package vectorstore

import "context"

// Metadata is the payload stored alongside every embedding.
type Metadata struct {
	PDFID string `json:"pdf_id"`
	Text  string `json:"text"`
}

// Record is the embedding of one chunk plus its metadata, keyed by chunk ID
// ("{pdf_id}_{ordinal}").
type Record struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

// Match is a query result. Score is cosine similarity, higher is better, for
// every backend; callers never need to convert between score conventions.
type Match struct {
	Record
	Score float32 `json:"score"`
}

// Store is the backend-independent vector store contract.
type Store interface {
	// Upsert inserts or overwrites records keyed by ID. The whole batch is
	// stored or the call fails; callers may retry since upsert overwrites.
	Upsert(ctx context.Context, records []Record) error

	// Query returns up to topK records, best match first. A topK larger than
	// the store returns everything available.
	Query(ctx context.Context, embedding []float32, topK int) ([]Match, error)

	// Delete removes the named records. Unknown IDs are not an error.
	Delete(ctx context.Context, ids []string) error

	// ListAll returns every stored record. Backends without native bulk
	// listing approximate this with a capped zero-vector query, so the result
	// is a best-effort upper bound, not a completeness guarantee.
	ListAll(ctx context.Context) ([]Record, error)

	Close() error
}

// Package sqlite implements the vector store contract on a local SQLite
// collection. Embeddings are stored as JSON text and similarity queries are
// brute-force cosine over all rows, which is exact and plenty for the
// collection sizes a single folder of PDFs produces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/UtshoDeyTech/pdfchat/internal/utils"
	"github.com/UtshoDeyTech/pdfchat/internal/vectorstore"
)

type Store struct {
	db *sql.DB
}

func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS vector_records (
        id TEXT PRIMARY KEY, -- "{pdf_id}_{ordinal}"
        pdf_id TEXT NOT NULL,
        content TEXT NOT NULL,
        embedding_json TEXT NOT NULL -- JSON string of []float32
    );

    CREATE INDEX IF NOT EXISTS idx_vector_records_pdf_id ON vector_records (pdf_id);
    `
	_, err := s.db.Exec(schema)
	return err
}

// Upsert writes the batch in one transaction so the caller sees either every
// record stored or none.
func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO vector_records (id, pdf_id, content, embedding_json) VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            pdf_id = excluded.pdf_id,
            content = excluded.content,
            embedding_json = excluded.embedding_json`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		embeddingBytes, err := json.Marshal(rec.Values)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding for %s: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Metadata.PDFID, rec.Metadata.Text, string(embeddingBytes)); err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Query(ctx context.Context, embedding []float32, topK int) ([]vectorstore.Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	records, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]vectorstore.Match, 0, len(records))
	for _, rec := range records {
		if len(rec.Values) == 0 {
			log.Printf("Skipping record %s due to missing embedding.", rec.ID)
			continue
		}
		score, err := utils.CosineSimilarity(embedding, rec.Values)
		if err != nil {
			log.Printf("Error scoring record %s against query: %v. Skipping.", rec.ID, err)
			continue
		}
		matches = append(matches, vectorstore.Match{Record: rec, Score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

// Delete removes the named records. IDs that do not exist are ignored.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM vector_records WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("failed to delete record %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// ListAll returns every stored record. Unlike the managed backend this
// listing is exact.
func (s *Store) ListAll(ctx context.Context) ([]vectorstore.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, pdf_id, content, embedding_json FROM vector_records")
	if err != nil {
		return nil, fmt.Errorf("failed to query vector_records: %w", err)
	}
	defer rows.Close()

	var records []vectorstore.Record
	for rows.Next() {
		var rec vectorstore.Record
		var embeddingJSON string
		if err := rows.Scan(&rec.ID, &rec.Metadata.PDFID, &rec.Metadata.Text, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan vector_records row: %w", err)
		}
		if embeddingJSON != "" {
			if err := json.Unmarshal([]byte(embeddingJSON), &rec.Values); err != nil {
				log.Printf("Warning: failed to unmarshal embedding for record %s: %v. Embedding will be empty.", rec.ID, err)
				rec.Values = nil
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

package core

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/UtshoDeyTech/pdfchat/internal/registry"
	"github.com/UtshoDeyTech/pdfchat/internal/vectorstore"
)

// SyncService reconciles the vector store against the document registry,
// purging vectors whose document no longer has a file on disk. It is the only
// mechanism that repairs the orphaned-vectors state left behind by an
// interrupted deletion or an out-of-band file removal.
type SyncService struct {
	registry registry.Registry
	store    vectorstore.Store
}

func NewSyncService(reg registry.Registry, store vectorstore.Store) *SyncService {
	return &SyncService{registry: reg, store: store}
}

// SyncReport summarizes one reconciliation pass.
type SyncReport struct {
	DeletedVectors int
	DeletedPDFs    []string
}

// Sync snapshots the store first and the registry second. Ingestion persists
// the file before upserting vectors, so a document whose vectors made it into
// the store snapshot always has its file visible to the later registry
// snapshot and is never purged mid-ingestion. The pass is idempotent: running
// it again immediately is a no-op.
func (s *SyncService) Sync(ctx context.Context) (*SyncReport, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, errUpstream(err, "failed to list vector store contents")
	}

	docs, err := s.registry.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list document registry: %w", err)
	}
	live := make(map[string]bool, len(docs))
	for _, doc := range docs {
		live[doc.ID] = true
	}

	orphaned := make(map[string][]string) // document ID -> vector IDs
	for _, rec := range records {
		if !live[rec.Metadata.PDFID] {
			orphaned[rec.Metadata.PDFID] = append(orphaned[rec.Metadata.PDFID], rec.ID)
		}
	}

	report := &SyncReport{DeletedPDFs: []string{}}
	for pdfID, ids := range orphaned {
		if err := s.store.Delete(ctx, ids); err != nil {
			return nil, errUpstream(err, "failed to purge %d vectors for orphaned PDF %s", len(ids), pdfID)
		}
		report.DeletedVectors += len(ids)
		report.DeletedPDFs = append(report.DeletedPDFs, pdfID)
	}
	sort.Strings(report.DeletedPDFs)

	log.Printf("Synchronization complete. Deleted %d vectors from %d PDFs.", report.DeletedVectors, len(report.DeletedPDFs))
	return report, nil
}

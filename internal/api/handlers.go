package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/UtshoDeyTech/pdfchat/internal/core"
	"github.com/UtshoDeyTech/pdfchat/internal/registry"
)

const maxUploadBytes = 32 << 20 // 32 MiB

type APIHandler struct {
	documents *core.DocumentService
	queries   *core.QueryService
	sync      *core.SyncService
}

func NewAPIHandler(docs *core.DocumentService, queries *core.QueryService, sync *core.SyncService) *APIHandler {
	return &APIHandler{documents: docs, queries: queries, sync: sync}
}

type UploadPDFResponse struct {
	PDFID        string `json:"pdf_id"`
	ChunksStored int    `json:"chunks_stored"`
}

func (h *APIHandler) UploadPDFHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A 'file' form field is required")
		return
	}
	defer file.Close()

	pdfID, chunksStored, err := h.documents.Upload(r.Context(), header.Filename, file)
	if err != nil {
		log.Printf("Error uploading PDF %s: %v", header.Filename, err)
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadPDFResponse{PDFID: pdfID, ChunksStored: chunksStored})
}

func (h *APIHandler) DeletePDFHandler(w http.ResponseWriter, r *http.Request) {
	pdfID := chi.URLParam(r, "pdfID")

	if err := h.documents.Delete(r.Context(), pdfID); err != nil {
		log.Printf("Error deleting PDF %s: %v", pdfID, err)
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("PDF %s and its vectors deleted successfully", pdfID),
	})
}

type ListPDFsResponse struct {
	TotalPDFs int                 `json:"total_pdfs"`
	PDFs      []registry.Document `json:"pdfs"`
}

func (h *APIHandler) ListPDFsHandler(w http.ResponseWriter, r *http.Request) {
	pdfs, err := h.documents.List()
	if err != nil {
		log.Printf("Error listing PDFs: %v", err)
		writePipelineError(w, err)
		return
	}
	if pdfs == nil {
		pdfs = []registry.Document{}
	}
	writeJSON(w, http.StatusOK, ListPDFsResponse{TotalPDFs: len(pdfs), PDFs: pdfs})
}

type SearchChunksRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
}

type SearchChunksResponse struct {
	Results []core.SearchResult `json:"results"`
}

func (h *APIHandler) SearchChunksHandler(w http.ResponseWriter, r *http.Request) {
	var req SearchChunksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := h.queries.Search(r.Context(), req.Query, req.NResults)
	if err != nil {
		log.Printf("Error searching chunks: %v", err)
		writePipelineError(w, err)
		return
	}
	if results == nil {
		results = []core.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchChunksResponse{Results: results})
}

type AskRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
}

func (h *APIHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	answer, err := h.queries.Ask(r.Context(), req.Query, req.NResults)
	if err != nil {
		log.Printf("Error answering question: %v", err)
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

type SyncResponse struct {
	Message     string   `json:"message"`
	DeletedPDFs []string `json:"deleted_pdfs"`
}

func (h *APIHandler) SyncHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.sync.Sync(r.Context())
	if err != nil {
		log.Printf("Error during synchronization: %v", err)
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SyncResponse{
		Message:     fmt.Sprintf("Synchronization complete. Deleted %d vectors from %d PDFs.", report.DeletedVectors, len(report.DeletedPDFs)),
		DeletedPDFs: report.DeletedPDFs,
	})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// writePipelineError maps the error taxonomy to HTTP statuses. Anything
// untagged is a generic server error; the message is still surfaced so no
// failure is silently swallowed.
func writePipelineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch core.KindOf(err) {
	case core.KindInvalidInput:
		status = http.StatusBadRequest
	case core.KindNotFound:
		status = http.StatusNotFound
	case core.KindEmptyContent:
		status = http.StatusUnprocessableEntity
	case core.KindUpstreamFailure:
		status = http.StatusBadGateway
	case core.KindPartialDelete, core.KindInconsistent:
		status = http.StatusInternalServerError
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

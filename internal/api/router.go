package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Post("/upload_pdf", apiHandler.UploadPDFHandler)
	r.Delete("/delete_pdf/{pdfID}", apiHandler.DeletePDFHandler)
	r.Get("/list_pdfs", apiHandler.ListPDFsHandler)
	r.Post("/search_chunks", apiHandler.SearchChunksHandler)
	r.Post("/ask", apiHandler.AskHandler)
	r.Post("/sync_vectors", apiHandler.SyncHandler)
	r.Get("/health", apiHandler.HealthHandler)

	return r
}

package handlers

import (
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quizbot-backend/internal/repository"
	"quizbot-backend/internal/services"
)

const maxUploadBytes = 25 << 20 // 25 MB

type DocumentHandler struct {
	ingest      *services.IngestService
	docs        *repository.DocumentRepo
	storagePath string
}

func NewDocumentHandler(ingest *services.IngestService, docs *repository.DocumentRepo, storagePath string) *DocumentHandler {
	return &DocumentHandler{
		ingest:      ingest,
		docs:        docs,
		storagePath: storagePath,
	}
}

// Upload receives a knowledge-base file and ingests it synchronously.
// Documents are small enough that the client waits for chunking+embedding.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart upload", r))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Missing file field", r))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".txt", ".pdf", ".docx":
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unsupported file type. Use .txt, .pdf or .docx", r))
		return
	}

	if err := os.MkdirAll(h.storagePath, 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to prepare storage", r))
		return
	}

	path := filepath.Join(h.storagePath, uuid.NewString()+ext)
	dst, err := os.Create(path)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store upload", r))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store upload", r))
		return
	}
	dst.Close()

	title := strings.TrimSuffix(header.Filename, ext)
	doc, err := h.ingest.IngestFile(r.Context(), path, title)
	if err != nil {
		log.Printf("[ERROR] Ingestion failed for %q: %v", header.Filename, err)
		os.Remove(path)
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("INGEST_ERROR", "Failed to process document", r))
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch documents", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid document ID", r))
		return
	}

	if _, err := h.docs.GetByID(r.Context(), id); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Document not found", r))
		return
	}

	// Chunks cascade with the document row.
	if err := h.docs.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete document", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted"})
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"resumekit/internal/document/model"
	"resumekit/internal/document/repository"
	"resumekit/internal/document/service"
	"resumekit/middleware"
	"resumekit/pkg/logger"
)

type DocumentHandler struct {
	Service *service.DocumentService
}

func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Service: service}
}

func (h *DocumentHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.SaveDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	docID, err := h.Service.SaveDocument(r.Context(), userID, req)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to save document: %v", err)
		writeError(w, err, "Failed to save document")
		return
	}

	writeJSON(w, model.SaveDocResponse{Success: true, DocumentID: docID})
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	docs, err := h.Service.GetDocuments(r.Context(), userID)
	if err != nil {
		logger.Sugar.Errorf("Error fetching documents: %v", err)
		http.Error(w, "Failed to fetch documents", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []model.Summary{}
	}

	writeJSON(w, model.ListDocumentsResponse{Documents: docs})
}

func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	doc, pdf, err := h.Service.DownloadDocument(r.Context(), userID, req.DocumentID)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to download document %s: %v", req.DocumentID, err)
		writeError(w, err, "Failed to download document")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, attachmentName(doc.Title)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// The id normally comes in the body; older clients send ?docId=.
	var req model.DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeDecodeError(w, err)
		return
	}
	docID := req.DocumentID
	if docID == "" {
		docID = r.URL.Query().Get("docId")
	}

	if err := h.Service.DeleteDocument(r.Context(), userID, docID); err != nil {
		logger.Sugar.Errorf("Handler: Failed to delete document %s: %v", docID, err)
		writeError(w, err, "Failed to delete document")
		return
	}

	writeJSON(w, model.SuccessResponse{Success: true})
}

func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Document not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrForbidden):
		http.Error(w, "Unauthorized access to document", http.StatusForbidden)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		logger.Sugar.Warnf("Rejected request body over %d bytes", tooLarge.Limit)
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	logger.Sugar.Infof("Rejected malformed request body: %v", err)
	http.Error(w, "Invalid request body", http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// attachmentName keeps the title usable inside a quoted header value.
func attachmentName(title string) string {
	name := strings.NewReplacer(`"`, "'", "\r", "", "\n", "", "\\", "_").Replace(title)
	if strings.TrimSpace(name) == "" {
		return "document"
	}
	return name
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/EyadAmgad/EduMentorAI/internal/api/middleware"
	"github.com/EyadAmgad/EduMentorAI/internal/metrics"
	"github.com/EyadAmgad/EduMentorAI/internal/models"
)

const maxDocumentBytes = 512 * 1024 // extracted text, not raw uploads

// UploadDocumentRequest is the body of a document upload.
type UploadDocumentRequest struct {
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// UploadDocument stores study material as extracted text.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req UploadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	title := sanitizeName(req.Title)
	if title == "" {
		h.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		h.Error(w, http.StatusBadRequest, "content is required")
		return
	}
	if len(req.Content) > maxDocumentBytes {
		h.Error(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}

	doc := &models.Document{
		UserID:    user.ID,
		Title:     title,
		Filename:  sanitizeName(req.Filename),
		Content:   req.Content,
		SizeBytes: int64(len(req.Content)),
	}
	if err := h.db.CreateDocument(r.Context(), doc); err != nil {
		h.log.Error().Err(err).Msg("create document failed")
		h.Error(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	metrics.DocumentsUploaded.Inc()
	h.JSON(w, http.StatusCreated, doc)
}

// DocumentsResponse is a page of the user's documents, content omitted.
type DocumentsResponse struct {
	Documents []models.Document `json:"documents"`
	Total     int               `json:"total"`
}

// ListDocuments returns the user's documents without content.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	limit, offset := parseLimitOffset(r, 20, 100)
	docs, total, err := h.db.ListDocuments(r.Context(), user.ID, limit, offset)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	for i := range docs {
		docs[i].Content = "" // listing carries metadata only
	}

	h.JSON(w, http.StatusOK, DocumentsResponse{Documents: docs, Total: total})
}

// ownedDocument resolves {documentID} and checks ownership.
func (h *Handler) ownedDocument(w http.ResponseWriter, r *http.Request) *models.Document {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "not authenticated")
		return nil
	}
	id, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid document ID")
		return nil
	}
	doc, err := h.db.GetDocument(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return nil
	}
	if doc == nil || doc.UserID != user.ID {
		h.Error(w, http.StatusNotFound, "document not found")
		return nil
	}
	return doc
}

// GetDocument returns one document including its content.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc := h.ownedDocument(w, r)
	if doc == nil {
		return
	}
	h.JSON(w, http.StatusOK, doc)
}

// DeleteDocument removes a document.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc := h.ownedDocument(w, r)
	if doc == nil {
		return
	}
	if err := h.db.DeleteDocument(r.Context(), doc.ID); err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	h.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

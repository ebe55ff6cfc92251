package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rohits-web03/folio/internal/api/middleware"
	"github.com/rohits-web03/folio/internal/api/services"
	"github.com/rohits-web03/folio/internal/utils"
	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

type DocumentHandler struct {
	docs *services.DocumentService
	log  *zap.Logger
}

func NewDocumentHandler(docs *services.DocumentService, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, log: log}
}

type documentRequest struct {
	UID        string `json:"uid"`
	Identifier string `json:"identifier"`
	Category   string `json:"category"`
}

// readBody returns the request body, substituting {} for an empty one.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrInvalidPayload, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}

func decodeDocumentRequest(w http.ResponseWriter, r *http.Request) (documentRequest, error) {
	var req documentRequest
	body, err := readBody(w, r)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: %v", services.ErrInvalidPayload, err)
	}
	return req, nil
}

// List godoc
// @Summary List readable documents
// @Description Returns the content of every document the caller owns plus all public documents, optionally filtered by category.
// @Tags Documents
// @Accept json
// @Produce json
// @Param body body documentRequest false "Optional uid override and category"
// @Success 200 {array} object
// @Failure 400 {string} string "Malformed body"
// @Router /doc/list [post]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Abort(w, http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeDocumentRequest(w, r)
	if err != nil {
		writeError(w, h.log, "doc.list", err)
		return
	}

	var override uuid.UUID
	if req.UID != "" {
		override, err = uuid.Parse(req.UID)
		if err != nil {
			utils.Abort(w, http.StatusBadRequest)
			return
		}
	}

	contents, err := h.docs.List(r.Context(), middleware.UserIDFrom(r.Context()), override, req.Category)
	if err != nil {
		writeError(w, h.log, "doc.list", err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, contents)
}

// Get godoc
// @Summary Fetch a document
// @Description Returns the stored content of one document. Public documents are readable without signing in.
// @Tags Documents
// @Accept json
// @Produce json
// @Param body body documentRequest true "Document identifier"
// @Success 200 {object} object
// @Failure 400 {string} string "Missing identifier"
// @Failure 403 {string} string "Not signed in and the document is not public"
// @Failure 404 {string} string "No readable document with that identifier"
// @Router /doc/get [post]
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Abort(w, http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeDocumentRequest(w, r)
	if err != nil {
		writeError(w, h.log, "doc.get", err)
		return
	}

	content, err := h.docs.Get(r.Context(), middleware.UserIDFrom(r.Context()), req.Identifier)
	if err != nil {
		writeError(w, h.log, "doc.get", err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, content)
}

// Save godoc
// @Summary Create or update a document
// @Description Stores the whole request body as the content of the caller's document with the given identifier.
// @Tags Documents
// @Accept json
// @Produce plain
// @Param body body services.SaveRequest true "Document payload"
// @Success 200 {string} string "Success."
// @Failure 400 {string} string "Missing identifier or malformed body"
// @Failure 403 {string} string "Not signed in, or public requested by a non-admin"
// @Router /doc/save [post]
func (h *DocumentHandler) Save(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Abort(w, http.StatusMethodNotAllowed)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, h.log, "doc.save", err)
		return
	}

	if err := h.docs.Save(r.Context(), middleware.UserIDFrom(r.Context()), body); err != nil {
		writeError(w, h.log, "doc.save", err)
		return
	}
	utils.Success(w)
}

// Delete godoc
// @Summary Delete a document
// @Tags Documents
// @Accept json
// @Produce plain
// @Param body body documentRequest true "Document identifier"
// @Success 200 {string} string "Success."
// @Failure 400 {string} string "Missing identifier or no such document"
// @Failure 401 {string} string "Document belongs to someone else"
// @Failure 403 {string} string "Not signed in"
// @Router /doc/delete [post]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Abort(w, http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeDocumentRequest(w, r)
	if err != nil {
		writeError(w, h.log, "doc.delete", err)
		return
	}

	if err := h.docs.Delete(r.Context(), middleware.UserIDFrom(r.Context()), req.Identifier); err != nil {
		writeError(w, h.log, "doc.delete", err)
		return
	}
	utils.Success(w)
}

// Export godoc
// @Summary Generate a download link for a document
// @Description Returns a short-lived presigned URL for the archived content of a readable document.
// @Tags Documents
// @Accept json
// @Produce json
// @Param body body documentRequest true "Document identifier"
// @Success 200 {object} utils.Payload
// @Failure 403 {string} string "Not signed in and the document is not public"
// @Failure 404 {string} string "No readable document with that identifier"
// @Failure 501 {string} string "Archive not configured"
// @Router /doc/export [post]
func (h *DocumentHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Abort(w, http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeDocumentRequest(w, r)
	if err != nil {
		writeError(w, h.log, "doc.export", err)
		return
	}

	url, err := h.docs.Export(r.Context(), middleware.UserIDFrom(r.Context()), req.Identifier)
	if err != nil {
		writeError(w, h.log, "doc.export", err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Download link generated",
		Data:    map[string]string{"url": url},
	})
}

package handler

import (
	"fmt"
	"io"
	"log"

	"github.com/gin-gonic/gin"
	services "github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/types"
	"github.com/tieubaoca/docqa-be/utils"
)

const maxUploadSize = 50 << 20

type DocumentHandler struct {
	documentService *services.DocumentService
	uploadDir       string
}

func NewDocumentHandler(documentService *services.DocumentService, uploadDir string) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		uploadDir:       uploadDir,
	}
}

// UploadDocumentHandler accepts a multipart upload with an optional
// session_id form field. The document is extracted, classified and chunked
// but not embedded; embedding is a separate call.
func (h *DocumentHandler) UploadDocumentHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, types.NewAppError(types.ErrKindValidation, "file field is required"))
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		respondError(c, types.NewAppError(types.ErrKindValidation, "file exceeds the upload size limit"))
		return
	}
	filename := utils.SanitizeFilename(header.Filename)
	if !utils.AllowedExtension(filename) {
		respondError(c, types.NewAppError(types.ErrKindValidation, "unsupported file type"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, types.NewAppError(types.ErrKindValidation, "failed to read uploaded file"))
		return
	}

	sessionID := c.Request.FormValue("session_id")
	doc, err := h.documentService.Upload(c.Request.Context(), sessionID, filename, data)
	if err != nil {
		respondError(c, err)
		return
	}

	// Keep the raw file around for audit; losing it never fails the upload.
	if _, err := utils.SaveFileWithTimestamp(data, filename, h.uploadDir); err != nil {
		log.Printf("failed to save upload copy of %s: %v", filename, err)
	}

	respondOK(c, "document uploaded", types.UploadResponse{
		DocumentID:   doc.ID,
		Filename:     doc.Filename,
		DocumentType: doc.DocumentType,
		Status:       "uploaded",
		Message:      fmt.Sprintf("document classified as %s, call embed to make it searchable", doc.DocumentType),
	})
}

// EmbedDocumentHandler vectorizes a previously uploaded document. An
// optional document_type overrides the classifier's label.
func (h *DocumentHandler) EmbedDocumentHandler(c *gin.Context) {
	var req types.EmbedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, types.NewAppError(types.ErrKindValidation, "invalid request body"))
		return
	}
	if req.DocumentID == "" {
		respondError(c, types.NewAppError(types.ErrKindValidation, "document_id is required"))
		return
	}

	var override types.DocumentType
	if req.DocumentType != "" {
		override = types.ParseDocumentType(req.DocumentType)
	}

	resp, err := h.documentService.Embed(c.Request.Context(), req.DocumentID, override)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "document embedded", resp)
}

// ListDocumentsHandler lists document records, optionally filtered by the
// session_id query parameter.
func (h *DocumentHandler) ListDocumentsHandler(c *gin.Context) {
	docs, err := h.documentService.ListDocuments(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if docs == nil {
		docs = []*types.Document{}
	}
	respondOK(c, "", types.DocumentListResponse{
		Documents: docs,
		Total:     len(docs),
	})
}

// DeleteDocumentHandler removes one document and everything derived from
// it.
func (h *DocumentHandler) DeleteDocumentHandler(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		respondError(c, types.NewAppError(types.ErrKindValidation, "document id is required"))
		return
	}
	if err := h.documentService.DeleteDocument(c.Request.Context(), documentID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "document deleted", gin.H{"document_id": documentID})
}

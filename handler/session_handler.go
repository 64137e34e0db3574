package handler

import (
	"github.com/gin-gonic/gin"
	services "github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/types"
)

type SessionHandler struct {
	documentService *services.DocumentService
}

func NewSessionHandler(documentService *services.DocumentService) *SessionHandler {
	return &SessionHandler{
		documentService: documentService,
	}
}

// CreateSessionHandler opens a new isolation boundary. The id is
// server-generated unless the caller supplies one.
func (h *SessionHandler) CreateSessionHandler(c *gin.Context) {
	var req types.CreateSessionRequest
	// Body is optional; an empty body means a fresh id and no description.
	_ = c.ShouldBindJSON(&req)

	session, err := h.documentService.CreateSession(c.Request.Context(), req.SessionID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "session created", session)
}

// DeleteSessionHandler tears down a session and everything scoped to it.
func (h *SessionHandler) DeleteSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		respondError(c, types.NewAppError(types.ErrKindValidation, "session id is required"))
		return
	}

	deleted, err := h.documentService.DeleteSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "session deleted", types.SessionDeleteResponse{
		SessionID:     sessionID,
		ChunksDeleted: deleted,
	})
}

package handler

import (
	"github.com/gin-gonic/gin"
	services "github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/types"
)

type QueryHandler struct {
	queryService *services.QueryService
}

func NewQueryHandler(queryService *services.QueryService) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
	}
}

// QueryHandler answers one question inside the scope the request pins
// down. A request with no scope fields must set allow_unscoped or it is
// rejected.
func (h *QueryHandler) QueryHandler(c *gin.Context) {
	var req types.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, types.NewAppError(types.ErrKindValidation, "invalid request body"))
		return
	}

	var documentType types.DocumentType
	if req.DocumentType != "" {
		documentType = types.ParseDocumentType(req.DocumentType)
		// "unknown" is a legitimate scope; it reaches chunks the classifier
		// could not place. Only strings outside the closed set are rejected.
		if !documentType.Known() && req.DocumentType != string(types.DocumentTypeUnknown) {
			respondError(c, types.NewAppError(types.ErrKindValidation,
				"unrecognized document_type %q", req.DocumentType))
			return
		}
	}

	resp, err := h.queryService.HandleQuery(c.Request.Context(), types.Query{
		Question:      req.Question,
		SessionID:     req.SessionID,
		DocumentID:    req.DocumentID,
		DocumentType:  documentType,
		AllowUnscoped: req.AllowUnscoped,
	}, false)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", resp)
}

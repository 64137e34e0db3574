package handler

import (
	"github.com/gin-gonic/gin"
	services "github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/types"
)

type OneShotHandler struct {
	oneShotService *services.OneShotService
}

func NewOneShotHandler(oneShotService *services.OneShotService) *OneShotHandler {
	return &OneShotHandler{
		oneShotService: oneShotService,
	}
}

// RunHandler executes the single-call flow: fetch the document, answer the
// questions, drop the working session. The response carries only the
// answers, in question order.
func (h *OneShotHandler) RunHandler(c *gin.Context) {
	var req types.OneShotRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, types.NewAppError(types.ErrKindValidation, "invalid request body"))
		return
	}

	resp, err := h.oneShotService.Run(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", resp)
}

package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa-be/types"
)

// respondError maps an error chain onto the wire envelope. The HTTP status
// and kind come from the nearest AppError; anything else is an opaque 500.
func respondError(c *gin.Context, err error) {
	kind := types.KindOf(err)
	if kind == types.ErrKindInternal {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(kind.HTTPStatus(), types.ErrorResponse{
		Status:  "error",
		Kind:    string(kind),
		Message: types.MessageOf(err),
	})
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/chunkscribe/errors"
)

// RespondWithError writes the structured error body for err. AppErrors keep
// their status; anything else is classified by apperrors.Wrap.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, appErr.ToResponse())
}

// RespondOK sends a 200 response with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

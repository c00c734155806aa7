package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/whisperd/errors"
)

// RespondWithError writes the error envelope for err. An *apperrors.AppError
// supplies its own status; an upload cut off by the body size limit becomes
// 413; anything else is a 500 carrying the error text.
func RespondWithError(c *gin.Context, err error) {
	appErr := ToAppError(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// ToAppError maps err onto the AppError that RespondWithError would send.
func ToAppError(err error) *apperrors.AppError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		appErr := apperrors.New(apperrors.ErrCodeUploadFailed, "upload exceeds the maximum body size", http.StatusRequestEntityTooLarge)
		return appErr.WithCause(err).WithDetail("limit_bytes", maxErr.Limit)
	}
	return apperrors.Wrap(err)
}

// RespondOK sends a 200 response with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

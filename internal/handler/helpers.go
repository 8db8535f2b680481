package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/magicauth/internal/middleware"
	"github.com/xxxsen/magicauth/internal/pkg/errcode"
	appErr "github.com/xxxsen/magicauth/internal/pkg/errors"
	"github.com/xxxsen/magicauth/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}

// handleError maps domain errors onto status codes. Collaborator failures
// are logged in full and answered with an opaque 500.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrInvalidEmail):
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidEmail, "invalid email")
	case errors.Is(err, appErr.ErrTokenInvalid):
		response.Error(c, http.StatusBadRequest, errcode.ErrTokenInvalid, "invalid or expired link")
	case errors.Is(err, appErr.ErrDeliveryFailed):
		response.Error(c, http.StatusInternalServerError, errcode.ErrDeliveryFailed, "failed to send email")
	default:
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}

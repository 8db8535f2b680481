package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/magicauth/internal/model"
	"github.com/xxxsen/magicauth/internal/pkg/errcode"
	"github.com/xxxsen/magicauth/internal/pkg/response"
)

const (
	ContextUserIDKey = "user_id"
	SessionCookie    = "session"
)

type SessionChecker interface {
	Check(ctx context.Context, token string) (model.SessionCheck, error)
}

// SessionAuth resolves the session cookie and stores the user id under
// ContextUserIDKey. Requests without a valid session carry on
// unauthenticated; only a store failure stops the request. When the check
// rolls the session forward the cookie is re-issued with the new expiry.
func SessionAuth(checker SessionChecker, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(SessionCookie)
		if err != nil || tok == "" {
			c.Next()
			return
		}
		check, err := checker.Check(c.Request.Context(), tok)
		if err != nil {
			logutil.GetLogger(c.Request.Context()).Error("validate session failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			response.Abort(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
			return
		}
		if check.UserID != "" {
			c.Set(ContextUserIDKey, check.UserID)
		}
		if check.Refreshed() {
			SetSessionCookie(c, tok, check.RefreshedUntil, secure)
		}
		c.Next()
	}
}

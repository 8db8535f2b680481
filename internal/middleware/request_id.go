package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const ContextRequestIDKey = "request_id"

// RequestID echoes or mints X-Request-Id and hands handlers a context
// logger tagged with it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", reqID)
		c.Set(ContextRequestIDKey, reqID)
		c.Request = c.Request.WithContext(withRequestID(c.Request.Context(), reqID))
		c.Next()
	}
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, reqID)
}

func RequestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// AccessLog writes one line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logutil.GetLogger(c.Request.Context()).Info("request",
			zap.String("request_id", RequestIDFrom(c.Request.Context())),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("user_id", c.GetString(ContextUserIDKey)),
		)
	}
}

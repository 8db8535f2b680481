package response

import (
	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, data gin.H) {
	c.JSON(200, data)
}

// Error writes {"error": message, "code": code}. Messages reaching this point
// must already be safe to show to the caller.
func Error(c *gin.Context, status int, code int, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

func Abort(c *gin.Context, status int, code int, message string) {
	Error(c, status, code, message)
	c.Abort()
}

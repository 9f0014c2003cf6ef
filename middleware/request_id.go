package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID attaches a uuid to every request for log correlation,
// honoring an inbound X-Request-ID from a trusted proxy.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx.Writer.Header().Set("X-Request-ID", rid)
		ctx.Next()
	}
}

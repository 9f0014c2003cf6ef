package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quietpage/journal/config"
	"github.com/quietpage/journal/utils"
)

// RequireReady fails API requests with 503 until the data store is
// reachable and migrated.
func RequireReady(db *config.Database) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !db.Ready() {
			utils.Error(ctx, http.StatusServiceUnavailable, 50301, "data store not ready")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

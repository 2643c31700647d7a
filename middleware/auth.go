package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cura-service/pkg/ctxmanage"
	"cura-service/pkg/logkey"
)

// Authenticated aborts with 401 when no user session exists. Checkout
// and profile routes sit behind this gate; the browse and cart routes
// do not, because the cart belongs to the device rather than the
// account.
func (m *Mid) Authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.users.CurrentUser() == nil {
			traceId := ctxmanage.GetTraceIdOfRequest(c)
			slog.Info("rejecting unauthenticated request", slog.String(logkey.TraceID, traceId), slog.String("Path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
			return
		}
		c.Next()
	}
}

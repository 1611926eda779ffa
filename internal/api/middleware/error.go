package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mt5-gateway/internal/logger"
)

// Recovery converts panics into the gateway's in-band error shape. Like
// every other failure, the response is HTTP 200 with an error body.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("handler panic", zap.Any("recovered", recovered))

		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		} else if err, ok := recovered.(error); ok {
			msg = err.Error()
		}

		c.JSON(http.StatusOK, gin.H{"error": msg})
		c.Abort()
	})
}

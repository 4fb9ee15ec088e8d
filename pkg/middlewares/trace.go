package middlewares

import (
	"github.com/gin-gonic/gin"

	logger "github.com/ashmount/ClanBot/middleware/log"
)

// TraceID stamps every request with a trace id, honoring one supplied by the
// caller, so log lines across a request correlate.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = logger.NewTraceID()
		}
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))
		c.Header("X-Trace-ID", traceID)
		c.Next()
	}
}

package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashmount/ClanBot/pkg/cooldown"
)

// CommandCooldown throttles each user to one command per window. A UX
// smoothing measure: it defers commands, it does not order them, and no
// invariant relies on it.
func CommandCooldown(guard *cooldown.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}

		ok, err := guard.Acquire(c.Request.Context(), userID)
		if err != nil {
			// Redis being down must not take commands with it.
			c.Next()
			return
		}
		if !ok {
			remaining, _ := guard.Remaining(c.Request.Context(), userID)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("slow down, try again in %s", remaining.Round(100*time.Millisecond)),
			})
			return
		}
		c.Next()
	}
}

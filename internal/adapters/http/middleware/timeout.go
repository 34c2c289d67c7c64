package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/bbquotes/internal/adapters/http/dto"
)

// Timeout returns middleware that sets a deadline on the request context.
// It does not interrupt the handler. Handlers pass the context to the quotes
// client, and a deadline that expires there surfaces as a 504 through
// dto.HandleError. A handler that gives up at the deadline without writing
// gets the same 504. Screen fetches are detached from the request context
// and are not bound by it.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			dto.AbortWithErrorCode(c, dto.ErrorCodeTimeout, "request timed out")
		}
	}
}

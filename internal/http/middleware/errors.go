package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Messages carried in error envelopes produced by this package.
const (
	MsgForbidden         = "Sorry that's not allowed. Make sure you have the correct api_key."
	MsgInternal          = "Sorry, something went wrong on our side."
	MsgRateLimited       = "Rate limit exceeded. Please slow down."
	MsgBadIdempotencyKey = "Invalid Idempotency-Key header."
)

// ErrorEnvelope builds the body shared by every error response:
//
//	{"error": {"<Category>": "<message>"}}
//
// The category is the standard status text (e.g. "Not Found").
func ErrorEnvelope(status int, msg string) gin.H {
	return gin.H{"error": gin.H{http.StatusText(status): msg}}
}

// abortError writes the error envelope and stops the chain.
func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope(status, msg))
}

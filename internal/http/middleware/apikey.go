package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderAPIKey carries the shared secret on write-protected endpoints.
const HeaderAPIKey = "api-key"

// APIKey rejects requests whose api-key header does not exactly equal key
// with 403 and the Forbidden envelope. The handler and store are never
// reached on rejection. An empty key rejects every request.
func APIKey(key string) gin.HandlerFunc {
	matches := APIKeyMatches(key)
	return func(c *gin.Context) {
		if !matches(c) {
			LoggerFrom(c).Warn().Msg("api key rejected")
			httpAPIKeyRejected.WithLabelValues(routeLabel(c)).Inc()
			abortError(c, http.StatusForbidden, MsgForbidden)
			return
		}
		c.Next()
	}
}

// APIKeyMatches returns the comparison APIKey uses, for middleware that runs
// ahead of the route and must not trust unauthenticated callers.
func APIKeyMatches(key string) func(*gin.Context) bool {
	want := []byte(key)
	return func(c *gin.Context) bool {
		got := []byte(c.GetHeader(HeaderAPIKey))
		return len(want) > 0 && subtle.ConstantTimeCompare(got, want) == 1
	}
}

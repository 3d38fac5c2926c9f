// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file makes POST /add safe to retry. IdempotencyValidator runs
// globally: it checks the Idempotency-Key header and flags requests from
// authorized callers whose response is already stored, so the rate limiter
// lets them through.
// IdempotentReplay runs on the route itself, after the api-key check, and
// either replays the stored response or records the first 2xx one.
package middleware

import (
	"bytes"
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderIdempotencyKey carries the client's retry key.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplay is "true" on responses served from storage.
	HeaderIdempotentReplay = "Idempotent-Replayed"

	defaultIdemKeyMaxLen = 200
)

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultIdemKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// StoredResponse is a completed response kept for replay.
type StoredResponse struct {
	Status int
	Body   []byte
}

// IdempotencyStore keeps responses by (route, key). Lookup returns (nil, nil)
// when nothing replayable exists.
type IdempotencyStore interface {
	Lookup(ctx context.Context, path, key string, now time.Time) (*StoredResponse, error)
	Save(ctx context.Context, path, key string, resp StoredResponse) error
}

// IdempotencyOptions tunes key validation.
type IdempotencyOptions struct {
	MaxLen  int            // <= 0 means 200
	Pattern *regexp.Regexp // nil means ^[A-Za-z0-9._~\-:]+$

	// Authorized gates the replay lookup. Callers it rejects are never
	// flagged as replays and so never skip the rate limiter. nil trusts all.
	Authorized func(*gin.Context) bool
}

// IdempotencyKey returns the key accepted by IdempotencyValidator.
func IdempotencyKey(c *gin.Context) (string, bool) {
	v, _ := c.Get(ctxKeyIdemKey)
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether a stored response exists for the request's key.
func IsReplay(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyIdemReplay)
	b, _ := v.(bool)
	return b
}

// IdempotencyValidator rejects malformed keys on POST with 400. A store
// lookup failure is ignored here; the request is then simply not treated as
// a replay. store may be nil.
func IdempotencyValidator(opts IdempotencyOptions, store IdempotencyStore) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultIdemKeyMaxLen
	}
	pattern := opts.Pattern
	if pattern == nil {
		pattern = defaultIdemKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pattern.MatchString(key) {
			abortError(c, http.StatusBadRequest, MsgBadIdempotencyKey)
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if store != nil && (opts.Authorized == nil || opts.Authorized(c)) {
			rec, _ := store.Lookup(c.Request.Context(), routePath(c), key, time.Now().UTC())
			if rec != nil {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

// IdempotentReplay answers a known key from store and otherwise records the
// handler's 2xx response under it. Requests without an accepted key pass
// through.
func IdempotentReplay(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := IdempotencyKey(c)
		if !ok || store == nil {
			c.Next()
			return
		}
		ctx, path := c.Request.Context(), routePath(c)

		if rec, err := store.Lookup(ctx, path, key, time.Now().UTC()); err == nil && rec != nil {
			httpIdemReplays.WithLabelValues(routeLabel(c)).Inc()
			c.Header(HeaderIdempotentReplay, "true")
			c.Data(rec.Status, "application/json; charset=utf-8", rec.Body)
			c.Abort()
			return
		}

		tee := &teeWriter{ResponseWriter: c.Writer}
		c.Writer = tee
		c.Next()

		if st := tee.Status(); st >= 200 && st < 300 {
			err := store.Save(ctx, path, key, StoredResponse{Status: st, Body: tee.body.Bytes()})
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Str("idempotency_key", key).Msg("idempotency record not saved")
			}
		}
	}
}

// teeWriter copies the body as it is written.
type teeWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// routePath keys records by the registered route, falling back to the URL.
func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

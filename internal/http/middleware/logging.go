// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the request ID injector, the access loggers and panic
// recovery. Install them in this order so panics and errors carry the
// correlation ID:
//
//  1. RequestID()
//  2. Logger() or RedactingLogger(...)
//  3. Recovery()
//
// Both loggers attach a request-scoped zerolog.Logger that handlers fetch
// with LoggerFrom. Routes with a :cafe_id segment log the raw id as cafe_id.
package middleware

import (
	"net/http"
	"regexp"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	// maxQueryLogLength caps the bytes of raw query logged per request.
	maxQueryLogLength = 2048
)

// Client-supplied request ids are echoed into logs and headers, so only
// short token-like values are accepted.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:\-]{1,128}$`)

// RequestID reuses a well-formed incoming X-Request-ID or generates a UUIDv4,
// stores it in the context and writes it back on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !requestIDPattern.MatchString(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// RequestIDFrom returns the id set by RequestID, falling back to the
// response and then the request header.
func RequestIDFrom(c *gin.Context) string {
	if rid := c.GetString(requestIDKey); rid != "" {
		return rid
	}
	if rid := c.Writer.Header().Get(requestIDHeader); rid != "" {
		return rid
	}
	return c.GetHeader(requestIDHeader)
}

// Logger writes one structured access log line per request. Query strings
// are logged as-is (truncated); use RedactingLogger when they may carry PII.
func Logger() gin.HandlerFunc {
	return accessLogger(nil)
}

// accessLogger is shared by Logger and RedactingLogger. A nil scrubber logs
// the query verbatim and omits request headers.
//
// Level: error for 5xx or recorded gin errors, warn for 4xx, info otherwise.
func accessLogger(s *scrubber) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		ctx := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", path)
		if id := c.Param("cafe_id"); id != "" {
			ctx = ctx.Str("cafe_id", id)
		}
		l := ctx.Logger()
		c.Set(loggerKey, &l)

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = l.Error().Strs("errors", c.Errors.Errors())
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		default:
			ev = l.Info()
		}

		query := c.Request.URL.RawQuery
		if s != nil {
			query = s.query(query)
			ev = ev.Interface("headers", s.headers(c.Request.Header))
		}
		ev.
			Str("query", truncate(query, maxQueryLogLength)).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Recovery turns a panic into the JSON 500 envelope (when nothing has been
// written yet) and logs the panic value with a stack trace.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			abortError(c, http.StatusInternalServerError, MsgInternal)
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global logger when no
// access logger ran. The result is never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// truncate cuts s to max bytes plus an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

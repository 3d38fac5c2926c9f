// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders. The catalog serves JSON plus one HTML
// landing page; browsers ignore CSP on JSON bodies, so a single policy can
// cover both.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultCSP lets the landing page load remote cafe photos and its own
// inline styles, nothing else.
const DefaultCSP = "default-src 'self'; img-src 'self' https: data:; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"

const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityOptions selects the optional headers.
type SecurityOptions struct {
	// EnableHSTS sends Strict-Transport-Security on HTTPS requests (direct TLS
	// or X-Forwarded-Proto: https). HSTSMaxAge <= 0 means 180 days.
	EnableHSTS bool
	HSTSMaxAge time.Duration

	// NoStore disables caching (Cache-Control, Pragma, Expires).
	NoStore bool

	// EnablePolicy sends Permissions-Policy and
	// X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool

	// ContentSecurityPolicy is sent verbatim when non-empty.
	ContentSecurityPolicy string
}

type headerPair struct{ name, value string }

// staticHeaders lists the headers opt sends on every response.
func (opt SecurityOptions) staticHeaders() []headerPair {
	out := []headerPair{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
	}
	if opt.ContentSecurityPolicy != "" {
		out = append(out, headerPair{"Content-Security-Policy", opt.ContentSecurityPolicy})
	}
	if opt.EnablePolicy {
		out = append(out,
			headerPair{"Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()"},
			headerPair{"X-Permitted-Cross-Domain-Policies", "none"},
		)
	}
	if opt.NoStore {
		out = append(out,
			headerPair{"Cache-Control", "no-store"},
			headerPair{"Pragma", "no-cache"},
			headerPair{"Expires", "0"},
		)
	}
	return out
}

func (opt SecurityOptions) hstsValue() string {
	age := opt.HSTSMaxAge
	if age <= 0 {
		age = defaultHSTSMaxAge
	}
	return "max-age=" + strconv.Itoa(int(age.Seconds())) + "; includeSubDomains; preload"
}

// SecurityHeaders sets the security headers before the handler runs. A
// request id already on the response is added to
// Access-Control-Expose-Headers so browser clients can read it.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	static := opt.staticHeaders()
	hsts := opt.hstsValue()

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, p := range static {
			h.Set(p.name, p.value)
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			exposeHeader(h, requestIDHeader)
		}
		c.Next()
	}
}

// exposeHeader adds name to Access-Control-Expose-Headers once.
func exposeHeader(h http.Header, name string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	switch {
	case cur == "":
		h.Set(key, name)
	case !strings.Contains(cur, name):
		h.Set(key, cur+", "+name)
	}
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

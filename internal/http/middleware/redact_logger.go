// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger used by default.
// It never logs bodies, masks secret headers (the catalog's api-key among
// them) and scrubs emails, phone numbers and UUIDs from the query string and
// remaining header values. Query parameters that look like the api key are
// masked too, since clients occasionally send it there by mistake.
package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

const redacted = "[REDACTED]"

// RedactOptions adds header names (case-insensitive) to the built-in mask
// set: Authorization, Cookie, Set-Cookie and api-key.
type RedactOptions struct {
	MaskHeaders []string
}

// UUIDs go first so the looser phone pattern cannot eat their digit runs.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// secretParams are query keys whose values are always masked.
var secretParams = map[string]struct{}{"api-key": {}, "api_key": {}, "apikey": {}}

type scrubber struct {
	maskHeaders map[string]struct{}
}

func newScrubber(opts RedactOptions) *scrubber {
	s := &scrubber{maskHeaders: map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
		HeaderAPIKey:    {},
	}}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			s.maskHeaders[h] = struct{}{}
		}
	}
	return s
}

func (s *scrubber) text(v string) string {
	if v == "" {
		return v
	}
	v = uuidRE.ReplaceAllString(v, "[REDACTED:id]")
	v = emailRE.ReplaceAllString(v, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(v, "[REDACTED:phone]")
}

// query masks secret parameters, then pattern-scrubs the rest. An
// unparseable query is only pattern-scrubbed.
func (s *scrubber) query(raw string) string {
	if raw == "" {
		return raw
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return s.text(raw)
	}
	masked := false
	for k := range vals {
		if _, ok := secretParams[strings.ToLower(k)]; ok {
			vals[k] = []string{redacted}
			masked = true
		}
	}
	if masked {
		raw = vals.Encode()
	}
	return s.text(raw)
}

func (s *scrubber) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := s.maskHeaders[strings.ToLower(k)]; ok {
			out[k] = redacted
			continue
		}
		out[k] = s.text(strings.Join(vv, ", "))
	}
	return out
}

// RedactingLogger returns the access logger with scrubbing applied to the
// query string and request headers.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	return accessLogger(newScrubber(opts))
}

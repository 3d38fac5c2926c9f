package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func securedResponse(t *testing.T, opt SecurityOptions, pre gin.HandlerFunc, mutate func(*http.Request)) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(SecurityHeaders(opt))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "<html></html>") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Options(t *testing.T) {
	viaTLS := func(r *http.Request) { r.TLS = &tls.ConnectionState{} }
	viaProxy := func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "HTTPS") }

	cases := []struct {
		name   string
		opt    SecurityOptions
		mutate func(*http.Request)
		want   map[string]string // "" means absent
	}{
		{
			name: "baseline only",
			want: map[string]string{
				"X-Content-Type-Options":    "nosniff",
				"X-Frame-Options":           "DENY",
				"Referrer-Policy":           "no-referrer",
				"Content-Security-Policy":   "",
				"Permissions-Policy":        "",
				"Cache-Control":             "",
				"Strict-Transport-Security": "",
			},
		},
		{
			name: "policy and no-store",
			opt:  SecurityOptions{EnablePolicy: true, NoStore: true, ContentSecurityPolicy: DefaultCSP},
			want: map[string]string{
				"Content-Security-Policy":           DefaultCSP,
				"Permissions-Policy":                "geolocation=(), microphone=(), camera=(), payment=()",
				"X-Permitted-Cross-Domain-Policies": "none",
				"Cache-Control":                     "no-store",
				"Pragma":                            "no-cache",
				"Expires":                           "0",
			},
		},
		{
			name:   "hsts over tls",
			opt:    SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour},
			mutate: viaTLS,
			want:   map[string]string{"Strict-Transport-Security": "max-age=86400; includeSubDomains; preload"},
		},
		{
			name:   "hsts behind proxy uses default age",
			opt:    SecurityOptions{EnableHSTS: true},
			mutate: viaProxy,
			want:   map[string]string{"Strict-Transport-Security": "max-age=15552000; includeSubDomains; preload"},
		},
		{
			name: "hsts skipped on plain http",
			opt:  SecurityOptions{EnableHSTS: true},
			want: map[string]string{"Strict-Transport-Security": ""},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := securedResponse(t, tc.opt, nil, tc.mutate)
			for k, v := range tc.want {
				if got := h.Get(k); got != v {
					t.Errorf("%s = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestSecurityHeaders_ExposesRequestID(t *testing.T) {
	cases := []struct {
		name, existing, want string
	}{
		{"none yet", "", "X-Request-ID"},
		{"appends", "Content-Length", "Content-Length, X-Request-ID"},
		{"already listed", "X-Request-ID, Content-Length", "X-Request-ID, Content-Length"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pre := func(c *gin.Context) {
				c.Header(requestIDHeader, "rid-1")
				if tc.existing != "" {
					c.Header("Access-Control-Expose-Headers", tc.existing)
				}
				c.Next()
			}
			h := securedResponse(t, SecurityOptions{}, pre, nil)
			if got := h.Get("Access-Control-Expose-Headers"); got != tc.want {
				t.Fatalf("expose = %q, want %q", got, tc.want)
			}
		})
	}

	if h := securedResponse(t, SecurityOptions{}, nil, nil); h.Get("Access-Control-Expose-Headers") != "" {
		t.Fatalf("no request id, nothing to expose")
	}
}

func TestIsHTTPS(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	tlsReq := httptest.NewRequest(http.MethodGet, "/", nil)
	tlsReq.TLS = &tls.ConnectionState{}
	proxied := httptest.NewRequest(http.MethodGet, "/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	spoofish := httptest.NewRequest(http.MethodGet, "/", nil)
	spoofish.Header.Set("X-Forwarded-Proto", "http")

	for req, want := range map[*http.Request]bool{plain: false, tlsReq: true, proxied: true, spoofish: false} {
		if got := isHTTPS(req); got != want {
			t.Fatalf("isHTTPS(%v) = %v", req.Header, got)
		}
	}
}

package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf) // plain JSON lines
	return &buf
}

func serve(r http.Handler, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratePropagateAndReject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) {
		if RequestIDFrom(c) == "" {
			t.Fatalf("requestID not set in context")
		}
		c.Status(http.StatusNoContent)
	})

	if got := serve(r, http.MethodGet, "/rid", nil).Header().Get(requestIDHeader); len(got) != 36 {
		t.Fatalf("expected generated uuid, got %q", got)
	}

	cases := []struct {
		in   string
		keep bool
	}{
		{"abc-123", true},
		{"Z-REQ-123", true},
		{"svc:trace.42", true},
		{"has space", false},
		{"bad\"quote", false},
		{strings.Repeat("x", 129), false},
	}
	for _, tc := range cases {
		got := serve(r, http.MethodGet, "/rid", map[string]string{"x-request-id": tc.in}).Header().Get(requestIDHeader)
		if (got == tc.in) != tc.keep {
			t.Fatalf("request id %q: got %q keep=%v", tc.in, got, tc.keep)
		}
	}
}

func TestRequestIDFrom_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var got string
	r.GET("/", func(c *gin.Context) { got = RequestIDFrom(c) })

	serve(r, http.MethodGet, "/", map[string]string{requestIDHeader: "from-request"})
	if got != "from-request" {
		t.Fatalf("expected request header fallback, got %q", got)
	}
}

func TestLogger_LevelsPathAndCafeID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/all", func(c *gin.Context) { c.String(http.StatusOK, "[]") })
	r.PATCH("/update-price/:cafe_id", func(c *gin.Context) {
		_ = c.Error(errors.New("store down"))
		c.Status(http.StatusInternalServerError)
	})

	serve(r, http.MethodGet, "/all?loc=x", nil)
	serve(r, http.MethodGet, "/missing", nil)
	serve(r, http.MethodPatch, "/update-price/7", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 access lines, got %d:\n%s", len(lines), buf.String())
	}
	want := []struct{ level, path string }{
		{"info", "/all"},
		{"warn", "/missing"}, // raw path when unmatched
		{"error", "/update-price/:cafe_id"},
	}
	for i, w := range want {
		var m map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &m); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if m["level"] != w.level || m["path"] != w.path || m["message"] != "request" {
			t.Fatalf("line %d = %v; want level=%s path=%s", i, m, w.level, w.path)
		}
		if _, ok := m["headers"]; ok {
			t.Fatalf("plain Logger must not log headers: %v", m)
		}
	}
	if !strings.Contains(lines[0], `"query":"loc=x"`) {
		t.Fatalf("expected raw query: %s", lines[0])
	}
	if !strings.Contains(lines[2], `"cafe_id":"7"`) || !strings.Contains(lines[2], `"errors":["store down"]`) {
		t.Fatalf("expected cafe_id and errors: %s", lines[2])
	}
}

func TestRecovery_PanicsToJSON500AndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/random", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, http.MethodGet, "/random", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from Recovery, got %d", w.Code)
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["error"]["Internal Server Error"] != MsgInternal {
		t.Fatalf("unexpected body: %v", body)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected %s header on recovered response", requestIDHeader)
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), `"stack"`) {
		t.Fatalf("expected panic log with stack, got:\n%s", buf.String())
	}
}

func TestRecovery_PanicAfterWrite_NoJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/all", func(c *gin.Context) {
		c.String(http.StatusOK, "partial-body")
		panic("late kaboom")
	})

	w := serve(r, http.MethodGet, "/all", nil)
	if strings.Contains(w.Body.String(), MsgInternal) {
		t.Fatalf("expected no JSON error body after a write; got %q", w.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic log, got:\n%s", buf.String())
	}
}

func TestLoggerFrom_FallbackAndRequestScoped(t *testing.T) {
	gin.SetMode(gin.TestMode)

	buf := captureLogger(t)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("custom")
		c.Status(http.StatusOK)
	})
	serve(r, http.MethodGet, "/use", nil)
	if !strings.Contains(buf.String(), `"message":"custom"`) || strings.Contains(buf.String(), `"request_id"`) {
		t.Fatalf("fallback logger output unexpected: %s", buf.String())
	}

	buf = captureLogger(t)
	r = gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("custom2")
		c.Status(http.StatusOK)
	})
	serve(r, http.MethodGet, "/use", nil)
	if !strings.Contains(buf.String(), `"message":"custom2"`) || !strings.Contains(buf.String(), `"request_id"`) {
		t.Fatalf("request-scoped logger should carry request_id: %s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"abcdefgh", 5, "abcde…"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("truncate(%q,%d)=%q want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

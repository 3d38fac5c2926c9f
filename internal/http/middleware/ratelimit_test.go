package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"
)

// fakeClock lets tests move the limiter's notion of now.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newClockedLimiter(rps float64, burst int) (*RateLimiter, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(rps, burst, KeyByClientIP())
	rl.now = clk.now
	return rl, clk
}

func TestKeyByClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/random", nil)
	c.Request.RemoteAddr = "203.0.113.9:12345"

	if got := KeyByClientIP()(c); got != "ip:203.0.113.9" {
		t.Fatalf("key = %q", got)
	}
}

func TestNewRateLimiter_BurstFloorAndBucketReuse(t *testing.T) {
	rl := NewRateLimiter(2, -3, KeyByClientIP())
	if rl.burst != 1 {
		t.Fatalf("burst = %d, want 1", rl.burst)
	}
	a := rl.limiterFor("ip:a")
	if rl.limiterFor("ip:a") != a {
		t.Fatalf("same key should reuse its bucket")
	}
	if rl.limiterFor("ip:b") == a {
		t.Fatalf("distinct keys should not share a bucket")
	}
	if rl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", rl.Len())
	}
}

func TestRateLimiter_SweepDropsIdleBuckets(t *testing.T) {
	rl, clk := newClockedLimiter(1, 1)
	rl.limiterFor("ip:stale")
	rl.limiterFor("ip:busy")

	clk.advance(defaultIdleWindow - time.Second)
	rl.limiterFor("ip:busy")
	clk.advance(2 * time.Second)

	rl.mu.Lock()
	rl.lookups = sweepEvery - 1
	rl.mu.Unlock()
	rl.limiterFor("ip:new")

	rl.mu.Lock()
	_, stale := rl.buckets["ip:stale"]
	_, busy := rl.buckets["ip:busy"]
	n := rl.lookups
	rl.mu.Unlock()

	if stale || !busy {
		t.Fatalf("after sweep stale=%v busy=%v; want false,true", stale, busy)
	}
	if n != 0 || rl.Len() != 2 {
		t.Fatalf("lookups=%d len=%d; want 0,2", n, rl.Len())
	}
}

func TestIsRateBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if IsRateBypass(c) {
		t.Fatalf("default should be false")
	}
	c.Set(ctxKeyRateBypass, "yes")
	if IsRateBypass(c) {
		t.Fatalf("non-bool value should read as false")
	}
	c.Set(ctxKeyRateBypass, true)
	if !IsRateBypass(c) {
		t.Fatalf("expected bypass")
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name  string
		limit rate.Limit
		burst int
		want  int
	}{
		{"one per second", 1, 1, 1},
		{"one per five seconds", 0.2, 1, 5},
		{"zero limit", 0, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lim := rate.NewLimiter(tc.limit, tc.burst)
			lim.AllowN(now, tc.burst) // drain
			if got := retryAfter(lim, now); got != tc.want {
				t.Fatalf("retryAfter = %d, want %d", got, tc.want)
			}
			// the probe must not consume the refill
			if tc.limit > 0 && !lim.AllowN(now.Add(time.Duration(tc.want)*time.Second), 1) {
				t.Fatalf("probe reservation was not returned")
			}
		})
	}
}

func TestRateLimiter_Handler_DenyRefillBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, clk := newClockedLimiter(1, 1)

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/search", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?loc=Soho", nil))
		return w
	}

	before := testutil.ToFloat64(httpRateLimited.WithLabelValues("/search"))

	if w := get(); w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	w := get()
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("second request: code=%d retry-after=%q", w.Code, w.Header().Get("Retry-After"))
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["error"]["Too Many Requests"] != MsgRateLimited {
		t.Fatalf("body = %v", body)
	}
	if got := testutil.ToFloat64(httpRateLimited.WithLabelValues("/search")) - before; got != 1 {
		t.Fatalf("rate-limited counter delta = %v, want 1", got)
	}

	clk.advance(time.Second)
	if w := get(); w.Code != http.StatusOK {
		t.Fatalf("after refill: %d %s", w.Code, strings.TrimSpace(w.Body.String()))
	}

	// replays skip the bucket even when it is empty
	rb := gin.New()
	rb.Use(func(c *gin.Context) { c.Set(ctxKeyRateBypass, true); c.Next() })
	rb.Use(rl.Handler())
	rb.GET("/search", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		rb.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("bypass #%d: %d", i, w.Code)
		}
	}
}

func TestRateLimiter_Handler_ZeroRateRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newClockedLimiter(0, 1)

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/all", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	codes := make([]int, 0, 2)
	var retry string
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/all", nil)
		req.RemoteAddr = "198.51.100.4:5000"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		retry = w.Header().Get("Retry-After")
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
	if retry != "1" {
		t.Fatalf("Retry-After = %q, want 1", retry)
	}
}

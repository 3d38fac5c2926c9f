package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_LabelsByRouteAndCollapsesUnknownPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/random", func(c *gin.Context) { c.String(http.StatusOK, `{"cafe":{}}`) })
	r.DELETE("/report-closed/:cafe_id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	type series struct{ method, path, status string }
	count := func(s series) float64 {
		return testutil.ToFloat64(httpReqs.WithLabelValues(s.method, s.path, s.status))
	}

	hits := []struct {
		method, target string
		want           series
	}{
		{http.MethodGet, "/random", series{"GET", "/random", "200"}},
		{http.MethodDelete, "/report-closed/3", series{"DELETE", "/report-closed/:cafe_id", "204"}},
		{http.MethodDelete, "/report-closed/4", series{"DELETE", "/report-closed/:cafe_id", "204"}},
		{http.MethodGet, "/wp-login.php", series{"GET", UnmatchedPath, "404"}},
		{http.MethodGet, "/.env", series{"GET", UnmatchedPath, "404"}},
	}

	before := map[series]float64{}
	for _, h := range hits {
		before[h.want] = count(h.want)
	}
	for _, h := range hits {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(h.method, h.target, nil))
	}
	deltas := map[series]float64{
		{"GET", "/random", "200"}:                    1,
		{"DELETE", "/report-closed/:cafe_id", "204"}: 2,
		{"GET", UnmatchedPath, "404"}:                2,
	}
	for s, want := range deltas {
		if got := count(s) - before[s]; got != want {
			t.Errorf("%v delta = %v, want %v", s, got, want)
		}
	}

	if v := testutil.ToFloat64(httpInflight); v != 0 {
		t.Fatalf("inflight = %v after requests finished", v)
	}
	if n := testutil.CollectAndCount(httpRespSize, "http_response_size_bytes"); n == 0 {
		t.Fatalf("expected response size observations")
	}
}

func TestRouteLabel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var got []string
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Next(); got = append(got, routeLabel(c)) })
	r.PATCH("/update-price/:cafe_id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, target := range []string{"/update-price/7", "/update-price/7/extra"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, target, nil))
	}
	if len(got) != 2 || got[0] != "/update-price/:cafe_id" || got[1] != UnmatchedPath {
		t.Fatalf("labels = %v", got)
	}
}

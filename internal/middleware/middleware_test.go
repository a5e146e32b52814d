package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur/internal/config"
)

func testLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: 2 * time.Second,
		TTL:            time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "fyyur:rl",
	}
}

func postContext(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/venues/create", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/venues/create")
	return c, rec
}

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestBuildRateKey(t *testing.T) {
	c, _ := postContext(echo.New())
	cfg := testLimitConfig()

	assert.Equal(t, "fyyur:rl:ip:10.0.0.1:route:POST /venues/create", buildRateKey(cfg, c))
	cfg.KeyStrategy = "ip"
	assert.Equal(t, "fyyur:rl:ip:10.0.0.1", buildRateKey(cfg, c))
	cfg.KeyStrategy = "route"
	assert.Equal(t, "fyyur:rl:route:POST /venues/create", buildRateKey(cfg, c))
}

func TestTokenBucket_Disabled(t *testing.T) {
	cfg := testLimitConfig()
	cfg.Enabled = false
	c, rec := postContext(echo.New())

	require.NoError(t, NewTokenBucket(cfg, nil)(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenBucket_Allows(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	now := time.Unix(1700000000, 0)
	tb := &tokenBucket{cfg: testLimitConfig(), rdb: rdb, now: func() time.Time { return now }}
	c, rec := postContext(echo.New())
	key := buildRateKey(tb.cfg, c)

	mock.ExpectEvalSha(limiterScript.Hash(), []string{key}, tb.args()...).SetVal([]any{int64(1), int64(1), int64(0)})

	require.NoError(t, tb.middleware(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenBucket_Blocks(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	now := time.Unix(1700000000, 0)
	tb := &tokenBucket{cfg: testLimitConfig(), rdb: rdb, now: func() time.Time { return now }}
	c, rec := postContext(echo.New())
	key := buildRateKey(tb.cfg, c)

	mock.ExpectEvalSha(limiterScript.Hash(), []string{key}, tb.args()...).SetVal([]any{int64(0), int64(0), int64(1500)})

	err := tb.middleware(okHandler)(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusTooManyRequests, he.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenBucket_FailsOpen(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	tb := &tokenBucket{cfg: testLimitConfig(), rdb: rdb, now: time.Now}
	c, rec := postContext(echo.New())
	mock.ExpectEvalSha(limiterScript.Hash(), []string{buildRateKey(tb.cfg, c)}, tb.args()...).SetErr(assert.AnError)

	require.NoError(t, tb.middleware(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(5), asInt64(int64(5)))
	assert.Equal(t, int64(5), asInt64(5))
	assert.Equal(t, int64(5), asInt64(5.9))
	assert.Equal(t, int64(5), asInt64("5"))
	assert.Equal(t, int64(0), asInt64(nil))
}

func TestMetrics(t *testing.T) {
	e := echo.New()
	e.Use(Metrics())
	e.GET("/venues", okHandler)
	e.GET("/metrics", MetricsHandler())

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/venues", "200"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/venues", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/venues", "200")))

	TrackListing("venue", "create", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `fyyur_listings_total{entity="venue",op="create",result="ok"}`))
	assert.Contains(t, body, "fyyur_http_request_duration_seconds")
}

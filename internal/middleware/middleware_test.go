package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

func protected(secret string, roles ...string) *echo.Echo {
	e := echo.New()
	g := e.Group("", JWTAuth(secret), RequireRole(roles...))
	g.GET("/who", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"id": StaffID(c), "role": Role(c)})
	})
	return e
}

func get(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthSetsIdentity(t *testing.T) {
	tok, err := utils.NewAccessToken("s3cret", 9, "KITCHEN", 5)
	require.NoError(t, err)

	rec := get(protected("s3cret", "KITCHEN"), tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":9,"role":"KITCHEN"}`, rec.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	e := protected("s3cret", "STAFF")
	assert.Equal(t, http.StatusUnauthorized, get(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(e, "garbage").Code)

	tok, err := utils.NewAccessToken("s3cret", 9, "KITCHEN", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(e, tok.Token).Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/orders")
	c.Set(ContextStaffID, uint64(4))

	cfg := config.RateLimitConfig{Prefix: "pos:rl", KeyStrategy: "user_route"}
	assert.Equal(t, "pos:rl:user:4:route:POST /v1/orders", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "pos:rl:ip:10.0.0.7", buildRateKey(cfg, c))
}

func TestPayloadRoundTrip(t *testing.T) {
	h := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, h, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, header, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload(bs[:6])
	assert.False(t, ok)
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil))
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil))
	e.GET("/menu", func(c echo.Context) error { return c.String(http.StatusOK, "menu") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/menu", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

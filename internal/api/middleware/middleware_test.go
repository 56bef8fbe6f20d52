package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/morroware/retrosv2-sub000/internal/shared/id"
)

// stateRouter mounts stand-ins for the state and window routes behind mw.
func stateRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	router.GET("/state", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"value": nil}) })
	router.PUT("/state", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	router.PATCH("/windows/:id", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"id": c.Param("id")}) })
	return router
}

func preflight(router http.Handler, path, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, path, nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", method)
	req.Header.Set("Access-Control-Request-Headers", "content-type,x-request-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSPreflightForStateWrites(t *testing.T) {
	router := stateRouter(CORS(DefaultCORSConfig()))

	for _, tc := range []struct{ path, method string }{
		{"/state", http.MethodPut},
		{"/windows/win_1", http.MethodPatch},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := preflight(router, tc.path, tc.method, "http://localhost:5173")

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), tc.method)
			assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "x-request-id")
			assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
		})
	}
}

func TestCORSExposesRequestID(t *testing.T) {
	router := stateRouter(RequestID(), CORS(DefaultCORSConfig()))

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Expose-Headers")), "x-request-id")
}

func TestCORSSameOriginUntouched(t *testing.T) {
	router := stateRouter(CORS(DefaultCORSConfig()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/state", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfiguredOrigins(t *testing.T) {
	router := stateRouter(CORS(CORSConfig{AllowOrigins: []string{"https://retros.example"}, MaxAge: time.Hour}))

	w := preflight(router, "/windows/win_1", http.MethodPatch, "https://retros.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://retros.example", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodPut, "/state", strings.NewReader(`{}`))
	req.Header.Set("Origin", "https://elsewhere.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSEmptyOriginsAdmitsAll(t *testing.T) {
	router := stateRouter(CORS(CORSConfig{}))

	w := preflight(router, "/state", http.MethodPut, "http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitPerClient(t *testing.T) {
	router := stateRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2, IdleTTL: time.Minute}))

	put := func(ip string) int {
		req := httptest.NewRequest(http.MethodPut, "/state", strings.NewReader(`{"path":"settings.sound","value":true}`))
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, put("192.168.1.1"))
	assert.Equal(t, http.StatusOK, put("192.168.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, put("192.168.1.1"), "burst spent")
	assert.Equal(t, http.StatusOK, put("192.168.1.2"), "other clients keep their own bucket")
}

func TestRateLimitWithoutIdleTTL(t *testing.T) {
	router := stateRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 100, Burst: 100}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/state", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()

	assert.Equal(t, 100, cfg.RequestsPerSecond)
	assert.Equal(t, 200, cfg.Burst)
	assert.Equal(t, 10*time.Minute, cfg.IdleTTL)
}

func TestRequestIDAssigned(t *testing.T) {
	var seen string
	router := stateRouter(RequestID(), func(c *gin.Context) {
		c.Next()
		seen = c.GetString(RequestIDKey)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/state", nil))

	rid := w.Header().Get(RequestIDHeader)
	assert.Equal(t, seen, rid)
	assert.True(t, strings.HasPrefix(rid, id.RequestPrefix+"_"))
	assert.True(t, id.IsValid(rid))
}

func TestRequestIDReused(t *testing.T) {
	router := stateRouter(RequestID())

	req := httptest.NewRequest(http.MethodPatch, "/windows/win_1", strings.NewReader(`{"title":"x"}`))
	req.Header.Set(RequestIDHeader, "caller-supplied")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "caller-supplied", w.Header().Get(RequestIDHeader))
}

func TestLoggerLevelsByStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Logger(zap.New(core)))
	router.GET("/state", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.PUT("/state", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusBadRequest)
	})
	router.POST("/snapshot", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/state"},
		{http.MethodPut, "/state"},
		{http.MethodPost, "/snapshot"},
	} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(r.method, r.path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
	assert.Equal(t, "PUT", entries[1].ContextMap()["method"])
	assert.Contains(t, entries[1].ContextMap()["errors"], assert.AnError.Error())
}

func BenchmarkRateLimit(b *testing.B) {
	router := stateRouter(RateLimit(DefaultRateLimitConfig()))

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.RemoteAddr = "192.168.1.1:1234"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

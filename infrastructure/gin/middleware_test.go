package gin_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ginpkg "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infragin "github.com/jonesrussell/content-extraction/infrastructure/gin"
	"github.com/jonesrussell/content-extraction/infrastructure/logger"
)

func init() {
	ginpkg.SetMode(ginpkg.TestMode)
}

// newTestRouter returns an engine with RequestIDLoggerMiddleware and GET /test.
func newTestRouter(t *testing.T, handler ginpkg.HandlerFunc) *ginpkg.Engine {
	t.Helper()

	if handler == nil {
		handler = func(c *ginpkg.Context) { c.String(http.StatusOK, "ok") }
	}

	router := ginpkg.New()
	router.Use(infragin.RequestIDLoggerMiddleware(logger.NewNop()))
	router.GET("/test", handler)

	return router
}

func serve(t *testing.T, router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestIDLoggerMiddleware_GeneratesID(t *testing.T) {
	t.Parallel()

	w := serve(t, newTestRouter(t, nil), httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

	id := w.Header().Get(infragin.RequestIDHeader)
	assert.Len(t, id, 32)
}

func TestRequestIDLoggerMiddleware_PreservesExistingID(t *testing.T) {
	t.Parallel()

	const inbound = "trace-from-upstream-abc123"

	var seen string
	router := newTestRouter(t, func(c *ginpkg.Context) {
		seen = c.GetString(infragin.RequestIDKey)
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set(infragin.RequestIDHeader, inbound)
	w := serve(t, router, req)

	assert.Equal(t, inbound, w.Header().Get(infragin.RequestIDHeader))
	assert.Equal(t, inbound, seen)
}

func TestRequestIDLoggerMiddleware_RejectsInvalidIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
	}{
		{name: "oversized", id: strings.Repeat("x", 200)},
		{name: "contains space", id: "abc def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			req.Header.Set(infragin.RequestIDHeader, tt.id)
			w := serve(t, newTestRouter(t, nil), req)

			got := w.Header().Get(infragin.RequestIDHeader)
			assert.NotEqual(t, tt.id, got)
			assert.Len(t, got, 32)
		})
	}
}

func TestRequestIDLoggerMiddleware_StoresLoggerInContext(t *testing.T) {
	t.Parallel()

	var got logger.Logger
	router := newTestRouter(t, func(c *ginpkg.Context) {
		got = logger.FromContext(c.Request.Context())
		c.String(http.StatusOK, "ok")
	})

	serve(t, router, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

	require.NotNil(t, got)
	assert.IsType(t, &logger.NoOpLogger{}, got)
}

func TestRequestIDLoggerMiddleware_UniqueIDs(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)
	seen := make(map[string]struct{}, 100)

	for range 100 {
		w := serve(t, router, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
		id := w.Header().Get(infragin.RequestIDHeader)
		_, dup := seen[id]
		require.False(t, dup, "duplicate request ID %s", id)
		seen[id] = struct{}{}
	}
}

func TestRecoveryMiddleware_ReturnsJSON500(t *testing.T) {
	t.Parallel()

	router := ginpkg.New()
	router.Use(infragin.RecoveryMiddleware(logger.NewNop()))
	router.GET("/boom", func(*ginpkg.Context) { panic("boom") })

	w := serve(t, router, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Internal Server Error"`)
	assert.Contains(t, w.Body.String(), `"timestamp"`)
}

func TestCORSMiddleware(t *testing.T) {
	t.Parallel()

	router := ginpkg.New()
	router.Use(infragin.CORSMiddleware(infragin.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"https://dashboard.example.com"},
	}))
	router.GET("/x", func(c *ginpkg.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/x", http.NoBody)
		req.Header.Set("Origin", "https://dashboard.example.com")
		w := serve(t, router, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", http.NoBody)
		req.Header.Set("Origin", "https://evil.example.com")
		w := serve(t, router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 4, 5, 6, 7, 891_000_000, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "2026-03-04T10:06:07.891Z", infragin.Timestamp(ts))
}

// Not parallel: NewServer sets the global gin mode.
func TestServerBuilder_WiresMiddlewareAndRoutes(t *testing.T) {
	srv := infragin.NewServerBuilder("content-extraction", 3000).
		WithLogger(logger.NewNop()).
		WithMiddleware(func(c *ginpkg.Context) {
			c.Header("X-Extra", "1")
			c.Next()
		}).
		WithRoutes(func(r *ginpkg.Engine) {
			r.GET("/ping", func(c *ginpkg.Context) { c.String(http.StatusOK, "pong") })
		}).
		Build()

	w := serve(t, srv.Router(), httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Extra"))
	assert.NotEmpty(t, w.Header().Get(infragin.RequestIDHeader))
}

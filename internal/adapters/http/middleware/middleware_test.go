package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/bbquotes/internal/adapters/http/dto"
	"github.com/jsamuelsen/bbquotes/internal/platform/logging"
)

const uuidPattern = `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIDMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		middleware gin.HandlerFunc
		header     string
		fromGin    func(*gin.Context) string
		fromCtx    func(context.Context) string
	}{
		{"request id", RequestID(), HeaderRequestID, GetRequestID, logging.RequestID},
		{"correlation id", CorrelationID(), HeaderCorrelationID, GetCorrelationID, logging.CorrelationID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cases := []struct {
				name    string
				inbound string
				keep    bool
			}{
				{"generates UUID when no header present", "", false},
				{"passes through existing header", "existing-id-123", true},
				{"replaces oversized header", strings.Repeat("x", maxIDLength+1), false},
				{"replaces header with spaces", "two words", false},
			}

			for _, tc := range cases {
				t.Run(tc.name, func(t *testing.T) {
					var ginID, ctxID string

					router := gin.New()
					router.Use(tt.middleware)
					router.GET("/test", func(c *gin.Context) {
						ginID = tt.fromGin(c)
						ctxID = tt.fromCtx(c.Request.Context())
						c.Status(http.StatusOK)
					})

					w := httptest.NewRecorder()
					req := httptest.NewRequest(http.MethodGet, "/test", nil)
					if tc.inbound != "" {
						req.Header.Set(tt.header, tc.inbound)
					}

					router.ServeHTTP(w, req)

					require.Equal(t, http.StatusOK, w.Code)
					assert.Equal(t, w.Header().Get(tt.header), ginID)
					assert.Equal(t, ginID, ctxID, "ID is available for outbound propagation")

					if tc.keep {
						assert.Equal(t, tc.inbound, ginID)
					} else {
						assert.Regexp(t, uuidPattern, ginID)
					}
				})
			}
		})
	}
}

func TestGetIDs_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, GetRequestID(c))
	assert.Empty(t, GetCorrelationID(c))
}

func TestContextLogger_EnrichedByIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(ContextLogger(logger), RequestID(), CorrelationID(), Logging(logger))
	router.GET("/api/v1/shows", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shows", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	req.Header.Set(HeaderCorrelationID, "corr-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var completed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &completed))
	assert.Equal(t, "request completed", completed["msg"])
	assert.Equal(t, "req-1", completed["request_id"])
	assert.Equal(t, "corr-1", completed["correlation_id"])
	assert.InDelta(t, float64(http.StatusOK), completed["status"], 0)
}

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		status    int
		skipPaths []string
		wantLevel string
	}{
		{"logs normal request", "/api/v1/shows", http.StatusOK, nil, "INFO"},
		{"logs path with query", "/api/v1/quotes/random?production=El+Camino", http.StatusOK, nil, "INFO"},
		{"logs 4xx at warn", "/api/v1/shows/x/state", http.StatusNotFound, nil, "WARN"},
		{"logs 5xx at error", "/api/v1/quotes/random", http.StatusBadGateway, nil, "ERROR"},
		{"skips /-/ paths", "/-/health", http.StatusOK, nil, ""},
		{"skips configured paths", "/metrics", http.StatusOK, []string{"/metrics"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			router := gin.New()
			router.Use(Logging(logger, tt.skipPaths...))
			router.NoRoute(func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)

			if tt.wantLevel == "" {
				assert.Empty(t, buf.String())
				return
			}

			assert.Contains(t, buf.String(), "request started")
			assert.Contains(t, buf.String(), "level="+tt.wantLevel+" msg=\"request completed\"")
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	t.Run("normal request passes through", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery(discardLogger()))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("panicking handler returns 500 envelope", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		router := gin.New()
		router.Use(Recovery(slog.New(slog.NewTextHandler(&buf, nil))))
		router.GET("/test", func(*gin.Context) { panic("something went wrong") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrorCodeInternal, resp.Error.Code)
		assert.Contains(t, buf.String(), "panic recovered")
		assert.Contains(t, buf.String(), "something went wrong")
	})

	t.Run("panic after write keeps the written status", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery(discardLogger()))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusAccepted, "partial")
			panic("late")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusAccepted, w.Code)
	})
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	var hasDeadline bool

	router := gin.New()
	router.Use(Timeout(5 * time.Second))
	router.GET("/test", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}

func TestTimeout_UnwrittenResponse(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(Timeout(20 * time.Millisecond))
	router.GET("/test", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeTimeout, resp.Error.Code)
}

// Package handlers provides HTTP request handlers for the service.
package handlers

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/bbquotes/internal/ports"
)

// DefaultReadinessTimeout bounds one readiness evaluation. Readiness calls
// the public quotes API, so a slow upstream must not stall the check.
const DefaultReadinessTimeout = 3 * time.Second

// BuildInfo contains build-time information about the service.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`

	// Upstream is the base URL of the quotes API this build talks to.
	Upstream string `json:"upstream,omitempty"`
}

// NewBuildInfo creates a BuildInfo with the Go version automatically set.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// HealthOption configures a HealthHandler.
type HealthOption func(*HealthHandler)

// WithReadinessTimeout bounds each readiness evaluation.
func WithReadinessTimeout(d time.Duration) HealthOption {
	return func(h *HealthHandler) {
		if d > 0 {
			h.readyTimeout = d
		}
	}
}

// WithReadinessCache reuses a readiness result for ttl, so frequent checks
// do not turn into a request against the quotes API each time.
func WithReadinessCache(ttl time.Duration) HealthOption {
	return func(h *HealthHandler) {
		h.cacheTTL = ttl
	}
}

// HealthHandler serves the /-/ operational endpoints.
type HealthHandler struct {
	registry     ports.HealthRegistry
	buildInfo    BuildInfo
	readyTimeout time.Duration
	cacheTTL     time.Duration
	now          func() time.Time

	mu       sync.Mutex
	cached   *ports.HealthResult
	cachedAt time.Time
}

// NewHealthHandler creates a health handler. A nil registry reports ready.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{
		registry:     registry,
		buildInfo:    buildInfo,
		readyTimeout: DefaultReadinessTimeout,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness reports that the process is up. It never checks the quotes API.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

type readinessResponse struct {
	Status    string                        `json:"status"`
	Checks    map[string]*ports.CheckResult `json:"checks,omitempty"`
	CheckedAt time.Time                     `json:"checkedAt"`
}

// Readiness returns 200 when every registered check passes and 503 otherwise.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.readiness(c.Request.Context())

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(status, readinessResponse{
		Status:    string(result.Status),
		Checks:    result.Checks,
		CheckedAt: result.Timestamp,
	})
}

func (h *HealthHandler) readiness(ctx context.Context) *ports.HealthResult {
	if h.registry == nil {
		return &ports.HealthResult{Status: ports.HealthStatusHealthy, Timestamp: h.now()}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cached != nil && h.now().Sub(h.cachedAt) < h.cacheTTL {
		return h.cached
	}

	ctx, cancel := context.WithTimeout(ctx, h.readyTimeout)
	defer cancel()

	result := h.registry.CheckAll(ctx)
	if result.Timestamp.IsZero() {
		result.Timestamp = h.now()
	}

	h.cached, h.cachedAt = result, h.now()

	return result
}

// BuildInfoHandler serves the build information.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// MetricsHandler returns the Prometheus scrape handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RegisterRoutes registers the operational endpoints under /-:
//   - GET /-/live
//   - GET /-/ready
//   - GET /-/build
//   - GET /-/metrics
func (h *HealthHandler) RegisterRoutes(engine *gin.Engine) {
	ops := engine.Group("/-")
	ops.GET("/live", h.Liveness)
	ops.GET("/ready", h.Readiness)
	ops.GET("/build", h.BuildInfoHandler)
	ops.GET("/metrics", gin.WrapH(MetricsHandler()))
}

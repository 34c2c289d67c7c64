package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jsamuelsen/bbquotes/telemetry"

// TraceIDHeader carries the active trace ID back to callers.
const TraceIDHeader = "X-Trace-ID"

// OpsPathPrefix is the prefix of the health and scrape endpoints. Requests
// under it are neither traced nor counted.
const OpsPathPrefix = "/-/"

// unmatchedRoute labels requests that matched no route, keeping the
// http.route attribute bounded.
const unmatchedRoute = "unmatched"

// serverMetrics are the OTel instruments recorded per API request.
type serverMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	active   metric.Int64UpDownCounter
}

func newServerMetrics(meter metric.Meter) (*serverMetrics, error) {
	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of quotes API requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	total, err := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Quotes API requests served"),
	)
	if err != nil {
		return nil, err
	}

	active, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Quotes API requests in flight"),
	)
	if err != nil {
		return nil, err
	}

	return &serverMetrics{duration: duration, total: total, active: active}, nil
}

// Middleware returns the server instrumentation chain: an otelgin span per
// request followed by request metrics and the X-Trace-ID response header.
// Operational endpoints are skipped.
func Middleware(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName, otelgin.WithFilter(func(r *http.Request) bool {
			return !isOpsPath(r.URL.Path)
		})),
		metricsMiddleware(otel.Meter(instrumentationName)),
	}
}

func isOpsPath(path string) bool {
	return strings.HasPrefix(path, OpsPathPrefix)
}

func metricsMiddleware(meter metric.Meter) gin.HandlerFunc {
	m, err := newServerMetrics(meter)
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		if isOpsPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
			c.Header(TraceIDHeader, sc.TraceID().String())
		}

		if m == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		routeAttrs := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		)

		start := time.Now()

		m.active.Add(ctx, 1, routeAttrs)
		defer m.active.Add(ctx, -1, routeAttrs)

		c.Next()

		statusAttr := metric.WithAttributes(attribute.Int("http.status_code", c.Writer.Status()))
		m.duration.Record(ctx, time.Since(start).Seconds(), routeAttrs, statusAttr)
		m.total.Add(ctx, 1, routeAttrs, statusAttr)
	}
}

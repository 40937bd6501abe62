package logging

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C Trace Context format: {version}-{trace-id}-{parent-id}-{trace-flags}
// Example: 00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-01
var traceHeaderRe = regexp.MustCompile(`^([0-9a-fA-F]{2})-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

var (
	projectIDOnce   sync.Once
	cachedProjectID string
)

// spanInfo is the trace correlation extracted from a request.
type spanInfo struct {
	traceID string
	spanID  string
	sampled bool
}

// requestSpan prefers an active OpenTelemetry span and falls back to the raw
// traceparent header when tracing is disabled.
func requestSpan(ctx context.Context, header string) (spanInfo, bool) {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return spanInfo{
			traceID: sc.TraceID().String(),
			spanID:  sc.SpanID().String(),
			sampled: sc.IsSampled(),
		}, true
	}
	matches := traceHeaderRe.FindStringSubmatch(header)
	if len(matches) != 5 {
		return spanInfo{}, false
	}
	return spanInfo{
		traceID: matches[2],
		spanID:  matches[3],
		sampled: matches[4] == "01",
	}, true
}

func loggerWithTrace(base *zap.Logger, span spanInfo, hasSpan bool, projectID, requestID string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	var fields []zap.Field
	if hasSpan && projectID != "" {
		fields = append(fields,
			zap.String("logging.googleapis.com/trace", traceResource(projectID, span.traceID)),
			zap.String("logging.googleapis.com/spanId", span.spanID),
			zap.Bool("logging.googleapis.com/trace_sampled", span.sampled),
		)
	}
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

func traceResource(projectID, traceID string) string {
	return fmt.Sprintf("projects/%s/traces/%s", projectID, traceID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveProjectID() string {
	projectIDOnce.Do(func() {
		cachedProjectID = firstNonEmpty(
			os.Getenv("FIREBASE_PROJECT_ID"),
			os.Getenv("GOOGLE_CLOUD_PROJECT"),
			os.Getenv("GCP_PROJECT"),
			os.Getenv("GCLOUD_PROJECT"),
			os.Getenv("PROJECT_ID"),
		)
	})
	return cachedProjectID
}

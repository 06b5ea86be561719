// AngelaMos | 2026
// tracing_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(t.Context())
	})
	return recorder
}

func TestTracingNamesSpanByRoute(t *testing.T) {
	recorder := recordSpans(t)
	courseID := "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

	var inFlight string
	r := chi.NewRouter()
	r.Use(Tracing)
	r.Get("/api/course/{courseID}", func(w http.ResponseWriter, req *http.Request) {
		span, ok := trace.SpanFromContext(req.Context()).(sdktrace.ReadOnlySpan)
		require.True(t, ok)
		inFlight = span.Name()
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/api/course/"+courseID, nil))

	assert.Equal(t, http.MethodGet, inFlight)
	assert.NotContains(t, inFlight, courseID)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	span := ended[0]
	assert.Equal(t, "GET /api/course/{courseID}", span.Name())
	assert.NotContains(t, span.Name(), courseID)
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Contains(t, span.Attributes(),
		attribute.String("http.route", "/api/course/{courseID}"))
	assert.Contains(t, span.Attributes(),
		attribute.Int("http.response.status_code", http.StatusOK))
}

func TestTracingUnmatchedRoute(t *testing.T) {
	recorder := recordSpans(t)

	r := chi.NewRouter()
	r.Use(Tracing)
	r.Get("/api/courses", okHandler.ServeHTTP)

	r.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/api/nothing/42", nil))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET unmatched", ended[0].Name())
}

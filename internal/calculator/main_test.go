package calculator

import (
	"context"
	"net/http"
	"os"
	"testing"

	"calc-engine/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var (
	metricReader *sdkmetric.ManualReader
	spanRecorder *tracetest.SpanRecorder
)

func TestMain(m *testing.M) {
	metricReader = sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricReader)))

	spanRecorder = tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder)))

	if err := InitMetrics(); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func newTestRouter(store *Store, maxInput int) http.Handler {
	r := chi.NewRouter()
	r.Use(observability.RequestIDMiddleware)
	RegisterRoutes(r, NewHandler(store, maxInput))
	return r
}

// counterValue sums the cumulative data points of an int64 counter whose
// "operation" attribute equals op.
func counterValue(t *testing.T, name, op string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := metricReader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q is %T, not an int64 sum", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value("operation"); ok && v.AsString() == op {
					total += dp.Value
				}
			}
		}
	}
	return total
}

// spanEvents returns the event names of every ended span for session id.
func spanEvents(id string) []string {
	var names []string
	for _, s := range spanRecorder.Ended() {
		for _, kv := range s.Attributes() {
			if kv.Key == "session.id" && kv.Value.AsString() == id {
				for _, e := range s.Events() {
					names = append(names, e.Name)
				}
			}
		}
	}
	return names
}

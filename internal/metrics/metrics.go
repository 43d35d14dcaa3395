package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry keeps named counters for exposition and mirrors every increment
// to an OpenTelemetry counter instrument.
type Registry struct {
	mu       sync.Mutex
	counters map[string]int64
	meter    metric.Meter
	otelCtrs map[string]metric.Int64Counter
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]int64),
		meter:    otel.GetMeterProvider().Meter("pixbox"),
		otelCtrs: make(map[string]metric.Int64Counter),
	}
}

// Inc adds n to a named counter with the given labels.
func (r *Registry) Inc(ctx context.Context, name string, labels map[string]string, n int64) {
	key := counterKey(name, labels)

	r.mu.Lock()
	r.counters[key] += n
	inst, ok := r.otelCtrs[name]
	if !ok {
		inst, _ = r.meter.Int64Counter(name)
		r.otelCtrs[name] = inst
	}
	r.mu.Unlock()

	if inst != nil {
		attrs := make([]attribute.KeyValue, 0, len(labels))
		for k, v := range labels {
			attrs = append(attrs, attribute.String(k, v))
		}
		inst.Add(ctx, n, metric.WithAttributes(attrs...))
	}
}

// Snapshot returns the current counter values keyed by name{labels}.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]int64, len(r.counters))
	for k, v := range r.counters {
		out[k] = v
	}
	return out
}

// HandleText writes counters as sorted "key value" lines.
func (r *Registry) HandleText(c echo.Context) error {
	snapshot := r.Snapshot()

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s %d\n", k, snapshot[k])
	}

	return c.String(200, b.String())
}

// HandleJSON writes counters as a JSON object.
func (r *Registry) HandleJSON(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	return json.NewEncoder(c.Response()).Encode(r.Snapshot())
}

func counterKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}

// Package telemetry records cmdrule operation spans with OpenTelemetry and
// reports them through the logger.
package telemetry

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/cmdrule/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor by logging every finished span
// at debug level.
type Bridge struct {
	logger ports.Logger
}

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing; spans are reported once they end.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, its duration, its attributes and its error status.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}
	b.logger.Debug(formatSpan(s))
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

func formatSpan(s sdktrace.ReadOnlySpan) string {
	duration := s.EndTime().Sub(s.StartTime()).Round(time.Microsecond)

	var b strings.Builder
	fmt.Fprintf(&b, "span %s finished in %s", s.Name(), duration)

	attrs := make([]string, 0, len(s.Attributes()))
	for _, kv := range s.Attributes() {
		attrs = append(attrs, string(kv.Key)+"="+kv.Value.Emit())
	}
	slices.Sort(attrs)
	for _, attr := range attrs {
		b.WriteString(" " + attr)
	}

	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "operation failed"
		}
		b.WriteString(" (failed: " + desc + ")")
	}
	return b.String()
}

package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/cmdrule/internal/core/ports"
	"go.trai.ch/zerr"
)

// Provider owns the SDK tracer provider that feeds spans to the Bridge.
type Provider struct {
	tp   *sdktrace.TracerProvider
	once sync.Once
}

var _ ports.Telemetry = (*Provider)(nil)

// NewProvider creates a Provider whose spans are logged through logger.
// Spans are not recorded until Enable is called.
func NewProvider(logger ports.Logger) *Provider {
	return &Provider{
		tp: sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(NewBridge(logger)),
		),
	}
}

// Enable registers the tracer provider as the global provider. Tracers
// obtained from otel.Tracer before the call start recording as well.
func (p *Provider) Enable() {
	p.once.Do(func() {
		otel.SetTracerProvider(p.tp)
	})
}

// TracerProvider returns the underlying tracer provider.
func (p *Provider) TracerProvider() trace.TracerProvider {
	return p.tp
}

// Shutdown flushes and stops the tracer provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if err := p.tp.Shutdown(ctx); err != nil {
		return zerr.Wrap(err, "failed to shut down tracer provider")
	}
	return nil
}

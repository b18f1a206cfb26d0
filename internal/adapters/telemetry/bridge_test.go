package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/cmdrule/internal/adapters/telemetry"
	"go.trai.ch/cmdrule/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_OnEnd(t *testing.T) {
	tests := []struct {
		name     string
		finish   func(ctx context.Context, tp *sdktrace.TracerProvider)
		prefix   string
		contains []string
		excludes []string
	}{
		{
			name: "plain span",
			finish: func(ctx context.Context, tp *sdktrace.TracerProvider) {
				_, span := tp.Tracer("test").Start(ctx, "load")
				span.End()
			},
			prefix:   "span load finished in ",
			excludes: []string{"failed"},
		},
		{
			name: "attributes are sorted",
			finish: func(ctx context.Context, tp *sdktrace.TracerProvider) {
				_, span := tp.Tracer("test").Start(ctx, "emit")
				span.SetAttributes(
					attribute.Int("cmdrule.rules", 3),
					attribute.String("cmdrule.dir", "/src"),
				)
				span.End()
			},
			prefix:   "span emit finished in ",
			contains: []string{" cmdrule.dir=/src cmdrule.rules=3"},
		},
		{
			name: "error status",
			finish: func(ctx context.Context, tp *sdktrace.TracerProvider) {
				_, span := tp.Tracer("test").Start(ctx, "check")
				span.SetStatus(codes.Error, "rules changed")
				span.End()
			},
			prefix:   "span check finished in ",
			contains: []string{"(failed: rules changed)"},
		},
		{
			name: "error status without description",
			finish: func(ctx context.Context, tp *sdktrace.TracerProvider) {
				_, span := tp.Tracer("test").Start(ctx, "check")
				span.SetStatus(codes.Error, "")
				span.End()
			},
			prefix:   "span check finished in ",
			contains: []string{"(failed: operation failed)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockLogger := mocks.NewMockLogger(ctrl)

			var got string
			mockLogger.EXPECT().Debug(gomock.Any()).Do(func(msg string) {
				got = msg
			}).Times(1)

			tp := sdktrace.NewTracerProvider(
				sdktrace.WithSpanProcessor(telemetry.NewBridge(mockLogger)),
			)
			t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

			tt.finish(context.Background(), tp)

			assert.True(t, len(got) > len(tt.prefix) && got[:len(tt.prefix)] == tt.prefix, "got %q", got)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestBridge_NilLogger(t *testing.T) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)),
	)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "load")
	assert.NotPanics(t, func() { span.End() })
}

func TestBridge_NoOps(t *testing.T) {
	b := telemetry.NewBridge(nil)
	assert.NoError(t, b.ForceFlush(context.Background()))
	assert.NoError(t, b.Shutdown(context.Background()))
}

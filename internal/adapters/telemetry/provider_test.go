package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.trai.ch/cmdrule/internal/adapters/telemetry"
	"go.trai.ch/cmdrule/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestProvider_Enable(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	// Obtained before Enable, like the tracer the app holds.
	tracer := otel.Tracer("cmdrule-test")

	p := telemetry.NewProvider(mockLogger)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	// Nothing is recorded while disabled.
	_, span := tracer.Start(context.Background(), "before")
	span.End()

	p.Enable()
	p.Enable()
	assert.Equal(t, p.TracerProvider(), otel.GetTracerProvider())

	mockLogger.EXPECT().Debug(gomock.Any()).Do(func(msg string) {
		assert.Contains(t, msg, "span after finished in ")
	}).Times(1)

	_, span = tracer.Start(context.Background(), "after")
	span.End()
}

func TestProvider_Shutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := telemetry.NewProvider(mocks.NewMockLogger(ctrl))

	require.NoError(t, p.Shutdown(context.Background()))
}

package ports

import "context"

// Telemetry controls the recording of operation spans.
//
//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Enable starts recording spans for the rest of the process.
	Enable()
	// Shutdown flushes pending spans and stops recording.
	Shutdown(ctx context.Context) error
}

package ports

import "go.trai.ch/cmdrule/internal/core/domain"

// RecordStore defines the interface for persisting custom commands between runs.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type RecordStore interface {
	// Get retrieves the records stored for a target.
	// Returns nil, nil if nothing is stored.
	Get(root, target string) ([]*domain.CustomCommand, error)

	// Put replaces the records stored for a target.
	Put(root, target string, records []*domain.CustomCommand) error
}

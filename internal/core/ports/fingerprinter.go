package ports

import "go.trai.ch/cmdrule/internal/core/domain"

// Fingerprinter defines the interface for digesting custom commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint returns a stable digest of every field of the record.
	// Two records that are Equal have the same fingerprint.
	Fingerprint(cc *domain.CustomCommand) string
}

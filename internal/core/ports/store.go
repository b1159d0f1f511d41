package ports

import "go.trai.ch/smelt/internal/core/domain"

// ReportStore persists the snapshot of the last build.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ReportStore interface {
	// Get reads the report stored at path.
	// It returns domain.ErrNoReport if no report exists.
	Get(path string) (*domain.Report, error)

	// Put stores the report at path.
	Put(path string, report *domain.Report) error
}

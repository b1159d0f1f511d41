// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"
)

// Executor runs external processes such as compilers and archivers.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs argv in dir, streaming the process output to stdout and stderr.
	//
	// It returns the exit code of the process. A non-zero exit code is not an error;
	// an error is returned only when the process could not be run at all.
	Execute(ctx context.Context, dir string, argv []string, stdout, stderr io.Writer) (int, error)
}

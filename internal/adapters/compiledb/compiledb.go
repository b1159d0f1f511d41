// Package compiledb writes clang-style compile_commands.json files.
package compiledb

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CompileDatabase = (*Writer)(nil)

// Writer implements ports.CompileDatabase.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write replaces the database at path with entries.
// An empty entry list produces an empty JSON array.
func (w *Writer) Write(path string, entries []ports.CompileCommand) error {
	if entries == nil {
		entries = []ports.CompileCommand{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCompileDatabaseWriteFailed.Error())
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCompileDatabaseWriteFailed.Error()), "path", path)
	}
	//nolint:gosec // Path is configured by the project
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCompileDatabaseWriteFailed.Error()), "path", path)
	}
	return nil
}

package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/smelt/internal/adapters/store"
	"go.trai.ch/smelt/internal/core/domain"
)

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "build", domain.ReportFileName)
	s := store.NewStore()

	report := &domain.Report{
		Project:   "zlib",
		StartedAt: time.Now().Truncate(time.Second).UTC(),
		Duration:  3 * time.Second,
		Succeeded: false,
		Toolchain: domain.ToolchainInfo{OS: "linux", Arch: "amd64", CompilerID: "gcc", LibPrefix: "lib", LibExtension: ".a"},
		Targets: []domain.TargetReport{{
			Name: "zlib",
			Sources: []domain.SourceReport{
				{Source: "/src/adler32.c", Object: "/build/obj/zlib/adler32.c.o", Status: domain.StatusSucceeded},
				{Source: "/src/crc32.c", Object: "/build/obj/zlib/crc32.c.o", Status: domain.StatusFailed, Error: "compilation failed"},
			},
		}},
		Archives: []domain.ArchiveReport{{
			Output:     "/build/lib/libz.a",
			Targets:    []string{"zlib"},
			Status:     domain.StatusSkipped,
			SkipReason: "Cannot create libz.a - compilation failed",
		}},
		Errors: []string{"compilation failed"},
	}

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, s.Put(path, report))

		got, err := s.Get(path)
		require.NoError(t, err)
		assert.Equal(t, report, got)

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temporary files are left behind")
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		got, err := s.Get(filepath.Join(t.TempDir(), domain.ReportFileName))
		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorContains(t, err, domain.ErrNoReport.Error())
	})

	t.Run("get corrupt", func(t *testing.T) {
		t.Parallel()
		corrupt := filepath.Join(t.TempDir(), domain.ReportFileName)
		require.NoError(t, os.WriteFile(corrupt, []byte("{ invalid json"), 0o600))

		_, err := s.Get(corrupt)
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrStoreUnmarshalFailed.Error())
	})
}

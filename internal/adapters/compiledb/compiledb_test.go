package compiledb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"go.trai.ch/smelt/internal/adapters/compiledb"
	"go.trai.ch/smelt/internal/core/ports"
)

func TestWriter_Write(t *testing.T) {
	tests := []struct {
		name    string
		entries []ports.CompileCommand
	}{
		{
			name: "entries",
			entries: []ports.CompileCommand{
				{
					Directory: "/src/zlib",
					Command:   "cc -I/src/zlib/build/gen/zlib -DHAVE_UNISTD_H -c /src/zlib/adler32.c -o /src/zlib/build/obj/zlib/adler32.c.o",
					File:      "/src/zlib/adler32.c",
				},
				{
					Directory: "/src/zlib",
					Command:   "cc '-DZLIB_VERSION=\"1.3.1\"' -c /src/zlib/crc32.c -o /src/zlib/build/obj/zlib/crc32.c.o",
					File:      "/src/zlib/crc32.c",
				},
			},
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "compile_commands.json")
			require.NoError(t, compiledb.NewWriter().Write(path, tt.entries))

			got, err := os.ReadFile(path)
			require.NoError(t, err)

			g := goldie.New(t)
			g.Assert(t, tt.name, got)
		})
	}
}

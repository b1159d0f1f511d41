package toolchain

import (
	"path"
	"slices"
	"strings"

	"go.trai.ch/smelt/internal/core/domain"
)

var (
	gccNames   = []string{"gcc", "x86_64-w64-mingw32-gcc", "i686-w64-mingw32-gcc"}
	gxxNames   = []string{"g++", "x86_64-w64-mingw32-g++", "i686-w64-mingw32-g++"}
	msvcNames  = []string{"cl", "clang-cl"}
	clangNames = []string{"clang", "zig"}
	clangXX    = []string{"clang++", "zig"}
)

// DetectCompilerID infers the compiler family from the C and C++ compiler executables.
// clang-cl reports msvc because it takes MSVC-style flags; zig reports clang.
func DetectCompilerID(cc, cxx string) string {
	ccBase, cxxBase := baseName(cc), baseName(cxx)

	switch {
	case slices.Contains(gccNames, ccBase) || slices.Contains(gxxNames, cxxBase):
		return domain.CompilerGCC
	case slices.Contains(msvcNames, ccBase) || slices.Contains(msvcNames, cxxBase):
		return domain.CompilerMSVC
	case slices.Contains(clangNames, ccBase) || slices.Contains(clangXX, cxxBase):
		return domain.CompilerClang
	default:
		return domain.CompilerUnknown
	}
}

func baseName(executable string) string {
	// Backslashes are normalized so Windows paths are handled on any host.
	base := path.Base(strings.ReplaceAll(executable, `\`, "/"))
	if strings.HasSuffix(strings.ToLower(base), ".exe") {
		base = base[:len(base)-len(".exe")]
	}
	return base
}

package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Build variants recognized in Options.Variant.
const (
	VariantDebug   = "debug"
	VariantRelease = "release"
)

// Compiler families reported by a toolchain.
const (
	CompilerGCC     = "gcc"
	CompilerClang   = "clang"
	CompilerMSVC    = "msvc"
	CompilerUnknown = "unknown"
)

// Options are the build-time flags handed to target loaders.
type Options struct {
	// Variant is "debug" or "release". Defaults to "release".
	Variant string `yaml:"variant"`
	// Features toggles named optional parts of target descriptions.
	Features map[string]bool `yaml:"features"`
	// Defines are NAME[=VALUE] definitions added privately to every target.
	Defines []string `yaml:"defines"`
}

// WithDefaults returns a copy of o with defaults applied.
func (o Options) WithDefaults() Options {
	if o.Variant == "" {
		o.Variant = VariantRelease
	}
	if o.Features == nil {
		o.Features = map[string]bool{}
	}
	return o
}

// Validate checks recognized option values.
func (o Options) Validate() error {
	if !slices.Contains([]string{"", VariantDebug, VariantRelease}, o.Variant) {
		return zerr.With(ErrInvalidOptions, "variant", o.Variant)
	}
	for _, def := range o.Defines {
		if name, _, _ := SplitDefinition(def); name == "" {
			return zerr.With(ErrInvalidOptions, "define", def)
		}
	}
	return nil
}

// Platform are the parameters a target loader evaluates descriptors against.
type Platform struct {
	OS         string
	Arch       string
	CompilerID string
	Options    Options
}

// ToolchainInfo are the static properties of a toolchain.
type ToolchainInfo struct {
	OS           string
	Arch         string
	CompilerID   string
	LibPrefix    string
	LibExtension string
}

// LibraryName returns the archive file name for an output base name.
func (i ToolchainInfo) LibraryName(output string) string {
	return i.LibPrefix + output + i.LibExtension
}

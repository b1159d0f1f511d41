package domain

import (
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// Language identifies the compiler front end used for a translation unit.
type Language string

const (
	// LanguageC compiles with the C compiler.
	LanguageC Language = "c"
	// LanguageCXX compiles with the C++ compiler.
	LanguageCXX Language = "c++"
)

// LanguageForPath infers the language of a source file from its extension.
func LanguageForPath(path string) Language {
	switch filepath.Ext(path) {
	case ".cc", ".cpp", ".cxx", ".c++", ".C":
		return LanguageCXX
	default:
		return LanguageC
	}
}

// Target is one buildable unit producing one static archive.
type Target struct {
	Name               InternedString
	Root               string
	Sources            []string
	Output             string
	IncludeDirs        []string
	PrivateIncludeDirs []string
	Definitions        []string
	PrivateDefinitions []string
	Dependencies       []InternedString
	SystemDependencies []string
	FeatureTests       []FeatureTest
	GeneratedFiles     []GeneratedFileSpec
}

// OutputName returns the archive base name, defaulting to the target name.
func (t *Target) OutputName() string {
	if t.Output != "" {
		return t.Output
	}
	return t.Name.String()
}

// Validate checks the invariants every loaded target must satisfy.
func (t *Target) Validate() error {
	if t.Name.String() == "" {
		return zerr.With(ErrMissingTargetName, "root", t.Root)
	}
	if len(t.Sources) == 0 {
		return zerr.With(ErrEmptySources, "target", t.Name.String())
	}
	seen := make(map[string]struct{}, len(t.Sources))
	for _, src := range t.Sources {
		clean := filepath.Clean(src)
		if _, dup := seen[clean]; dup {
			return zerr.With(zerr.With(ErrDuplicateSource, "target", t.Name.String()), "source", src)
		}
		seen[clean] = struct{}{}
	}
	for i := range t.GeneratedFiles {
		if err := t.GeneratedFiles[i].Validate(); err != nil {
			return zerr.With(err, "target", t.Name.String())
		}
	}
	return nil
}

// GeneratorKind selects how a generated file is produced from its template.
type GeneratorKind string

const (
	// GeneratorConfigure substitutes #cmakedefine and @VAR@ forms.
	GeneratorConfigure GeneratorKind = "cmake_configure"
	// GeneratorCopy copies the template verbatim.
	GeneratorCopy GeneratorKind = "copy"
)

// GeneratedFileSpec is a generation request as declared by a target.
type GeneratedFileSpec struct {
	Template    string
	Output      string
	Kind        GeneratorKind
	Definitions map[string]any
}

// Validate checks that the request names a template, an output and a known kind.
func (g *GeneratedFileSpec) Validate() error {
	if g.Template == "" || g.Output == "" {
		return zerr.With(zerr.With(ErrInvalidGeneratedFile, "template", g.Template), "output", g.Output)
	}
	switch g.Kind {
	case GeneratorConfigure, GeneratorCopy:
		return nil
	default:
		return zerr.With(ErrInvalidGeneratedFile, "type", string(g.Kind))
	}
}

// SplitDefinition splits a "NAME=VALUE" definition. A bare "NAME" has no value.
func SplitDefinition(def string) (name, value string, hasValue bool) {
	name, value, hasValue = strings.Cut(def, "=")
	return name, value, hasValue
}

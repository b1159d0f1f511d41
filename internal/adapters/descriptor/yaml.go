package descriptor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// YAMLLoader reads targets from YAML scripts.
type YAMLLoader struct{}

// NewYAMLLoader creates a YAMLLoader.
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

type yamlFile struct {
	Targets []yamlTarget `yaml:"targets"`
}

type yamlOnly struct {
	OS       []string `yaml:"os"`
	Arch     []string `yaml:"arch"`
	Compiler []string `yaml:"compiler"`
	Variant  string   `yaml:"variant"`
	Features []string `yaml:"features"`
}

func (o *yamlOnly) matches(p domain.Platform) bool {
	return o == nil || match(p, o.OS, o.Arch, o.Compiler, o.Variant, o.Features)
}

type yamlAttributes struct {
	Sources            []string `yaml:"sources"`
	IncludeDirs        []string `yaml:"include_dirs"`
	PrivateIncludeDirs []string `yaml:"private_include_dirs"`
	Definitions        []string `yaml:"definitions"`
	PrivateDefinitions []string `yaml:"private_definitions"`
	Dependencies       []string `yaml:"dependencies"`
	SystemDependencies []string `yaml:"system_dependencies"`
}

// merge appends every list of o to a.
func (a yamlAttributes) merge(o yamlAttributes) yamlAttributes {
	a.Sources = append(a.Sources, o.Sources...)
	a.IncludeDirs = append(a.IncludeDirs, o.IncludeDirs...)
	a.PrivateIncludeDirs = append(a.PrivateIncludeDirs, o.PrivateIncludeDirs...)
	a.Definitions = append(a.Definitions, o.Definitions...)
	a.PrivateDefinitions = append(a.PrivateDefinitions, o.PrivateDefinitions...)
	a.Dependencies = append(a.Dependencies, o.Dependencies...)
	a.SystemDependencies = append(a.SystemDependencies, o.SystemDependencies...)
	return a
}

type yamlConditional struct {
	Only       *yamlOnly      `yaml:"only"`
	Attributes yamlAttributes `yaml:",inline"`
}

type yamlTarget struct {
	Name           string              `yaml:"name"`
	Root           string              `yaml:"root"`
	Output         string              `yaml:"output"`
	Only           *yamlOnly           `yaml:"only"`
	Attributes     yamlAttributes      `yaml:",inline"`
	Conditional    []yamlConditional   `yaml:"conditional"`
	FeatureTests   []yamlFeatureTest   `yaml:"feature_tests"`
	GeneratedFiles []yamlGeneratedFile `yaml:"generated_files"`
}

type yamlFeatureTest struct {
	Type       string   `yaml:"type"`
	Variable   string   `yaml:"variable"`
	Language   string   `yaml:"language"`
	Headers    []string `yaml:"headers"`
	Flag       string   `yaml:"flag"`
	TypeName   string   `yaml:"type_name"`
	Function   string   `yaml:"function"`
	StructName string   `yaml:"struct_name"`
	Member     string   `yaml:"member"`
}

type yamlGeneratedFile struct {
	Template    string         `yaml:"template"`
	Output      string         `yaml:"output"`
	Type        string         `yaml:"type"`
	Definitions map[string]any `yaml:"definitions"`
}

// Extensions lists the handled file extensions.
func (l *YAMLLoader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// Load returns the targets of the script at path that apply to platform.
// Unknown fields are rejected.
func (l *YAMLLoader) Load(_ context.Context, path string, platform domain.Platform) ([]*domain.Target, error) {
	//nolint:gosec // Scripts are listed by the project configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "script", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file yamlFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "script", path)
	}

	var targets []*domain.Target
	for i := range file.Targets {
		dto := &file.Targets[i]
		if !dto.Only.matches(platform) {
			continue
		}
		targets = append(targets, dto.toDomain(path, platform))
	}
	return targets, nil
}

func (dto *yamlTarget) toDomain(script string, platform domain.Platform) *domain.Target {
	attrs := dto.Attributes
	for _, c := range dto.Conditional {
		if c.Only.matches(platform) {
			attrs = attrs.merge(c.Attributes)
		}
	}

	t := &domain.Target{
		Name:               domain.NewInternedString(dto.Name),
		Root:               resolveRoot(script, dto.Root),
		Output:             dto.Output,
		Sources:            attrs.Sources,
		IncludeDirs:        attrs.IncludeDirs,
		PrivateIncludeDirs: attrs.PrivateIncludeDirs,
		Definitions:        attrs.Definitions,
		PrivateDefinitions: attrs.PrivateDefinitions,
		Dependencies:       domain.NewInternedStrings(attrs.Dependencies),
		SystemDependencies: attrs.SystemDependencies,
	}
	for _, ft := range dto.FeatureTests {
		t.FeatureTests = append(t.FeatureTests, domain.FeatureTest{
			Type:       domain.FeatureTestType(ft.Type),
			Variable:   ft.Variable,
			Language:   domain.Language(ft.Language),
			Headers:    ft.Headers,
			Flag:       ft.Flag,
			TypeName:   ft.TypeName,
			Function:   ft.Function,
			StructName: ft.StructName,
			Member:     ft.Member,
		})
	}
	for _, g := range dto.GeneratedFiles {
		t.GeneratedFiles = append(t.GeneratedFiles, domain.GeneratedFileSpec{
			Template:    g.Template,
			Output:      g.Output,
			Kind:        generatorKind(g.Type),
			Definitions: g.Definitions,
		})
	}
	return t
}

// generatorKind defaults an empty type to cmake_configure.
func generatorKind(kind string) domain.GeneratorKind {
	if kind == "" {
		return domain.GeneratorConfigure
	}
	return domain.GeneratorKind(kind)
}

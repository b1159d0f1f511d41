package descriptor

import (
	"context"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/zerr"
)

// HCLLoader evaluates HCL scripts. Expressions see the variables os, arch,
// compiler_id and options plus a small function library.
type HCLLoader struct{}

// NewHCLLoader creates an HCLLoader.
func NewHCLLoader() *HCLLoader {
	return &HCLLoader{}
}

type hclFile struct {
	Targets []*hclTarget `hcl:"target,block"`
}

type hclTarget struct {
	Name               string              `hcl:"name,label"`
	Enabled            *bool               `hcl:"enabled,optional"`
	Root               *string             `hcl:"root,optional"`
	Output             *string             `hcl:"output,optional"`
	Sources            []string            `hcl:"sources,optional"`
	IncludeDirs        []string            `hcl:"include_dirs,optional"`
	PrivateIncludeDirs []string            `hcl:"private_include_dirs,optional"`
	Definitions        []string            `hcl:"definitions,optional"`
	PrivateDefinitions []string            `hcl:"private_definitions,optional"`
	Dependencies       []string            `hcl:"dependencies,optional"`
	SystemDependencies []string            `hcl:"system_dependencies,optional"`
	FeatureTests       []*hclFeatureTest   `hcl:"feature_test,block"`
	GeneratedFiles     []*hclGeneratedFile `hcl:"generated_file,block"`
}

type hclFeatureTest struct {
	Type       string   `hcl:"type,label"`
	Variable   string   `hcl:"variable"`
	Language   *string  `hcl:"language,optional"`
	Headers    []string `hcl:"headers,optional"`
	Flag       *string  `hcl:"flag,optional"`
	TypeName   *string  `hcl:"type_name,optional"`
	Function   *string  `hcl:"function,optional"`
	StructName *string  `hcl:"struct_name,optional"`
	Member     *string  `hcl:"member,optional"`
}

type hclGeneratedFile struct {
	Output      string    `hcl:"output,label"`
	Template    string    `hcl:"template"`
	Type        *string   `hcl:"type,optional"`
	Definitions cty.Value `hcl:"definitions,optional"`
}

// evalOptions mirrors domain.Options for the evaluation context.
type evalOptions struct {
	Variant  string          `cty:"variant"`
	Features map[string]bool `cty:"features"`
	Defines  []string        `cty:"defines"`
}

var optionsType = cty.Object(map[string]cty.Type{
	"variant":  cty.String,
	"features": cty.Map(cty.Bool),
	"defines":  cty.List(cty.String),
})

var functions = map[string]function.Function{
	"concat":   stdlib.ConcatFunc,
	"contains": stdlib.ContainsFunc,
	"format":   stdlib.FormatFunc,
	"join":     stdlib.JoinFunc,
	"length":   stdlib.LengthFunc,
	"lookup":   stdlib.LookupFunc,
	"lower":    stdlib.LowerFunc,
	"upper":    stdlib.UpperFunc,
}

// Extensions lists the handled file extensions.
func (l *HCLLoader) Extensions() []string {
	return []string{".hcl"}
}

// Load evaluates the script at path for platform.
// Targets whose enabled attribute is false are dropped.
func (l *HCLLoader) Load(_ context.Context, path string, platform domain.Platform) ([]*domain.Target, error) {
	//nolint:gosec // Scripts are listed by the project configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "script", path)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, zerr.With(zerr.Wrap(diags, domain.ErrConfigParseFailed.Error()), "script", path)
	}

	evalCtx, err := evalContext(platform)
	if err != nil {
		return nil, zerr.With(err, "script", path)
	}

	var root hclFile
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
		return nil, zerr.With(zerr.Wrap(diags, domain.ErrConfigParseFailed.Error()), "script", path)
	}

	var targets []*domain.Target
	for _, dto := range root.Targets {
		if dto.Enabled != nil && !*dto.Enabled {
			continue
		}
		t, err := dto.toDomain(path)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "script", path), "target", dto.Name)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func evalContext(platform domain.Platform) (*hcl.EvalContext, error) {
	opts := evalOptions{
		Variant:  platform.Options.Variant,
		Features: platform.Options.Features,
		Defines:  slices.Clone(platform.Options.Defines),
	}
	if opts.Features == nil {
		opts.Features = map[string]bool{}
	}
	if opts.Defines == nil {
		opts.Defines = []string{}
	}

	options, err := gocty.ToCtyValue(opts, optionsType)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrInvalidOptions.Error())
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"os":          cty.StringVal(platform.OS),
			"arch":        cty.StringVal(platform.Arch),
			"compiler_id": cty.StringVal(platform.CompilerID),
			"options":     options,
			// Left as a placeholder; the builder expands it per target.
			"gen": cty.StringVal(domain.GenPathVar),
		},
		Functions: functions,
	}, nil
}

func (dto *hclTarget) toDomain(script string) (*domain.Target, error) {
	t := &domain.Target{
		Name:               domain.NewInternedString(dto.Name),
		Root:               resolveRoot(script, deref(dto.Root)),
		Output:             deref(dto.Output),
		Sources:            dto.Sources,
		IncludeDirs:        dto.IncludeDirs,
		PrivateIncludeDirs: dto.PrivateIncludeDirs,
		Definitions:        dto.Definitions,
		PrivateDefinitions: dto.PrivateDefinitions,
		Dependencies:       domain.NewInternedStrings(dto.Dependencies),
		SystemDependencies: dto.SystemDependencies,
	}

	for _, ft := range dto.FeatureTests {
		t.FeatureTests = append(t.FeatureTests, domain.FeatureTest{
			Type:       domain.FeatureTestType(ft.Type),
			Variable:   ft.Variable,
			Language:   domain.Language(deref(ft.Language)),
			Headers:    ft.Headers,
			Flag:       deref(ft.Flag),
			TypeName:   deref(ft.TypeName),
			Function:   deref(ft.Function),
			StructName: deref(ft.StructName),
			Member:     deref(ft.Member),
		})
	}

	for _, g := range dto.GeneratedFiles {
		defs, err := definitions(g.Definitions)
		if err != nil {
			return nil, zerr.With(err, "output", g.Output)
		}
		t.GeneratedFiles = append(t.GeneratedFiles, domain.GeneratedFileSpec{
			Template:    g.Template,
			Output:      g.Output,
			Kind:        generatorKind(deref(g.Type)),
			Definitions: defs,
		})
	}
	return t, nil
}

// definitions converts an object or map of primitives into template values.
func definitions(v cty.Value) (map[string]any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() || !(v.Type().IsObjectType() || v.Type().IsMapType()) {
		return nil, zerr.With(domain.ErrInvalidGeneratedFile, "definitions", v.Type().FriendlyName())
	}

	defs := make(map[string]any, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		key, val := it.Element()
		name := key.AsString()

		switch {
		case val.IsNull():
			defs[name] = nil
		case val.Type() == cty.Bool:
			defs[name] = val.True()
		case val.Type() == cty.String:
			defs[name] = val.AsString()
		case val.Type() == cty.Number:
			n, err := number(val)
			if err != nil {
				return nil, zerr.With(err, "definition", name)
			}
			defs[name] = n
		default:
			return nil, zerr.With(zerr.With(domain.ErrInvalidGeneratedFile, "definition", name), "type", val.Type().FriendlyName())
		}
	}
	return defs, nil
}

// number returns an int64 for integral values and a float64 otherwise.
func number(v cty.Value) (any, error) {
	if v.AsBigFloat().IsInt() {
		var i int64
		if err := gocty.FromCtyValue(v, &i); err != nil {
			return nil, zerr.Wrap(err, domain.ErrInvalidGeneratedFile.Error())
		}
		return i, nil
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package features

import (
	"strings"

	"go.trai.ch/smelt/internal/core/domain"
)

// ProbeSource returns the translation unit that compiles only when test holds.
func ProbeSource(test *domain.FeatureTest) string {
	var b strings.Builder
	for _, h := range test.Headers {
		b.WriteString("#include <" + h + ">\n")
	}
	if len(test.Headers) > 0 {
		b.WriteString("\n")
	}

	switch test.Type {
	case domain.FeatureType:
		b.WriteString("char (*p(void))[sizeof(" + test.TypeName + ")];\n")
		b.WriteString("int main(void) {\n    return 0;\n}\n")
	case domain.FeatureFunction:
		b.WriteString("int main(void) {\n    return (int)(unsigned long long)" + test.Function + ";\n}\n")
	case domain.FeatureStructMember:
		b.WriteString("int main(void) {\n")
		b.WriteString("    char (*p)[sizeof(((struct " + test.StructName + "*)0)->" + test.Member + ")];\n")
		b.WriteString("    (void)p;\n    return 0;\n}\n")
	default:
		b.WriteString("int main(void) {\n    return 0;\n}\n")
	}
	return b.String()
}

// ProbeExtension returns the source file extension for the probe language.
func ProbeExtension(test *domain.FeatureTest) string {
	if test.EffectiveLanguage() == domain.LanguageCXX {
		return ".cpp"
	}
	return ".c"
}

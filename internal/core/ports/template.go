package ports

//go:generate mockgen -source=template.go -destination=mocks/mock_template.go -package=mocks

// TemplateRenderer renders a template file to an output file.
type TemplateRenderer interface {
	// Kind returns the generator kind this renderer implements.
	Kind() string
	// Render reads template, applies definitions and writes output.
	Render(template, output string, definitions map[string]any) error
}

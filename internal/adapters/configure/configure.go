// Package configure renders generated files from templates.
//
// The cmake_configure kind understands the directives of CMake's configure_file:
//
//	#cmakedefine NAME [rest]   -> #define NAME [rest|value]  or  /* #undef NAME */
//	#cmakedefine01 NAME        -> #define NAME 1             or  #define NAME 0
//	@NAME@                     -> the formatted value of NAME
//	${NAME}                    -> the raw value of NAME
//
// Formatted values quote strings that are not plain identifiers, unless the
// reference already sits inside a string literal. Undefined names substitute
// as empty, and a line whose @NAME@ became empty loses its trailing blanks.
// Every other byte of the template is copied unchanged, line endings included.
package configure

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.TemplateRenderer = (*Renderer)(nil)
	_ ports.TemplateRenderer = (*Copier)(nil)
)

var (
	directiveRe  = regexp.MustCompile(`^(\s*)#(\s*)cmakedefine(01)?[ \t]+([A-Za-z_][A-Za-z0-9_]*)(.*)$`)
	atVarRe      = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_]*)@`)
	bracedVarRe  = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	identifierRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// Renderer implements the cmake_configure generator kind.
type Renderer struct {
	// AtOnly disables ${NAME} substitution.
	AtOnly bool
}

// NewRenderer returns a Renderer substituting both @NAME@ and ${NAME}.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Kind returns the generator kind.
func (r *Renderer) Kind() string {
	return string(domain.GeneratorConfigure)
}

// Render reads template, substitutes definitions and writes output.
func (r *Renderer) Render(template, output string, definitions map[string]any) error {
	in, err := readTemplate(template)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := r.Process(bytes.NewReader(in), &out, definitions); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to process template"), "template", template)
	}
	return writeIfChanged(output, out.Bytes())
}

// Process applies definitions to the template read from in and writes the result to out.
func (r *Renderer) Process(in io.Reader, out io.Writer, definitions map[string]any) error {
	br := bufio.NewReader(in)
	w := bufio.NewWriter(out)

	for {
		line, err := br.ReadString('\n')
		if line != "" {
			body, eol := splitLineEnding(line)
			if _, werr := w.WriteString(r.processLine(body, definitions) + eol); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	return w.Flush()
}

func (r *Renderer) processLine(line string, defs map[string]any) string {
	m := directiveRe.FindStringSubmatch(line)
	if m == nil {
		return r.substitute(line, defs)
	}

	indent, hashSpace, is01, name, rest := m[1], m[2], m[3] != "", m[4], m[5]
	prefix := indent + "#" + hashSpace
	value, defined := defs[name]

	if is01 {
		if defined && truthy(value) {
			return prefix + "define " + name + " 1"
		}
		return prefix + "define " + name + " 0"
	}

	if !defined || !truthy(value) {
		return indent + "/* #" + hashSpace + "undef " + name + " */"
	}

	if rest = strings.TrimSpace(rest); rest != "" {
		if rest = r.substitute(rest, defs); rest != "" {
			return prefix + "define " + name + " " + rest
		}
		return prefix + "define " + name
	}
	if formatted := defineValue(value); formatted != "" {
		return prefix + "define " + name + " " + formatted
	}
	return prefix + "define " + name
}

func (r *Renderer) substitute(line string, defs map[string]any) string {
	emptied := false
	out := replaceVars(line, atVarRe, func(name string, inString bool) string {
		if inString {
			return plainValue(defs[name])
		}
		v := defineValue(defs[name])
		emptied = emptied || v == ""
		return v
	})
	if !r.AtOnly {
		out = replaceVars(out, bracedVarRe, func(name string, _ bool) string {
			return plainValue(defs[name])
		})
	}
	if emptied {
		out = strings.TrimRight(out, " \t")
	}
	return out
}

// replaceVars replaces every match of re in line with value(name, inString),
// where inString reports whether the match starts inside a string literal.
func replaceVars(line string, re *regexp.Regexp, value func(name string, inString bool) string) string {
	matches := re.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return line
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(line[last:m[0]])
		b.WriteString(value(line[m[2]:m[3]], inStringLiteral(line[:m[0]])))
		last = m[1]
	}
	b.WriteString(line[last:])
	return b.String()
}

// inStringLiteral reports whether a double-quoted literal is open at the end of prefix.
func inStringLiteral(prefix string) bool {
	open := false
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '\\':
			if open {
				i++
			}
		case '"':
			open = !open
		}
	}
	return open
}

// truthy reports whether value enables a #cmakedefine.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return true
	case int:
		return v != 0
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

// defineValue formats the value emitted after "#define NAME".
// Identifiers and numbers are emitted verbatim; other strings are quoted.
func defineValue(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		if v == "" || identifierRe.MatchString(v) {
			return v
		}
		return strconv.Quote(v)
	default:
		return plainValue(v)
	}
}

// plainValue formats a value for ${NAME} and in-string @NAME@ substitution.
func plainValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return ""
	}
}

func splitLineEnding(line string) (body, eol string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// Copier implements the copy generator kind.
type Copier struct{}

// NewCopier returns a Copier.
func NewCopier() *Copier {
	return &Copier{}
}

// Kind returns the generator kind.
func (c *Copier) Kind() string {
	return string(domain.GeneratorCopy)
}

// Render copies template to output. Definitions are ignored.
func (c *Copier) Render(template, output string, _ map[string]any) error {
	in, err := readTemplate(template)
	if err != nil {
		return err
	}
	return writeIfChanged(output, in)
}

func readTemplate(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, zerr.With(domain.ErrTemplateNotFound, "template", path)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read template"), "template", path)
	}
	return data, nil
}

// writeIfChanged leaves output untouched when it already holds data.
// Unchanged headers keep their modification time.
func writeIfChanged(output string, data []byte) error {
	if existing, err := os.ReadFile(output); err == nil && bytes.Equal(existing, data) {
		return nil
	}
	if err := os.WriteFile(output, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write generated file"), "output", output)
	}
	return nil
}

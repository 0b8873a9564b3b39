package template

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// DefaultName is the template used when a variant does not name one.
const DefaultName = "balanced"

// ErrUnknownTemplate is returned by Lookup for names with no embedded template.
var ErrUnknownTemplate = errors.New("unknown prompt template")

// Context holds the variables available to a prompt template.
type Context struct {
	// Rules is the rendered rule text.
	Rules string

	// ApplicantData is the rendered applicant text.
	ApplicantData string
}

// Names lists the embedded prompt templates in sorted order.
func Names() []string {
	entries, err := promptFS.ReadDir("prompts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".tmpl"))
	}
	sort.Strings(names)
	return names
}

// Lookup returns the raw text of a named prompt template. An empty name
// selects DefaultName.
func Lookup(name string) (string, error) {
	if name == "" {
		name = DefaultName
	}
	data, err := promptFS.ReadFile(path.Join("prompts", name+".tmpl"))
	if err != nil {
		return "", fmt.Errorf("%w %q (available: %s)", ErrUnknownTemplate, name, strings.Join(Names(), ", "))
	}
	return string(data), nil
}

// Prompt is a parsed template ready for repeated rendering.
type Prompt struct {
	name string
	tmpl *template.Template
}

// Parse compiles tmpl once so that each evaluation only executes it.
func Parse(name, tmpl string) (*Prompt, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("template: parse: %w", err)
	}
	return &Prompt{name: name, tmpl: t}, nil
}

// Load looks up and parses a named embedded template.
func Load(name string) (*Prompt, error) {
	if name == "" {
		name = DefaultName
	}
	raw, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return Parse(name, raw)
}

// Name returns the template name.
func (p *Prompt) Name() string {
	return p.name
}

// Render executes the template against ctx.
func (p *Prompt) Render(ctx *Context) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("template: render: %w", err)
	}
	return buf.String(), nil
}

// Render resolves template expressions in the given string.
// Returns the input unchanged if it contains no template delimiters.
func Render(tmpl string, ctx *Context) (string, error) {
	// Fast path: no template delimiters means no work to do.
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	p, err := Parse("", tmpl)
	if err != nil {
		return "", err
	}
	return p.Render(ctx)
}

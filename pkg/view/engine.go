package view

import (
	"embed"
	"fmt"
	"html"
	"io"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
	gotemplate "github.com/goliatone/go-template"

	"github.com/goliatone/go-storyform/pkg/form"
)

//go:embed templates/*.tpl
var embedded embed.FS

// Templates exposes the built-in view templates.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(fmt.Sprintf("view: embedded templates: %v", err))
	}
	return sub
}

// Renderer is the part of a go-template engine the composer needs.
type Renderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// Option configures the template engine.
type Option = gotemplate.Option

// NewEngine builds a go-template engine over the embedded templates with the
// plaintext filter installed. Options run after those defaults, so
// gotemplate.WithFS replaces the embedded set and gotemplate.WithBaseDir
// shadows single templates from disk.
func NewEngine(options ...Option) (*gotemplate.Engine, error) {
	defaults := []Option{
		gotemplate.WithFS(Templates()),
		gotemplate.WithExtension(".tpl"),
		gotemplate.WithTemplateFunc(map[string]any{
			"plaintext": pongo2.FilterFunction(filterPlainText),
		}),
	}
	engine, err := gotemplate.NewRenderer(append(defaults, options...)...)
	if err != nil {
		return nil, fmt.Errorf("view: template engine: %w", err)
	}
	return engine, nil
}

// filterPlainText renders stored rich text as terminal text.
func filterPlainText(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	raw := in.String()
	for _, closer := range []string{"</p>", "</li>", "</h2>", "</h3>", "</h4>", "<br>", "<br/>"} {
		raw = strings.ReplaceAll(raw, closer, closer+" ")
	}
	text := html.UnescapeString(form.PlainText(raw))
	return pongo2.AsValue(strings.Join(strings.Fields(text), " ")), nil
}

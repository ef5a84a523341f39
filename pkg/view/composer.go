package view

import (
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/goliatone/go-storyform/pkg/catalog"
	"github.com/goliatone/go-storyform/pkg/form"
	"github.com/goliatone/go-storyform/pkg/loading"
	"github.com/goliatone/go-storyform/pkg/submit"
)

// Template names resolved by the composer.
const (
	TemplateLoading = "loading"
	TemplateForm    = "form"
	TemplateSidebar = "sidebar"
)

const defaultHeading = "Create a new story"

// Source is the read side of a story workflow.
type Source interface {
	Busy() bool
	Tracker() *loading.Tracker
	Form() *form.State
	Products() []catalog.ProductRef
	DescriptionError() bool
	FetchErrors() map[string]error
	SimilarStories() []catalog.StorySummary
	State() submit.State
}

var fieldLabels = map[string]string{
	form.FieldTitle:       "Title",
	form.FieldCode:        "Source code link",
	form.FieldCategory:    "Category",
	form.FieldPriority:    "Priority",
	form.FieldProduct:     "Product",
	form.FieldDescription: "Description",
}

var fieldOrder = []string{
	form.FieldTitle,
	form.FieldCode,
	form.FieldCategory,
	form.FieldPriority,
	form.FieldProduct,
	form.FieldDescription,
}

// ComposerOption customises a Composer.
type ComposerOption func(*Composer)

// WithHeading replaces the form heading.
func WithHeading(heading string) ComposerOption {
	return func(c *Composer) {
		if trimmed := strings.TrimSpace(heading); trimmed != "" {
			c.heading = trimmed
		}
	}
}

// Composer picks what to show for a workflow: the loading indicator while
// any fetch is pending, otherwise the form followed by the sidebar.
type Composer struct {
	renderer Renderer
	heading  string
}

// NewComposer wraps renderer.
func NewComposer(renderer Renderer, options ...ComposerOption) *Composer {
	c := &Composer{renderer: renderer, heading: defaultHeading}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Render writes the current screen for src.
func (c *Composer) Render(src Source, out ...io.Writer) (string, error) {
	if c == nil || c.renderer == nil {
		return "", errors.New("view: composer has no renderer")
	}
	if src.Busy() {
		return c.Loading(src, out...)
	}
	formOut, err := c.Form(src)
	if err != nil {
		return "", err
	}
	sidebarOut, err := c.Sidebar(src)
	if err != nil {
		return "", err
	}
	screen := formOut + "\n" + sidebarOut
	for _, w := range out {
		if _, err := io.WriteString(w, screen); err != nil {
			return "", err
		}
	}
	return screen, nil
}

// Loading renders the loading indicator.
func (c *Composer) Loading(src Source, out ...io.Writer) (string, error) {
	pending := []any{}
	if tracker := src.Tracker(); tracker != nil {
		for _, id := range tracker.Pending() {
			pending = append(pending, id)
		}
	}
	return c.renderer.RenderTemplate(TemplateLoading, map[string]any{
		"busy":    src.Busy(),
		"pending": pending,
	}, out...)
}

// Form renders field values with their inline errors.
func (c *Composer) Form(src Source, out ...io.Writer) (string, error) {
	state := src.Form()
	productNames := make(map[string]string)
	for _, product := range src.Products() {
		productNames[product.ID] = product.Name
	}

	fields := make([]any, 0, len(fieldOrder))
	for _, name := range fieldOrder {
		value, _ := state.Value(name)
		if name == form.FieldProduct {
			if label, ok := productNames[value]; ok {
				value = label
			}
		}
		errorText := ""
		if kind := state.Error(name); kind != "" && name != form.FieldDescription {
			errorText = string(kind)
		}
		fields = append(fields, map[string]any{
			"name":  name,
			"label": fieldLabels[name],
			"value": value,
			"error": errorText,
			"rich":  name == form.FieldDescription,
		})
	}

	fetchErrors := []any{}
	failed := src.FetchErrors()
	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fetchErrors = append(fetchErrors, name)
	}

	return c.renderer.RenderTemplate(TemplateForm, map[string]any{
		"heading":           c.heading,
		"fields":            fields,
		"description_error": src.DescriptionError(),
		"fetch_errors":      fetchErrors,
		"status":            src.State().String(),
	}, out...)
}

// Sidebar renders stories whose titles match the current title.
func (c *Composer) Sidebar(src Source, out ...io.Writer) (string, error) {
	stories := []any{}
	for _, story := range src.SimilarStories() {
		followers := []any{}
		for _, follower := range story.Followers {
			if follower.Username != "" {
				followers = append(followers, follower.Username)
			}
		}
		stories = append(stories, map[string]any{
			"id":        story.ID,
			"title":     story.Title,
			"followers": followers,
		})
	}
	return c.renderer.RenderTemplate(TemplateSidebar, map[string]any{
		"stories": stories,
	}, out...)
}

package form

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicyOnce sync.Once
	richTextPolicy     *bluemonday.Policy

	plainTextPolicyOnce sync.Once
	plainTextPolicy     *bluemonday.Policy
)

// RichTextAdapter connects an embedded editor to a form field. The editor
// hands serialized HTML to OnChange; the adapter sanitizes it and is the
// only writer for the field.
type RichTextAdapter struct {
	state *State
	field string
}

// NewRichTextAdapter binds the adapter to field, registering it when the
// caller has not done so yet.
func NewRichTextAdapter(state *State, field string) *RichTextAdapter {
	if !state.Registered(field) {
		state.Register(field, Constraints{})
	}
	return &RichTextAdapter{state: state, field: field}
}

// Field reports the bound field name.
func (a *RichTextAdapter) Field() string {
	return a.field
}

// OnChange receives the editor content. Markup outside the editor toolbar
// (headings, bold, italic, links, lists) is stripped, and content with no
// visible text is stored as "". Any change clears the field's error.
func (a *RichTextAdapter) OnChange(html string) error {
	value := SanitizeRichText(html)
	if err := a.state.SetValue(a.field, value); err != nil {
		return err
	}
	a.state.ClearError(a.field)
	return nil
}

// SanitizeRichText cleans editor HTML for storage and submission.
func SanitizeRichText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.TrimSpace(PlainText(trimmed)) == "" {
		return ""
	}
	return strings.TrimSpace(richTextSanitizer().Sanitize(trimmed))
}

// PlainText strips every tag, leaving escaped text content.
func PlainText(raw string) string {
	text := plainTextSanitizer().Sanitize(raw)
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return strings.TrimSpace(text)
}

func richTextSanitizer() *bluemonday.Policy {
	richTextPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements(
			"p", "br", "h2", "h3", "h4",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
		)
		policy.AllowStandardURLs()
		policy.AllowAttrs("href").OnElements("a")
		richTextPolicy = policy
	})
	return richTextPolicy
}

func plainTextSanitizer() *bluemonday.Policy {
	plainTextPolicyOnce.Do(func() {
		plainTextPolicy = bluemonday.StrictPolicy()
	})
	return plainTextPolicy
}

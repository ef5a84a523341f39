package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-storyform/pkg/catalog"
	"github.com/goliatone/go-storyform/pkg/form"
	"github.com/goliatone/go-storyform/pkg/submit"
)

const defaultSimilarLimit = 5

// Workflow is the part of a story workflow the filler drives.
type Workflow interface {
	Form() *form.State
	Description() *form.RichTextAdapter
	Categories() []string
	Priorities() []string
	Products() []catalog.ProductRef
	SearchStories(title string) []catalog.StorySummary
	Submit(ctx context.Context) (submit.Result, error)
}

// Filler prompts for the new story fields and writes the answers into the
// workflow's form.
type Filler struct {
	driver       PromptDriver
	theme        Theme
	similarLimit int
	logger       *zap.Logger
}

// New constructs a Filler with defaults (survey driver on stdout).
func New(options ...Option) *Filler {
	f := &Filler{
		similarLimit: defaultSimilarLimit,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f
}

var allFields = []string{
	form.FieldTitle,
	form.FieldCode,
	form.FieldCategory,
	form.FieldPriority,
	form.FieldProduct,
	form.FieldDescription,
}

// Fill prompts for every field in display order.
func (f *Filler) Fill(ctx context.Context, wf Workflow) error {
	return f.FillFields(ctx, wf, allFields)
}

// FillFields prompts only for the named fields, in display order. Current
// form values are offered as defaults.
func (f *Filler) FillFields(ctx context.Context, wf Workflow, fields []string) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	if wf == nil {
		return ErrNoWorkflow
	}
	wanted := make(map[string]bool, len(fields))
	for _, name := range fields {
		wanted[name] = true
	}
	for _, name := range allFields {
		if !wanted[name] {
			continue
		}
		if err := f.promptField(ctx, wf, name); err != nil {
			return err
		}
	}
	return nil
}

// Run fills the form, confirms, and submits. Validation failures re-prompt
// the offending fields; a failed mutation can be retried without losing
// the answers.
func (f *Filler) Run(ctx context.Context, wf Workflow) (submit.Result, error) {
	if err := f.Fill(ctx, wf); err != nil {
		return submit.Result{}, err
	}
	for {
		ok, err := f.driver.Confirm(ctx, ConfirmConfig{Message: "Create this story?", Default: true})
		if err != nil {
			return submit.Result{}, err
		}
		if !ok {
			return submit.Result{}, ErrCancelled
		}

		result, err := wf.Submit(ctx)
		if err == nil {
			return result, nil
		}

		var validation *submit.ValidationError
		var failed *submit.SubmissionError
		switch {
		case errors.As(err, &validation):
			f.logger.Debug("story form invalid", zap.Strings("fields", validation.Fields))
			if err := f.warn(ctx, "Please fill in: "+strings.Join(labels(validation.Fields), ", ")); err != nil {
				return submit.Result{}, err
			}
			if err := f.FillFields(ctx, wf, validation.Fields); err != nil {
				return submit.Result{}, err
			}
		case errors.As(err, &failed):
			if err := f.warn(ctx, "Could not create the story: "+failed.Err.Error()); err != nil {
				return submit.Result{}, err
			}
			retry, err := f.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
			if err != nil {
				return submit.Result{}, err
			}
			if !retry {
				return submit.Result{}, failed
			}
		default:
			return submit.Result{}, err
		}
	}
}

func (f *Filler) promptField(ctx context.Context, wf Workflow, name string) error {
	state := wf.Form()
	current, _ := state.Value(name)

	switch name {
	case form.FieldTitle:
		title, err := f.driver.Input(ctx, InputConfig{Message: fieldLabel(name), Default: current})
		if err != nil {
			return err
		}
		if err := state.SetValue(name, title); err != nil {
			return err
		}
		return f.showSimilar(ctx, wf, title)
	case form.FieldCode:
		return f.promptText(ctx, state, name, current, "Link to the code the story is about")
	case form.FieldCategory:
		return f.promptChoice(ctx, state, name, current, wf.Categories())
	case form.FieldPriority:
		return f.promptChoice(ctx, state, name, current, wf.Priorities())
	case form.FieldProduct:
		return f.promptProduct(ctx, state, current, wf.Products())
	case form.FieldDescription:
		return f.promptDescription(ctx, wf.Description(), current)
	default:
		return f.promptText(ctx, state, name, current, "")
	}
}

func (f *Filler) promptText(ctx context.Context, state *form.State, name, current, help string) error {
	value, err := f.driver.Input(ctx, InputConfig{Message: fieldLabel(name), Default: current, Help: help})
	if err != nil {
		return err
	}
	return state.SetValue(name, value)
}

// promptChoice falls back to free input when the option list did not load.
func (f *Filler) promptChoice(ctx context.Context, state *form.State, name, current string, options []string) error {
	if len(options) == 0 {
		f.logger.Debug("no options loaded, using free input", zap.String("field", name))
		return f.promptText(ctx, state, name, current, "Options could not be loaded")
	}
	idx, err := f.driver.Select(ctx, SelectConfig{
		Message:      fieldLabel(name),
		Options:      options,
		DefaultIndex: indexOf(options, current),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(options) {
		return fmt.Errorf("tui: %s selection out of range", name)
	}
	return state.SetValue(name, options[idx])
}

func (f *Filler) promptProduct(ctx context.Context, state *form.State, current string, products []catalog.ProductRef) error {
	if len(products) == 0 {
		f.logger.Debug("no products loaded, using free input")
		return f.promptText(ctx, state, form.FieldProduct, current, "Product id")
	}
	names := make([]string, len(products))
	defaultIdx := -1
	for i, product := range products {
		names[i] = product.Name
		if product.ID == current {
			defaultIdx = i
		}
	}
	idx, err := f.driver.Select(ctx, SelectConfig{
		Message:      fieldLabel(form.FieldProduct),
		Options:      names,
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(products) {
		return fmt.Errorf("tui: %s selection out of range", form.FieldProduct)
	}
	return state.SetValue(form.FieldProduct, products[idx].ID)
}

// promptDescription hands the answer to the rich-text adapter, never to the
// form directly.
func (f *Filler) promptDescription(ctx context.Context, adapter *form.RichTextAdapter, current string) error {
	text, err := f.driver.TextArea(ctx, TextAreaConfig{
		Message: fieldLabel(form.FieldDescription),
		Default: htmlToText(current),
		Help:    "Blank lines start a new paragraph",
	})
	if err != nil {
		return err
	}
	return adapter.OnChange(TextToHTML(text))
}

func (f *Filler) showSimilar(ctx context.Context, wf Workflow, title string) error {
	if f.similarLimit == 0 {
		return nil
	}
	matches := wf.SearchStories(title)
	if len(matches) == 0 {
		return nil
	}
	lines := []string{"Similar stories:"}
	for i, story := range matches {
		if i == f.similarLimit {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(matches)-i))
			break
		}
		line := "  - " + story.Title
		if followers := followerNames(story.Followers); followers != "" {
			line += " (" + followers + ")"
		}
		lines = append(lines, line)
	}
	return f.info(ctx, strings.Join(lines, "\n"))
}

func (f *Filler) info(ctx context.Context, msg string) error {
	return f.driver.Info(ctx, f.theme.InfoPrefix+msg)
}

func (f *Filler) warn(ctx context.Context, msg string) error {
	return f.driver.Info(ctx, f.theme.ErrorPrefix+msg)
}

// TextToHTML turns terminal text into editor markup: blank-line separated
// blocks become paragraphs and single newlines become line breaks.
func TextToHTML(text string) string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	var paragraphs []string
	for _, block := range strings.Split(normalized, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(line))
		}
		paragraphs = append(paragraphs, "<p>"+strings.Join(lines, "<br>")+"</p>")
	}
	return strings.Join(paragraphs, "")
}

func htmlToText(value string) string {
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, "</p><p>", "\n\n")
	value = strings.ReplaceAll(value, "<br>", "\n")
	value = strings.ReplaceAll(value, "<br/>", "\n")
	return html.UnescapeString(form.PlainText(value))
}

func followerNames(followers []catalog.Follower) string {
	names := make([]string, 0, len(followers))
	for _, follower := range followers {
		if follower.Username != "" {
			names = append(names, follower.Username)
		}
	}
	return strings.Join(names, ", ")
}

func fieldLabel(name string) string {
	switch name {
	case form.FieldTitle:
		return "Title"
	case form.FieldCode:
		return "Source code link"
	case form.FieldCategory:
		return "Category"
	case form.FieldPriority:
		return "Priority"
	case form.FieldProduct:
		return "Product"
	case form.FieldDescription:
		return "Description"
	default:
		return name
	}
}

func labels(fields []string) []string {
	out := make([]string, len(fields))
	for i, name := range fields {
		out[i] = fieldLabel(name)
	}
	return out
}

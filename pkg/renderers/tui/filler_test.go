package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-storyform/pkg/catalog"
	"github.com/goliatone/go-storyform/pkg/form"
	"github.com/goliatone/go-storyform/pkg/submit"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputCfgs    []InputConfig
	selectCfgs   []SelectConfig
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputCfgs = append(s.inputCfgs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectCfgs = append(s.selectCfgs, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

type fakeWorkflow struct {
	state      *form.State
	desc       *form.RichTextAdapter
	categories []string
	priorities []string
	products   []catalog.ProductRef
	stories    []catalog.StorySummary
	submits    []error
	submitted  int
}

func newFakeWorkflow() *fakeWorkflow {
	state := form.NewStoryForm()
	return &fakeWorkflow{
		state:      state,
		desc:       form.NewRichTextAdapter(state, form.FieldDescription),
		categories: []string{"Bug", "Feature"},
		priorities: []string{"Low", "High"},
		products:   []catalog.ProductRef{{ID: "p1", Name: "Web"}, {ID: "p2", Name: "Mobile"}},
		stories: []catalog.StorySummary{
			{ID: "s1", Title: "Login fails", Followers: []catalog.Follower{{Username: "ana"}}},
			{ID: "s2", Title: "Export CSV"},
		},
	}
}

func (w *fakeWorkflow) Form() *form.State { return w.state }
func (w *fakeWorkflow) Description() *form.RichTextAdapter { return w.desc }
func (w *fakeWorkflow) Categories() []string { return w.categories }
func (w *fakeWorkflow) Priorities() []string { return w.priorities }
func (w *fakeWorkflow) Products() []catalog.ProductRef { return w.products }

func (w *fakeWorkflow) SearchStories(title string) []catalog.StorySummary {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return nil
	}
	var out []catalog.StorySummary
	for _, s := range w.stories {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			out = append(out, s)
		}
	}
	return out
}

func (w *fakeWorkflow) Submit(context.Context) (submit.Result, error) {
	idx := w.submitted
	w.submitted++
	if idx < len(w.submits) && w.submits[idx] != nil {
		return submit.Result{}, w.submits[idx]
	}
	return submit.Result{Route: "/"}, nil
}

func TestFillWritesAllFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"login", "https://git.example.com/app"},
		selectIdx: []int{0, 1, 1},
		textAreas: []string{"Steps \"quoted\"\n\nsecond line"},
	}
	wf := newFakeWorkflow()

	if err := New(WithPromptDriver(driver)).Fill(context.Background(), wf); err != nil {
		t.Fatalf("fill: %v", err)
	}

	got := wf.state.Snapshot()
	if got.Description == nil {
		t.Fatalf("description not set")
	}
	want := form.Values{
		Title:          "login",
		SourceCodeLink: "https://git.example.com/app",
		Description:    got.Description,
		Category:       "Bug",
		Priority:       "High",
		Product:        "p2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(*got.Description, "<p>Steps ") || !strings.Contains(*got.Description, "<p>second line</p>") {
		t.Fatalf("unexpected description markup %q", *got.Description)
	}
	if diff := cmp.Diff([]string{"Similar stories:\n  - Login fails (ana)"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Web", "Mobile"}, driver.selectCfgs[2].Options); diff != "" {
		t.Fatalf("product options mismatch (-want +got):\n%s", diff)
	}
}

func TestFillFallsBackToInputWhenOptionsMissing(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"title", "link", "Bug", "High", "p9"},
		textAreas: []string{"body"},
	}
	wf := newFakeWorkflow()
	wf.categories = nil
	wf.priorities = nil
	wf.products = nil

	if err := New(WithPromptDriver(driver), WithSimilarLimit(0)).Fill(context.Background(), wf); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if driver.selectPos != 0 {
		t.Fatalf("select should not be used without options")
	}
	got := wf.state.Snapshot()
	if got.Category != "Bug" || got.Priority != "High" || got.Product != "p9" {
		t.Fatalf("free input values not stored: %+v", got)
	}
}

func TestFillEmptyDescriptionStaysEmpty(t *testing.T) {
	driver := &stubDriver{textAreas: []string{"   \n\n  "}}
	wf := newFakeWorkflow()

	if err := New(WithPromptDriver(driver)).FillFields(context.Background(), wf, []string{form.FieldDescription}); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if wf.state.Snapshot().HasDescription() {
		t.Fatalf("blank description must not count as content")
	}
}

func TestRunRepromptsInvalidFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"title", "", "https://git.example.com"},
		selectIdx: []int{0, 0, 0},
		textAreas: []string{"body"},
		confirm:   []bool{true, true},
	}
	wf := newFakeWorkflow()
	wf.submits = []error{&submit.ValidationError{Fields: []string{form.FieldCode}}}

	result, err := New(WithPromptDriver(driver), WithSimilarLimit(0)).Run(context.Background(), wf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Route != "/" || wf.submitted != 2 {
		t.Fatalf("expected second submit to succeed, got %+v after %d submits", result, wf.submitted)
	}
	if got := wf.state.Snapshot().SourceCodeLink; got != "https://git.example.com" {
		t.Fatalf("source code link not re-prompted, got %q", got)
	}
	if diff := cmp.Diff([]string{"Please fill in: Source code link"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRetriesFailedSubmission(t *testing.T) {
	cause := errors.New("server down")
	driver := &stubDriver{
		inputs:    []string{"title", "link"},
		selectIdx: []int{0, 0, 0},
		textAreas: []string{"body"},
		confirm:   []bool{true, false},
	}
	wf := newFakeWorkflow()
	wf.submits = []error{&submit.SubmissionError{Err: cause}}

	_, err := New(WithPromptDriver(driver), WithSimilarLimit(0), WithTheme(Theme{ErrorPrefix: "! "})).Run(context.Background(), wf)
	if !errors.Is(err, cause) {
		t.Fatalf("expected submission error wrapping cause, got %v", err)
	}
	if diff := cmp.Diff([]string{"! Could not create the story: server down"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if got := wf.state.Snapshot().Title; got != "title" {
		t.Fatalf("form values lost after failure: %q", got)
	}
}

func TestRunCancelled(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"title", "link"},
		selectIdx: []int{0, 0, 0},
		textAreas: []string{"body"},
		confirm:   []bool{false},
	}
	wf := newFakeWorkflow()

	_, err := New(WithPromptDriver(driver), WithSimilarLimit(0)).Run(context.Background(), wf)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if wf.submitted != 0 {
		t.Fatalf("cancelled run must not submit")
	}
}

type interruptingDriver struct {
	*stubDriver
}

func (d interruptingDriver) Confirm(context.Context, ConfirmConfig) (bool, error) {
	return false, ErrAborted
}

func TestRunPropagatesInterrupt(t *testing.T) {
	driver := interruptingDriver{&stubDriver{
		inputs:    []string{"title", "link"},
		selectIdx: []int{0, 0, 0},
		textAreas: []string{"body"},
	}}
	wf := newFakeWorkflow()

	_, err := New(WithPromptDriver(driver), WithSimilarLimit(0)).Run(context.Background(), wf)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if wf.submitted != 0 {
		t.Fatalf("interrupted run must not submit")
	}
	if got := wf.state.Snapshot().Title; got != "title" {
		t.Fatalf("answers given before the interrupt should stay in the form, got %q", got)
	}
}

func TestFillStopsOnInterruptedPrompt(t *testing.T) {
	driver := &stubDriver{}
	wf := newFakeWorkflow()
	aborting := abortingInput{driver}

	err := New(WithPromptDriver(aborting)).Fill(context.Background(), wf)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if driver.selectPos != 0 || driver.textPos != 0 {
		t.Fatalf("no prompt should follow an interrupt")
	}
}

type abortingInput struct {
	*stubDriver
}

func (d abortingInput) Input(context.Context, InputConfig) (string, error) {
	return "", ErrAborted
}

func TestTranslateSurveyInterrupt(t *testing.T) {
	if err := translateSurveyErr(terminal.InterruptErr); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	cause := errors.New("tty closed")
	if err := translateSurveyErr(cause); !errors.Is(err, cause) {
		t.Fatalf("expected other errors to pass through, got %v", err)
	}
	if err := translateSurveyErr(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestFillRequiresWorkflow(t *testing.T) {
	if err := New(WithPromptDriver(&stubDriver{})).Fill(context.Background(), nil); !errors.Is(err, ErrNoWorkflow) {
		t.Fatalf("expected ErrNoWorkflow, got %v", err)
	}
}

func TestTextToHTML(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"one":              "<p>one</p>",
		"a\nb":             "<p>a<br>b</p>",
		"a\r\n\r\nb":       "<p>a</p><p>b</p>",
		"x < y & \"z\"":    "<p>x &lt; y &amp; &#34;z&#34;</p>",
		"\n\n  spaced  \n": "<p>spaced</p>",
	}
	for in, want := range cases {
		if got := TextToHTML(in); got != want {
			t.Fatalf("TextToHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

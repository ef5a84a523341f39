package story

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-storyform/pkg/catalog"
	"github.com/goliatone/go-storyform/pkg/form"
	"github.com/goliatone/go-storyform/pkg/graphql"
	"github.com/goliatone/go-storyform/pkg/loading"
	"github.com/goliatone/go-storyform/pkg/submit"
)

// Operation names used for tracking and logging the mount-time fetches.
const (
	OpCategories = "categories"
	OpPriorities = "priorities"
	OpProducts   = "products"
	OpStories    = "stories"
)

var (
	// ErrUnauthenticated is returned when the session cannot reach the
	// workflow.
	ErrUnauthenticated = errors.New("story: please login to create a new story")
	// ErrDisposed is returned once the workflow has been closed.
	ErrDisposed = errors.New("story: workflow closed")
)

// Option configures a Workflow.
type Option func(*Workflow)

// WithSession sets the session context. Without one the workflow is
// unauthenticated and Mount refuses to run.
func WithSession(session graphql.Session) Option {
	return func(w *Workflow) {
		w.session = session
	}
}

// WithNavigator sets the navigator used after a successful submission.
func WithNavigator(nav submit.Navigator) Option {
	return func(w *Workflow) {
		w.submitOpts = append(w.submitOpts, submit.WithNavigator(nav))
	}
}

// WithLogger sets the workflow logger; it is shared with the controller.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithEnumTypes overrides the category and priority enum type names.
func WithEnumTypes(category, priority string) Option {
	return func(w *Workflow) {
		if c := strings.TrimSpace(category); c != "" {
			w.categoryEnum = c
		}
		if p := strings.TrimSpace(priority); p != "" {
			w.priorityEnum = p
		}
	}
}

// WithSubmitOptions forwards options to the submission controller.
func WithSubmitOptions(options ...submit.Option) Option {
	return func(w *Workflow) {
		w.submitOpts = append(w.submitOpts, options...)
	}
}

// WithTracker shares a loading tracker with other views.
func WithTracker(tracker *loading.Tracker) Option {
	return func(w *Workflow) {
		if tracker != nil {
			w.tracker = tracker
		}
	}
}

// Workflow is one instance of the "new story" page: reference data, form
// state, loading state and the submission controller. Its lifetime ends with
// Close, after which late fetch completions are dropped.
type Workflow struct {
	session      graphql.Session
	fetcher      *catalog.Fetcher
	tracker      *loading.Tracker
	form         *form.State
	description  *form.RichTextAdapter
	controller   *submit.Controller
	logger       *zap.Logger
	categoryEnum string
	priorityEnum string
	submitOpts   []submit.Option

	lifetime context.Context
	cancel   context.CancelFunc

	mu         sync.RWMutex
	disposed   bool
	categories []string
	priorities []string
	products   []catalog.ProductRef
	stories    []catalog.StorySummary
	fetchErrs  map[string]error
}

// New builds a workflow backed by client. The form starts empty with the
// description field already registered.
func New(client graphql.Doer, options ...Option) *Workflow {
	w := &Workflow{
		fetcher:      catalog.NewFetcher(client),
		tracker:      loading.NewTracker(),
		form:         form.NewStoryForm(),
		logger:       zap.NewNop(),
		categoryEnum: catalog.CategoryEnum,
		priorityEnum: catalog.PriorityEnum,
		fetchErrs:    make(map[string]error),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	w.description = form.NewRichTextAdapter(w.form, form.FieldDescription)
	w.controller = submit.New(client, append([]submit.Option{submit.WithLogger(w.logger)}, w.submitOpts...)...)
	w.lifetime, w.cancel = context.WithCancel(context.Background())
	return w
}

// Mount launches the four reference fetches concurrently and returns once
// all of them settled. A failed fetch is logged and swallowed: the dataset
// keeps its previous value and the busy flag still clears. Mount may be
// called again to refetch; datasets are replaced wholesale.
func (w *Workflow) Mount(ctx context.Context) error {
	if !w.session.Authenticated {
		return ErrUnauthenticated
	}
	if w.Disposed() {
		return ErrDisposed
	}

	mountCtx, cancel := context.WithCancel(w.lifetime)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	g, gctx := errgroup.WithContext(mountCtx)
	loaders := []struct {
		name string
		fn   func(context.Context) error
	}{
		{OpCategories, w.loadCategories},
		{OpProducts, w.loadProducts},
		{OpPriorities, w.loadPriorities},
		{OpStories, w.loadStories},
	}
	for _, loader := range loaders {
		g.Go(func() error {
			w.load(gctx, loader.name, loader.fn)
			return nil
		})
	}
	_ = g.Wait()

	if w.Disposed() {
		return ErrDisposed
	}
	return ctx.Err()
}

func (w *Workflow) load(ctx context.Context, name string, fn func(context.Context) error) {
	err := w.tracker.Track(ctx, name, fn)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed {
		return
	}
	if err != nil {
		w.fetchErrs[name] = err
		w.logger.Warn("reference data fetch failed",
			zap.String("dataset", name),
			zap.Error(err),
		)
		return
	}
	delete(w.fetchErrs, name)
}

func (w *Workflow) loadCategories(ctx context.Context) error {
	enum, err := w.fetcher.FetchEnum(ctx, w.categoryEnum)
	if err != nil {
		return err
	}
	w.apply(OpCategories, func() { w.categories = enum.Values })
	return nil
}

func (w *Workflow) loadPriorities(ctx context.Context) error {
	enum, err := w.fetcher.FetchEnum(ctx, w.priorityEnum)
	if err != nil {
		return err
	}
	w.apply(OpPriorities, func() { w.priorities = enum.Values })
	return nil
}

func (w *Workflow) loadProducts(ctx context.Context) error {
	products, err := w.fetcher.FetchProducts(ctx)
	if err != nil {
		return err
	}
	w.apply(OpProducts, func() { w.products = products })
	return nil
}

func (w *Workflow) loadStories(ctx context.Context) error {
	stories, err := w.fetcher.FetchStories(ctx)
	if err != nil {
		return err
	}
	w.apply(OpStories, func() { w.stories = stories })
	return nil
}

// apply runs set under the state lock unless the workflow was closed.
func (w *Workflow) apply(name string, set func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed {
		w.logger.Debug("dropping late fetch completion", zap.String("dataset", name))
		return
	}
	set()
}

// Close tears the workflow down: in-flight fetches are cancelled and any
// completion arriving afterwards is ignored. Close is idempotent.
func (w *Workflow) Close() {
	w.mu.Lock()
	w.disposed = true
	w.mu.Unlock()
	w.cancel()
}

// Disposed reports whether Close was called.
func (w *Workflow) Disposed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.disposed
}

// Busy reports whether any tracked fetch is still pending.
func (w *Workflow) Busy() bool {
	return w.tracker.Busy()
}

// Tracker exposes the loading tracker for busy-state subscriptions.
func (w *Workflow) Tracker() *loading.Tracker {
	return w.tracker
}

// Categories returns the category labels, empty until fetched.
func (w *Workflow) Categories() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.categories...)
}

// Priorities returns the priority labels, empty until fetched.
func (w *Workflow) Priorities() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.priorities...)
}

// Products returns the selectable products, empty until fetched.
func (w *Workflow) Products() []catalog.ProductRef {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]catalog.ProductRef(nil), w.products...)
}

// Stories returns existing stories in server order, empty until fetched.
func (w *Workflow) Stories() []catalog.StorySummary {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]catalog.StorySummary(nil), w.stories...)
}

// FetchErrors returns the swallowed error of each dataset whose last fetch
// failed. Views can use it to offer a retry.
func (w *Workflow) FetchErrors() map[string]error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]error, len(w.fetchErrs))
	for k, v := range w.fetchErrs {
		out[k] = v
	}
	return out
}

// Form returns the form state.
func (w *Workflow) Form() *form.State {
	return w.form
}

// Description returns the adapter the rich-text editor reports through.
func (w *Workflow) Description() *form.RichTextAdapter {
	return w.description
}

// DescriptionError reports whether the description-required error is shown.
func (w *Workflow) DescriptionError() bool {
	return w.form.Error(form.FieldDescription) != ""
}

// State reports the submission controller state.
func (w *Workflow) State() submit.State {
	return w.controller.State()
}

// Submit validates the form and sends the create-story mutation.
func (w *Workflow) Submit(ctx context.Context) (submit.Result, error) {
	if !w.session.Authenticated {
		return submit.Result{}, ErrUnauthenticated
	}
	if w.Disposed() {
		return submit.Result{}, ErrDisposed
	}
	return w.controller.Submit(ctx, w.form)
}

package storyform

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-storyform/pkg/graphql"
	"github.com/goliatone/go-storyform/pkg/story"
	"github.com/goliatone/go-storyform/pkg/submit"
	"github.com/goliatone/go-storyform/pkg/view"
)

// Workflow aliases story.Workflow for callers that only import the root
// package.
type Workflow = story.Workflow

// Session aliases graphql.Session.
type Session = graphql.Session

// Option configures New.
type Option func(*settings)

type settings struct {
	httpClient    *http.Client
	session       graphql.Session
	logger        *zap.Logger
	navigator     submit.Navigator
	categoryEnum  string
	priorityEnum  string
	defaultStatus string
	homeRoute     string
}

// WithHTTPClient overrides the HTTP client used for GraphQL calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		s.httpClient = client
	}
}

// WithToken marks the session as authenticated with a bearer token.
func WithToken(token string) Option {
	return func(s *settings) {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			s.session.Authenticated = true
			s.session.Token = trimmed
		}
	}
}

// WithSession replaces the whole session, cookies included.
func WithSession(session graphql.Session) Option {
	return func(s *settings) {
		s.session = session
	}
}

// WithLogger shares logger with every component.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithNavigator receives the home route after a successful submission.
func WithNavigator(nav submit.Navigator) Option {
	return func(s *settings) {
		s.navigator = nav
	}
}

// WithEnumTypes overrides the enum type names for category and priority.
func WithEnumTypes(category, priority string) Option {
	return func(s *settings) {
		s.categoryEnum = category
		s.priorityEnum = priority
	}
}

// WithDefaultStatus overrides the status id attached to new stories.
func WithDefaultStatus(status string) Option {
	return func(s *settings) {
		s.defaultStatus = status
	}
}

// WithHomeRoute overrides where a successful submission navigates.
func WithHomeRoute(route string) Option {
	return func(s *settings) {
		s.homeRoute = route
	}
}

// New wires a GraphQL client for endpoint into a story workflow.
func New(endpoint string, options ...Option) (*story.Workflow, error) {
	cfg := &settings{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	clientOpts := []graphql.Option{
		graphql.WithSession(cfg.session),
		graphql.WithLogger(cfg.logger),
	}
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, graphql.WithHTTPClient(cfg.httpClient))
	}
	client, err := graphql.New(endpoint, clientOpts...)
	if err != nil {
		return nil, err
	}

	var submitOpts []submit.Option
	if cfg.defaultStatus != "" {
		submitOpts = append(submitOpts, submit.WithDefaultStatus(cfg.defaultStatus))
	}
	if cfg.homeRoute != "" {
		submitOpts = append(submitOpts, submit.WithHomeRoute(cfg.homeRoute))
	}

	workflowOpts := []story.Option{
		story.WithSession(cfg.session),
		story.WithLogger(cfg.logger),
		story.WithSubmitOptions(submitOpts...),
	}
	if cfg.navigator != nil {
		workflowOpts = append(workflowOpts, story.WithNavigator(cfg.navigator))
	}
	if cfg.categoryEnum != "" || cfg.priorityEnum != "" {
		workflowOpts = append(workflowOpts, story.WithEnumTypes(cfg.categoryEnum, cfg.priorityEnum))
	}
	return story.New(client, workflowOpts...), nil
}

// NewComposer returns a view composer over the built-in templates.
func NewComposer(options ...view.Option) (*view.Composer, error) {
	engine, err := view.NewEngine(options...)
	if err != nil {
		return nil, err
	}
	return view.NewComposer(engine), nil
}

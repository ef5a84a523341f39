package storyform

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-storyform/pkg/story"
	"github.com/goliatone/go-storyform/pkg/testsupport"
)

func newBackend(t *testing.T) *testsupport.GraphQLServer {
	t.Helper()
	return testsupport.NewGraphQLServer(t, map[string]testsupport.GraphQLHandler{
		"EnumValues": func(call testsupport.GraphQLCall) (string, error) {
			if call.Variables["name"] == "STORY_KIND" {
				return `{"__type":{"enumValues":[{"name":"Bug"},{"name":"Feature"}]}}`, nil
			}
			return `{"__type":{"enumValues":[{"name":"Low"},{"name":"High"}]}}`, nil
		},
		"Products":    testsupport.Static(`{"products":[{"id":"p1","Name":"Web"}]}`),
		"UserStories": testsupport.Static(`{"userStories":[{"id":"s1","Title":"Login fails","Description":"","followers":[]}]}`),
	})
}

func TestNewWiresWorkflow(t *testing.T) {
	srv := newBackend(t)

	wf, err := New(srv.URL,
		WithHTTPClient(srv.Client()),
		WithToken("secret"),
		WithEnumTypes("STORY_KIND", "STORY_PRIORITY"),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer wf.Close()

	if err := wf.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if diff := cmp.Diff([]string{"Bug", "Feature"}, wf.Categories()); diff != "" {
		t.Fatalf("categories mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Low", "High"}, wf.Priorities()); diff != "" {
		t.Fatalf("priorities mismatch (-want +got):\n%s", diff)
	}

	calls := srv.Calls()
	if len(calls) != 4 {
		t.Fatalf("expected 4 reference calls, got %d", len(calls))
	}
	for _, call := range calls {
		wantAuth := "Bearer secret"
		if call.Operation == "EnumValues" {
			wantAuth = ""
		}
		if call.Authorization != wantAuth {
			t.Fatalf("%s sent Authorization %q, want %q", call.Operation, call.Authorization, wantAuth)
		}
	}

	composer, err := NewComposer()
	if err != nil {
		t.Fatalf("composer: %v", err)
	}
	screen, err := composer.Render(wf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(screen, "Create a new story\n") {
		t.Fatalf("expected form screen, got:\n%s", screen)
	}
}

func TestNewWithoutTokenIsUnauthenticated(t *testing.T) {
	srv := newBackend(t)

	wf, err := New(srv.URL, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer wf.Close()

	if err := wf.Mount(context.Background()); !errors.Is(err, story.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if len(srv.Calls()) != 0 {
		t.Fatalf("unauthenticated mount must not reach the backend")
	}
}

func TestNewRequiresEndpoint(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}

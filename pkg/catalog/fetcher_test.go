package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-storyform/pkg/catalog"
	"github.com/goliatone/go-storyform/pkg/graphql"
)

type stubDoer struct {
	response string
	err      error
	requests []graphql.Request
}

func (s *stubDoer) Do(_ context.Context, req graphql.Request, out any) error {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return s.err
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(s.response), &envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, out)
}

func TestFetchEnumKeepsSourceOrder(t *testing.T) {
	doer := &stubDoer{response: `{"data":{"__type":{"enumValues":[{"name":"Bug"},{"name":"Feature"}]}}}`}
	enum, err := catalog.NewFetcher(doer).FetchEnum(context.Background(), catalog.CategoryEnum)
	if err != nil {
		t.Fatalf("fetch enum: %v", err)
	}
	want := catalog.Enumeration{Name: catalog.CategoryEnum, Values: []string{"Bug", "Feature"}}
	if diff := cmp.Diff(want, enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}

	req := doer.requests[0]
	if req.WithCredentials {
		t.Fatalf("enum introspection must be unauthenticated")
	}
	if diff := cmp.Diff(map[string]any{"name": catalog.CategoryEnum}, req.Variables); diff != "" {
		t.Fatalf("variables mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchEnumMalformed(t *testing.T) {
	for name, response := range map[string]string{
		"null type":   `{"data":{"__type":null}}`,
		"null values": `{"data":{"__type":{"enumValues":null}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.NewFetcher(&stubDoer{response: response}).FetchEnum(context.Background(), "X")
			if !errors.Is(err, graphql.ErrMalformedResponse) {
				t.Fatalf("expected malformed response, got %v", err)
			}
		})
	}
}

func TestFetchProducts(t *testing.T) {
	doer := &stubDoer{response: `{"data":{"products":[{"id":"p1","Name":"Portal"},{"id":"p2","Name":"Billing"}]}}`}
	products, err := catalog.NewFetcher(doer).FetchProducts(context.Background())
	if err != nil {
		t.Fatalf("fetch products: %v", err)
	}
	want := []catalog.ProductRef{{ID: "p1", Name: "Portal"}, {ID: "p2", Name: "Billing"}}
	if diff := cmp.Diff(want, products); diff != "" {
		t.Fatalf("products mismatch (-want +got):\n%s", diff)
	}
	if !doer.requests[0].WithCredentials {
		t.Fatalf("products must be fetched with credentials")
	}
}

func TestFetchStoriesPreservesServerOrder(t *testing.T) {
	doer := &stubDoer{response: `{"data":{"userStories":[
		{"id":"s2","Title":"Zebra","Description":"<p>z</p>","followers":[{"username":"ana"}]},
		{"id":"s1","Title":"Apple","Description":"","followers":[]}
	]}}`}
	stories, err := catalog.NewFetcher(doer).FetchStories(context.Background())
	if err != nil {
		t.Fatalf("fetch stories: %v", err)
	}
	want := []catalog.StorySummary{
		{ID: "s2", Title: "Zebra", Description: "<p>z</p>", Followers: []catalog.Follower{{Username: "ana"}}},
		{ID: "s1", Title: "Apple", Followers: []catalog.Follower{}},
	}
	if diff := cmp.Diff(want, stories); diff != "" {
		t.Fatalf("stories mismatch (-want +got):\n%s", diff)
	}
	req := doer.requests[0]
	if !req.WithCredentials || req.Variables["sort"] != catalog.StorySort {
		t.Fatalf("unexpected stories request: %+v", req)
	}
}

func TestFetchPropagatesClientErrors(t *testing.T) {
	netErr := &graphql.NetworkError{Op: "Products", StatusCode: 502}
	_, err := catalog.NewFetcher(&stubDoer{err: netErr}).FetchProducts(context.Background())
	if !errors.Is(err, graphql.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}

	_, err = catalog.NewFetcher(&stubDoer{response: `{"data":{}}`}).FetchStories(context.Background())
	if !errors.Is(err, graphql.ErrMalformedResponse) {
		t.Fatalf("expected malformed response for missing list, got %v", err)
	}
}

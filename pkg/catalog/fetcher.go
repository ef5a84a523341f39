// Package catalog fetches the reference data a new story is built from:
// enumerations (category, priority), products and existing stories. Each
// fetch is a single GraphQL call with no retry; callers decide what a
// failure means.
package catalog

import (
	"context"
	"strings"

	"github.com/goliatone/go-storyform/pkg/graphql"
)

const (
	enumQuery = `query EnumValues($name: String!) {
  __type(name: $name) {
    enumValues {
      name
    }
  }
}`

	productsQuery = `query Products {
  products {
    id
    Name
  }
}`

	storiesQuery = `query UserStories($sort: String) {
  userStories(sort: $sort) {
    id
    Title
    Description
    followers {
      username
    }
  }
}`
)

// Fetcher issues catalog queries through a GraphQL client.
type Fetcher struct {
	client graphql.Doer
}

// NewFetcher wraps client.
func NewFetcher(client graphql.Doer) *Fetcher {
	return &Fetcher{client: client}
}

type enumResponse struct {
	Type *struct {
		EnumValues []struct {
			Name string `json:"name"`
		} `json:"enumValues"`
	} `json:"__type"`
}

// FetchEnum loads the values of the named enum type in server order. The
// introspection call is sent without credentials.
func (f *Fetcher) FetchEnum(ctx context.Context, typeName string) (Enumeration, error) {
	typeName = strings.TrimSpace(typeName)
	var resp enumResponse
	err := f.client.Do(ctx, graphql.Request{
		Query:         enumQuery,
		OperationName: "EnumValues",
		Variables:     map[string]any{"name": typeName},
	}, &resp)
	if err != nil {
		return Enumeration{}, err
	}
	if resp.Type == nil {
		return Enumeration{}, graphql.Malformed("EnumValues", "unknown enum type "+typeName)
	}
	if resp.Type.EnumValues == nil {
		return Enumeration{}, graphql.Malformed("EnumValues", "enumValues missing for "+typeName)
	}

	values := make([]string, 0, len(resp.Type.EnumValues))
	for _, v := range resp.Type.EnumValues {
		values = append(values, v.Name)
	}
	return Enumeration{Name: typeName, Values: values}, nil
}

// FetchProducts loads the products the current user can file stories
// against.
func (f *Fetcher) FetchProducts(ctx context.Context) ([]ProductRef, error) {
	var resp struct {
		Products []ProductRef `json:"products"`
	}
	err := f.client.Do(ctx, graphql.Request{
		Query:           productsQuery,
		OperationName:   "Products",
		WithCredentials: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Products == nil {
		return nil, graphql.Malformed("Products", "products missing")
	}
	return resp.Products, nil
}

// FetchStories loads existing stories sorted by StorySort. The server order
// is kept as-is.
func (f *Fetcher) FetchStories(ctx context.Context) ([]StorySummary, error) {
	var resp struct {
		UserStories []StorySummary `json:"userStories"`
	}
	err := f.client.Do(ctx, graphql.Request{
		Query:           storiesQuery,
		OperationName:   "UserStories",
		Variables:       map[string]any{"sort": StorySort},
		WithCredentials: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.UserStories == nil {
		return nil, graphql.Malformed("UserStories", "userStories missing")
	}
	return resp.UserStories, nil
}

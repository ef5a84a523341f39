package submit

import (
	"strings"

	"github.com/goliatone/go-storyform/pkg/form"
	"github.com/goliatone/go-storyform/pkg/graphql"
)

// DefaultStatus is the status id new stories are created with.
const DefaultStatus = "5f0f33205f5695666b0d2e7e"

const createStoryMutation = `mutation CreateUserStory($data: UserStoryInput!) {
  createUserStory(input: { data: $data }) {
    userStory {
      createdAt
    }
  }
}`

// CreateStoryInput is the mutation payload. Field names follow the backend
// schema.
type CreateStoryInput struct {
	Description string `json:"Description"`
	Title       string `json:"Title"`
	Category    string `json:"Category"`
	Status      string `json:"user_story_status"`
	Product     string `json:"product"`
	Priority    string `json:"Priority"`
}

// Variables renders the input as GraphQL variables. Values travel verbatim;
// the transport encodes them, so quotes and control characters cannot break
// the query document.
func (in CreateStoryInput) Variables() map[string]any {
	return map[string]any{
		"data": map[string]any{
			"Description":       in.Description,
			"Title":             in.Title,
			"Category":          in.Category,
			"user_story_status": in.Status,
			"product":           in.Product,
			"Priority":          in.Priority,
		},
	}
}

// BuildInput maps a form snapshot to the mutation input.
func BuildInput(values form.Values, status string) CreateStoryInput {
	if strings.TrimSpace(status) == "" {
		status = DefaultStatus
	}
	return CreateStoryInput{
		Description: values.DescriptionText(),
		Title:       values.Title,
		Category:    values.Category,
		Status:      status,
		Product:     values.Product,
		Priority:    values.Priority,
	}
}

// BuildRequest wraps the input in a credentialed GraphQL request.
func BuildRequest(input CreateStoryInput) graphql.Request {
	return graphql.Request{
		Query:           createStoryMutation,
		OperationName:   "CreateUserStory",
		Variables:       input.Variables(),
		WithCredentials: true,
	}
}

type createStoryResponse struct {
	CreateUserStory *struct {
		UserStory *struct {
			CreatedAt string `json:"createdAt"`
		} `json:"userStory"`
	} `json:"createUserStory"`
}

// createdAt is informational only; any successful response counts as
// created.
func (r createStoryResponse) createdAt() string {
	if r.CreateUserStory == nil || r.CreateUserStory.UserStory == nil {
		return ""
	}
	return r.CreateUserStory.UserStory.CreatedAt
}

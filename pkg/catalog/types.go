package catalog

// Default enumeration type names exposed by the backend schema.
const (
	CategoryEnum = "ENUM_USERSTORY_CATEGORY"
	PriorityEnum = "ENUM_USERSTORY_PRIORITY"
)

// StorySort orders stories by votes, then by creation time, both descending.
const StorySort = "votes:desc,createdAt:desc"

// Enumeration is an ordered, immutable list of labels for a server-side enum.
type Enumeration struct {
	Name   string
	Values []string
}

// ProductRef is a selectable product.
type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"Name"`
}

// Follower is a user following a story.
type Follower struct {
	Username string `json:"username"`
}

// StorySummary is an existing story used for the sidebar lookup.
type StorySummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"Title"`
	Description string     `json:"Description"`
	Followers   []Follower `json:"followers"`
}

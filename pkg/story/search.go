package story

import (
	"strings"

	"github.com/goliatone/go-storyform/pkg/catalog"
	"github.com/goliatone/go-storyform/pkg/form"
)

// SearchStories returns stories whose title contains title, ignoring case,
// in fetched order. An empty title matches nothing.
func (w *Workflow) SearchStories(title string) []catalog.StorySummary {
	return MatchTitle(w.Stories(), title)
}

// SimilarStories searches with the live title value.
func (w *Workflow) SimilarStories() []catalog.StorySummary {
	return w.SearchStories(w.form.Watch(form.FieldTitle))
}

// MatchTitle filters stories by a case-insensitive title substring.
func MatchTitle(stories []catalog.StorySummary, title string) []catalog.StorySummary {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return nil
	}
	var out []catalog.StorySummary
	for _, s := range stories {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			out = append(out, s)
		}
	}
	return out
}

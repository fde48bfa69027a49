package curation

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"

	"github.com/lysyi3m/news-browser/app/digest"
)

// Visible applies the category filter and the search term of state to the
// categories of a canonical document. With a search term, only matching
// items are kept and categories left without items are hidden.
func Visible(categories []digest.Category, state State) []digest.Category {
	// a Caser keeps state between calls and is not safe to share
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(state.SearchTerm))

	visible := make([]digest.Category, 0, len(categories))
	for _, category := range categories {
		if !state.IsActive(category.Title) {
			continue
		}

		if term == "" {
			visible = append(visible, category)
			continue
		}

		matches := make([]json.RawMessage, 0, len(category.Content))
		for _, item := range category.Content {
			if strings.Contains(fold.String(digest.ItemText(item)), term) {
				matches = append(matches, item)
			}
		}
		if len(matches) == 0 {
			continue
		}

		category.Content = matches
		visible = append(visible, category)
	}

	return visible
}

package curation

import (
	"encoding/json"

	"github.com/lysyi3m/news-browser/app/archive"
	"github.com/lysyi3m/news-browser/app/digest"
)

// AllCategories is the filter value that shows every category.
const AllCategories = "all"

// StorageKey names the saved selection.
const StorageKey = "ai_news_curated_items"

// CuratedItem is an item the user picked, tagged with the title of the
// category it came from.
type CuratedItem struct {
	Category string          `json:"category"`
	Item     json.RawMessage `json:"item"`
}

func (c CuratedItem) Text() string {
	return digest.ItemText(c.Item)
}

// State is everything the browser session holds: the curated selection,
// the category filter, the search term and the date being viewed.
// Values are replaced by Reduce, never mutated in place.
type State struct {
	Items         []CuratedItem    `json:"items"`
	ActiveFilters []string         `json:"active_filters"`
	SearchTerm    string           `json:"search_term"`
	Position      archive.Position `json:"-"`
}

func NewState() State {
	return State{
		Items:         []CuratedItem{},
		ActiveFilters: []string{AllCategories},
	}
}

// ShowsAll reports whether the category filter is off.
func (s State) ShowsAll() bool {
	for _, f := range s.ActiveFilters {
		if f == AllCategories {
			return true
		}
	}
	return len(s.ActiveFilters) == 0
}

// IsActive reports whether a category passes the filter.
func (s State) IsActive(category string) bool {
	if s.ShowsAll() {
		return true
	}
	for _, f := range s.ActiveFilters {
		if f == category {
			return true
		}
	}
	return false
}

func (s State) clone() State {
	items := make([]CuratedItem, len(s.Items))
	copy(items, s.Items)
	filters := make([]string, len(s.ActiveFilters))
	copy(filters, s.ActiveFilters)

	s.Items = items
	s.ActiveFilters = filters
	return s
}

package feed

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
)

// Filterer flags the items of an RSS source that its filter rules reject.
// Flagged items stay in the result; ToDocument leaves them out of the
// source document.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

var itemFields = map[string]func(Item) string{
	"title":      func(item Item) string { return item.Title },
	"summary":    func(item Item) string { return item.Summary },
	"link":       func(item Item) string { return item.Link },
	"authors":    func(item Item) string { return strings.Join(item.Authors, " ") },
	"categories": func(item Item) string { return strings.Join(item.Categories, " ") },
}

// sourceRule is a ConfigFilter with its terms case-folded once per run.
type sourceRule struct {
	field    string
	includes []string
	excludes []string
	filter   ConfigFilter
}

func (r sourceRule) verdict(item Item) (string, bool) {
	value := ""
	if get, ok := itemFields[r.field]; ok {
		value = get(item)
	}

	for i, term := range r.excludes {
		if strings.Contains(value, term) {
			return fmt.Sprintf("Excluded by %s filter: contains '%s'", r.field, r.filter.Excludes[i]), true
		}
	}

	if len(r.includes) > 0 && !lo.SomeBy(r.includes, func(term string) bool {
		return strings.Contains(value, term)
	}) {
		return fmt.Sprintf("Excluded by %s filter: does not contain any of %v", r.field, r.filter.Includes), true
	}

	return "", false
}

func (f *Filterer) Run(items []Item, sourceConfig *Config) []Item {
	if len(sourceConfig.Filters) == 0 {
		return items
	}

	// a Caser keeps state and must not be shared across runs
	fold := cases.Fold()
	foldAll := func(terms []string) []string {
		return lo.Map(terms, func(term string, _ int) string { return fold.String(term) })
	}

	rules := lo.Map(sourceConfig.Filters, func(filter ConfigFilter, _ int) sourceRule {
		return sourceRule{
			field:    filter.Field,
			includes: foldAll(filter.Includes),
			excludes: foldAll(filter.Excludes),
			filter:   filter,
		}
	})

	return lo.Map(items, func(item Item, _ int) Item {
		folded := item
		folded.Title = fold.String(item.Title)
		folded.Summary = fold.String(item.Summary)
		folded.Link = fold.String(item.Link)
		folded.Authors = foldAll(item.Authors)
		folded.Categories = foldAll(item.Categories)

		item.IsFiltered, item.FilterReason = false, ""
		for _, rule := range rules {
			if reason, rejected := rule.verdict(folded); rejected {
				item.IsFiltered, item.FilterReason = true, reason
				filteredItems.WithLabelValues(sourceConfig.Name).Inc()
				break
			}
		}
		return item
	})
}

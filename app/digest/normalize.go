package digest

import (
	"encoding/json"
	"strings"
	"unicode"
)

const (
	fieldNewIssuesPRs = "new_issues_prs"
	fieldOverallFocus = "overall_focus"

	focusSuffix = " - Focus"
)

// Normalize converts a feed document into canonical form, where
// `categories` is an array of {title, content, topic} records.
//
// Documents without categories and documents whose categories are already
// an array are returned as is, which makes Normalize idempotent. A mapping
// of categories is converted in key order into a shallow copy of doc; the
// input is never modified. Normalize never fails: values it does not
// recognise are wrapped as single-item categories or skipped.
func Normalize(doc *Document) *Document {
	if doc == nil {
		return nil
	}

	raw, ok := doc.Get(fieldCategories)
	if !ok || isNull(raw) || !isObject(raw) {
		return doc
	}

	var mapping Object
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return doc
	}

	categories := make([]Category, 0, mapping.Len())
	for _, key := range mapping.Keys() {
		value, _ := mapping.Get(key)
		if category, ok := convertCategory(key, value); ok {
			categories = append(categories, category)
		}
	}

	encoded, err := json.Marshal(categories)
	if err != nil {
		return doc
	}

	normalized := doc.Clone()
	normalized.Set(fieldCategories, encoded)
	return normalized
}

// convertCategory maps one entry of a category mapping. Scalars and nulls
// carry no items and are dropped.
func convertCategory(key string, value json.RawMessage) (Category, bool) {
	title := Humanize(key)

	if isArray(value) {
		if items, ok := decodeItems(value); ok {
			return Category{Title: title, Content: items, Topic: key}, true
		}
		return Category{}, false
	}

	if !isObject(value) {
		return Category{}, false
	}

	var nested Object
	if err := json.Unmarshal(value, &nested); err != nil {
		return Category{}, false
	}

	if sub, ok := nested.Get(fieldNewIssuesPRs); ok && isArray(sub) {
		if items, ok := decodeItems(sub); ok {
			return Category{Title: title, Content: items, Topic: key}, true
		}
	}

	if sub, ok := nested.Get(fieldOverallFocus); ok && isArray(sub) {
		if items, ok := decodeItems(sub); ok {
			return Category{Title: title + focusSuffix, Content: items, Topic: key}, true
		}
	}

	return Category{Title: title, Content: []json.RawMessage{value}, Topic: key}, true
}

func decodeItems(raw json.RawMessage) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, true
}

// Humanize turns a category key such as "github_updates" into a title:
// underscores become spaces and the first letter of every
// whitespace-delimited word is upper-cased. Other characters are kept.
func Humanize(key string) string {
	var b strings.Builder
	b.Grow(len(key))

	wordStart := true
	for _, r := range strings.ReplaceAll(key, "_", " ") {
		if unicode.IsSpace(r) {
			wordStart = true
			b.WriteRune(r)
			continue
		}
		if wordStart {
			r = unicode.ToUpper(r)
			wordStart = false
		}
		b.WriteRune(r)
	}

	return b.String()
}

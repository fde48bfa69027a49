package digest

import (
	"encoding/json"
	"fmt"
)

const (
	fieldType         = "type"
	fieldTitle        = "title"
	fieldDate         = "date"
	fieldBriefingDate = "briefing_date"
	fieldCategories   = "categories"
)

// Document is a feed document. Its schema is controlled upstream, so every
// top-level field is kept in order and only the few fields the browser
// understands are decoded on demand.
type Document struct {
	Object
}

// Category is the canonical category record.
type Category struct {
	Title   string            `json:"title"`
	Content []json.RawMessage `json:"content"`
	Topic   string            `json:"topic"`
}

func NewDocument() *Document {
	return &Document{Object: *NewObject()}
}

// ParseDocument decodes a feed document. The root must be a JSON object.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed document: %w", err)
	}
	return &doc, nil
}

func (d *Document) Clone() *Document {
	return &Document{Object: *d.Object.Clone()}
}

func (d *Document) Type() string {
	return d.stringField(fieldType)
}

func (d *Document) Title() string {
	return d.stringField(fieldTitle)
}

func (d *Document) BriefingDate() string {
	return d.stringField(fieldBriefingDate)
}

// Date returns the unix-seconds `date` field when it is a number.
func (d *Document) Date() (int64, bool) {
	raw, ok := d.Get(fieldDate)
	if !ok || isNull(raw) {
		return 0, false
	}
	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err != nil {
		return 0, false
	}
	return int64(seconds), true
}

// Categories decodes the canonical category array. Documents whose
// categories are not an array yet (see Normalize) yield nil. Entries
// that are not objects are skipped and a non-array content becomes empty.
func (d *Document) Categories() []Category {
	raw, ok := d.Get(fieldCategories)
	if !ok || !isArray(raw) {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	categories := make([]Category, 0, len(entries))
	for _, entry := range entries {
		if !isObject(entry) {
			continue
		}

		var loose struct {
			Title   string          `json:"title"`
			Content json.RawMessage `json:"content"`
			Topic   string          `json:"topic"`
		}
		if err := json.Unmarshal(entry, &loose); err != nil {
			// title or topic of an unexpected type
			var fallback Object
			if json.Unmarshal(entry, &fallback) != nil {
				continue
			}
			content, _ := fallback.Get("content")
			loose.Content = content
		}

		category := Category{
			Title:   loose.Title,
			Topic:   loose.Topic,
			Content: []json.RawMessage{},
		}
		if isArray(loose.Content) {
			var items []json.RawMessage
			if err := json.Unmarshal(loose.Content, &items); err == nil {
				category.Content = items
			}
		}
		categories = append(categories, category)
	}

	return categories
}

// FindCategory returns the first canonical category with the given title.
func (d *Document) FindCategory(title string) (Category, bool) {
	for _, category := range d.Categories() {
		if category.Title == title {
			return category, true
		}
	}
	return Category{}, false
}

func (d *Document) stringField(key string) string {
	raw, ok := d.Get(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

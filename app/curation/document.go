package curation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/news-browser/app/archive"
	"github.com/lysyi3m/news-browser/app/digest"
)

const DefaultDocumentType = "dailySummary"

var (
	ErrNothingCurated = errors.New("no items curated yet")
	ErrNoSource       = errors.New("no feed loaded")
)

type curatedCategory struct {
	Title   string            `json:"title"`
	Content []json.RawMessage `json:"content"`
	Topic   string            `json:"topic"`
}

// BuildDocument turns the curated items into a canonical document shaped
// like source. Items are grouped by category in the order the categories
// were first picked, and each item carries its category title.
func BuildDocument(source *digest.Document, items []CuratedItem, now time.Time) (*digest.Document, error) {
	if source == nil {
		return nil, ErrNoSource
	}
	if len(items) == 0 {
		return nil, ErrNothingCurated
	}

	normalized := digest.Normalize(source)

	docType := source.Type()
	if docType == "" {
		docType = DefaultDocumentType
	}
	title := source.Title()
	if title == "" {
		title = "Daily Summary for " + now.UTC().Format(archive.DateLayout)
	}

	var order []string
	grouped := make(map[string][]json.RawMessage)
	for _, item := range items {
		if _, seen := grouped[item.Category]; !seen {
			order = append(order, item.Category)
		}
		tagged, err := withCategory(item)
		if err != nil {
			return nil, err
		}
		grouped[item.Category] = append(grouped[item.Category], tagged)
	}

	categories := make([]curatedCategory, 0, len(order))
	for _, name := range order {
		topic := ""
		if original, ok := normalized.FindCategory(name); ok {
			topic = original.Topic
		}
		categories = append(categories, curatedCategory{
			Title:   name,
			Content: grouped[name],
			Topic:   topic,
		})
	}

	doc := digest.NewDocument()
	if err := doc.SetValue("type", docType); err != nil {
		return nil, err
	}
	if err := doc.SetValue("title", title); err != nil {
		return nil, err
	}
	if err := doc.SetValue("categories", categories); err != nil {
		return nil, err
	}
	if date, ok := source.Get("date"); ok {
		doc.Set("date", date)
	}

	return doc, nil
}

// ItemsFromDocument is the inverse of BuildDocument: it flattens a
// canonical document back into curated items, dropping the category tag
// BuildDocument added.
func ItemsFromDocument(doc *digest.Document) []CuratedItem {
	var items []CuratedItem
	for _, category := range doc.Categories() {
		for _, raw := range category.Content {
			items = append(items, CuratedItem{
				Category: category.Title,
				Item:     withoutCategory(raw),
			})
		}
	}
	return items
}

func withCategory(item CuratedItem) (json.RawMessage, error) {
	var fields digest.Object
	if err := json.Unmarshal(item.Item, &fields); err != nil {
		// not an object, nowhere to put the tag
		return item.Item, nil
	}
	if err := fields.SetValue("category", item.Category); err != nil {
		return nil, fmt.Errorf("failed to tag curated item: %w", err)
	}
	return json.Marshal(fields)
}

func withoutCategory(raw json.RawMessage) json.RawMessage {
	var fields digest.Object
	if err := json.Unmarshal(raw, &fields); err != nil {
		return raw
	}
	if _, ok := fields.Get("category"); !ok {
		return raw
	}

	stripped := digest.NewObject()
	for _, key := range fields.Keys() {
		if key == "category" {
			continue
		}
		value, _ := fields.Get(key)
		stripped.Set(key, value)
	}

	data, err := json.Marshal(stripped)
	if err != nil {
		return raw
	}
	return data
}

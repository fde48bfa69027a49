package digest

import (
	"bytes"
	"encoding/json"
)

// textFields is the order in which item fields are tried for display text.
var textFields = []string{
	"claim",
	"title",
	"summary",
	"text",
	"feedback_summary",
	"insight",
	"observation",
	"event",
	"issue",
}

// DisplayFields is what a card shows for an item.
type DisplayFields struct {
	Text     string   `json:"text"`
	Sources  []string `json:"sources,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// NewsItem is a single entry of a category.
type NewsItem interface {
	DisplayFields() DisplayFields
	Raw() json.RawMessage
}

// ParseItem picks the adapter for the upstream schema the item follows.
// Items that are not JSON objects are shown by their serialized form.
func ParseItem(raw json.RawMessage) NewsItem {
	var fields Object
	if !isObject(raw) || json.Unmarshal(raw, &fields) != nil {
		return &GenericItem{raw: raw}
	}

	if claim := stringValue(fields.values["claim"]); claim != "" {
		return &FactItem{raw: raw, fields: &fields, Claim: claim}
	}

	return &GenericItem{raw: raw, fields: &fields}
}

// ItemText is a shortcut for ParseItem(raw).DisplayFields().Text.
func ItemText(raw json.RawMessage) string {
	return ParseItem(raw).DisplayFields().Text
}

// FactItem is a council fact: {claim, source, ...}.
type FactItem struct {
	Claim string

	raw    json.RawMessage
	fields *Object
}

func (i *FactItem) DisplayFields() DisplayFields {
	return DisplayFields{
		Text:     i.Claim,
		Sources:  sources(i.fields),
		ImageURL: imageURL(i.fields),
	}
}

func (i *FactItem) Raw() json.RawMessage {
	return i.raw
}

// GenericItem covers daily summaries, insights, GitHub updates and any
// record shape not known in advance.
type GenericItem struct {
	raw    json.RawMessage
	fields *Object
}

func (i *GenericItem) DisplayFields() DisplayFields {
	if i.fields == nil {
		return DisplayFields{Text: compact(i.raw)}
	}

	text := ""
	for _, name := range textFields {
		if value := stringValue(i.fields.values[name]); value != "" {
			text = value
			break
		}
	}
	if text == "" {
		text = compact(i.raw)
	}

	return DisplayFields{
		Text:     text,
		Sources:  sources(i.fields),
		ImageURL: imageURL(i.fields),
	}
}

func (i *GenericItem) Raw() json.RawMessage {
	return i.raw
}

// sources reads `source`, falling back to `sources`. A bare string is
// treated as a single source.
func sources(fields *Object) []string {
	for _, name := range []string{"source", "sources"} {
		raw, ok := fields.Get(name)
		if !ok {
			continue
		}
		if s := stringValue(raw); s != "" {
			return []string{s}
		}
		if list, ok := stringList(raw); ok {
			return list
		}
	}
	return nil
}

func imageURL(fields *Object) string {
	if url := stringValue(fields.values["url"]); url != "" {
		return url
	}
	if images, ok := stringList(fields.values["images"]); ok && len(images) > 0 {
		return images[0]
	}
	return ""
}

func stringValue(raw json.RawMessage) string {
	if jsonKind(raw) != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// stringList decodes an array, keeping only its string elements.
func stringList(raw json.RawMessage) ([]string, bool) {
	if !isArray(raw) {
		return nil, false
	}
	var values []json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}
	list := make([]string, 0, len(values))
	for _, value := range values {
		if s := stringValue(value); s != "" {
			list = append(list, s)
		}
	}
	return list, true
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

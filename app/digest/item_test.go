package digest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItem_TextProbeOrder(t *testing.T) {
	tests := []struct {
		name string
		item string
		want string
	}{
		{"claim first", `{"title":"T","claim":"C"}`, "C"},
		{"title before summary", `{"summary":"S","title":"T"}`, "T"},
		{"summary before text", `{"text":"X","summary":"S"}`, "S"},
		{"text", `{"text":"X","insight":"I"}`, "X"},
		{"feedback summary", `{"feedback_summary":"F","issue":"I"}`, "F"},
		{"insight", `{"insight":"I","event":"E"}`, "I"},
		{"observation", `{"observation":"O","issue":"I"}`, "O"},
		{"event", `{"event":"E","issue":"I"}`, "E"},
		{"issue", `{"issue":"I"}`, "I"},
		{"empty strings skipped", `{"claim":"","title":"","text":"X"}`, "X"},
		{"non-string skipped", `{"title":42,"text":"X"}`, "X"},
		{"fallback serialization", `{"a": 1, "b": [true]}`, `{"a":1,"b":[true]}`},
		{"not an object", `"plain"`, `"plain"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ItemText(json.RawMessage(tt.item)))
		})
	}
}

func TestParseItem_SchemaAdapters(t *testing.T) {
	fact := ParseItem(json.RawMessage(`{"claim":"ElizaOS v2 shipped","source":["https://a.example"]}`))
	require.IsType(t, &FactItem{}, fact)
	assert.Equal(t, "ElizaOS v2 shipped", fact.(*FactItem).Claim)

	generic := ParseItem(json.RawMessage(`{"text":"Daily item"}`))
	assert.IsType(t, &GenericItem{}, generic)
	assert.JSONEq(t, `{"text":"Daily item"}`, string(generic.Raw()))
}

func TestDisplayFields_Sources(t *testing.T) {
	tests := []struct {
		name string
		item string
		want []string
	}{
		{"source array", `{"text":"x","source":["a","b"]}`, []string{"a", "b"}},
		{"sources array", `{"text":"x","sources":["c"]}`, []string{"c"}},
		{"source wins", `{"text":"x","source":["a"],"sources":["c"]}`, []string{"a"}},
		{"empty source array wins", `{"text":"x","source":[],"sources":["c"]}`, []string{}},
		{"bare string", `{"text":"x","source":"https://one"}`, []string{"https://one"}},
		{"no sources", `{"text":"x"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseItem(json.RawMessage(tt.item)).DisplayFields().Sources)
		})
	}
}

func TestDisplayFields_Image(t *testing.T) {
	assert.Equal(t, "u.png", ParseItem(json.RawMessage(`{"url":"u.png","images":["i.png"]}`)).DisplayFields().ImageURL)
	assert.Equal(t, "i.png", ParseItem(json.RawMessage(`{"images":["i.png","j.png"]}`)).DisplayFields().ImageURL)
	assert.Equal(t, "", ParseItem(json.RawMessage(`{"images":[]}`)).DisplayFields().ImageURL)
	assert.Equal(t, "", ParseItem(json.RawMessage(`{"claim":"c"}`)).DisplayFields().ImageURL)
}

func TestDisplayDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"briefing today", `{"briefing_date":"2024-03-10"}`, "Today"},
		{"briefing yesterday", `{"briefing_date":"2024-03-09"}`, "Yesterday"},
		{"briefing older", `{"briefing_date":"2024-01-05"}`, "January 5, 2024"},
		{"briefing malformed", `{"briefing_date":"soon"}`, "soon"},
		{"unix date", `{"date":1704067200}`, "January 1, 2024"},
		{"briefing beats date", `{"date":1704067200,"briefing_date":"2024-03-10"}`, "Today"},
		{"title with date", `{"title":"Daily Summary for 2024-02-29"}`, "February 29, 2024"},
		{"title without date", `{"title":"Weekly digest"}`, "Weekly digest"},
		{"nothing", `{"categories":[]}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayDate(mustParse(t, tt.doc), now))
		})
	}
}

func TestValidateCanonical(t *testing.T) {
	assert.NoError(t, ValidateCanonical([]byte(`{"type":"dailySummary","title":"t","categories":[{"title":"A","content":[],"topic":"a"}],"date":1}`)))

	err := ValidateCanonical([]byte(`{"categories":{"a":[]}}`))
	require.Error(t, err)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.NotEmpty(t, schemaErr.Errors)

	err = ValidateCanonical([]byte(`{"categories":[{"title":"A"}]}`))
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, err.Error(), "content")
}

func TestObject_RoundTripKeepsOrderAndDuplicates(t *testing.T) {
	var obj Object
	require.NoError(t, json.Unmarshal([]byte(`{"b":1,"a":{"z":[1,2]},"b":2}`), &obj))

	assert.Equal(t, []string{"b", "a"}, obj.Keys())
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2,"a":{"z":[1,2]}}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &obj))
}

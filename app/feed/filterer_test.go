package feed

import (
	"testing"
)

func TestFilterer_Run_NoFilters(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Test Item 1", Summary: "Test summary"},
		{Title: "Test Item 2", Summary: "Another summary"},
	}

	result := filterer.Run(items, &Config{Name: "test"})

	if len(result) != 2 {
		t.Errorf("Expected 2 items, got %d", len(result))
	}
	for i, item := range result {
		if item.IsFiltered {
			t.Errorf("Item %d should not be filtered when no filters are configured", i)
		}
	}
}

func TestFilterer_Run_TitleIncludeFilter(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Breaking News: Important Update"},
		{Title: "Sports Update"},
		{Title: "Weather Report"},
	}

	sourceConfig := &Config{
		Name: "test",
		Filters: []ConfigFilter{
			{Field: "title", Includes: []string{"news", "update"}},
		},
	}

	result := filterer.Run(items, sourceConfig)

	if len(result) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(result))
	}
	if result[0].IsFiltered || result[1].IsFiltered {
		t.Errorf("Items containing included terms should not be filtered")
	}
	if !result[2].IsFiltered {
		t.Errorf("Third item should be filtered, doesn't contain included terms")
	}
	if result[2].FilterReason == "" {
		t.Errorf("Third item should have filter reason")
	}
}

func TestFilterer_Run_ExcludeWinsOverInclude(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "ElizaOS release notes"},
		{Title: "ElizaOS release spam"},
	}

	sourceConfig := &Config{
		Name: "test",
		Filters: []ConfigFilter{
			{Field: "title", Includes: []string{"release"}, Excludes: []string{"spam"}},
		},
	}

	result := filterer.Run(items, sourceConfig)

	if result[0].IsFiltered {
		t.Errorf("First item should pass")
	}
	if !result[1].IsFiltered {
		t.Errorf("Second item should be excluded")
	}
}

func TestFilterer_Run_Fields(t *testing.T) {
	filterer := NewFilterer()

	item := Item{
		Title:      "Title",
		Summary:    "Plugin loader rewritten",
		Link:       "https://github.com/elizaos/eliza/pull/1",
		Authors:    []string{"shaw"},
		Categories: []string{"Release", "Core"},
	}

	tests := map[string]string{
		"summary":    "loader",
		"link":       "github.com",
		"authors":    "SHAW",
		"categories": "core",
	}

	for field, include := range tests {
		sourceConfig := &Config{
			Name:    "test",
			Filters: []ConfigFilter{{Field: field, Includes: []string{include}}},
		}
		if result := filterer.Run([]Item{item}, sourceConfig); result[0].IsFiltered {
			t.Errorf("Expected %s filter with %q to match: %s", field, include, result[0].FilterReason)
		}
	}
}

func TestFilterer_Run_CaseFolding(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{{Title: "STRASSE news"}, {Title: "Straße news"}}

	sourceConfig := &Config{
		Name:    "test",
		Filters: []ConfigFilter{{Field: "title", Excludes: []string{"strasse"}}},
	}

	result := filterer.Run(items, sourceConfig)
	for i, item := range result {
		if !item.IsFiltered {
			t.Errorf("Item %d should be excluded by case-folded match", i)
		}
	}
}

func TestFilterer_Run_UnknownField(t *testing.T) {
	filterer := NewFilterer()

	sourceConfig := &Config{
		Name:    "test",
		Filters: []ConfigFilter{{Field: "unknown", Includes: []string{"x"}}},
	}

	result := filterer.Run([]Item{{Title: "x"}}, sourceConfig)
	if !result[0].IsFiltered {
		t.Errorf("An include on an unknown field never matches")
	}
}

func TestFilterer_Run_KeepsOriginalText(t *testing.T) {
	filterer := NewFilterer()

	sourceConfig := &Config{
		Name:    "test",
		Filters: []ConfigFilter{{Field: "title", Excludes: []string{"Airdrop"}}},
	}

	result := filterer.Run([]Item{{Title: "Free AIRDROP today"}, {Title: "Release v2"}}, sourceConfig)

	if result[0].Title != "Free AIRDROP today" {
		t.Errorf("Filtering must not change item text, got %q", result[0].Title)
	}
	if result[0].FilterReason != "Excluded by title filter: contains 'Airdrop'" {
		t.Errorf("Unexpected reason %q", result[0].FilterReason)
	}
	if result[1].IsFiltered || result[1].FilterReason != "" {
		t.Errorf("Second item should pass, got %q", result[1].FilterReason)
	}
}

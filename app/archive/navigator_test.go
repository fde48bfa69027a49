package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDates() []DateEntry {
	return []DateEntry{
		{Date: "2024-01-03", Filename: "2024-01-03.json", URL: "https://example.com/2024-01-03.json"},
		{Date: "2024-01-02", Filename: "2024-01-02.json", URL: "https://example.com/2024-01-02.json"},
		{Date: "2024-01-01", Filename: "2024-01-01.json", URL: "https://example.com/2024-01-01.json"},
	}
}

func TestNavigator_FromToday(t *testing.T) {
	nav := NewNavigator(sampleDates(), Today())

	prev, ok := nav.Previous()
	require.True(t, ok)
	assert.Equal(t, "2024-01-03", prev.Date())

	_, ok = nav.Next()
	assert.False(t, ok)
	assert.False(t, nav.CanGoNext())
	assert.True(t, nav.CanGoPrevious())
}

func TestNavigator_MidList(t *testing.T) {
	nav := NewNavigator(sampleDates(), Historical(sampleDates()[1]))

	prev, ok := nav.Previous()
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", prev.Date())

	next, ok := nav.Next()
	require.True(t, ok)
	assert.Equal(t, "2024-01-03", next.Date())
	entry, ok := next.Entry()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/2024-01-03.json", entry.URL)
}

func TestNavigator_NewestCrossesIntoToday(t *testing.T) {
	nav := NewNavigator(sampleDates(), Historical(sampleDates()[0]))

	next, ok := nav.Next()
	require.True(t, ok)
	assert.True(t, next.IsToday())
	assert.Equal(t, TodayMarker, next.String())
}

func TestNavigator_OldestHasNoPrevious(t *testing.T) {
	nav := NewNavigator(sampleDates(), Historical(sampleDates()[2]))

	_, ok := nav.Previous()
	assert.False(t, ok)
	assert.False(t, nav.CanGoPrevious())
	assert.True(t, nav.CanGoNext())
}

func TestNavigator_EmptyList(t *testing.T) {
	nav := NewNavigator(nil, Today())

	_, ok := nav.Previous()
	assert.False(t, ok)
	_, ok = nav.Next()
	assert.False(t, ok)
	assert.False(t, nav.CanGoPrevious())
	assert.False(t, nav.CanGoNext())
}

func TestNavigator_SingleEntry(t *testing.T) {
	dates := []DateEntry{{Date: "2024-05-01"}}
	nav := NewNavigator(dates, Today())

	prev, ok := nav.Previous()
	require.True(t, ok)
	assert.Equal(t, "2024-05-01", prev.Date())

	nav = nav.MoveTo(prev)
	_, ok = nav.Previous()
	assert.False(t, ok)
	next, ok := nav.Next()
	require.True(t, ok)
	assert.True(t, next.IsToday())
}

func TestNavigator_UnknownHistoricalGoesNowhere(t *testing.T) {
	nav := NewNavigator(sampleDates(), Historical(DateEntry{Date: "2023-12-31"}))

	assert.False(t, nav.CanGoPrevious())
	assert.False(t, nav.CanGoNext())
}

func TestNavigator_CanGoMatchesStepForAllReachableStates(t *testing.T) {
	lists := [][]DateEntry{nil, {{Date: "2024-05-01"}}, sampleDates()}

	for _, dates := range lists {
		states := []Position{Today()}
		for _, entry := range dates {
			states = append(states, Historical(entry))
		}

		for _, state := range states {
			nav := NewNavigator(dates, state)
			_, prevOK := nav.Previous()
			_, nextOK := nav.Next()
			assert.Equal(t, prevOK, nav.CanGoPrevious(), "previous from %s", state)
			assert.Equal(t, nextOK, nav.CanGoNext(), "next from %s", state)
		}
	}
}

func TestNavigator_WalkWholeArchiveAndBack(t *testing.T) {
	nav := NewNavigator(sampleDates(), Today())

	var visited []string
	for nav.CanGoPrevious() {
		prev, _ := nav.Previous()
		nav = nav.MoveTo(prev)
		visited = append(visited, prev.Date())
	}
	assert.Equal(t, []string{"2024-01-03", "2024-01-02", "2024-01-01"}, visited)

	steps := 0
	for nav.CanGoNext() {
		next, _ := nav.Next()
		nav = nav.MoveTo(next)
		steps++
	}
	assert.Equal(t, 3, steps)
	assert.True(t, nav.Current().IsToday())
}

func TestNavigator_IndexOf(t *testing.T) {
	nav := NewNavigator(sampleDates(), Today())

	assert.Equal(t, 0, nav.IndexOf("2024-01-03"))
	assert.Equal(t, 2, nav.IndexOf("2024-01-01"))
	assert.Equal(t, -1, nav.IndexOf("2024-02-01"))
}

func TestNavigator_Resolve(t *testing.T) {
	nav := NewNavigator(sampleDates(), Today())

	assert.True(t, nav.Resolve("", "2024-01-04").IsToday())
	assert.True(t, nav.Resolve("today", "2024-01-04").IsToday())
	assert.True(t, nav.Resolve("2024-01-04", "2024-01-04").IsToday())
	assert.True(t, nav.Resolve("2023-06-01", "2024-01-04").IsToday())
	assert.Equal(t, "2024-01-02", nav.Resolve("2024-01-02", "2024-01-04").Date())

	// today's date resolves to the live feed even once it is archived
	assert.True(t, nav.Resolve("2024-01-03", "2024-01-03").IsToday())
}

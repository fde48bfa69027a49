package archive

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

var snapshotNamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.json$`)

// JSONFetcher is satisfied by feed.Fetcher.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, url string, v any) error
}

// ListingEntry is one element of a directory listing in the GitHub
// contents API format.
type ListingEntry struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Lister builds the archive date list from a remote directory listing.
type Lister struct {
	fetcher    JSONFetcher
	listingURL string
	baseURL    string
}

func NewLister(fetcher JSONFetcher, listingURL, baseURL string) *Lister {
	return &Lister{
		fetcher:    fetcher,
		listingURL: listingURL,
		baseURL:    baseURL,
	}
}

// List fetches the listing and returns the archived dates newest first.
func (l *Lister) List(ctx context.Context) ([]DateEntry, error) {
	var listing []ListingEntry
	if err := l.fetcher.FetchJSON(ctx, l.listingURL, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch archive listing: %w", err)
	}

	return BuildEntries(listing, l.baseURL), nil
}

// BuildEntries keeps the YYYY-MM-DD.json files of a listing and returns
// them sorted newest first without duplicate dates.
func BuildEntries(listing []ListingEntry, baseURL string) []DateEntry {
	entries := lo.FilterMap(listing, func(item ListingEntry, _ int) (DateEntry, bool) {
		if item.Type != "file" {
			return DateEntry{}, false
		}
		match := snapshotNamePattern.FindStringSubmatch(item.Name)
		if match == nil || !IsDate(match[1]) {
			return DateEntry{}, false
		}
		return DateEntry{
			Date:     match[1],
			Filename: item.Name,
			URL:      strings.TrimSuffix(baseURL, "/") + "/" + item.Name,
		}, true
	})

	entries = lo.UniqBy(entries, func(entry DateEntry) string {
		return entry.Date
	})

	// zero-padded dates order lexically like the calendar
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})

	return entries
}

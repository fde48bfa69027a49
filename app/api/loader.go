package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-browser/app/archive"
	"github.com/lysyi3m/news-browser/app/database"
	"github.com/lysyi3m/news-browser/app/digest"
	"github.com/lysyi3m/news-browser/app/feed"
)

var errArchiveDates = errors.New("failed to read archive dates")

type loadedDocument struct {
	doc          *digest.Document
	fromSnapshot bool
	fetchedAt    time.Time
}

// documentSource returns the snapshot key and URL of the document shown at
// position.
func (h *Handler) documentSource(position archive.Position) (string, string) {
	entry, ok := position.Entry()
	if !ok {
		return archive.TodayMarker, h.opts.FeedURL
	}
	if entry.URL != "" {
		return entry.Date, entry.URL
	}
	return entry.Date, archive.EntryURL(h.opts.ArchiveBaseURL, entry.Date)
}

// loadDocument fetches the document at position and keeps a snapshot of
// it. When the upstream fails the last snapshot is served instead.
func (h *Handler) loadDocument(ctx context.Context, position archive.Position) (*loadedDocument, error) {
	key, url := h.documentSource(position)

	doc, err := h.fetchDocument(ctx, key, url)
	if err == nil {
		return doc, nil
	}

	if h.snapshotRepo == nil {
		return nil, err
	}

	snapshot, snapErr := h.snapshotRepo.GetSnapshot(key)
	if snapErr != nil {
		slog.Error("Database error", "operation", "get_snapshot", "key", key, "error", snapErr)
		return nil, err
	}
	if snapshot == nil {
		return nil, err
	}

	stored, parseErr := digest.ParseDocument(snapshot.Body)
	if parseErr != nil {
		slog.Error("Stored snapshot is corrupt", "key", key, "error", parseErr)
		return nil, err
	}

	slog.Warn("Serving stored snapshot", "key", key, "fetched_at", snapshot.FetchedAt, "error", err)
	snapshotFallbacks.Inc()

	return &loadedDocument{doc: stored, fromSnapshot: true, fetchedAt: snapshot.FetchedAt}, nil
}

func (h *Handler) fetchDocument(ctx context.Context, key, url string) (*loadedDocument, error) {
	data, err := h.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := digest.ParseDocument(data)
	if err != nil {
		return nil, &feed.FetchError{URL: url, StatusCode: 200, Message: "invalid feed document", Cause: err}
	}

	now := h.now()
	if h.snapshotRepo != nil {
		err := h.snapshotRepo.UpsertSnapshot(database.Snapshot{Key: key, URL: url, Body: data, FetchedAt: now})
		if err != nil {
			slog.Warn("Failed to store snapshot", "key", key, "error", err)
		}
	}

	return &loadedDocument{doc: doc, fetchedAt: now}, nil
}

// archiveDates returns the stored archive dates, listing the archive when
// nothing has been stored yet.
func (h *Handler) archiveDates(ctx context.Context) ([]archive.DateEntry, error) {
	dates, err := h.archiveRepo.GetDates()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errArchiveDates, err)
	}
	if len(dates) > 0 || h.lister == nil {
		return dates, nil
	}

	if err := h.listing.pending(h.now()); err != nil {
		return nil, err
	}

	dates, err = h.lister.List(ctx)
	if err != nil {
		h.listing.failed(err, h.now())
		return nil, err
	}

	if len(dates) > 0 {
		if err := h.archiveRepo.ReplaceDates(dates, h.now()); err != nil {
			slog.Warn("Failed to store archive dates", "error", err)
		}
	}

	return dates, nil
}

// navigator builds the archive navigator for the session position. The
// live feed does not depend on the archive, so when the dates cannot be
// listed the navigator is empty rather than failing the request.
func (h *Handler) navigator(ctx context.Context) (archive.Navigator, error) {
	position := h.store.State().Position

	dates, err := h.archiveDates(ctx)
	if err != nil {
		if errors.Is(err, errArchiveDates) {
			return archive.Navigator{}, err
		}
		slog.Warn("Archive listing unavailable, navigating without dates", "error", err)
		return archive.NewNavigator(nil, position), nil
	}
	return archive.NewNavigator(dates, position), nil
}

const listingRetryDelay = time.Minute

// listingBackoff remembers a failed archive listing so that requests made
// while nothing is stored do not list the archive again until retryAt.
type listingBackoff struct {
	mu      sync.Mutex
	err     error
	retryAt time.Time
}

func (b *listingBackoff) pending(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil && now.Before(b.retryAt) {
		return b.err
	}
	return nil
}

func (b *listingBackoff) failed(err error, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
	b.retryAt = now.Add(listingRetryDelay)
}

func (h *Handler) today() string {
	return archive.CurrentDate(h.now(), h.opts.DayOffset)
}

func (h *Handler) navigationResponse(nav archive.Navigator) NavigationResponse {
	current := nav.Current()

	response := NavigationResponse{
		Current:       current.String(),
		Label:         "Today",
		Today:         h.today(),
		CanGoPrevious: nav.CanGoPrevious(),
		CanGoNext:     nav.CanGoNext(),
	}
	if !current.IsToday() {
		response.Label = archive.FormatShort(current.Date())
	}
	if previous, ok := nav.Previous(); ok {
		response.Previous = previous.String()
	}
	if next, ok := nav.Next(); ok {
		response.Next = next.String()
	}

	return response
}

package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lysyi3m/news-browser/app/archive"
	"github.com/lysyi3m/news-browser/app/curation"
	"github.com/lysyi3m/news-browser/app/database"
	"github.com/lysyi3m/news-browser/app/digest"
	"github.com/lysyi3m/news-browser/app/feed"
	"github.com/lysyi3m/news-browser/app/tasks"
)

type GeneratorInterface interface {
	Run(channel feed.Channel, doc *digest.Document) (string, error)
}

type FetcherInterface interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type PreviewerInterface interface {
	Run(ctx context.Context, pageURL string) (*feed.Preview, error)
}

type ListerInterface interface {
	List(ctx context.Context) ([]archive.DateEntry, error)
}

var (
	_ GeneratorInterface = (*feed.Generator)(nil)
	_ FetcherInterface   = (*feed.Fetcher)(nil)
	_ PreviewerInterface = (*feed.Previewer)(nil)
	_ ListerInterface    = (*archive.Lister)(nil)
)

type Dependencies struct {
	Store        *curation.Store
	Fetcher      FetcherInterface
	Previewer    PreviewerInterface
	Generator    GeneratorInterface
	Lister       ListerInterface
	ConfigCache  *feed.ConfigCache
	Scheduler    tasks.TaskSchedulerInterface
	CurationRepo database.CurationRepository
	ArchiveRepo  database.ArchiveRepository
	SnapshotRepo database.SnapshotRepository
	SourceRepo   database.SourceRepository
}

type Options struct {
	FeedURL        string
	ArchiveBaseURL string
	DayOffset      int
	BaseURL        string
	Version        string
	APIAccessKey   string
}

type Handler struct {
	store        *curation.Store
	fetcher      FetcherInterface
	previewer    PreviewerInterface
	generator    GeneratorInterface
	lister       ListerInterface
	configCache  *feed.ConfigCache
	scheduler    tasks.TaskSchedulerInterface
	curationRepo database.CurationRepository
	archiveRepo  database.ArchiveRepository
	snapshotRepo database.SnapshotRepository
	sourceRepo   database.SourceRepository
	opts         Options
	now          func() time.Time
	listing      listingBackoff
}

type NavigationResponse struct {
	Current       string `json:"current"`
	Label         string `json:"label"`
	Today         string `json:"today"`
	Previous      string `json:"previous,omitempty"`
	Next          string `json:"next,omitempty"`
	CanGoPrevious bool   `json:"can_go_previous"`
	CanGoNext     bool   `json:"can_go_next"`
}

type FeedResponse struct {
	DisplayDate  string             `json:"display_date"`
	Navigation   NavigationResponse `json:"navigation"`
	Document     *digest.Document   `json:"document"`
	FromSnapshot bool               `json:"from_snapshot"`
	FetchedAt    time.Time          `json:"fetched_at"`
}

type ItemView struct {
	digest.DisplayFields
	Curated bool            `json:"curated"`
	Item    json.RawMessage `json:"item"`
}

type CategoryView struct {
	Title string     `json:"title"`
	Topic string     `json:"topic,omitempty"`
	Items []ItemView `json:"items"`
}

type SearchResponse struct {
	Query         string         `json:"query"`
	ActiveFilters []string       `json:"active_filters"`
	Categories    []CategoryView `json:"categories"`
	Total         int            `json:"total"`
}

type CuratedItemView struct {
	Index    int             `json:"index"`
	Category string          `json:"category"`
	Text     string          `json:"text"`
	Item     json.RawMessage `json:"item"`
}

type CuratedResponse struct {
	Items []CuratedItemView `json:"items"`
	Count int               `json:"count"`
}

type OutcomeResponse struct {
	curation.Outcome
	Count int `json:"count"`
}

type addCuratedRequest struct {
	Category string          `json:"category" binding:"required"`
	Item     json.RawMessage `json:"item" binding:"required"`
}

type selectDateRequest struct {
	Date string `json:"date" binding:"required"`
}

type searchRequest struct {
	Term string `json:"term"`
}

type toggleCategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

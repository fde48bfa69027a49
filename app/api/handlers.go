package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-browser/app/archive"
	"github.com/lysyi3m/news-browser/app/curation"
	"github.com/lysyi3m/news-browser/app/digest"
	"github.com/lysyi3m/news-browser/app/feed"
)

func NewHandler(deps Dependencies, opts Options) *Handler {
	generator := deps.Generator
	if generator == nil {
		generator = feed.NewGenerator(opts.Version)
	}
	store := deps.Store
	if store == nil {
		store = curation.NewStore(curation.NewState())
	}

	return &Handler{
		store:        store,
		fetcher:      deps.Fetcher,
		previewer:    deps.Previewer,
		generator:    generator,
		lister:       deps.Lister,
		configCache:  deps.ConfigCache,
		scheduler:    deps.Scheduler,
		curationRepo: deps.CurationRepo,
		archiveRepo:  deps.ArchiveRepo,
		snapshotRepo: deps.SnapshotRepo,
		sourceRepo:   deps.SourceRepo,
		opts:         opts,
		now:          time.Now,
	}
}

func (h *Handler) respondError(c *gin.Context, operation string, err error) {
	var fetchErr *feed.FetchError
	if errors.As(err, &fetchErr) {
		slog.Error("Upstream fetch failed", "operation", operation, "url", fetchErr.URL, "status", fetchErr.StatusCode, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Upstream fetch failed",
			"message": err.Error(),
		})
		return
	}

	slog.Error("Request failed", "operation", operation, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal error",
		"message": err.Error(),
	})
}

// requestPosition resolves the optional date query parameter. Without one
// the session position is used.
func (h *Handler) requestPosition(c *gin.Context, nav archive.Navigator) (archive.Position, bool) {
	date, ok := c.GetQuery("date")
	if !ok {
		return nav.Current(), true
	}

	date = strings.TrimSpace(date)
	if date != "" && date != archive.TodayMarker && !archive.IsDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid date",
			"message": "Use YYYY-MM-DD or \"today\"",
		})
		return archive.Position{}, false
	}

	return nav.Resolve(date, h.today()), true
}

func (h *Handler) GetFeed(c *gin.Context) {
	nav, err := h.navigator(c.Request.Context())
	if err != nil {
		h.respondError(c, "list_dates", err)
		return
	}

	position, ok := h.requestPosition(c, nav)
	if !ok {
		return
	}

	loaded, err := h.loadDocument(c.Request.Context(), position)
	if err != nil {
		h.respondError(c, "load_feed", err)
		return
	}

	normalized := digest.Normalize(loaded.doc)

	c.Header("X-Feed-Date", position.String())
	if loaded.fromSnapshot {
		c.Header("X-Feed-Source", "snapshot")
	}

	c.JSON(http.StatusOK, FeedResponse{
		DisplayDate:  digest.DisplayDate(normalized, h.now()),
		Navigation:   h.navigationResponse(nav.MoveTo(position)),
		Document:     normalized,
		FromSnapshot: loaded.fromSnapshot,
		FetchedAt:    loaded.fetchedAt,
	})
}

func (h *Handler) GetDates(c *gin.Context) {
	dates, err := h.archiveDates(c.Request.Context())
	if err != nil {
		h.respondError(c, "list_dates", err)
		return
	}

	type dateView struct {
		archive.DateEntry
		Label string `json:"label"`
	}

	views := make([]dateView, 0, len(dates))
	for _, entry := range dates {
		views = append(views, dateView{DateEntry: entry, Label: archive.FormatShort(entry.Date)})
	}

	response := gin.H{
		"dates": views,
		"today": h.today(),
		"total": len(views),
	}
	if listedAt, err := h.archiveRepo.GetListedAt(); err == nil && listedAt != nil {
		response["listed_at"] = listedAt
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetNavigation(c *gin.Context) {
	nav, err := h.navigator(c.Request.Context())
	if err != nil {
		h.respondError(c, "list_dates", err)
		return
	}

	position, ok := h.requestPosition(c, nav)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.navigationResponse(nav.MoveTo(position)))
}

func (h *Handler) APINavigate(c *gin.Context) {
	direction := c.Param("direction")

	nav, err := h.navigator(c.Request.Context())
	if err != nil {
		h.respondError(c, "list_dates", err)
		return
	}

	var action curation.Action
	switch direction {
	case string(curation.Older), string(curation.Newer):
		action = curation.Step{Dates: nav.Dates(), Direction: curation.Direction(direction)}
	case archive.TodayMarker:
		action = curation.Navigate{Position: archive.Today()}
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown navigation direction"})
		return
	}

	state, outcome := h.store.Apply(action)
	nav = nav.MoveTo(state.Position)

	if !outcome.Changed {
		c.JSON(http.StatusConflict, gin.H{
			"error":      "Cannot navigate",
			"message":    outcome.Message,
			"navigation": h.navigationResponse(nav),
		})
		return
	}

	navigations.WithLabelValues(direction).Inc()

	c.JSON(http.StatusOK, h.navigationResponse(nav))
}

func (h *Handler) APISelectDate(c *gin.Context) {
	var req selectDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}

	date := strings.TrimSpace(req.Date)
	if date != archive.TodayMarker && !archive.IsDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "message": "Use YYYY-MM-DD or \"today\""})
		return
	}

	nav, err := h.navigator(c.Request.Context())
	if err != nil {
		h.respondError(c, "list_dates", err)
		return
	}

	target := nav.Resolve(date, h.today())
	h.store.Dispatch(curation.Navigate{Position: target})
	navigations.WithLabelValues("select").Inc()

	c.JSON(http.StatusOK, h.navigationResponse(nav.MoveTo(target)))
}

func (h *Handler) GetSearch(c *gin.Context) {
	nav, err := h.navigator(c.Request.Context())
	if err != nil {
		h.respondError(c, "list_dates", err)
		return
	}

	position, ok := h.requestPosition(c, nav)
	if !ok {
		return
	}

	state := h.store.State()
	if q, ok := c.GetQuery("q"); ok {
		state.SearchTerm = strings.TrimSpace(q)
	}
	if categories := c.QueryArray("category"); len(categories) > 0 {
		state.ActiveFilters = categories
	}

	loaded, err := h.loadDocument(c.Request.Context(), position)
	if err != nil {
		h.respondError(c, "load_feed", err)
		return
	}

	curatedTexts := make(map[string]bool, len(state.Items))
	for _, item := range state.Items {
		curatedTexts[item.Text()] = true
	}

	visible := curation.Visible(digest.Normalize(loaded.doc).Categories(), state)

	total := 0
	views := make([]CategoryView, 0, len(visible))
	for _, category := range visible {
		items := make([]ItemView, 0, len(category.Content))
		for _, raw := range category.Content {
			fields := digest.ParseItem(raw).DisplayFields()
			items = append(items, ItemView{
				DisplayFields: fields,
				Curated:       curatedTexts[fields.Text],
				Item:          raw,
			})
		}
		total += len(items)
		views = append(views, CategoryView{Title: category.Title, Topic: category.Topic, Items: items})
	}

	c.JSON(http.StatusOK, SearchResponse{
		Query:         state.SearchTerm,
		ActiveFilters: state.ActiveFilters,
		Categories:    views,
		Total:         total,
	})
}

func (h *Handler) APISetSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}

	h.store.Dispatch(curation.SetSearch{Term: req.Term})
	h.respondFilters(c)
}

func (h *Handler) APIToggleCategory(c *gin.Context) {
	var req toggleCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}

	h.store.Dispatch(curation.ToggleCategory{Category: req.Category})
	h.respondFilters(c)
}

func (h *Handler) APIShowAllCategories(c *gin.Context) {
	h.store.Dispatch(curation.ShowAllCategories{})
	h.respondFilters(c)
}

func (h *Handler) respondFilters(c *gin.Context) {
	state := h.store.State()
	c.JSON(http.StatusOK, gin.H{
		"active_filters": state.ActiveFilters,
		"search_term":    state.SearchTerm,
	})
}

func (h *Handler) GetPreview(c *gin.Context) {
	pageURL := c.Query("url")
	if pageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	preview, err := h.previewer.Run(c.Request.Context(), pageURL)
	if err != nil {
		if errors.Is(err, feed.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL", "message": err.Error()})
			return
		}
		if errors.Is(err, feed.ErrBlockedAddress) {
			c.JSON(http.StatusForbidden, gin.H{"error": "URL not allowed", "message": "Previews are limited to public hosts"})
			return
		}
		h.respondError(c, "preview", err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": h.now().In(time.Local).Format(time.RFC3339),
		"version":   h.opts.Version,
		"today":     h.today(),
		"position":  h.store.State().Position.String(),
	}

	if dates, err := h.archiveRepo.GetDates(); err == nil {
		health["archive_dates"] = len(dates)
	}

	if h.sourceRepo != nil {
		if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
			health["sources"] = sourceCount
		}
	}

	if h.configCache != nil {
		health["loaded_configurations"] = h.configCache.GetConfigCount()
	}

	health["curated_items"] = len(h.store.State().Items)

	c.JSON(http.StatusOK, health)
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-browser/app/curation"
	"github.com/lysyi3m/news-browser/app/digest"
	"github.com/lysyi3m/news-browser/app/feed"
)

func (h *Handler) GetCurated(c *gin.Context) {
	state := h.store.State()

	views := make([]CuratedItemView, 0, len(state.Items))
	for i, item := range state.Items {
		views = append(views, CuratedItemView{
			Index:    i,
			Category: item.Category,
			Text:     item.Text(),
			Item:     item.Item,
		})
	}

	c.JSON(http.StatusOK, CuratedResponse{Items: views, Count: len(views)})
}

func (h *Handler) respondOutcome(c *gin.Context, status int, outcome curation.Outcome) {
	c.JSON(status, OutcomeResponse{Outcome: outcome, Count: len(h.store.State().Items)})
}

func (h *Handler) APIAddCurated(c *gin.Context) {
	var req addCuratedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}

	outcome := h.store.Dispatch(curation.AddItem{Item: curation.CuratedItem{
		Category: req.Category,
		Item:     req.Item,
	}})

	status := http.StatusCreated
	if !outcome.Changed {
		status = http.StatusConflict
	}
	h.respondOutcome(c, status, outcome)
}

func (h *Handler) APIRemoveCurated(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.respondOutcome(c, http.StatusBadRequest, curation.Outcome{Message: curation.MsgInvalidIndex})
		return
	}

	outcome := h.store.Dispatch(curation.RemoveItem{Index: index})

	status := http.StatusOK
	if !outcome.Changed {
		status = http.StatusBadRequest
	}
	h.respondOutcome(c, status, outcome)
}

func (h *Handler) APIClearCurated(c *gin.Context) {
	outcome := h.store.Dispatch(curation.ClearItems{})
	h.respondOutcome(c, http.StatusOK, outcome)
}

func (h *Handler) APISaveCurated(c *gin.Context) {
	items := h.store.State().Items

	if err := h.curationRepo.SaveItems(curation.StorageKey, items, h.now()); err != nil {
		slog.Error("Database error", "operation", "save_curated", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save curated items", "message": err.Error()})
		return
	}

	slog.Info("Curated items saved", "count", len(items))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"saved":   len(items),
	})
}

// curatedDocument builds the curated document against the feed the user
// is looking at, or the one named by the date query parameter.
func (h *Handler) curatedDocument(c *gin.Context) (*digest.Document, string, bool) {
	nav, err := h.navigator(c.Request.Context())
	if err != nil {
		h.respondError(c, "list_dates", err)
		return nil, "", false
	}

	position, ok := h.requestPosition(c, nav)
	if !ok {
		return nil, "", false
	}

	state := h.store.State()
	if len(state.Items) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Nothing curated", "message": curation.ErrNothingCurated.Error()})
		return nil, "", false
	}

	loaded, err := h.loadDocument(c.Request.Context(), position)
	if err != nil {
		h.respondError(c, "load_feed", err)
		return nil, "", false
	}

	doc, err := curation.BuildDocument(loaded.doc, state.Items, h.now())
	if err != nil {
		h.respondError(c, "build_curated_document", err)
		return nil, "", false
	}

	label := position.Date()
	if label == "" {
		label = h.today()
	}

	return doc, label, true
}

func (h *Handler) GetCuratedDocument(c *gin.Context) {
	doc, label, ok := h.curatedDocument(c)
	if !ok {
		return
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		h.respondError(c, "encode_curated_document", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="curated-news-`+label+`.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *Handler) GetCuratedRSS(c *gin.Context) {
	doc, _, ok := h.curatedDocument(c)
	if !ok {
		return
	}

	baseURL := strings.TrimSuffix(h.opts.BaseURL, "/")
	channel := feed.Channel{
		Link:        baseURL + "/",
		SelfLink:    baseURL + "/api/curated/rss",
		PublishedAt: h.now(),
	}

	rss, err := h.generator.Run(channel, doc)
	if err != nil {
		h.respondError(c, "generate_rss", err)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(h.store.State().Items)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) APIImportCurated(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body", "message": err.Error()})
		return
	}

	if err := digest.ValidateCanonical(data); err != nil {
		response := gin.H{"error": "Invalid curated document", "message": err.Error()}
		var schemaErr *digest.SchemaError
		if errors.As(err, &schemaErr) {
			response["details"] = schemaErr.Errors
		}
		c.JSON(http.StatusBadRequest, response)
		return
	}

	doc, err := digest.ParseDocument(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid curated document", "message": err.Error()})
		return
	}

	items := curation.ItemsFromDocument(doc)
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid curated document", "message": "document contains no items"})
		return
	}

	outcome := h.store.Dispatch(curation.ReplaceItems{Items: items})
	h.respondOutcome(c, http.StatusOK, outcome)
}

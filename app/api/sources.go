package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-browser/app/database"
)

// GetSource serves the canonical document last built from an RSS source.
func (h *Handler) GetSource(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	snapshot, err := h.snapshotRepo.GetSnapshot(database.SourceSnapshotKey(name))
	if err != nil {
		slog.Error("Database error", "operation", "get_snapshot", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not synced yet"})
		return
	}

	c.Header("X-Source-Name", name)
	c.Header("X-Last-Updated", snapshot.FetchedAt.Format(time.RFC3339))
	c.Data(http.StatusOK, "application/json; charset=utf-8", snapshot.Body)
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sources := make([]map[string]interface{}, 0, len(configs))

	for _, name := range h.configCache.Names() {
		sourceConfig, ok := configs[name]
		if !ok {
			continue
		}

		sourceInfo := map[string]interface{}{
			"name":             sourceConfig.Name,
			"url":              sourceConfig.URL,
			"title":            sourceConfig.Title,
			"enabled":          sourceConfig.Settings.Enabled,
			"max_items":        sourceConfig.Settings.MaxItems,
			"refresh_interval": (time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second).String(),
			"filters":          len(sourceConfig.Filters),
		}

		if source, err := h.sourceRepo.GetSource(name); err == nil && source != nil {
			if source.Title != "" {
				sourceInfo["title"] = source.Title
			}
			sourceInfo["last_fetched_at"] = source.LastFetchedAt
			sourceInfo["next_fetch_at"] = source.NextFetchAt
			sourceInfo["updated_at"] = source.UpdatedAt
		}

		sources = append(sources, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIReloadSource(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	sourceConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	enqueued, err := h.scheduler.SyncSource(sourceConfig)
	if err != nil {
		slog.Error("Error enqueueing source tasks", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue source tasks",
			"details": err.Error(),
		})
		return
	}

	taskList := make([]gin.H, 0, len(enqueued))
	for _, task := range enqueued {
		taskList = append(taskList, gin.H{
			"id":   task.Meta().ID,
			"type": task.Meta().Type,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and tasks enqueued successfully",
		"source": gin.H{
			"name": name,
			"url":  sourceConfig.URL,
		},
		"tasks": taskList,
	})
}

package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedherald/feedherald/app/config"
	"github.com/feedherald/feedherald/app/database"
)

type Handler struct {
	feeds     *config.Loader
	itemRepo  database.ItemRepository
	version   string
	startedAt time.Time
}

func NewHandler(feeds *config.Loader, itemRepo database.ItemRepository, version string) *Handler {
	return &Handler{
		feeds:     feeds,
		itemRepo:  itemRepo,
		version:   version,
		startedAt: time.Now(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"version":   h.version,
		"feeds":     len(h.feeds.Load()),
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if count, err := h.itemRepo.GetItemCount(); err == nil {
		stats["items_seen"] = count
	} else {
		slog.Error("Database error", "operation", "get_item_count", "error", err)
	}

	if count, err := h.itemRepo.GetNotificationCount(); err == nil {
		stats["notifications_sent"] = count
	} else {
		slog.Error("Database error", "operation", "get_notification_count", "error", err)
	}

	stats["feeds"] = len(h.feeds.Load())

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetNotifications(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.Status(http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	notifications, err := h.itemRepo.GetRecentNotifications(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_notifications", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	out := make([]map[string]interface{}, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, map[string]interface{}{
			"feed":        n.FeedURL,
			"group_title": n.GroupTitle,
			"item_count":  n.ItemCount,
			"sent_at":     n.SentAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"railbook/internal/models"

	"github.com/gin-gonic/gin"
)

// Queue handlers

func (h *Handlers) listQueue(c *gin.Context, kind models.QueueKind) {
	trainParam := c.Query("train_id")
	routeParam := c.Query("route_id")

	// without filters the whole tier is listed
	if trainParam == "" && routeParam == "" {
		views, err := h.services.Queues.ListAll(c.Request.Context(), kind)
		if err != nil {
			slog.Error("Failed to list queue", "error", err, "kind", kind)
			respondError(c, err, "Failed to list queue")
			return
		}
		c.JSON(http.StatusOK, views)
		return
	}

	trainID, err := strconv.ParseInt(trainParam, 10, 64)
	if err != nil || trainID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "train_id must be a positive integer"})
		return
	}
	routeID, err := strconv.ParseInt(routeParam, 10, 64)
	if err != nil || routeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "route_id must be a positive integer"})
		return
	}

	views, err := h.services.Queues.List(c.Request.Context(), kind, trainID, routeID)
	if err != nil {
		slog.Error("Failed to list queue", "error", err, "kind", kind)
		respondError(c, err, "Failed to list queue")
		return
	}

	c.JSON(http.StatusOK, views)
}

// ListRAC - GET /api/queues/rac
func (h *Handlers) ListRAC(c *gin.Context) {
	h.listQueue(c, models.KindRAC)
}

// ListWaitlist - GET /api/queues/waitlist
func (h *Handlers) ListWaitlist(c *gin.Context) {
	h.listQueue(c, models.KindWaitlist)
}

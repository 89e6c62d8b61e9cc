package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Trains handlers

// ListTrains - GET /api/trains
func (h *Handlers) ListTrains(c *gin.Context) {
	trains, err := h.services.Trains.List(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list trains", "error", err)
		respondError(c, err, "Failed to list trains")
		return
	}

	c.JSON(http.StatusOK, trains)
}

// ListTrainSeats - GET /api/trains/:id/seats
// Returns the full seat layout of a train.
func (h *Handlers) ListTrainSeats(c *gin.Context) {
	trainID, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	seats, err := h.services.Trains.ListSeats(c.Request.Context(), trainID)
	if err != nil {
		slog.Error("Failed to list seats", "error", err, "train_id", trainID)
		respondError(c, err, "Failed to list seats")
		return
	}

	c.JSON(http.StatusOK, seats)
}

// ListTrainRoutes - GET /api/trains/:id/routes
func (h *Handlers) ListTrainRoutes(c *gin.Context) {
	trainID, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	routes, err := h.services.Trains.ListRoutes(c.Request.Context(), trainID)
	if err != nil {
		slog.Error("Failed to list routes", "error", err, "train_id", trainID)
		respondError(c, err, "Failed to list routes")
		return
	}

	c.JSON(http.StatusOK, routes)
}

// GetTrainAvailability - GET /api/trains/:id/availability
// Seat and queue counts, served from cache when fresh.
func (h *Handlers) GetTrainAvailability(c *gin.Context) {
	trainID, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	availability, err := h.services.Trains.Availability(c.Request.Context(), trainID)
	if err != nil {
		slog.Error("Failed to get availability", "error", err, "train_id", trainID)
		respondError(c, err, "Failed to get availability")
		return
	}

	c.JSON(http.StatusOK, availability)
}

// SearchRoutes - GET /api/routes/search
func (h *Handlers) SearchRoutes(c *gin.Context) {
	query := c.Query("query")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	results, err := h.services.Trains.SearchRoutes(c.Request.Context(), query, page, pageSize)
	if err != nil {
		slog.Error("Failed to search routes", "error", err, "query", query)
		respondError(c, err, "Failed to search routes")
		return
	}

	c.JSON(http.StatusOK, results)
}

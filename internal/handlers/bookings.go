package handlers

import (
	"log/slog"
	"net/http"

	"railbook/internal/models"

	"github.com/gin-gonic/gin"
)

// Bookings handlers

// CreateBooking - POST /api/bookings
// Runs the admission decision: Confirmed, RAC or Waiting.
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.services.Bookings.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		slog.Error("Failed to create booking", "error", err)
		respondError(c, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// CancelBooking - PATCH /api/bookings/cancel
// Cancels a booking and runs the promotion cascade. Repeating the
// cancel of an already cancelled booking still returns 200.
func (h *Handlers) CancelBooking(c *gin.Context) {
	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Bookings.Cancel(c.Request.Context(), req.BookingID, "User cancellation")
	if err != nil {
		slog.Error("Failed to cancel booking", "error", err, "booking_id", req.BookingID)
		respondError(c, err, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	booking, err := h.services.Bookings.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListBookings - GET /api/bookings
// Lists the caller's bookings.
func (h *Handlers) ListBookings(c *gin.Context) {
	views, err := h.services.Bookings.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		slog.Error("Failed to list bookings", "error", err)
		respondError(c, err, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, views)
}

// ListAllBookings - GET /api/bookings/all
func (h *Handlers) ListAllBookings(c *gin.Context) {
	views, err := h.services.Bookings.ListAll(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list all bookings", "error", err)
		respondError(c, err, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, views)
}

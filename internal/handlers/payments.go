package handlers

import (
	"log/slog"
	"net/http"

	"railbook/internal/models"

	"github.com/gin-gonic/gin"
)

// Payments handlers

// NotifyPaymentCompleted - GET /api/payments/success
// Redirect target after a successful checkout. Resolves the order the
// same way as a gateway webhook.
func (h *Handlers) NotifyPaymentCompleted(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId is required"})
		return
	}

	notification := &models.PaymentNotificationPayload{
		OrderID: orderID,
		Status:  "CONFIRMED",
		Success: true,
	}
	if err := h.services.Payments.HandleNotification(c.Request.Context(), notification); err != nil {
		slog.Error("Failed to handle payment success", "error", err, "order_id", orderID)
		respondError(c, err, "Failed to handle payment result")
		return
	}

	c.Status(http.StatusOK)
}

// NotifyPaymentFailed - GET /api/payments/fail
// Redirect target after a failed checkout. The booking is cancelled
// and its seat drains through the queues.
func (h *Handlers) NotifyPaymentFailed(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId is required"})
		return
	}

	notification := &models.PaymentNotificationPayload{
		OrderID: orderID,
		Status:  "FAILED",
	}
	if err := h.services.Payments.HandleNotification(c.Request.Context(), notification); err != nil {
		slog.Error("Failed to handle payment failure", "error", err, "order_id", orderID)
		respondError(c, err, "Failed to handle payment result")
		return
	}

	c.Status(http.StatusOK)
}

// OnPaymentUpdates - POST /api/payments/notifications
// Webhook endpoint for the payment gateway.
func (h *Handlers) OnPaymentUpdates(c *gin.Context) {
	var notification models.PaymentNotificationPayload
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Payments.HandleNotification(c.Request.Context(), &notification); err != nil {
		slog.Error("Failed to handle payment notification", "error", err)
		respondError(c, err, "Failed to handle notification")
		return
	}

	c.Status(http.StatusOK)
}

// GetPaymentStatus - GET /api/payments/status
// Proxies a status check to the gateway.
func (h *Handlers) GetPaymentStatus(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId is required"})
		return
	}

	status, err := h.services.Payments.CheckOrder(c.Request.Context(), orderID)
	if err != nil {
		slog.Error("Failed to check payment", "error", err, "order_id", orderID)
		respondError(c, err, "Failed to check payment")
		return
	}

	c.JSON(http.StatusOK, status)
}

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"railbook/internal/models"
)

// TestClient wraps the HTTP API for integration tests. Every request
// carries Basic Auth credentials of a seeded test user.
type TestClient struct {
	BaseURL    string
	Email      string
	Password   string
	HTTPClient *http.Client
}

func NewTestClient(baseURL, email, password string) *TestClient {
	return &TestClient{
		BaseURL:  baseURL,
		Email:    email,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	req.SetBasicAuth(c.Email, c.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response, wantStatus int) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d. Body: %s", wantStatus, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

// CreateBooking posts a booking request and returns the admission
// outcome.
func (c *TestClient) CreateBooking(t *testing.T, req models.CreateBookingRequest) *models.BookingResult {
	resp := c.makeRequest(t, "POST", "/api/bookings", req)
	result := decodeBody[models.BookingResult](t, resp, http.StatusCreated)
	return &result
}

// CancelBooking cancels a booking.
func (c *TestClient) CancelBooking(t *testing.T, bookingID int64) *models.CancelBookingResponse {
	resp := c.makeRequest(t, "PATCH", "/api/bookings/cancel", models.CancelBookingRequest{BookingID: bookingID})
	result := decodeBody[models.CancelBookingResponse](t, resp, http.StatusOK)
	return &result
}

// ListBookings lists the caller's bookings.
func (c *TestClient) ListBookings(t *testing.T) []models.BookingView {
	resp := c.makeRequest(t, "GET", "/api/bookings", nil)
	return decodeBody[[]models.BookingView](t, resp, http.StatusOK)
}

// ListTrains lists all trains.
func (c *TestClient) ListTrains(t *testing.T) []models.Train {
	resp := c.makeRequest(t, "GET", "/api/trains", nil)
	return decodeBody[[]models.Train](t, resp, http.StatusOK)
}

// ListSeats lists the seat layout of a train.
func (c *TestClient) ListSeats(t *testing.T, trainID int64) []models.SeatView {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/trains/%d/seats", trainID), nil)
	return decodeBody[[]models.SeatView](t, resp, http.StatusOK)
}

// ListRoutes lists the routes of a train.
func (c *TestClient) ListRoutes(t *testing.T, trainID int64) []models.Route {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/trains/%d/routes", trainID), nil)
	return decodeBody[[]models.Route](t, resp, http.StatusOK)
}

// Availability returns seat and queue counts for a train.
func (c *TestClient) Availability(t *testing.T, trainID int64) *models.TrainAvailability {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/trains/%d/availability", trainID), nil)
	result := decodeBody[models.TrainAvailability](t, resp, http.StatusOK)
	return &result
}

// ListRAC lists the RAC queue of a (train, route).
func (c *TestClient) ListRAC(t *testing.T, trainID, routeID int64) []models.QueueEntryView {
	path := fmt.Sprintf("/api/queues/rac?train_id=%d&route_id=%d", trainID, routeID)
	resp := c.makeRequest(t, "GET", path, nil)
	return decodeBody[[]models.QueueEntryView](t, resp, http.StatusOK)
}

// ListWaitlist lists the waitlist queue of a (train, route).
func (c *TestClient) ListWaitlist(t *testing.T, trainID, routeID int64) []models.QueueEntryView {
	path := fmt.Sprintf("/api/queues/waitlist?train_id=%d&route_id=%d", trainID, routeID)
	resp := c.makeRequest(t, "GET", path, nil)
	return decodeBody[[]models.QueueEntryView](t, resp, http.StatusOK)
}

// SearchRoutes runs a route search.
func (c *TestClient) SearchRoutes(t *testing.T, query string) []models.RouteSearchResult {
	path := fmt.Sprintf("/api/routes/search?query=%s&page=1&pageSize=20", query)
	resp := c.makeRequest(t, "GET", path, nil)
	return decodeBody[[]models.RouteSearchResult](t, resp, http.StatusOK)
}

// NotifyPaymentSuccess simulates the gateway success redirect.
func (c *TestClient) NotifyPaymentSuccess(t *testing.T, orderID string) {
	resp := c.makeRequest(t, "GET", "/api/payments/success?orderId="+orderID, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}
}

// NotifyPaymentFailure simulates the gateway failure redirect.
func (c *TestClient) NotifyPaymentFailure(t *testing.T, orderID string) {
	resp := c.makeRequest(t, "GET", "/api/payments/fail?orderId="+orderID, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}
}

// SendPaymentWebhook posts a gateway webhook notification.
func (c *TestClient) SendPaymentWebhook(t *testing.T, notification models.PaymentNotificationPayload) {
	resp := c.makeRequest(t, "POST", "/api/payments/notifications", notification)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}
}

// HealthCheck fails the test when the API is not healthy.
func (c *TestClient) HealthCheck(t *testing.T) {
	resp := c.makeRequest(t, "GET", "/health", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Health check failed with status %d", resp.StatusCode)
	}
}

package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// setupRouter wires the handlers without services; only requests that
// fail before reaching a service may be exercised here.
func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := NewHandlers(nil, nil)

	api := r.Group("/api")
	{
		api.POST("/bookings", h.CreateBooking)
		api.PATCH("/bookings/cancel", h.CancelBooking)
		api.GET("/bookings/:id", h.GetBooking)
		api.GET("/routes/search", h.SearchRoutes)
	}

	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBookingRejectsMalformedBody(t *testing.T) {
	r := setupRouter()

	cases := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"not json", `not json at all`},
		{"missing train", `{"route_id": 10, "passenger_name": "A B", "passenger_age": 30}`},
		{"missing passenger name", `{"train_id": 1, "route_id": 10, "passenger_age": 30}`},
		{"missing age", `{"train_id": 1, "route_id": 10, "passenger_name": "A B"}`},
		{"wrong type", `{"train_id": "one", "route_id": 10, "passenger_name": "A B", "passenger_age": 30}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(r, "POST", "/api/bookings", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCancelBookingRejectsMalformedBody(t *testing.T) {
	r := setupRouter()

	w := doJSON(r, "PATCH", "/api/bookings/cancel", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "PATCH", "/api/bookings/cancel", `{"booking_id": "abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBookingRejectsBadID(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("GET", "/api/bookings/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchRoutesRejectsBadPaging(t *testing.T) {
	r := setupRouter()

	for _, path := range []string{
		"/api/routes/search?page=0",
		"/api/routes/search?page=abc",
		"/api/routes/search?pageSize=0",
		"/api/routes/search?pageSize=101",
	} {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

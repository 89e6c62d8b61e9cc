package integration

import (
	"os"
	"testing"

	"railbook/internal/models"
)

const defaultBaseURL = "http://localhost:8081"

// newClient builds a test client from the environment and skips the
// test when integration runs are not enabled. Requires a running API
// seeded by the generator.
func newClient(t *testing.T) *TestClient {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") == "" {
		t.Skip("Set RUN_INTEGRATION_TESTS=1 to run integration tests against a live API")
	}

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	email := os.Getenv("API_TEST_EMAIL")
	if email == "" {
		email = "user1@example.com"
	}
	password := os.Getenv("API_TEST_PASSWORD")
	if password == "" {
		password = "password1"
	}

	return NewTestClient(baseURL, email, password)
}

// pickRoute returns the first train that has a route, with that route.
func pickRoute(t *testing.T, c *TestClient) (models.Train, models.Route) {
	t.Helper()

	trains := c.ListTrains(t)
	if len(trains) == 0 {
		t.Fatal("No trains found, run the generator first")
	}

	for _, train := range trains {
		routes := c.ListRoutes(t, train.TrainID)
		if len(routes) > 0 {
			return train, routes[0]
		}
	}

	t.Fatal("No routes found, run the generator first")
	return models.Train{}, models.Route{}
}

// findFreeSeat returns any available seat of the train, or nil.
func findFreeSeat(seats []models.SeatView) *models.SeatView {
	for i := range seats {
		if seats[i].IsAvailable {
			return &seats[i]
		}
	}
	return nil
}

// assertDensePositions verifies queue positions run 1..N in order.
func assertDensePositions(t *testing.T, entries []models.QueueEntryView) {
	t.Helper()

	for i, entry := range entries {
		if entry.Position != i+1 {
			t.Fatalf("Queue positions are not dense: entry %d has position %d", i, entry.Position)
		}
	}
}

package validation

import (
	"context"
	"fmt"
	"log"

	"railbook/internal/config"
	"railbook/internal/database"
)

// Auditor runs consistency checks over the reservation data: queue
// positions must stay dense, seats must never be double-assigned and
// booking statuses must agree with seat assignment.
type Auditor struct {
	db *database.DB
}

func NewAuditor(db *database.DB) *Auditor {
	return &Auditor{db: db}
}

// Problem is one detected inconsistency.
type Problem struct {
	Check  string
	Detail string
}

func (p Problem) String() string {
	return fmt.Sprintf("[%s] %s", p.Check, p.Detail)
}

// Run executes every check and returns the problems found.
func (a *Auditor) Run(ctx context.Context, racCapacity int) ([]Problem, error) {
	var problems []Problem

	checks := []func(context.Context) ([]Problem, error){
		a.checkQueueDensity,
		a.checkSeatExclusivity,
		a.checkStatusSeatAgreement,
		a.checkSeatAvailabilityFlags,
	}

	for _, check := range checks {
		found, err := check(ctx)
		if err != nil {
			return problems, err
		}
		problems = append(problems, found...)
	}

	found, err := a.checkRACCapacity(ctx, racCapacity)
	if err != nil {
		return problems, err
	}
	problems = append(problems, found...)

	return problems, nil
}

// checkQueueDensity verifies that active entries in each (kind, train,
// route) queue occupy positions 1..N with no gaps or duplicates.
func (a *Auditor) checkQueueDensity(ctx context.Context) ([]Problem, error) {
	query := `
		SELECT kind, train_id, route_id, COUNT(*), MIN(position), MAX(position), COUNT(DISTINCT position)
		FROM queue_entries
		WHERE status = 'Active'
		GROUP BY kind, train_id, route_id
		HAVING MIN(position) <> 1
		    OR MAX(position) <> COUNT(*)
		    OR COUNT(DISTINCT position) <> COUNT(*)`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("queue density query: %w", err)
	}
	defer rows.Close()

	var problems []Problem
	for rows.Next() {
		var kind string
		var trainID, routeID int64
		var count, minPos, maxPos, distinct int
		if err := rows.Scan(&kind, &trainID, &routeID, &count, &minPos, &maxPos, &distinct); err != nil {
			return nil, err
		}
		problems = append(problems, Problem{
			Check: "queue-density",
			Detail: fmt.Sprintf("%s queue for train %d route %d has %d entries at positions %d..%d (%d distinct)",
				kind, trainID, routeID, count, minPos, maxPos, distinct),
		})
	}

	return problems, rows.Err()
}

// checkRACCapacity verifies that no RAC queue exceeds the configured
// capacity.
func (a *Auditor) checkRACCapacity(ctx context.Context, capacity int) ([]Problem, error) {
	query := `
		SELECT train_id, route_id, COUNT(*)
		FROM queue_entries
		WHERE kind = 'RAC' AND status = 'Active'
		GROUP BY train_id, route_id
		HAVING COUNT(*) > $1`

	rows, err := a.db.QueryContext(ctx, query, capacity)
	if err != nil {
		return nil, fmt.Errorf("RAC capacity query: %w", err)
	}
	defer rows.Close()

	var problems []Problem
	for rows.Next() {
		var trainID, routeID int64
		var count int
		if err := rows.Scan(&trainID, &routeID, &count); err != nil {
			return nil, err
		}
		problems = append(problems, Problem{
			Check:  "rac-capacity",
			Detail: fmt.Sprintf("RAC queue for train %d route %d holds %d entries, capacity is %d", trainID, routeID, count, capacity),
		})
	}

	return problems, rows.Err()
}

// checkSeatExclusivity verifies that no seat belongs to more than one
// active booking.
func (a *Auditor) checkSeatExclusivity(ctx context.Context) ([]Problem, error) {
	query := `
		SELECT seat_id, COUNT(*)
		FROM bookings
		WHERE seat_id IS NOT NULL AND status <> 'Cancelled'
		GROUP BY seat_id
		HAVING COUNT(*) > 1`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("seat exclusivity query: %w", err)
	}
	defer rows.Close()

	var problems []Problem
	for rows.Next() {
		var seatID int64
		var count int
		if err := rows.Scan(&seatID, &count); err != nil {
			return nil, err
		}
		problems = append(problems, Problem{
			Check:  "seat-exclusivity",
			Detail: fmt.Sprintf("seat %d is held by %d active bookings", seatID, count),
		})
	}

	return problems, rows.Err()
}

// checkStatusSeatAgreement verifies that Confirmed bookings have a seat
// and queued bookings do not.
func (a *Auditor) checkStatusSeatAgreement(ctx context.Context) ([]Problem, error) {
	query := `
		SELECT booking_id, status, seat_id IS NOT NULL
		FROM bookings
		WHERE (status = 'Confirmed' AND seat_id IS NULL)
		   OR (status IN ('RAC', 'Waiting') AND seat_id IS NOT NULL)`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("status agreement query: %w", err)
	}
	defer rows.Close()

	var problems []Problem
	for rows.Next() {
		var bookingID int64
		var status string
		var hasSeat bool
		if err := rows.Scan(&bookingID, &status, &hasSeat); err != nil {
			return nil, err
		}
		detail := fmt.Sprintf("booking %d has status %s without a seat", bookingID, status)
		if hasSeat {
			detail = fmt.Sprintf("booking %d has status %s but holds a seat", bookingID, status)
		}
		problems = append(problems, Problem{Check: "status-seat", Detail: detail})
	}

	return problems, rows.Err()
}

// checkSeatAvailabilityFlags verifies that assigned seats are marked
// unavailable.
func (a *Auditor) checkSeatAvailabilityFlags(ctx context.Context) ([]Problem, error) {
	query := `
		SELECT s.seat_id, b.booking_id
		FROM seats s
		JOIN bookings b ON b.seat_id = s.seat_id AND b.status <> 'Cancelled'
		WHERE s.is_available = TRUE`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("availability flag query: %w", err)
	}
	defer rows.Close()

	var problems []Problem
	for rows.Next() {
		var seatID, bookingID int64
		if err := rows.Scan(&seatID, &bookingID); err != nil {
			return nil, err
		}
		problems = append(problems, Problem{
			Check:  "availability-flag",
			Detail: fmt.Sprintf("seat %d is marked available but held by booking %d", seatID, bookingID),
		})
	}

	return problems, rows.Err()
}

// RunAudit connects to the database from the environment and prints
// every inconsistency found. It exits non-zero when problems exist.
func RunAudit() {
	cfg := config.Load()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	auditor := NewAuditor(db)
	problems, err := auditor.Run(context.Background(), cfg.RACCapacity)
	if err != nil {
		log.Fatalf("Audit failed: %v", err)
	}

	if len(problems) == 0 {
		log.Println("Audit passed: no inconsistencies found")
		return
	}

	for _, p := range problems {
		log.Printf("Audit problem: %s", p)
	}
	log.Fatalf("Audit found %d problems", len(problems))
}

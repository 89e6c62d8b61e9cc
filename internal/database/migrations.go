package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createTrainsTable,
		createRoutesTable,
		createClassesTable,
		createCompartmentsTable,
		createSeatsTable,
		createUsersTable,
		createBookingsTable,
		createQueueEntriesTable,
		createPaymentsTable,
		createQueuePositionIndex,
		createBookingLookupIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createTrainsTable = `
CREATE TABLE IF NOT EXISTS trains (
    train_id SERIAL PRIMARY KEY,
    train_number VARCHAR(20) UNIQUE NOT NULL,
    train_name VARCHAR(200) NOT NULL
);`

const createRoutesTable = `
CREATE TABLE IF NOT EXISTS routes (
    route_id SERIAL PRIMARY KEY,
    train_id INTEGER NOT NULL REFERENCES trains(train_id) ON DELETE CASCADE,
    source_station VARCHAR(200) NOT NULL,
    destination_station VARCHAR(200) NOT NULL,
    departure_time TIMESTAMP NOT NULL,
    arrival_time TIMESTAMP NOT NULL,
    price BIGINT NOT NULL DEFAULT 0
);`

const createClassesTable = `
CREATE TABLE IF NOT EXISTS classes (
    class_id SERIAL PRIMARY KEY,
    train_id INTEGER NOT NULL REFERENCES trains(train_id) ON DELETE CASCADE,
    class_name VARCHAR(100) NOT NULL,

    UNIQUE(train_id, class_name)
);`

const createCompartmentsTable = `
CREATE TABLE IF NOT EXISTS compartments (
    compartment_id SERIAL PRIMARY KEY,
    class_id INTEGER NOT NULL REFERENCES classes(class_id) ON DELETE CASCADE,
    compartment_name VARCHAR(100) NOT NULL,

    UNIQUE(class_id, compartment_name)
);`

const createSeatsTable = `
CREATE TABLE IF NOT EXISTS seats (
    seat_id SERIAL PRIMARY KEY,
    compartment_id INTEGER NOT NULL REFERENCES compartments(compartment_id) ON DELETE CASCADE,
    berth_type VARCHAR(20) NOT NULL,
    seat_number INTEGER NOT NULL,
    is_available BOOLEAN NOT NULL DEFAULT TRUE,

    UNIQUE(compartment_id, seat_number),
    CHECK (berth_type IN ('Lower', 'Middle', 'Upper', 'Side Lower', 'Side Upper'))
);`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    user_id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    full_name VARCHAR(200) NOT NULL,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    booking_id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(user_id),
    train_id INTEGER NOT NULL REFERENCES trains(train_id),
    route_id INTEGER NOT NULL REFERENCES routes(route_id),
    seat_id INTEGER REFERENCES seats(seat_id),
    passenger_name VARCHAR(200) NOT NULL,
    passenger_age INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'Waiting',
    booking_time TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('Confirmed', 'RAC', 'Waiting', 'Cancelled')),
    CHECK (passenger_age > 0 AND passenger_age <= 120)
);`

const createQueueEntriesTable = `
CREATE TABLE IF NOT EXISTS queue_entries (
    entry_id SERIAL PRIMARY KEY,
    kind VARCHAR(10) NOT NULL,
    user_id INTEGER NOT NULL REFERENCES users(user_id),
    train_id INTEGER NOT NULL REFERENCES trains(train_id),
    route_id INTEGER NOT NULL REFERENCES routes(route_id),
    position INTEGER NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'Active',
    request_time TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (kind IN ('RAC', 'WAITLIST')),
    CHECK (status IN ('Active', 'Promoted')),
    CHECK (position >= 1)
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    payment_id SERIAL PRIMARY KEY,
    booking_id INTEGER NOT NULL REFERENCES bookings(booking_id) ON DELETE CASCADE,
    order_id VARCHAR(64) UNIQUE NOT NULL,
    transaction_id VARCHAR(255),
    amount BIGINT NOT NULL,
    method VARCHAR(20) NOT NULL DEFAULT 'card',
    status VARCHAR(20) NOT NULL DEFAULT 'Pending',
    payment_time TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('Pending', 'Success', 'Failed'))
);`

const createQueuePositionIndex = `
CREATE INDEX IF NOT EXISTS queue_entries_active_idx
ON queue_entries (kind, train_id, route_id, position)
WHERE status = 'Active';`

const createBookingLookupIndex = `
CREATE INDEX IF NOT EXISTS bookings_user_train_route_status_idx
ON bookings (user_id, train_id, route_id, status);`

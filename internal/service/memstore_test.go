package service

import (
	"context"
	"sort"
	"time"

	"railbook/internal/models"
	"railbook/internal/repository"
)

// memStore is an in-memory repository.Store for service tests. WithinTx
// snapshots the state and restores it when the closure fails, matching
// the all-or-nothing behavior of the SQL store.
type memStore struct {
	seats     map[int64]*models.Seat
	seatTrain map[int64]int64
	bookings  map[int64]*models.Booking
	entries   map[int64]*models.QueueEntry
	routes    map[int64]*models.Route
	payments  []*models.Payment

	nextBookingID int64
	nextEntryID   int64
}

func newMemStore() *memStore {
	return &memStore{
		seats:     make(map[int64]*models.Seat),
		seatTrain: make(map[int64]int64),
		bookings:  make(map[int64]*models.Booking),
		entries:   make(map[int64]*models.QueueEntry),
		routes:    make(map[int64]*models.Route),
	}
}

func (m *memStore) addRoute(routeID, trainID, price int64) {
	m.routes[routeID] = &models.Route{RouteID: routeID, TrainID: trainID, Price: price}
}

func (m *memStore) addSeats(trainID int64, count int) {
	for i := 0; i < count; i++ {
		id := int64(len(m.seats) + 1)
		m.seats[id] = &models.Seat{SeatID: id, SeatNumber: i + 1, IsAvailable: true}
		m.seatTrain[id] = trainID
	}
}

func (m *memStore) snapshot() *memStore {
	c := newMemStore()
	for id, s := range m.seats {
		cp := *s
		c.seats[id] = &cp
	}
	for id, t := range m.seatTrain {
		c.seatTrain[id] = t
	}
	for id, b := range m.bookings {
		cp := *b
		if b.SeatID != nil {
			seat := *b.SeatID
			cp.SeatID = &seat
		}
		c.bookings[id] = &cp
	}
	for id, e := range m.entries {
		cp := *e
		c.entries[id] = &cp
	}
	for id, r := range m.routes {
		cp := *r
		c.routes[id] = &cp
	}
	c.payments = append(c.payments, m.payments...)
	c.nextBookingID = m.nextBookingID
	c.nextEntryID = m.nextEntryID
	return c
}

func (m *memStore) restore(from *memStore) {
	m.seats = from.seats
	m.seatTrain = from.seatTrain
	m.bookings = from.bookings
	m.entries = from.entries
	m.routes = from.routes
	m.payments = from.payments
	m.nextBookingID = from.nextBookingID
	m.nextEntryID = from.nextEntryID
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	saved := m.snapshot()
	if err := fn(&memTx{store: m}); err != nil {
		m.restore(saved)
		return err
	}
	return nil
}

// activeEntries returns active entries of one queue ordered by
// position.
func (m *memStore) activeEntries(kind models.QueueKind, trainID, routeID int64) []*models.QueueEntry {
	var out []*models.QueueEntry
	for _, e := range m.entries {
		if e.Kind == kind && e.TrainID == trainID && e.RouteID == routeID && e.Status == models.QueueActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (m *memStore) shiftDown(kind models.QueueKind, trainID, routeID int64, removedPos int) {
	for _, e := range m.entries {
		if e.Kind == kind && e.TrainID == trainID && e.RouteID == routeID &&
			e.Status == models.QueueActive && e.Position > removedPos {
			e.Position--
		}
	}
}

type memTx struct {
	store *memStore
}

func (t *memTx) Seats() repository.SeatInventory { return &memSeats{store: t.store} }
func (t *memTx) RAC() repository.Queue           { return &memQueue{store: t.store, kind: models.KindRAC} }
func (t *memTx) Waitlist() repository.Queue {
	return &memQueue{store: t.store, kind: models.KindWaitlist}
}
func (t *memTx) Bookings() repository.BookingLedger { return &memBookings{store: t.store} }
func (t *memTx) Routes() repository.RouteCatalog    { return &memRoutes{store: t.store} }
func (t *memTx) Payments() repository.PaymentLedger { return &memPayments{store: t.store} }

type memSeats struct {
	store *memStore
}

func (s *memSeats) FindAvailable(ctx context.Context, trainID int64) (*models.Seat, error) {
	var ids []int64
	for id, seat := range s.store.seats {
		if s.store.seatTrain[id] == trainID && seat.IsAvailable {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	seat := *s.store.seats[ids[0]]
	return &seat, nil
}

func (s *memSeats) BelongsToTrain(ctx context.Context, seatID, trainID int64) (bool, error) {
	return s.store.seatTrain[seatID] == trainID, nil
}

func (s *memSeats) Reserve(ctx context.Context, seatID int64) (bool, error) {
	seat, ok := s.store.seats[seatID]
	if !ok || !seat.IsAvailable {
		return false, nil
	}
	seat.IsAvailable = false
	return true, nil
}

func (s *memSeats) Release(ctx context.Context, seatID int64) error {
	if seat, ok := s.store.seats[seatID]; ok {
		seat.IsAvailable = true
	}
	return nil
}

type memQueue struct {
	store *memStore
	kind  models.QueueKind
}

func (q *memQueue) Count(ctx context.Context, trainID, routeID int64) (int, error) {
	return len(q.store.activeEntries(q.kind, trainID, routeID)), nil
}

func (q *memQueue) Enqueue(ctx context.Context, userID, trainID, routeID int64) (*models.QueueEntry, error) {
	q.store.nextEntryID++
	entry := &models.QueueEntry{
		EntryID:     q.store.nextEntryID,
		Kind:        q.kind,
		UserID:      userID,
		TrainID:     trainID,
		RouteID:     routeID,
		Position:    len(q.store.activeEntries(q.kind, trainID, routeID)) + 1,
		Status:      models.QueueActive,
		RequestTime: time.Now(),
	}
	q.store.entries[entry.EntryID] = entry
	cp := *entry
	return &cp, nil
}

func (q *memQueue) DequeueHead(ctx context.Context, trainID, routeID int64) (*models.QueueEntry, error) {
	active := q.store.activeEntries(q.kind, trainID, routeID)
	if len(active) == 0 {
		return nil, nil
	}
	head := active[0]
	head.Status = models.QueuePromoted
	q.store.shiftDown(q.kind, trainID, routeID, head.Position)
	cp := *head
	return &cp, nil
}

func (q *memQueue) Remove(ctx context.Context, entryID int64) (bool, error) {
	entry, ok := q.store.entries[entryID]
	if !ok || entry.Status != models.QueueActive || entry.Kind != q.kind {
		return false, nil
	}
	delete(q.store.entries, entryID)
	q.store.shiftDown(q.kind, entry.TrainID, entry.RouteID, entry.Position)
	return true, nil
}

func (q *memQueue) PositionOf(ctx context.Context, userID, trainID, routeID int64) (*models.QueueEntry, error) {
	for _, e := range q.store.activeEntries(q.kind, trainID, routeID) {
		if e.UserID == userID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

type memBookings struct {
	store *memStore
}

func (b *memBookings) Insert(ctx context.Context, booking *models.Booking) error {
	b.store.nextBookingID++
	booking.BookingID = b.store.nextBookingID
	booking.BookingTime = time.Now()
	booking.UpdatedAt = booking.BookingTime
	cp := *booking
	if booking.SeatID != nil {
		seat := *booking.SeatID
		cp.SeatID = &seat
	}
	b.store.bookings[booking.BookingID] = &cp
	return nil
}

func (b *memBookings) GetForUpdate(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, ok := b.store.bookings[bookingID]
	if !ok {
		return nil, nil
	}
	cp := *booking
	if booking.SeatID != nil {
		seat := *booking.SeatID
		cp.SeatID = &seat
	}
	return &cp, nil
}

func (b *memBookings) SetStatus(ctx context.Context, bookingID int64, status models.BookingStatus) error {
	if booking, ok := b.store.bookings[bookingID]; ok {
		booking.Status = status
		booking.UpdatedAt = time.Now()
	}
	return nil
}

func (b *memBookings) AssignSeat(ctx context.Context, bookingID, seatID int64) error {
	if booking, ok := b.store.bookings[bookingID]; ok {
		id := seatID
		booking.SeatID = &id
		booking.Status = models.BookingConfirmed
		booking.UpdatedAt = time.Now()
	}
	return nil
}

func (b *memBookings) ClearSeat(ctx context.Context, bookingID int64) error {
	if booking, ok := b.store.bookings[bookingID]; ok {
		booking.SeatID = nil
		booking.UpdatedAt = time.Now()
	}
	return nil
}

func (b *memBookings) FindOldestByStatus(ctx context.Context, userID, trainID, routeID int64, status models.BookingStatus) (*models.Booking, error) {
	var ids []int64
	for id, booking := range b.store.bookings {
		if booking.UserID == userID && booking.TrainID == trainID &&
			booking.RouteID == routeID && booking.Status == status {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	cp := *b.store.bookings[ids[0]]
	return &cp, nil
}

type memRoutes struct {
	store *memStore
}

func (r *memRoutes) GetRoute(ctx context.Context, routeID int64) (*models.Route, error) {
	route, ok := r.store.routes[routeID]
	if !ok {
		return nil, nil
	}
	cp := *route
	return &cp, nil
}

type memPayments struct {
	store *memStore
}

func (p *memPayments) Insert(ctx context.Context, payment *models.Payment) error {
	payment.PaymentID = int64(len(p.store.payments) + 1)
	payment.PaymentTime = time.Now()
	cp := *payment
	p.store.payments = append(p.store.payments, &cp)
	return nil
}

package models

import "fmt"

// BookingStatus is the lifecycle state of a booking. Transitions are
// forward-only; a booking record is never deleted.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "Confirmed"
	BookingRAC       BookingStatus = "RAC"
	BookingWaiting   BookingStatus = "Waiting"
	BookingCancelled BookingStatus = "Cancelled"
)

// Valid reports whether s is one of the known booking statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingRAC, BookingWaiting, BookingCancelled:
		return true
	}
	return false
}

// Active reports whether the booking still holds or awaits capacity.
func (s BookingStatus) Active() bool {
	return s == BookingConfirmed || s == BookingRAC || s == BookingWaiting
}

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition. Waiting advances to RAC, RAC to Confirmed, and
// any active status to Cancelled. Cancelled is terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingWaiting:
		return next == BookingRAC || next == BookingCancelled
	case BookingRAC:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCancelled
	}
	return false
}

// QueueKind distinguishes the two waiting tiers.
type QueueKind string

const (
	KindRAC      QueueKind = "RAC"
	KindWaitlist QueueKind = "WAITLIST"
)

// QueueStatus is the state of a queue entry. Active entries carry a
// live position; promoted entries are kept for audit and no longer
// count toward the dense numbering.
type QueueStatus string

const (
	QueueActive   QueueStatus = "Active"
	QueuePromoted QueueStatus = "Promoted"
)

// BerthType is the physical berth placement inside a compartment.
type BerthType string

const (
	BerthLower     BerthType = "Lower"
	BerthMiddle    BerthType = "Middle"
	BerthUpper     BerthType = "Upper"
	BerthSideLower BerthType = "Side Lower"
	BerthSideUpper BerthType = "Side Upper"
)

// ParseBerthType validates a berth label coming from storage or input.
func ParseBerthType(s string) (BerthType, error) {
	switch BerthType(s) {
	case BerthLower, BerthMiddle, BerthUpper, BerthSideLower, BerthSideUpper:
		return BerthType(s), nil
	}
	return "", fmt.Errorf("unknown berth type: %q", s)
}

// PaymentStatus is the state of a payment attempt.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentSuccess PaymentStatus = "Success"
	PaymentFailed  PaymentStatus = "Failed"
)

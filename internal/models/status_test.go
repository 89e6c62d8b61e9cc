package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		allowed  bool
	}{
		{BookingWaiting, BookingRAC, true},
		{BookingWaiting, BookingCancelled, true},
		{BookingWaiting, BookingConfirmed, false},
		{BookingRAC, BookingConfirmed, true},
		{BookingRAC, BookingCancelled, true},
		{BookingRAC, BookingWaiting, false},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingRAC, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCancelled, BookingWaiting, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestBookingStatusValid(t *testing.T) {
	for _, s := range []BookingStatus{BookingConfirmed, BookingRAC, BookingWaiting, BookingCancelled} {
		assert.True(t, s.Valid(), "%s", s)
	}
	assert.False(t, BookingStatus("Pending").Valid())
	assert.False(t, BookingStatus("").Valid())
}

func TestBookingStatusActive(t *testing.T) {
	assert.True(t, BookingConfirmed.Active())
	assert.True(t, BookingRAC.Active())
	assert.True(t, BookingWaiting.Active())
	assert.False(t, BookingCancelled.Active())
}

func TestParseBerthType(t *testing.T) {
	for _, s := range []string{"Lower", "Middle", "Upper", "Side Lower", "Side Upper"} {
		got, err := ParseBerthType(s)
		assert.NoError(t, err)
		assert.Equal(t, BerthType(s), got)
	}

	_, err := ParseBerthType("Window")
	assert.Error(t, err)
}

func TestFlexibleBool(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`"true"`, true},
		{`"1"`, true},
		{`"yes"`, true},
		{`false`, false},
		{`"0"`, false},
		{`"no"`, false},
	}

	for _, tc := range cases {
		var fb FlexibleBool
		err := fb.UnmarshalJSON([]byte(tc.in))
		assert.NoError(t, err, "input %s", tc.in)
		assert.Equal(t, tc.want, fb.Bool(), "input %s", tc.in)
	}

	var fb FlexibleBool
	assert.Error(t, fb.UnmarshalJSON([]byte(`"maybe"`)))
}
